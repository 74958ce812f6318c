package executor

import "ledctrl/store"

// MaxTriggerCount is the number of trigger slots in the executor.
const MaxTriggerCount = 4

// TriggerEdgeMode selects which edges of the watched channel fire a
// trigger.
type TriggerEdgeMode uint8

const (
	TriggerOnNone TriggerEdgeMode = iota
	TriggerOnRising
	TriggerOnFalling
	TriggerOnChange
)

// TriggerAction is what happens when a trigger fires: either resume the
// bytecode store (JumpTo == LocationNowhere) or jump to an address.
type TriggerAction struct {
	JumpTo store.Location
}

// ResumeAction is the trigger action that resumes a suspended store.
var ResumeAction = TriggerAction{JumpTo: store.LocationNowhere}

// Trigger is one slot of the trigger bank: an edge-triggered watcher bound
// to a signal channel and an action. One-shot triggers disarm themselves
// after firing; permanent triggers stay armed.
type Trigger struct {
	source   SignalSource
	channel  uint8
	detector EdgeDetector
	edges    TriggerEdgeMode
	action   TriggerAction
	oneShot  bool
}

// Active returns whether the slot is armed.
func (t *Trigger) Active() bool {
	return t.source != nil
}

// Channel returns the watched channel index.
func (t *Trigger) Channel() uint8 {
	return t.channel
}

// Action returns the action to execute when the trigger fires. Valid also
// right after a one-shot trigger disarmed itself, so the executor can read
// the action of the firing it just observed.
func (t *Trigger) Action() TriggerAction {
	return t.action
}

// Watch arms the slot to watch a channel of the given source. An invalid
// channel index disables the slot and returns ErrInvalidChannelIndex; a
// nil source disables it and returns ErrNoSignalSource.
func (t *Trigger) Watch(source SignalSource, channel uint8, edges TriggerEdgeMode, oneShot bool, action TriggerAction) error {
	if source == nil {
		t.Disable()
		return ErrNoSignalSource
	}
	if channel >= source.NumChannels() {
		t.Disable()
		return ErrInvalidChannelIndex
	}

	t.source = source
	t.channel = channel
	t.edges = edges
	t.oneShot = oneShot
	t.action = action
	t.detector = defaultEdgeDetector()
	return nil
}

// Disable disarms the slot. The stored action is kept so a caller that
// observed the firing can still read it.
func (t *Trigger) Disable() {
	t.source = nil
	t.channel = 0
	t.edges = TriggerOnNone
}

// CheckAndFire feeds the current channel reading through the edge detector
// and reports whether the configured edge was detected. A one-shot trigger
// disarms itself before returning true.
func (t *Trigger) CheckAndFire(now int64) bool {
	if t.source == nil {
		return false
	}

	edge := t.detector.Feed(t.source.ChannelValue(t.channel), now)
	fired := false
	switch edge {
	case EdgeRising:
		fired = t.edges == TriggerOnRising || t.edges == TriggerOnChange
	case EdgeFalling:
		fired = t.edges == TriggerOnFalling || t.edges == TriggerOnChange
	}

	if fired && t.oneShot {
		t.Disable()
	}
	return fired
}
