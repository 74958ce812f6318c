// Package executor implements the light show bytecode interpreter: a
// cooperative, non-blocking virtual machine that interleaves program
// execution, active color transitions and trigger evaluation on every
// invocation of Step.
package executor

import (
	"fmt"
	"math"

	"ledctrl/protocol"
	"ledctrl/store"
)

// colorFader holds the color endpoints of the current transition and
// applies interpolated colors to the LED strip.
type colorFader struct {
	startColor Color
	endColor   Color
	strip      LEDStrip
}

func (f *colorFader) apply(progress float64) {
	if f.strip != nil {
		f.strip.SetColor(f.startColor.Mix(f.endColor, progress))
	}
}

// CommandExecutor executes bytecode that controls the attached LED strip.
//
// The executor is single-threaded and cooperatively scheduled: the host
// must call Step repeatedly, far more often than the finest time unit the
// bytecode can express, and must never call it reentrantly or from
// multiple goroutines. The bytecode store and signal source are borrowed;
// their lifetime is managed by the host.
type CommandExecutor struct {
	strip  LEDStrip
	store  store.BytecodeStore
	signal SignalSource
	pyro   PyroChannels
	clock  Clock

	errorSink ErrorSink

	ended      bool
	loopStack  LoopStack
	triggers   [MaxTriggerCount]Trigger
	transition Transition
	fader      colorFader

	// Wall-clock time when the execution of the current command started.
	currentCommandStartTime uint64

	// Wall-clock time of the last internal clock reset. The internal
	// clock of the executor relates to wall time through this origin and
	// the skew compensation factor.
	lastClockResetTime uint64

	// Wall-clock time when the next command is due.
	nextWakeupTime uint64

	// Clock skew compensation factor: when the bytecode asks for X
	// milliseconds, the executor schedules X*factor wall milliseconds.
	// Lets a host recalibrate a drifting hardware clock without altering
	// the bytecode.
	compensation float64
}

// NewCommandExecutor creates an executor controlling the given LED strip.
// The executor starts in the ended state until a non-empty bytecode store
// is attached.
func NewCommandExecutor(strip LEDStrip) *CommandExecutor {
	e := &CommandExecutor{
		strip:        strip,
		clock:        NewSystemClock(),
		compensation: 1,
		ended:        true,
	}
	e.fader.strip = strip
	return e
}

// BytecodeStore returns the attached bytecode store.
func (e *CommandExecutor) BytecodeStore() store.BytecodeStore {
	return e.store
}

// SetBytecodeStore attaches a bytecode store and rewinds execution to its
// start.
func (e *CommandExecutor) SetBytecodeStore(s store.BytecodeStore) {
	e.store = s
	e.Rewind()
}

// SignalSource returns the attached signal source, if any.
func (e *CommandExecutor) SignalSource() SignalSource {
	return e.signal
}

// SetSignalSource attaches the signal source used by triggers and the
// channel-driven color commands. May be nil.
func (e *CommandExecutor) SetSignalSource(source SignalSource) {
	e.signal = source
}

// SetPyroChannels attaches the optional pyro output bank.
func (e *CommandExecutor) SetPyroChannels(pyro PyroChannels) {
	e.pyro = pyro
}

// SetClock replaces the wall clock. Intended for simulated clocks in
// tests and offline playback; call before attaching a store.
func (e *CommandExecutor) SetClock(clock Clock) {
	e.clock = clock
}

// SetErrorSink registers the callback receiving recoverable errors.
func (e *CommandExecutor) SetErrorSink(sink ErrorSink) {
	e.errorSink = sink
}

// ClockSkewCompensationFactor returns the current compensation factor.
func (e *CommandExecutor) ClockSkewCompensationFactor() float64 {
	return e.compensation
}

// SetClockSkewCompensationFactor sets the compensation factor. Values
// that are not strictly positive are ignored.
func (e *CommandExecutor) SetClockSkewCompensationFactor(factor float64) {
	if factor > 0 {
		e.compensation = factor
	}
}

// Clock returns the value of the internal clock of the executor: the
// number of internal milliseconds elapsed since the last clock reset.
func (e *CommandExecutor) Clock() uint64 {
	now := e.clock.Now()
	if now <= e.lastClockResetTime {
		return 0
	}
	return uint64(math.Round(float64(now-e.lastClockResetTime) / e.compensation))
}

// Now returns the current wall-clock reading of the attached clock, in
// the same time base as NextWakeupTime.
func (e *CommandExecutor) Now() uint64 {
	return e.clock.Now()
}

// Ended returns whether the program has ended.
func (e *CommandExecutor) Ended() bool {
	return e.ended
}

// NextWakeupTime returns the wall-clock time when the next command is due.
func (e *CommandExecutor) NextWakeupTime() uint64 {
	return e.nextWakeupTime
}

// Rewind restarts execution at the beginning of the attached bytecode.
// The loop stack, the active transition and all armed triggers are
// cleared, and the internal clock origin is rebased to the current time.
func (e *CommandExecutor) Rewind() {
	now := e.clock.Now()

	if e.store != nil {
		e.store.Rewind()
		e.ended = e.store.Empty()
	} else {
		e.ended = true
	}

	e.loopStack.Clear()
	e.transition = Transition{}
	for i := range e.triggers {
		e.triggers[i] = Trigger{}
	}

	e.currentCommandStartTime = now
	e.lastClockResetTime = now
	e.delayExecutionFor(0)
}

// Stop stops the execution of the program.
func (e *CommandExecutor) Stop() {
	e.ended = true
}

// Step keeps the execution flowing and must be called repeatedly from the
// host loop. In order: armed triggers are evaluated against the signal
// source, the active transition is advanced, and if the wakeup time has
// arrived, exactly one instruction is executed. The ordering is part of
// the contract: a trigger firing in the same tick as a scheduled
// instruction may alter control flow before that instruction runs.
//
// Returns the wall-clock time when the next command is due. The value is
// informational; callers may sleep until then but must still call Step
// frequently enough to service transitions and triggers. Fatal execution
// errors stop the program and are returned.
func (e *CommandExecutor) Step() (uint64, error) {
	if e.ended {
		return e.nextWakeupTime, nil
	}

	now := e.clock.Now()

	e.checkAndFireTriggers(now)

	if e.transition.Active() {
		if !e.transition.Step(e.fader.apply, now) {
			// Transition has finished; make sure the next one starts
			// from the true current color.
			e.fader.startColor = e.fader.endColor
		}
	}

	if now >= e.nextWakeupTime {
		e.currentCommandStartTime = now
		if err := e.executeNextCommand(); err != nil {
			return e.nextWakeupTime, err
		}
	}

	return e.nextWakeupTime, nil
}

// compensated converts a duration on the internal clock into wall-clock
// milliseconds.
func (e *CommandExecutor) compensated(internalMs uint64) uint64 {
	if e.compensation == 1 {
		return internalMs
	}
	return uint64(math.Round(float64(internalMs) * e.compensation))
}

// delayExecutionFor suspends command execution for the given internal
// duration, relative to the start of the current command.
func (e *CommandExecutor) delayExecutionFor(internalMs uint64) {
	e.nextWakeupTime = e.currentCommandStartTime + e.compensated(internalMs)
}

// delayExecutionUntil suspends command execution until the internal clock
// reaches the given value.
func (e *CommandExecutor) delayExecutionUntil(internalMs uint64) {
	e.nextWakeupTime = e.lastClockResetTime + e.compensated(internalMs)
}

func (e *CommandExecutor) reportError(err error) {
	if e.errorSink != nil {
		e.errorSink(err)
	}
}

func (e *CommandExecutor) checkAndFireTriggers(now uint64) {
	for i := range e.triggers {
		t := &e.triggers[i]
		if t.CheckAndFire(int64(now)) {
			e.executeTriggerAction(t.Action())
		}
	}
}

func (e *CommandExecutor) executeTriggerAction(action TriggerAction) {
	if e.store == nil {
		return
	}
	if action.JumpTo == store.LocationNowhere {
		e.store.Resume()
		return
	}
	if err := e.store.Seek(action.JumpTo); err != nil {
		e.reportError(fmt.Errorf("trigger jump to %d: %w", action.JumpTo, ErrInvalidAddress))
		return
	}
	e.loopStack.Clear()
	e.nextWakeupTime = e.clock.Now()
}

func (e *CommandExecutor) nextByte() byte {
	return e.store.Next()
}

func (e *CommandExecutor) nextVarint() uint32 {
	return protocol.ReadVarint(e.nextByte)
}

// nextDuration reads a varint frame count and converts it to internal
// milliseconds.
func (e *CommandExecutor) nextDuration() uint64 {
	return protocol.FramesToMillis(e.nextVarint())
}

func (e *CommandExecutor) nextColor() Color {
	return Color{R: e.nextByte(), G: e.nextByte(), B: e.nextByte()}
}

// readChannelValue reads the filtered value of a signal channel for the
// channel-driven color commands. A missing source or an out-of-range
// index substitutes zero and reports a recoverable error.
func (e *CommandExecutor) readChannelValue(channel uint8) uint8 {
	if e.signal == nil {
		e.reportError(ErrNoSignalSource)
		return 0
	}
	if channel >= e.signal.NumChannels() {
		e.reportError(fmt.Errorf("%w: %d", ErrInvalidChannelIndex, channel))
		return 0
	}
	return e.signal.FilteredChannelValue(channel)
}

func (e *CommandExecutor) nextColorFromChannels() Color {
	r := e.nextByte()
	g := e.nextByte()
	b := e.nextByte()
	return Color{
		R: e.readChannelValue(r),
		G: e.readChannelValue(g),
		B: e.readChannelValue(b),
	}
}

// executeNextCommand decodes and executes exactly one instruction.
// Fatal errors stop the executor before being returned.
func (e *CommandExecutor) executeNextCommand() error {
	code := e.nextByte()

	switch code {
	case protocol.CmdEnd:
		e.Stop()

	case protocol.CmdNop:
		// no effect

	case protocol.CmdSleep:
		e.delayExecutionFor(e.nextDuration())

	case protocol.CmdWaitUntil:
		e.delayExecutionUntil(protocol.FramesToMillis(e.nextVarint()))

	case protocol.CmdSetColor:
		e.setColorOfLEDStrip(e.nextColor())

	case protocol.CmdSetGray:
		e.setColorOfLEDStrip(Gray(e.nextByte()))

	case protocol.CmdSetBlack:
		e.setColorOfLEDStrip(Black)

	case protocol.CmdSetWhite:
		e.setColorOfLEDStrip(White)

	case protocol.CmdFadeToColor:
		e.fadeColorOfLEDStrip(e.nextColor())

	case protocol.CmdFadeToGray:
		e.fadeColorOfLEDStrip(Gray(e.nextByte()))

	case protocol.CmdFadeToBlack:
		e.fadeColorOfLEDStrip(Black)

	case protocol.CmdFadeToWhite:
		e.fadeColorOfLEDStrip(White)

	case protocol.CmdLoopBegin:
		return e.handleLoopBegin()

	case protocol.CmdLoopEnd:
		return e.handleLoopEnd()

	case protocol.CmdResetClock:
		e.lastClockResetTime = e.currentCommandStartTime

	case protocol.CmdSetColorFromChannels:
		e.setColorOfLEDStrip(e.nextColorFromChannels())

	case protocol.CmdFadeToColorFromChannels:
		e.fadeColorOfLEDStrip(e.nextColorFromChannels())

	case protocol.CmdJump:
		return e.handleJump()

	case protocol.CmdTriggeredJump:
		return e.handleTriggeredJump()

	case protocol.CmdSetPyro:
		e.handleSetPyro()

	case protocol.CmdSetPyroAll:
		e.handleSetPyroAll()

	default:
		e.Stop()
		return fmt.Errorf("%w: 0x%02x", ErrInvalidCommandCode, code)
	}

	return nil
}

// setColorOfLEDStrip reads the trailing duration argument, applies the
// color immediately and seeds the fader so a following fade starts from
// it. Common code of the SetColor command family.
func (e *CommandExecutor) setColorOfLEDStrip(color Color) {
	e.delayExecutionFor(e.nextDuration())

	if e.strip != nil {
		e.strip.SetColor(color)
	}
	e.fader.startColor = color
}

// fadeColorOfLEDStrip reads the trailing duration and easing arguments and
// starts a transition toward the color, advancing it one step immediately
// so the strip reflects the starting interpolation. Common code of the
// FadeTo command family.
func (e *CommandExecutor) fadeColorOfLEDStrip(color Color) {
	duration := e.nextDuration()
	easing := EasingMode(e.nextByte())
	if !easing.Valid() {
		e.reportError(fmt.Errorf("%w: %d", ErrInvalidEasingMode, easing))
		easing = EasingLinear
	}

	e.delayExecutionFor(duration)

	e.fader.endColor = color
	e.transition.SetEasingMode(easing)
	e.transition.Start(e.compensated(duration), e.currentCommandStartTime)
	if !e.transition.Step(e.fader.apply, e.currentCommandStartTime) {
		e.fader.startColor = e.fader.endColor
	}
}

func (e *CommandExecutor) handleLoopBegin() error {
	iterations := e.nextByte()

	location := e.store.Tell()
	if location == store.LocationNowhere {
		e.Stop()
		return ErrSeekNotSupported
	}
	if !e.loopStack.Begin(location, iterations) {
		e.Stop()
		return ErrLoopStackFull
	}
	return nil
}

func (e *CommandExecutor) handleLoopEnd() error {
	if e.loopStack.Size() == 0 {
		e.Stop()
		return ErrLoopStackUnderflow
	}

	jumpTo := e.loopStack.End()
	if jumpTo != store.LocationNowhere {
		if err := e.store.Seek(jumpTo); err != nil {
			e.Stop()
			return fmt.Errorf("loop restart: %w", ErrInvalidAddress)
		}
	}
	return nil
}

func (e *CommandExecutor) handleJump() error {
	address := e.nextVarint()

	if err := e.store.Seek(store.Location(address)); err != nil {
		e.Stop()
		return fmt.Errorf("%w: %d", ErrInvalidAddress, address)
	}
	// Loop context does not survive a jump; the jump may leave the
	// loop bodies the frames refer to.
	e.loopStack.Clear()
	return nil
}

func (e *CommandExecutor) handleTriggeredJump() error {
	params := e.nextByte()
	address := e.nextVarint()

	channel := params & protocol.TriggerChannelMask
	mode := TriggerEdgeMode((params >> protocol.TriggerEdgeShift) & protocol.TriggerEdgeMask)
	oneShot := params&protocol.TriggerOneShotFlag != 0

	if mode == TriggerOnNone {
		if t := e.findActiveTriggerForChannel(channel); t != nil {
			t.Disable()
		}
		return nil
	}

	slot := e.findTriggerForChannel(channel)
	if slot == nil {
		e.Stop()
		return ErrNoFreeTriggerSlot
	}

	action := ResumeAction
	if address != 0 {
		action = TriggerAction{JumpTo: store.Location(address)}
	}
	if err := slot.Watch(e.signal, channel, mode, oneShot, action); err != nil {
		// The slot stays disarmed; the program keeps running.
		e.reportError(err)
	}
	return nil
}

// findTriggerForChannel returns the slot that will handle the given
// channel: the slot already bound to it if any, else the first free slot,
// else nil.
func (e *CommandExecutor) findTriggerForChannel(channel uint8) *Trigger {
	if t := e.findActiveTriggerForChannel(channel); t != nil {
		return t
	}
	for i := range e.triggers {
		if !e.triggers[i].Active() {
			return &e.triggers[i]
		}
	}
	return nil
}

func (e *CommandExecutor) findActiveTriggerForChannel(channel uint8) *Trigger {
	for i := range e.triggers {
		if e.triggers[i].Active() && e.triggers[i].Channel() == channel {
			return &e.triggers[i]
		}
	}
	return nil
}

func (e *CommandExecutor) handleSetPyro() {
	mask := e.nextByte()
	if e.pyro == nil {
		return
	}
	on := mask&0x80 != 0
	for i := uint8(0); i < 7; i++ {
		if mask&(1<<i) != 0 {
			e.pyro.SetChannel(i, on)
		}
	}
}

func (e *CommandExecutor) handleSetPyroAll() {
	values := e.nextByte()
	if e.pyro == nil {
		return
	}
	e.pyro.SetAll(values & 0x7F)
}
