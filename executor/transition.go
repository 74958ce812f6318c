package executor

// Transition tracks the time-related state of an in-progress color fade:
// start time, duration and easing mode. The color endpoints live in the
// fader the executor passes to Step.
type Transition struct {
	active   bool
	start    uint64
	duration uint64
	easing   EasingMode
}

// Active returns whether a transition is in progress.
func (t *Transition) Active() bool {
	return t.active
}

// EasingMode returns the current easing mode.
func (t *Transition) EasingMode() EasingMode {
	return t.easing
}

// SetEasingMode selects the easing curve for subsequent steps.
func (t *Transition) SetEasingMode(mode EasingMode) {
	t.easing = mode
}

// Start activates the transition with the given duration and absolute
// start time. Both are in the same time base the caller drives Step with;
// the executor passes compensated wall-clock milliseconds so a fade
// requested in internal-clock units completes at the right wall time.
func (t *Transition) Start(duration, startTime uint64) {
	t.start = startTime
	t.duration = duration
	t.active = true
}

// ProgressPreEasing returns the linear progress of the transition at the
// given time: 0 before the start, ramping to 1 at start+duration and
// clamped there afterwards.
func (t *Transition) ProgressPreEasing(now uint64) float64 {
	if now < t.start {
		return 0
	}
	if t.duration == 0 || now-t.start >= t.duration {
		return 1
	}
	return float64(now-t.start) / float64(t.duration)
}

// ProgressPostEasing returns the eased progress at the given time. Some
// easing modes produce values outside [0, 1] mid-transition.
func (t *Transition) ProgressPostEasing(now uint64) float64 {
	return t.easing.Ease(t.ProgressPreEasing(now))
}

// Step advances the transition to the given time, invoking the handler
// with the eased progress. Returns whether further steps are needed; the
// transition deactivates once the pre-easing progress reaches 1.
func (t *Transition) Step(handler func(progress float64), now uint64) bool {
	progress := t.ProgressPreEasing(now)
	handler(t.easing.Ease(progress))
	t.active = progress < 1
	return t.active
}
