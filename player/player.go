// Package player renders a light show program offline: it runs the
// bytecode against a simulated clock and reports the color of the strip
// at a fixed number of frames per second.
package player

import (
	"errors"

	"ledctrl/executor"
	"ledctrl/store"
	"ledctrl/strip"
)

// Frame is the color of the strip at a point in time.
type Frame struct {
	Timestamp uint64 // milliseconds from program start
	Color     executor.Color
}

// Player plays a light show program against a simulated clock.
type Player struct {
	exec  *executor.CommandExecutor
	clock *executor.SimulatedClock
	strip *strip.TestStrip
}

// New creates a player for the given bytecode program.
func New(program []byte) *Player {
	p := &Player{
		clock: executor.NewSimulatedClock(),
		strip: strip.NewTestStrip(),
	}
	p.exec = executor.NewCommandExecutor(p.strip)
	p.exec.SetClock(p.clock)
	p.exec.SetBytecodeStore(store.NewConstantStore(program))
	return p
}

// SetSignalSource attaches a signal source so programs with triggers or
// channel-driven colors can be previewed.
func (p *Player) SetSignalSource(source executor.SignalSource) {
	p.exec.SetSignalSource(source)
}

// Executor exposes the underlying executor for fine-grained control.
func (p *Player) Executor() *executor.CommandExecutor {
	return p.exec
}

// Ended returns whether the program has ended.
func (p *Player) Ended() bool {
	return p.exec.Ended()
}

// maxStepsPerInstant caps how many instructions are serviced at a single
// sampled instant. A loop whose body takes no time reschedules at the
// same instant forever; the cap keeps such programs progressing frame by
// frame so the playback bounds still engage.
const maxStepsPerInstant = 1000

// stepAt advances the simulated clock to the given time and services the
// executor until it has nothing left to do at that instant.
func (p *Player) stepAt(ms uint64) error {
	p.clock.Set(ms)
	for i := 0; i < maxStepsPerInstant; i++ {
		wakeup, err := p.exec.Step()
		if err != nil {
			return err
		}
		if p.exec.Ended() || wakeup > ms {
			break
		}
	}
	return nil
}

// Iterate runs the program and returns one frame per 1/fps seconds until
// the program ends or maxFrames frames have been produced. maxFrames
// bounds playback of infinite programs; zero means no bound.
func (p *Player) Iterate(fps int, maxFrames int) ([]Frame, error) {
	if fps <= 0 {
		return nil, errors.New("fps must be positive")
	}

	var frames []Frame
	for i := 0; maxFrames == 0 || i < maxFrames; i++ {
		t := uint64(i) * 1000 / uint64(fps)
		if err := p.stepAt(t); err != nil {
			return frames, err
		}
		frames = append(frames, Frame{Timestamp: t, Color: p.strip.Current()})
		if p.exec.Ended() {
			break
		}
	}
	return frames, nil
}

// Events runs the program and returns only the instants where the strip
// color changed, including the initial color at time zero.
func (p *Player) Events(maxMillis uint64) ([]Frame, error) {
	var events []Frame
	last := executor.Black
	seen := false

	for t := uint64(0); t <= maxMillis; t++ {
		if err := p.stepAt(t); err != nil {
			return events, err
		}
		current := p.strip.Current()
		if !seen || current != last {
			events = append(events, Frame{Timestamp: t, Color: current})
			last = current
			seen = true
		}
		if p.exec.Ended() {
			break
		}
	}
	return events, nil
}
