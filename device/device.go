// Package device binds a command executor and its bytecode store to the
// serial control protocol: it implements the operations the protocol
// parser invokes (upload, rewind, suspend/resume, terminate, ad hoc
// execution).
package device

import (
	"errors"
	"time"

	"ledctrl/executor"
	"ledctrl/store"
)

var (
	ErrProgramTooLarge  = errors.New("program exceeds store capacity")
	ErrExecutionTooLong = errors.New("ad hoc program ran past its execution limit")
)

const (
	// executeTimeLimitMillis is the longest an ad hoc snippet may play.
	// Execute blocks the control link for its whole run, so a runaway
	// snippet is cut off instead of wedging the device until reset.
	executeTimeLimitMillis = 30_000

	// executeBurstLimit is the most instructions an ad hoc snippet may
	// run back to back without the clock advancing, which cuts off loops
	// whose body takes no time.
	executeBurstLimit = 10_000
)

// committer is implemented by stores that persist a header after an
// upload (the non-volatile store).
type committer interface {
	Commit()
}

// clearer is implemented by writable stores that can drop their program,
// so an upload truncates instead of overwriting in place.
type clearer interface {
	Clear()
}

// Device is the glue between the protocol layer and the interpreter.
type Device struct {
	exec  *executor.CommandExecutor
	strip executor.LEDStrip
}

// New creates a device around an executor. The executor must already have
// its bytecode store attached.
func New(exec *executor.CommandExecutor, strip executor.LEDStrip) *Device {
	return &Device{exec: exec, strip: strip}
}

// Executor returns the wrapped executor.
func (d *Device) Executor() *executor.CommandExecutor {
	return d.exec
}

func (d *Device) Capacity() int {
	if s := d.exec.BytecodeStore(); s != nil {
		return s.Capacity()
	}
	return 0
}

func (d *Device) Rewind() {
	d.exec.Rewind()
}

func (d *Device) Suspend() {
	if s := d.exec.BytecodeStore(); s != nil {
		s.Suspend()
	}
}

func (d *Device) Resume() {
	if s := d.exec.BytecodeStore(); s != nil {
		s.Resume()
	}
}

func (d *Device) Terminate() {
	d.exec.Stop()
}

// Upload replaces the stored program with the given bytecode and restarts
// execution from its beginning. The store is suspended for the duration
// of the write so a concurrent Step sees only no-ops.
func (d *Device) Upload(data []byte) error {
	s := d.exec.BytecodeStore()
	if s == nil {
		return errors.New("no bytecode store attached")
	}

	s.Suspend()
	defer s.Resume()

	if c, ok := s.(clearer); ok {
		c.Clear()
	} else {
		s.Rewind()
	}
	for _, b := range data {
		if !s.Write(b) {
			return ErrProgramTooLarge
		}
	}
	if c, ok := s.(committer); ok {
		c.Commit()
	}

	d.exec.Rewind()
	return nil
}

// Execute runs ad hoc bytecode to completion on a scratch executor that
// shares the LED strip, without touching the stored program. Blocks until
// the snippet ends or hits the execution limit; intended for short
// command sequences sent over the control link.
func (d *Device) Execute(data []byte) error {
	scratch := executor.NewCommandExecutor(d.strip)
	scratch.SetSignalSource(d.exec.SignalSource())
	scratch.SetClockSkewCompensationFactor(d.exec.ClockSkewCompensationFactor())
	scratch.SetBytecodeStore(store.NewConstantStore(data))

	start := scratch.Now()
	burst := 0
	for !scratch.Ended() {
		wakeup, err := scratch.Step()
		if err != nil {
			return err
		}
		if scratch.Ended() {
			break
		}

		now := scratch.Now()
		if now-start >= executeTimeLimitMillis {
			scratch.Stop()
			return ErrExecutionTooLong
		}
		if wakeup > now {
			burst = 0
			// A millisecond of polling granularity is finer than the
			// 20 ms frame unit of the bytecode.
			time.Sleep(time.Millisecond)
			continue
		}
		burst++
		if burst >= executeBurstLimit {
			scratch.Stop()
			return ErrExecutionTooLong
		}
	}
	return nil
}
