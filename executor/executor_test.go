package executor

import (
	"errors"
	"testing"

	"ledctrl/protocol"
	"ledctrl/store"
)

// fakeStrip records every color applied to it.
type fakeStrip struct {
	history []Color
}

func (s *fakeStrip) SetColor(color Color) {
	s.history = append(s.history, color)
}

func (s *fakeStrip) current() Color {
	if len(s.history) == 0 {
		return Black
	}
	return s.history[len(s.history)-1]
}

// fakeSource is a signal source with directly settable channel values.
type fakeSource struct {
	values [8]uint8
}

func newFakeSource() *fakeSource {
	return &fakeSource{}
}

func (s *fakeSource) NumChannels() uint8 {
	return uint8(len(s.values))
}

func (s *fakeSource) ChannelValue(channel uint8) uint8 {
	return s.values[channel]
}

func (s *fakeSource) FilteredChannelValue(channel uint8) uint8 {
	return s.values[channel]
}

func (s *fakeSource) Active() bool {
	return true
}

// fakePyro records the pyro outputs.
type fakePyro struct {
	channels [7]bool
	all      uint8
	allSet   bool
}

func (p *fakePyro) SetChannel(index uint8, on bool) {
	p.channels[index] = on
}

func (p *fakePyro) SetAll(values uint8) {
	p.all = values
	p.allSet = true
}

func newTestExecutor(program []byte) (*CommandExecutor, *fakeStrip, *SimulatedClock) {
	strip := &fakeStrip{}
	clock := NewSimulatedClock()
	e := NewCommandExecutor(strip)
	e.SetClock(clock)
	e.SetBytecodeStore(store.NewConstantStore(program))
	return e, strip, clock
}

// stepAt advances the clock to the given time and calls Step until the
// executor has nothing left to do at that instant.
func stepAt(t *testing.T, e *CommandExecutor, clock *SimulatedClock, ms uint64) {
	t.Helper()
	clock.Set(ms)
	for i := 0; i < 1000; i++ {
		wakeup, err := e.Step()
		if err != nil {
			t.Fatalf("Step at %d failed: %v", ms, err)
		}
		if e.Ended() || wakeup > ms {
			return
		}
	}
	t.Fatalf("Executor did not become idle at %d", ms)
}

func TestSetColorSchedule(t *testing.T) {
	program := []byte{
		protocol.CmdSetGray, 255, 0x32, // gray 255 for 1 s (50 frames)
		protocol.CmdSetGray, 0, 0x32, // gray 0 for 1 s
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	stepAt(t, e, clock, 0)
	if strip.current() != Gray(255) {
		t.Errorf("At 0 ms: expected gray 255, got %v", strip.current())
	}

	stepAt(t, e, clock, 500)
	if strip.current() != Gray(255) {
		t.Errorf("At 500 ms: expected the color to hold, got %v", strip.current())
	}

	stepAt(t, e, clock, 1000)
	if strip.current() != Gray(0) {
		t.Errorf("At 1000 ms: expected gray 0, got %v", strip.current())
	}
	if e.Ended() {
		t.Error("Expected the program to still be running at 1000 ms")
	}

	stepAt(t, e, clock, 2000)
	if !e.Ended() {
		t.Error("Expected the program to end at 2000 ms")
	}
}

func TestFadeToColorInterpolates(t *testing.T) {
	program := []byte{
		protocol.CmdFadeToWhite, 0x32, byte(EasingLinear), // fade over 1 s
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	stepAt(t, e, clock, 0)
	if strip.current() != Black {
		t.Errorf("At 0 ms: expected the fade to start from black, got %v", strip.current())
	}

	stepAt(t, e, clock, 500)
	if strip.current() != Gray(128) {
		t.Errorf("At 500 ms: expected gray 128, got %v", strip.current())
	}

	stepAt(t, e, clock, 1000)
	if strip.current() != White {
		t.Errorf("At 1000 ms: expected white, got %v", strip.current())
	}
	if !e.Ended() {
		t.Error("Expected the program to end once the fade finished")
	}
}

func TestConsecutiveFadesStartFromCurrentColor(t *testing.T) {
	program := []byte{
		protocol.CmdSetColor, 200, 0, 0, 0x00, // red, no delay
		protocol.CmdFadeToColor, 0, 0, 200, 0x32, byte(EasingLinear), // to blue over 1 s
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	stepAt(t, e, clock, 0)
	stepAt(t, e, clock, 500)
	expected := Color{R: 100, B: 100}
	if strip.current() != expected {
		t.Errorf("At 500 ms: expected %v, got %v", expected, strip.current())
	}
}

func TestSleepHoldsColor(t *testing.T) {
	program := []byte{
		protocol.CmdSetWhite, 0x00, // white, no delay
		protocol.CmdSleep, 0x64, // 100 frames = 2 s
		protocol.CmdSetBlack, 0x00,
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	stepAt(t, e, clock, 0)
	stepAt(t, e, clock, 1999)
	if strip.current() != White {
		t.Errorf("At 1999 ms: expected white, got %v", strip.current())
	}

	stepAt(t, e, clock, 2000)
	if strip.current() != Black {
		t.Errorf("At 2000 ms: expected black, got %v", strip.current())
	}
}

func TestWaitUntilUsesResetClock(t *testing.T) {
	program := []byte{
		protocol.CmdSleep, 0x32, // 1 s
		protocol.CmdResetClock,
		protocol.CmdWaitUntil, 0x32, // 1 s on the rebased internal clock
		protocol.CmdSetWhite, 0x00,
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	stepAt(t, e, clock, 0)
	stepAt(t, e, clock, 1000) // sleep ends, clock resets
	stepAt(t, e, clock, 1999)
	if strip.current() == White {
		// the wait must end at 1000 (reset) + 1000 ms
		t.Error("At 1999 ms: expected the wait to still hold")
	}

	stepAt(t, e, clock, 2000)
	if strip.current() != White {
		t.Errorf("At 2000 ms: expected white, got %v", strip.current())
	}
}

func TestLoopRepeatsBody(t *testing.T) {
	program := []byte{
		protocol.CmdLoopBegin, 3,
		protocol.CmdSetBlack, 0x00,
		protocol.CmdLoopEnd,
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	stepAt(t, e, clock, 0)
	if !e.Ended() {
		t.Fatal("Expected the program to run to completion")
	}
	if len(strip.history) != 3 {
		t.Errorf("Expected the loop body to run 3 times, got %d", len(strip.history))
	}
}

func TestNestedLoops(t *testing.T) {
	program := []byte{
		protocol.CmdLoopBegin, 2,
		protocol.CmdLoopBegin, 3,
		protocol.CmdSetBlack, 0x00,
		protocol.CmdLoopEnd,
		protocol.CmdLoopEnd,
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	stepAt(t, e, clock, 0)
	if !e.Ended() {
		t.Fatal("Expected the program to run to completion")
	}
	if len(strip.history) != 6 {
		t.Errorf("Expected the body to run 6 times, got %d", len(strip.history))
	}
}

func TestLoopNestingLimit(t *testing.T) {
	program := make([]byte, 0, (MaxLoopDepth+1)*2)
	for i := 0; i <= MaxLoopDepth; i++ {
		program = append(program, protocol.CmdLoopBegin, 0)
	}
	e, _, clock := newTestExecutor(program)

	clock.Set(0)
	var err error
	for i := 0; i <= MaxLoopDepth; i++ {
		if _, err = e.Step(); err != nil {
			break
		}
	}
	if !errors.Is(err, ErrLoopStackFull) {
		t.Errorf("Expected ErrLoopStackFull, got %v", err)
	}
	if !e.Ended() {
		t.Error("Expected the executor to stop on a loop overflow")
	}
}

func TestJumpClearsLoopContext(t *testing.T) {
	program := []byte{
		protocol.CmdLoopBegin, 0, // infinite loop
		protocol.CmdJump, 4, // jump to the stray end marker
		protocol.CmdLoopEnd, // address 4
	}
	e, _, clock := newTestExecutor(program)

	clock.Set(0)
	var err error
	for i := 0; i < 3; i++ {
		if _, err = e.Step(); err != nil {
			break
		}
	}
	if !errors.Is(err, ErrLoopStackUnderflow) {
		t.Errorf("Expected ErrLoopStackUnderflow after the jump, got %v", err)
	}
	if !e.Ended() {
		t.Error("Expected the executor to stop")
	}
}

func TestInvalidCommandStopsProgram(t *testing.T) {
	e, _, clock := newTestExecutor([]byte{0xFF})

	clock.Set(0)
	_, err := e.Step()
	if !errors.Is(err, ErrInvalidCommandCode) {
		t.Errorf("Expected ErrInvalidCommandCode, got %v", err)
	}
	if !e.Ended() {
		t.Error("Expected the executor to stop on an invalid command")
	}
}

func TestJumpToInvalidAddressStopsProgram(t *testing.T) {
	e, _, clock := newTestExecutor([]byte{protocol.CmdJump, 0x7F})

	clock.Set(0)
	_, err := e.Step()
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Expected ErrInvalidAddress, got %v", err)
	}
	if !e.Ended() {
		t.Error("Expected the executor to stop")
	}
}

func TestClockSkewCompensationStretchesDelays(t *testing.T) {
	program := []byte{
		protocol.CmdSleep, 0x32, // 1 s on the internal clock
		protocol.CmdSetWhite, 0x00,
		protocol.CmdEnd,
	}
	strip := &fakeStrip{}
	clock := NewSimulatedClock()
	e := NewCommandExecutor(strip)
	e.SetClock(clock)
	e.SetClockSkewCompensationFactor(2)
	e.SetBytecodeStore(store.NewConstantStore(program))

	stepAt(t, e, clock, 0)
	stepAt(t, e, clock, 1999)
	if strip.current() == White {
		t.Error("At 1999 ms: expected the stretched sleep to still hold")
	}

	stepAt(t, e, clock, 2000)
	if strip.current() != White {
		t.Errorf("At 2000 ms: expected white, got %v", strip.current())
	}

	// the internal clock reports internal milliseconds
	if internal := e.Clock(); internal != 1000 {
		t.Errorf("Expected internal clock 1000, got %d", internal)
	}
}

func TestChannelColorsWithoutSourceSubstituteZero(t *testing.T) {
	program := []byte{
		protocol.CmdSetColor, 10, 20, 30, 0x00,
		protocol.CmdSetColorFromChannels, 0, 1, 2, 0x00,
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	var reported []error
	e.SetErrorSink(func(err error) { reported = append(reported, err) })

	stepAt(t, e, clock, 0)
	if strip.current() != Black {
		t.Errorf("Expected black without a signal source, got %v", strip.current())
	}
	if len(reported) != 3 {
		t.Errorf("Expected 3 recoverable errors, got %d", len(reported))
	}
	for _, err := range reported {
		if !errors.Is(err, ErrNoSignalSource) {
			t.Errorf("Expected ErrNoSignalSource, got %v", err)
		}
	}
	if !e.Ended() {
		t.Error("Expected the program to keep running and end normally")
	}
}

func TestChannelColorsReadFilteredValues(t *testing.T) {
	program := []byte{
		protocol.CmdSetColorFromChannels, 0, 1, 2, 0x00,
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	source := newFakeSource()
	source.values[0] = 10
	source.values[1] = 20
	source.values[2] = 30
	e.SetSignalSource(source)

	stepAt(t, e, clock, 0)
	expected := Color{R: 10, G: 20, B: 30}
	if strip.current() != expected {
		t.Errorf("Expected %v, got %v", expected, strip.current())
	}
}

func TestInvalidEasingFallsBackToLinear(t *testing.T) {
	program := []byte{
		protocol.CmdFadeToWhite, 0x32, 0xEE, // nonsense easing mode
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	var reported []error
	e.SetErrorSink(func(err error) { reported = append(reported, err) })

	stepAt(t, e, clock, 0)
	stepAt(t, e, clock, 500)
	if strip.current() != Gray(128) {
		t.Errorf("Expected a linear fade, got %v at 500 ms", strip.current())
	}
	if len(reported) != 1 || !errors.Is(reported[0], ErrInvalidEasingMode) {
		t.Errorf("Expected a single ErrInvalidEasingMode, got %v", reported)
	}
}

func TestTriggeredJumpFiresOnRisingEdge(t *testing.T) {
	params := byte(protocol.TriggerEdgeRising<<protocol.TriggerEdgeShift) | protocol.TriggerOneShotFlag
	program := []byte{
		protocol.CmdTriggeredJump, params, 6, // on channel 0, jump to 6
		protocol.CmdSleep, 0xFF, 0x01, // 255 frames
		protocol.CmdSetWhite, 0x00, // address 6
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)
	source := newFakeSource()
	e.SetSignalSource(source)

	stepAt(t, e, clock, 0)
	stepAt(t, e, clock, 100)
	if strip.current() == White {
		t.Fatal("Expected no jump before the edge")
	}

	source.values[0] = 255
	stepAt(t, e, clock, 200)
	if strip.current() != White {
		t.Errorf("Expected the trigger to jump to the white command, got %v", strip.current())
	}

	stepAt(t, e, clock, 300)
	if !e.Ended() {
		t.Error("Expected the program to end after the jump target ran")
	}
}

func TestTriggeredJumpExhaustsSlots(t *testing.T) {
	params := byte(protocol.TriggerEdgeRising << protocol.TriggerEdgeShift)
	program := make([]byte, 0, (MaxTriggerCount+1)*3)
	for i := 0; i <= MaxTriggerCount; i++ {
		// a different channel per command so no slot is reused
		program = append(program, protocol.CmdTriggeredJump, params|byte(i), 1)
	}
	e, _, clock := newTestExecutor(program)
	e.SetSignalSource(newFakeSource())

	clock.Set(0)
	var err error
	for i := 0; i <= MaxTriggerCount; i++ {
		if _, err = e.Step(); err != nil {
			break
		}
	}
	if !errors.Is(err, ErrNoFreeTriggerSlot) {
		t.Errorf("Expected ErrNoFreeTriggerSlot, got %v", err)
	}
	if !e.Ended() {
		t.Error("Expected the executor to stop")
	}
}

func TestTriggeredJumpResumeAction(t *testing.T) {
	params := byte(protocol.TriggerEdgeRising << protocol.TriggerEdgeShift)
	program := []byte{
		protocol.CmdTriggeredJump, params, 0, // address 0 resumes the store
		protocol.CmdSleep, 0xFF, 0x01,
		protocol.CmdEnd,
	}
	e, _, clock := newTestExecutor(program)
	source := newFakeSource()
	e.SetSignalSource(source)

	stepAt(t, e, clock, 0)

	e.BytecodeStore().Suspend()
	source.values[0] = 255
	stepAt(t, e, clock, 100)
	if e.BytecodeStore().Suspended() {
		t.Error("Expected the trigger to resume the suspended store")
	}
}

func TestTriggeredJumpToInvalidAddressKeepsRunning(t *testing.T) {
	params := byte(protocol.TriggerEdgeRising << protocol.TriggerEdgeShift)
	program := []byte{
		protocol.CmdTriggeredJump, params, 0x7F, // far past the program end
		protocol.CmdSleep, 0xFF, 0x01,
		protocol.CmdEnd,
	}
	e, _, clock := newTestExecutor(program)
	source := newFakeSource()
	e.SetSignalSource(source)

	var reported []error
	e.SetErrorSink(func(err error) { reported = append(reported, err) })

	stepAt(t, e, clock, 0)
	source.values[0] = 255
	stepAt(t, e, clock, 100)

	if len(reported) != 1 || !errors.Is(reported[0], ErrInvalidAddress) {
		t.Errorf("Expected one ErrInvalidAddress report, got %v", reported)
	}
	if e.Ended() {
		t.Error("Expected the program to keep running after the failed jump")
	}
}

func TestRewindRestartsProgram(t *testing.T) {
	program := []byte{
		protocol.CmdSetWhite, 0x32,
		protocol.CmdEnd,
	}
	e, strip, clock := newTestExecutor(program)

	stepAt(t, e, clock, 0)
	stepAt(t, e, clock, 1000)
	if !e.Ended() {
		t.Fatal("Expected the program to end")
	}

	clock.Set(5000)
	e.Rewind()
	if e.Ended() {
		t.Fatal("Expected the executor to run again after a rewind")
	}
	if e.Clock() != 0 {
		t.Errorf("Expected the internal clock to rebase on rewind, got %d", e.Clock())
	}

	stepAt(t, e, clock, 5000)
	if strip.current() != White {
		t.Errorf("Expected the program to run again, got %v", strip.current())
	}
}

func TestPyroCommands(t *testing.T) {
	program := []byte{
		protocol.CmdSetPyro, 0x83, // enable channels 0 and 1
		protocol.CmdSetPyroAll, 0x85, // bit 7 is reserved and masked off
		protocol.CmdEnd,
	}
	e, _, clock := newTestExecutor(program)
	pyro := &fakePyro{}
	e.SetPyroChannels(pyro)

	stepAt(t, e, clock, 0)

	if !pyro.channels[0] || !pyro.channels[1] {
		t.Error("Expected channels 0 and 1 to be switched on")
	}
	if !pyro.allSet || pyro.all != 0x05 {
		t.Errorf("Expected SetAll with 0x05, got 0x%02X", pyro.all)
	}
}

func TestEmptyProgramEndsImmediately(t *testing.T) {
	e, _, _ := newTestExecutor(nil)
	if !e.Ended() {
		t.Error("Expected an empty program to be ended from the start")
	}
}

func TestDeterministicReplay(t *testing.T) {
	program := []byte{
		protocol.CmdSetColor, 10, 20, 30, 0x19,
		protocol.CmdFadeToWhite, 0x32, byte(EasingInOutSine),
		protocol.CmdEnd,
	}

	run := func() []Color {
		e, strip, clock := newTestExecutor(program)
		for ms := uint64(0); ms <= 2000; ms += 20 {
			stepAt(t, e, clock, ms)
			if e.Ended() {
				break
			}
		}
		return strip.history
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("Expected identical histories, got %d and %d entries", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("History diverged at %d: %v vs %v", i, first[i], second[i])
		}
	}
}
