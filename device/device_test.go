package device

import (
	"errors"
	"testing"

	"ledctrl/executor"
	"ledctrl/protocol"
	"ledctrl/store"
	"ledctrl/strip"
)

func newTestDevice(capacity int) (*Device, *strip.TestStrip, *executor.SimulatedClock) {
	st := strip.NewTestStrip()
	clock := executor.NewSimulatedClock()
	exec := executor.NewCommandExecutor(st)
	exec.SetClock(clock)
	exec.SetBytecodeStore(store.NewRAMStore(capacity))
	return New(exec, st), st, clock
}

func TestDeviceCapacity(t *testing.T) {
	dev, _, _ := newTestDevice(128)
	if dev.Capacity() != 128 {
		t.Errorf("Expected capacity 128, got %d", dev.Capacity())
	}
}

func TestDeviceUploadRunsProgram(t *testing.T) {
	dev, st, _ := newTestDevice(128)

	program := []byte{
		protocol.CmdSetWhite, 0x32,
		protocol.CmdEnd,
	}
	if err := dev.Upload(program); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	exec := dev.Executor()
	if exec.Ended() {
		t.Fatal("Expected the uploaded program to be runnable")
	}

	if _, err := exec.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if st.Current() != executor.White {
		t.Errorf("Expected white after the first command, got %v", st.Current())
	}
}

func TestDeviceUploadReplacesProgram(t *testing.T) {
	dev, _, _ := newTestDevice(128)

	if err := dev.Upload([]byte{protocol.CmdSetWhite, 0x32, protocol.CmdEnd}); err != nil {
		t.Fatalf("First upload failed: %v", err)
	}
	if err := dev.Upload([]byte{protocol.CmdEnd}); err != nil {
		t.Fatalf("Second upload failed: %v", err)
	}

	// the replacement program ends immediately
	if _, err := dev.Executor().Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !dev.Executor().Ended() {
		t.Error("Expected the replacement program to end at once")
	}
}

func TestDeviceUploadTooLarge(t *testing.T) {
	dev, _, _ := newTestDevice(2)

	err := dev.Upload([]byte{protocol.CmdSetWhite, 0x32, protocol.CmdEnd})
	if !errors.Is(err, ErrProgramTooLarge) {
		t.Errorf("Expected ErrProgramTooLarge, got %v", err)
	}
}

func TestDeviceUploadCommitsNVStore(t *testing.T) {
	mem := store.NewRAMMemory(64)
	st := strip.NewTestStrip()
	exec := executor.NewCommandExecutor(st)
	exec.SetClock(executor.NewSimulatedClock())
	exec.SetBytecodeStore(store.NewNVStore(mem, 0))
	dev := New(exec, st)

	program := []byte{protocol.CmdSetWhite, 0x32, protocol.CmdEnd}
	if err := dev.Upload(program); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// a store recreated over the same memory must see the program
	reloaded := store.NewNVStore(mem, 0)
	if reloaded.Empty() {
		t.Error("Expected the upload to be committed to non-volatile memory")
	}
}

func TestDeviceSuspendResume(t *testing.T) {
	dev, _, _ := newTestDevice(128)

	dev.Suspend()
	if !dev.Executor().BytecodeStore().Suspended() {
		t.Error("Expected the store to be suspended")
	}
	dev.Resume()
	if dev.Executor().BytecodeStore().Suspended() {
		t.Error("Expected the store to be resumed")
	}
}

func TestDeviceTerminate(t *testing.T) {
	dev, _, _ := newTestDevice(128)

	if err := dev.Upload([]byte{protocol.CmdSetWhite, 0x32, protocol.CmdEnd}); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	dev.Terminate()
	if !dev.Executor().Ended() {
		t.Error("Expected Terminate to stop the program")
	}
}

func TestDeviceExecuteAdHoc(t *testing.T) {
	dev, st, _ := newTestDevice(128)

	snippet := []byte{protocol.CmdSetWhite, 0x00, protocol.CmdEnd}
	if err := dev.Execute(snippet); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if st.Current() != executor.White {
		t.Errorf("Expected white after the snippet, got %v", st.Current())
	}

	// the stored program is untouched
	if dev.Capacity() != 128 {
		t.Errorf("Expected the stored program untouched, capacity %d", dev.Capacity())
	}
}

func TestDeviceExecuteBoundsInfiniteLoops(t *testing.T) {
	dev, _, _ := newTestDevice(128)

	// a loop whose body takes no time never waits and never ends
	snippet := []byte{
		protocol.CmdLoopBegin, 0, // forever
		protocol.CmdNop,
		protocol.CmdLoopEnd,
	}
	if err := dev.Execute(snippet); !errors.Is(err, ErrExecutionTooLong) {
		t.Errorf("Expected ErrExecutionTooLong, got %v", err)
	}
}

func TestDeviceExecuteReturnsErrors(t *testing.T) {
	dev, _, _ := newTestDevice(128)

	if err := dev.Execute([]byte{0xFF}); err == nil {
		t.Error("Expected an invalid snippet to surface an error")
	}
}
