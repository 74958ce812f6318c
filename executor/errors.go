package executor

import "errors"

// Errors reported during bytecode execution. Invalid opcodes, loop stack
// overflow, unsupported seeks, trigger slot exhaustion and invalid jump
// addresses are fatal: Step returns them and the executor stops. A missing
// signal source or an out-of-range channel index is recoverable: the
// affected channel reads as zero, the error goes to the error sink and
// execution continues.
var (
	ErrInvalidCommandCode  = errors.New("invalid command code")
	ErrLoopStackFull       = errors.New("loop stack full")
	ErrLoopStackUnderflow  = errors.New("loop end without matching loop begin")
	ErrSeekNotSupported    = errors.New("seeking not supported by bytecode store")
	ErrNoFreeTriggerSlot   = errors.New("no free trigger slot")
	ErrInvalidAddress      = errors.New("invalid jump address")
	ErrNoSignalSource      = errors.New("no signal source attached")
	ErrInvalidChannelIndex = errors.New("invalid signal channel index")
	ErrInvalidEasingMode   = errors.New("invalid easing mode")
)

// ErrorSink receives recoverable errors that occur while execution
// continues, plus asynchronous conditions (e.g. trigger misfires) that
// have no caller to report to. Hosts typically drive a status indicator
// from it.
type ErrorSink func(err error)
