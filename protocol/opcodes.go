package protocol

// Command codes of the ledctrl bytecode, wire format revision 2.
// The numbering is a contract with the pyledctrl compiler and must not
// change without a version bump. 0x0F held the JUMP command in revision 1
// and is left unassigned.
const (
	CmdEnd                     byte = 0x00 // End of program
	CmdNop                     byte = 0x01 // No operation
	CmdSleep                   byte = 0x02 // Sleep for a given duration
	CmdWaitUntil               byte = 0x03 // Wait until the internal clock reaches a value
	CmdSetColor                byte = 0x04 // Set color, then wait
	CmdSetGray                 byte = 0x05 // Set grayscale color, then wait
	CmdSetBlack                byte = 0x06 // Set color to black, then wait
	CmdSetWhite                byte = 0x07 // Set color to white, then wait
	CmdFadeToColor             byte = 0x08 // Fade to color
	CmdFadeToGray              byte = 0x09 // Fade to grayscale color
	CmdFadeToBlack             byte = 0x0A // Fade to black
	CmdFadeToWhite             byte = 0x0B // Fade to white
	CmdLoopBegin               byte = 0x0C // Mark the beginning of a loop
	CmdLoopEnd                 byte = 0x0D // Mark the end of a loop
	CmdResetClock              byte = 0x0E // Reset the internal clock
	CmdSetColorFromChannels    byte = 0x10 // Set color from signal channels
	CmdFadeToColorFromChannels byte = 0x11 // Fade to color from signal channels
	CmdJump                    byte = 0x12 // Jump to address
	CmdTriggeredJump           byte = 0x13 // Arm a trigger that jumps on a signal edge
	CmdSetPyro                 byte = 0x14 // Set selected pyro channels on or off
	CmdSetPyroAll              byte = 0x15 // Set all pyro channel outputs explicitly

	NumCommands = 0x16
)

// Layout of the TriggeredJump parameter byte.
const (
	TriggerChannelMask = 0x1F // bits 0-4: channel index
	TriggerEdgeShift   = 5    // bits 5-6: edge mode
	TriggerEdgeMask    = 0x03
	TriggerOneShotFlag = 0x80 // bit 7: one-shot mode
)

// Edge modes encoded in the TriggeredJump parameter byte. A mode of
// "none" disarms the trigger slot bound to the channel.
const (
	TriggerEdgeNone    = 0
	TriggerEdgeRising  = 1
	TriggerEdgeFalling = 2
	TriggerEdgeChange  = 3
)
