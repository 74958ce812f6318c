package protocol

// Firmware version reported by the serial control protocol. The major
// version tracks the bytecode wire format revision.
const (
	VersionMajor = 2
	VersionMinor = 0
	VersionPatch = 0
)
