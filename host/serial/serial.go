// Package serial is the host side of the control link: a byte stream to
// a light controller that can be a real device or a scripted port in
// tests.
package serial

import (
	"io"
)

// Port is a byte stream to a light controller.
type Port interface {
	io.ReadWriteCloser

	// Flush discards bytes buffered on the link so a fresh exchange does
	// not read stale response data.
	Flush() error
}

// Config describes how to reach a controller.
type Config struct {
	// Device is the serial device path, "/dev/ttyACM0" on Linux or
	// "COM3" on Windows.
	Device string

	// Baud is the line rate in bits per second.
	Baud int

	// ReadTimeout is the read timeout in milliseconds. Zero blocks.
	ReadTimeout int
}

// DefaultConfig returns the settings a controller running the stock
// firmware listens with.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
