// Package controller implements the PC side of the ledctrl serial control
// protocol: querying the device, driving execution and uploading compiled
// programs.
package controller

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"ledctrl/host/serial"
)

// Controller talks to a ledctrl device over a serial port.
type Controller struct {
	port   serial.Port
	reader *bufio.Reader

	// Progress receives the byte counts the device acknowledges during
	// an upload. May be nil.
	Progress func(bytesUploaded int)
}

// Connect opens the serial port and returns a controller.
func Connect(device string, baud int) (*Controller, error) {
	cfg := serial.DefaultConfig(device)
	if baud != 0 {
		cfg.Baud = baud
	}

	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return NewWithPort(port), nil
}

// NewWithPort creates a controller over an already opened port. Used by
// tests with a mock port.
func NewWithPort(port serial.Port) *Controller {
	return &Controller{port: port, reader: bufio.NewReader(port)}
}

// Close closes the underlying serial port.
func (c *Controller) Close() error {
	return c.port.Close()
}

// readResponse reads lines until a terminal "+msg" or "-E<code>" response
// arrives. ":<n>" progress lines are forwarded to the Progress callback.
func (c *Controller) readResponse() (string, error) {
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		switch line[0] {
		case '+':
			return line[1:], nil
		case '-':
			return "", fmt.Errorf("device returned error %s", strings.TrimPrefix(line[1:], "E"))
		case ':':
			if c.Progress != nil {
				if n, err := strconv.Atoi(line[1:]); err == nil {
					c.Progress(n)
				}
			}
		default:
			// unsolicited output (e.g. boot banner); skip
		}
	}
}

// command sends a one-line text command and waits for the response.
func (c *Controller) command(line string) (string, error) {
	if _, err := c.port.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}
	return c.readResponse()
}

// Capacity queries the maximum program size the device accepts.
func (c *Controller) Capacity() (int, error) {
	resp, err := c.command("c")
	if err != nil {
		return 0, err
	}
	capacity, err := strconv.Atoi(resp)
	if err != nil {
		return 0, fmt.Errorf("unexpected capacity response %q", resp)
	}
	return capacity, nil
}

// Version queries the firmware version string.
func (c *Controller) Version() (string, error) {
	return c.command("v")
}

// Rewind restarts the stored program.
func (c *Controller) Rewind() error {
	_, err := c.command("r")
	return err
}

// Suspend pauses execution of the stored program.
func (c *Controller) Suspend() error {
	_, err := c.command("s")
	return err
}

// Resume resumes execution after a suspend.
func (c *Controller) Resume() error {
	_, err := c.command("x")
	return err
}

// Terminate stops execution of the stored program.
func (c *Controller) Terminate() error {
	_, err := c.command("t")
	return err
}

// Upload sends a compiled program to the device using the binary upload
// command, after checking it fits the device's capacity.
func (c *Controller) Upload(bytecode []byte) error {
	capacity, err := c.Capacity()
	if err != nil {
		return err
	}
	if len(bytecode) > capacity {
		return fmt.Errorf("program is %d bytes but device capacity is %d", len(bytecode), capacity)
	}

	frame := make([]byte, 0, len(bytecode)+4)
	frame = append(frame, 'U', byte(len(bytecode)>>8), byte(len(bytecode)))
	frame = append(frame, bytecode...)
	frame = append(frame, '\n')

	if _, err := c.port.Write(frame); err != nil {
		return fmt.Errorf("failed to send program: %w", err)
	}

	_, err = c.readResponse()
	return err
}

// Execute runs an ad hoc bytecode snippet on the device without touching
// the stored program.
func (c *Controller) Execute(bytecode []byte) error {
	frame := make([]byte, 0, len(bytecode)+4)
	frame = append(frame, 'E', byte(len(bytecode)>>8), byte(len(bytecode)))
	frame = append(frame, bytecode...)
	frame = append(frame, '\n')

	if _, err := c.port.Write(frame); err != nil {
		return fmt.Errorf("failed to send bytecode: %w", err)
	}

	_, err := c.readResponse()
	return err
}
