package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"ledctrl/host/controller"
	"ledctrl/player"
	"ledctrl/protocol"
)

var (
	device = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud   = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
)

func main() {
	flag.Parse()

	fmt.Println("ledctrl host")
	fmt.Println("============")
	fmt.Println()

	fmt.Printf("Connecting to device on %s...\n", *device)
	ctrl, err := controller.Connect(*device, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ctrl.Close()

	ctrl.Progress = func(n int) {
		fmt.Printf("  uploaded %d bytes\n", n)
	}

	fmt.Println("Connected successfully!")
	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]

		switch cmd {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "capacity":
			capacity, err := ctrl.Capacity()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			} else {
				fmt.Printf("Device accepts programs up to %d bytes\n", capacity)
			}

		case "version":
			version, err := ctrl.Version()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			} else {
				fmt.Printf("Firmware version: %s\n", version)
			}

		case "rewind":
			report(ctrl.Rewind())

		case "suspend":
			report(ctrl.Suspend())

		case "resume":
			report(ctrl.Resume())

		case "terminate":
			report(ctrl.Terminate())

		case "upload":
			if len(parts) != 2 {
				fmt.Println("Usage: upload <file>")
				continue
			}
			report(uploadFile(ctrl, parts[1]))

		case "play":
			if len(parts) < 2 || len(parts) > 3 {
				fmt.Println("Usage: play <file> [fps]")
				continue
			}
			fps := protocol.FramesPerSecond
			if len(parts) == 3 {
				fps, err = strconv.Atoi(parts[2])
				if err != nil || fps <= 0 {
					fmt.Println("Invalid frame rate")
					continue
				}
			}
			if err := playFile(parts[1], fps); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help               - Show this help message")
	fmt.Println("  capacity           - Query maximum program size")
	fmt.Println("  version            - Query firmware version")
	fmt.Println("  rewind             - Restart the stored program")
	fmt.Println("  suspend            - Pause execution")
	fmt.Println("  resume             - Resume execution")
	fmt.Println("  terminate          - Stop execution")
	fmt.Println("  upload <file>      - Upload a compiled program")
	fmt.Println("  play <file> [fps]  - Preview a program locally")
	fmt.Println("  quit/exit/q        - Exit the program")
	fmt.Println()
}

func report(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	} else {
		fmt.Println("OK")
	}
}

func uploadFile(ctrl *controller.Controller, path string) error {
	bytecode, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read program: %w", err)
	}

	fmt.Printf("Uploading %d bytes...\n", len(bytecode))
	return ctrl.Upload(bytecode)
}

// playFile simulates a program locally and prints the color timeline,
// without involving the device.
func playFile(path string, fps int) error {
	bytecode, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read program: %w", err)
	}

	// Bound playback to one minute so infinite programs terminate.
	frames, err := player.New(bytecode).Iterate(fps, fps*60)
	if err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	changes := 0
	for i, frame := range frames {
		if i > 0 && frame.Color == frames[i-1].Color {
			continue
		}
		fmt.Printf("%8.3fs  #%02X%02X%02X\n",
			float64(frame.Timestamp)/1000, frame.Color.R, frame.Color.G, frame.Color.B)
		changes++
	}
	fmt.Printf("%d color changes over %d frames at %d fps\n", changes, len(frames), fps)
	return nil
}
