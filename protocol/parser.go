package protocol

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// Host is the set of operations the serial control protocol can invoke on
// the device. The binding to a concrete executor and bytecode store lives
// in the device package; the parser itself only understands the wire
// protocol.
type Host interface {
	// Capacity returns the maximum number of program bytes the device
	// can accept in an upload.
	Capacity() int

	// Rewind restarts the stored program from the beginning.
	Rewind()

	// Suspend pauses execution of the stored program.
	Suspend()

	// Resume resumes execution after a previous Suspend.
	Resume()

	// Terminate stops execution of the stored program.
	Terminate()

	// Upload replaces the stored program with the given bytecode.
	Upload(data []byte) error

	// Execute runs the given ad hoc bytecode without touching the
	// stored program.
	Execute(data []byte) error
}

// Error codes used in "-E<code>" responses.
const (
	RespErrUnknownCommand  = 1
	RespErrMalformedInput  = 2
	RespErrUploadFailed    = 3
	RespErrExecutionFailed = 4
)

type parserState uint8

const (
	stateStart parserState = iota
	stateTextArgs
	stateBinaryLength1
	stateBinaryLength2
	stateBinaryData
	stateBinaryNewline
	stateTrap // error state; swallow bytes until the next newline
)

// uploadProgressInterval is the number of binary payload bytes between
// ":<n>" progress responses during an upload.
const uploadProgressInterval = 256

// Parser handles incoming bytes of the serial control protocol.
//
// Text-mode commands are a single letter followed by optional whitespace
// separated arguments and a newline. Binary-mode commands ('U' and 'E')
// are followed by a big-endian 16-bit payload length, the raw payload and
// a terminating newline. Responses are single lines: "+<msg>" on success,
// "-E<code>" on failure and ":<n>" for upload progress.
type Parser struct {
	host Host
	out  io.Writer

	state     parserState
	command   byte
	text      []byte
	binLength int
	binData   []byte
}

// NewParser creates a protocol parser that invokes host and writes its
// responses to out.
func NewParser(host Host, out io.Writer) *Parser {
	p := &Parser{host: host, out: out}
	p.Reset()
	return p
}

// Reset returns the parser to its initial state, dropping any partially
// received command.
func (p *Parser) Reset() {
	p.state = stateStart
	p.command = 0
	p.text = p.text[:0]
	p.binLength = 0
	p.binData = nil
}

// FeedBytes feeds a chunk of incoming bytes into the parser.
func (p *Parser) FeedBytes(data []byte) {
	for _, b := range data {
		p.Feed(b)
	}
}

// Feed feeds a single incoming byte into the parser.
func (p *Parser) Feed(b byte) {
	switch p.state {
	case stateStart:
		p.feedStart(b)

	case stateTextArgs:
		if b == '\n' || b == '\r' {
			p.runTextCommand()
			p.Reset()
		} else {
			p.text = append(p.text, b)
		}

	case stateBinaryLength1:
		p.binLength = int(b) << 8
		p.state = stateBinaryLength2

	case stateBinaryLength2:
		p.binLength |= int(b)
		p.binData = make([]byte, 0, p.binLength)
		if p.binLength == 0 {
			p.state = stateBinaryNewline
		} else {
			p.state = stateBinaryData
		}

	case stateBinaryData:
		p.binData = append(p.binData, b)
		if len(p.binData)%uploadProgressInterval == 0 {
			fmt.Fprintf(p.out, ":%d\n", len(p.binData))
		}
		if len(p.binData) == p.binLength {
			p.state = stateBinaryNewline
		}

	case stateBinaryNewline:
		if b == '\n' || b == '\r' {
			p.runBinaryCommand()
		} else {
			p.writeError(RespErrMalformedInput)
		}
		p.Reset()

	case stateTrap:
		if b == '\n' || b == '\r' {
			p.Reset()
		}
	}
}

func (p *Parser) feedStart(b byte) {
	switch b {
	case '\n', '\r', ' ', '\t':
		// stray whitespace between commands

	case 'U', 'E':
		p.command = b
		p.state = stateBinaryLength1

	case 'c', 'v', 'r', 'x', 's', 't', 'u', 'e':
		p.command = b
		p.text = p.text[:0]
		p.state = stateTextArgs

	default:
		p.writeError(RespErrUnknownCommand)
		p.state = stateTrap
	}
}

func (p *Parser) runTextCommand() {
	switch p.command {
	case 'c':
		fmt.Fprintf(p.out, "+%d\n", p.host.Capacity())

	case 'v':
		fmt.Fprintf(p.out, "+%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)

	case 'r':
		p.host.Rewind()
		p.writeOK()

	case 'x':
		p.host.Resume()
		p.writeOK()

	case 's':
		p.host.Suspend()
		p.writeOK()

	case 't':
		p.host.Terminate()
		p.writeOK()

	case 'u':
		data, err := p.parseHexArguments()
		if err != nil {
			p.writeError(RespErrMalformedInput)
			return
		}
		if err := p.host.Upload(data); err != nil {
			p.writeError(RespErrUploadFailed)
		} else {
			p.writeOK()
		}

	case 'e':
		data, err := p.parseByteArguments()
		if err != nil {
			p.writeError(RespErrMalformedInput)
			return
		}
		if err := p.host.Execute(data); err != nil {
			p.writeError(RespErrExecutionFailed)
		} else {
			p.writeOK()
		}
	}
}

func (p *Parser) runBinaryCommand() {
	switch p.command {
	case 'U':
		if err := p.host.Upload(p.binData); err != nil {
			p.writeError(RespErrUploadFailed)
		} else {
			p.writeOK()
		}

	case 'E':
		if err := p.host.Execute(p.binData); err != nil {
			p.writeError(RespErrExecutionFailed)
		} else {
			p.writeOK()
		}
	}
}

// parseHexArguments interprets the text arguments as hexadecimal bytecode,
// e.g. "u 0cff 04 ff0000 32 0d 00". Whitespace between tokens is ignored.
func (p *Parser) parseHexArguments() ([]byte, error) {
	tokens, err := shlex.Split(string(p.text))
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(strings.Join(tokens, ""))
}

// parseByteArguments interprets the text arguments as a sequence of byte
// values, one per token, in any base accepted by strconv (e.g. "e 4 255 0
// 0 50" or "e 0x04 0xff 0 0 0x32").
func (p *Parser) parseByteArguments() ([]byte, error) {
	tokens, err := shlex.Split(string(p.text))
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(tokens))
	for _, token := range tokens {
		value, err := strconv.ParseUint(token, 0, 8)
		if err != nil {
			return nil, err
		}
		data = append(data, byte(value))
	}
	return data, nil
}

func (p *Parser) writeOK() {
	io.WriteString(p.out, "+OK\n")
}

func (p *Parser) writeError(code int) {
	fmt.Fprintf(p.out, "-E%d\n", code)
}
