package platform

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Action is a logical key press polled by the receiver.
type Action int

const (
	// ActionExit cancels while waiting for the link, cancels a transfer
	// without handoff, and releases the debug pause.
	ActionExit Action = iota + 1
	// ActionSkip ends the transfer loop and forces the handoff.
	ActionSkip
	// ActionAcknowledge dismisses a fatal error.
	ActionAcknowledge
)

func (a Action) String() string {
	switch a {
	case ActionExit:
		return "exit"
	case ActionSkip:
		return "skip"
	case ActionAcknowledge:
		return "acknowledge"
	default:
		return "none"
	}
}

var ErrNotTerminal = errors.New("platform: input is not a terminal")

// KeyMap binds raw key bytes to actions.
type KeyMap map[byte]Action

// DefaultKeyMap mirrors the handheld layout: q/Esc/Ctrl-C for Start,
// s for Select, b for B.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		'q':  ActionExit,
		'Q':  ActionExit,
		0x1b: ActionExit,
		0x03: ActionExit,
		's':  ActionSkip,
		'S':  ActionSkip,
		'b':  ActionAcknowledge,
		'B':  ActionAcknowledge,
	}
}

// NopInput never reports a press. Used when stdin is not interactive.
type NopInput struct{}

func (NopInput) Scan()               {}
func (NopInput) Pressed(Action) bool { return false }
func (NopInput) Interactive() bool   { return false }

// TerminalInput reads single key presses from a raw-mode terminal. A reader
// goroutine feeds bytes into a channel; Scan drains it once per tick so
// Pressed reports only keys newly pressed since the previous Scan.
type TerminalInput struct {
	fd     int
	state  *term.State
	keymap KeyMap
	keys   chan byte

	pressed   map[Action]bool
	closeOnce sync.Once
}

// OpenTerminalInput switches f into raw mode. Close restores it.
func OpenTerminalInput(f *os.File, keymap KeyMap) (*TerminalInput, error) {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return nil, ErrNotTerminal
	}
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	if keymap == nil {
		keymap = DefaultKeyMap()
	}
	in := newKeyInput(keymap)
	in.fd = fd
	in.state = state
	go in.readLoop(f)
	return in, nil
}

func newKeyInput(keymap KeyMap) *TerminalInput {
	return &TerminalInput{
		keymap:  keymap,
		keys:    make(chan byte, 64),
		pressed: make(map[Action]bool),
	}
}

func (in *TerminalInput) readLoop(r io.Reader) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case in.keys <- b:
			default:
			}
		}
		if err != nil {
			log.Debug().Err(err).Msg("platform.TerminalInput.readLoop stopped")
			return
		}
	}
}

// Scan latches the keys pressed since the previous Scan.
func (in *TerminalInput) Scan() {
	clear(in.pressed)
	for {
		select {
		case b := <-in.keys:
			if a, ok := in.keymap[b]; ok {
				in.pressed[a] = true
			}
		default:
			return
		}
	}
}

func (in *TerminalInput) Pressed(a Action) bool {
	return in.pressed[a]
}

func (in *TerminalInput) Interactive() bool {
	return true
}

// Close restores the terminal mode captured by OpenTerminalInput.
func (in *TerminalInput) Close() error {
	var err error
	in.closeOnce.Do(func() {
		if in.state != nil {
			err = term.Restore(in.fd, in.state)
		}
	})
	return err
}

// CRLFWriter translates "\n" into "\r\n" so log lines stay aligned while
// the terminal is in raw mode.
type CRLFWriter struct {
	W io.Writer
}

func (c CRLFWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	if _, err := c.W.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
