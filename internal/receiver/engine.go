package receiver

import (
	"github.com/danmuck/gbanetboot/internal/platform"
	"github.com/danmuck/gbanetboot/internal/transfer"
	"github.com/rs/zerolog/log"
)

// Verdict is what one tick decided about the loop.
type Verdict int

const (
	VerdictContinue Verdict = iota
	// VerdictComplete: the transfer finished; handoff requested.
	VerdictComplete
	// VerdictExit: user cancelled without handoff.
	VerdictExit
	// VerdictSkip: user cancelled and asked for the handoff anyway.
	VerdictSkip
)

func (v Verdict) String() string {
	switch v {
	case VerdictComplete:
		return "complete"
	case VerdictExit:
		return "exit"
	case VerdictSkip:
		return "skip"
	default:
		return "continue"
	}
}

// Engine runs the per-tick work of an open session: discovery, transfer
// poll, input. It owns no resources; the Driver opens and closes them.
type Engine struct {
	discovery transfer.DatagramChannel
	listener  *transfer.Listener
	datagram  []byte
	assembly  []byte
	input     Input
	observer  Observer

	lastSize int64
}

func NewEngine(
	discovery transfer.DatagramChannel,
	listener *transfer.Listener,
	datagram, assembly []byte,
	input Input,
	observer Observer,
) *Engine {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Engine{
		discovery: discovery,
		listener:  listener,
		datagram:  datagram,
		assembly:  assembly,
		input:     input,
		observer:  observer,
	}
}

// Step performs one tick. A non-nil error is fatal for the session.
func (e *Engine) Step(s *transfer.Session) (Verdict, error) {
	e.input.Scan()

	if !s.DiscoverySatisfied() {
		res, _, err := transfer.PollDiscovery(e.discovery, e.datagram)
		if err != nil {
			return VerdictContinue, err
		}
		if res != transfer.DiscoveryIdle {
			e.observer.OnDiscovery(res)
		}
	}

	res, err := e.listener.Poll(s, e.assembly)
	if err != nil {
		return VerdictContinue, err
	}
	if e.listener.Accepted() && s.State == transfer.StateAwaitingDiscoveryOrTransfer {
		enter(s, transfer.StateTransferring, e.observer)
	}
	if s.FileSize != e.lastSize {
		e.lastSize = s.FileSize
		e.observer.OnProgress(*s)
	}

	if res == transfer.Complete {
		s.RebootRequested = true
		return VerdictComplete, nil
	}
	if e.input.Pressed(platform.ActionSkip) {
		s.RebootRequested = true
		return VerdictSkip, nil
	}
	if e.input.Pressed(platform.ActionExit) {
		return VerdictExit, nil
	}
	return VerdictContinue, nil
}

// enter moves s to next and reports the transition.
func enter(s *transfer.Session, next transfer.State, obs Observer) {
	if s.State == next {
		return
	}
	log.Debug().
		Str("session", s.ID).
		Stringer("from", s.State).
		Stringer("to", next).
		Msg("receiver.enter")
	s.State = next
	obs.OnState(*s)
}
