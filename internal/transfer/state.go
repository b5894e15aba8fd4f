package transfer

// State is the position of a session in the driver state machine.
type State int

const (
	StateAwaitingLink State = iota
	StateAwaitingDiscoveryOrTransfer
	StateTransferring
	StateCompleted
	StateCancelled
	StateFinalizing
	StateHandoff
	StatePlainExit
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingLink:
		return "awaiting_link"
	case StateAwaitingDiscoveryOrTransfer:
		return "awaiting_discovery_or_transfer"
	case StateTransferring:
		return "transferring"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFinalizing:
		return "finalizing"
	case StateHandoff:
		return "handoff"
	case StatePlainExit:
		return "plain_exit"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateHandoff || s == StatePlainExit || s == StateFailed
}
