package transfer

import "testing"

func TestStateNamesAndTerminal(t *testing.T) {
	if StateAwaitingDiscoveryOrTransfer.String() != "awaiting_discovery_or_transfer" {
		t.Fatalf("unexpected name: %s", StateAwaitingDiscoveryOrTransfer)
	}
	if State(99).String() != "unknown" {
		t.Fatalf("expected unknown for out-of-range state")
	}
	for _, st := range []State{StateHandoff, StatePlainExit, StateFailed} {
		if !st.Terminal() {
			t.Fatalf("%s should be terminal", st)
		}
	}
	if StateCompleted.Terminal() {
		t.Fatalf("completed is followed by finalize/handoff")
	}
}

func TestSessionCounters(t *testing.T) {
	s := NewSession()
	if s.ID == "" {
		t.Fatalf("expected session id")
	}
	if s.DiscoverySatisfied() {
		t.Fatalf("fresh session must still poll discovery")
	}
	s.FileSize = 10
	s.BytesWritten = 4
	if !s.DiscoverySatisfied() || s.Pending() != 6 {
		t.Fatalf("unexpected counters: %+v pending=%d", s, s.Pending())
	}
}
