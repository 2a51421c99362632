package bmc

import "testing"

func TestSessionTable(t *testing.T) {
	tbl := newSessionTable()

	first := tbl.activate()
	second := tbl.activate()
	if second <= first {
		t.Errorf("session ids not increasing: %d then %d", first, second)
	}
	if got := tbl.active(); got != 2 {
		t.Errorf("active() = %d, want 2", got)
	}

	tbl.close()
	tbl.close()
	if got := tbl.active(); got != 0 {
		t.Errorf("active() after closing all = %d, want 0", got)
	}

	// Clients sometimes close sessions the endpoint never saw activated.
	tbl.close()
	if got := tbl.active(); got != 0 {
		t.Errorf("active() after extra close = %d, want 0", got)
	}

	// Interleaved activations and closes keep the count consistent.
	tbl.activate()
	tbl.activate()
	tbl.close()
	tbl.activate()
	if got := tbl.active(); got != 2 {
		t.Errorf("active() after interleaving = %d, want 2", got)
	}
}

func TestSessionHandlers(t *testing.T) {
	s := newTestServer(&fakeMachine{name: "vm-1"})

	s.handleActivateSession(nil)
	s.handleActivateSession(nil)
	s.handleCloseSession(nil)
	if got := s.sessions.active(); got != 1 {
		t.Errorf("open sessions = %d, want 1", got)
	}
}
