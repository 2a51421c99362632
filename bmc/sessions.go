package bmc

import (
	"sync"

	goipmi "github.com/ooneko/goipmi"
)

// sessionTable hands out session ids and counts how many sessions are
// open. The endpoint accepts any session request; it exists to keep
// clients like ipmitool happy, not to authenticate them, so no per-id
// state is kept.
type sessionTable struct {
	mu   sync.Mutex
	next uint32
	open int
}

func newSessionTable() *sessionTable {
	return &sessionTable{}
}

func (t *sessionTable) activate() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.open++
	return t.next
}

func (t *sessionTable) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open > 0 {
		t.open--
	}
}

func (t *sessionTable) active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

func (s *Server) handleGetAuthCapabilities(m *goipmi.Message) goipmi.Response {
	return goipmi.CommandCompleted
}

func (s *Server) handleGetSessionChallenge(m *goipmi.Message) goipmi.Response {
	return goipmi.CommandCompleted
}

func (s *Server) handleActivateSession(m *goipmi.Message) goipmi.Response {
	id := s.sessions.activate()
	s.log.Debugf("Activated session %d", id)
	return goipmi.CommandCompleted
}

func (s *Server) handleCloseSession(m *goipmi.Message) goipmi.Response {
	s.sessions.close()
	s.log.Debugf("Closed session, %d still open", s.sessions.active())
	return goipmi.CommandCompleted
}
