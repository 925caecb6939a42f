package interview

import "github.com/abhisek/intervue/internal/api"

// Session is the explicit session context handed to the controller.
type Session struct {
	ID        string
	Role      string
	ResumeRef string
	Status    api.Status
}

// NewSession returns an active session context.
func NewSession(id, role string) *Session {
	return &Session{ID: id, Role: role, Status: api.StatusActive}
}

// Active reports whether the session can still take answers.
func (s *Session) Active() bool {
	return s.ID != "" && (s.Status == "" || s.Status == api.StatusActive)
}

// Forget drops the identifier after the server stopped honouring it.
func (s *Session) Forget() {
	s.ID = ""
	s.Status = api.StatusExpired
}
