package epctx

import "github.com/google/uuid"

// ShareSession coordinates several encode calls that must reference one
// physical cache binary on disk. The caller owns it: create one per
// sharing session, pass it to every EncodeSession call in the session,
// and serialize concurrent sharing sessions externally (no internal
// locking). The stop-share encode call clears the registered name so a
// later unrelated session starts fresh.
type ShareSession struct {
	id      string
	binName string
}

func NewShareSession() *ShareSession {
	return &ShareSession{id: uuid.NewString()}
}

// ID is a correlation tag for logs, unique per session.
func (s *ShareSession) ID() string { return s.id }

// BinaryName returns the registered shared cache filename, or "" if no
// contributor has registered one yet.
func (s *ShareSession) BinaryName() string {
	if s == nil {
		return ""
	}
	return s.binName
}

func (s *ShareSession) SetBinaryName(name string) { s.binName = name }

func (s *ShareSession) Reset() { s.binName = "" }
