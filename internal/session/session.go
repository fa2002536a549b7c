// Package session holds the shell's single mutable context: the current
// subject and the live directory connection.
package session

import (
	"errors"

	"github.com/go-ports/whois/internal/directory"
	"github.com/go-ports/whois/internal/models"
)

// ErrNoSubjectSelected is returned when an action needs a subject and no
// search has succeeded yet.
var ErrNoSubjectSelected = errors.New("no user selected")

// State is owned by one shell; it is not safe for concurrent use.
type State struct {
	subject *models.Subject
	conn    directory.Conn
}

// New returns a State holding conn and no subject.
func New(conn directory.Conn) *State {
	return &State{conn: conn}
}

// Subject returns a copy of the current subject, or false if none is set.
func (s *State) Subject() (models.Subject, bool) {
	if s.subject == nil {
		return models.Subject{}, false
	}
	return *s.subject, true
}

// RequireSubject is Subject with ErrNoSubjectSelected in place of false.
func (s *State) RequireSubject() (models.Subject, error) {
	subj, ok := s.Subject()
	if !ok {
		return models.Subject{}, ErrNoSubjectSelected
	}
	return subj, nil
}

// SetSubject replaces the current subject.
func (s *State) SetSubject(subj models.Subject) {
	s.subject = &subj
}

// Conn returns the directory connection, or nil once released.
func (s *State) Conn() directory.Conn {
	return s.conn
}

// SetConn replaces the directory connection.
func (s *State) SetConn(conn directory.Conn) {
	s.conn = conn
}

// Release unbinds the connection, if any, and forgets it.
func (s *State) Release() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Unbind()
	s.conn = nil
	return err
}
