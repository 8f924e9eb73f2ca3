// Package session holds the authenticated context shared by every tool handler.
package session

import "sync/atomic"

// Credentials is the host and bearer token of one authenticated VBR session.
type Credentials struct {
	Host  string
	Token string
}

/*
Session is the single live backend session of the process. It is owned by the
runtime and handed to each tool invocation. Set replaces the whole
(host, token) pair at once, so readers never observe a mix of two logins.
*/
type Session struct {
	current atomic.Pointer[Credentials]
}

// New returns an empty, unauthenticated session.
func New() *Session {
	return &Session{}
}

// Set overwrites the current session unconditionally.
func (s *Session) Set(host, token string) {
	s.current.Store(&Credentials{Host: host, Token: token})
}

// Get returns the current credentials, or false when nobody has authenticated yet.
func (s *Session) Get() (Credentials, bool) {
	creds := s.current.Load()
	if creds == nil {
		return Credentials{}, false
	}

	return *creds, true
}
