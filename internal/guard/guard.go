// Package guard decides route admission from session state. The checks
// are pure functions so the HTTP layer and tests share one definition.
package guard

import "jobportal/pkg/session"

// Authenticated reports whether a session identity exists.
func Authenticated(s *session.Manager) bool {
	if s == nil {
		return false
	}
	_, ok := s.Current()
	return ok
}

// Admin reports whether the session identity carries the admin flag.
// Always false without a session.
func Admin(s *session.Manager) bool {
	if s == nil {
		return false
	}
	id, ok := s.Current()
	return ok && id.Admin
}
