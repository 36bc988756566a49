package app

import "errors"

var (
	// ErrNotAuthenticated is returned by session-scoped operations when
	// no identity is present.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrEmailAndPasswordRequired guards registration input.
	ErrEmailAndPasswordRequired = errors.New("email and password required")
)
