package corepool

import "errors"

var (
	// ErrChallengeFailed is returned by a challenge probe that did not get a 200, the
	// client factory retries it.
	ErrChallengeFailed = errors.New("failed to pass the anti-bot challenge")
	// ErrLoginFailed is fatal for the run, it is never retried.
	ErrLoginFailed = errors.New("failed to login")
	// ErrSessionExpired is returned when the dashboard still redirects right after a
	// fresh login.
	ErrSessionExpired = errors.New("session expired after re-authentication")
	// ErrNotFound is returned by a session store that has nothing persisted yet. It is
	// distinct from an I/O failure and means "create a fresh one".
	ErrNotFound = errors.New("persisted session state not found")
)
