package domain

import "errors"

// Sentinel errors shared across interceptor components. Matched with
// errors.Is so callers can distinguish failure modes without string
// comparison.
var (
	// ErrIntentNotFound is returned by IntentStore.Get for an unknown id.
	ErrIntentNotFound = errors.New("intent not found")

	// ErrOutOfScope names a path that matches none of an intent's scope
	// globs. No function in this module returns it; ScopeMatches reports
	// the case as false.
	ErrOutOfScope = errors.New("path outside intent scope")

	// ErrNoPriorRead names a write by a session that never registered a
	// read-version for the path. lock.Manager.ValidateWrite reports the
	// case as ValidationNoPriorRead and does not return this error.
	ErrNoPriorRead = errors.New("no prior read registered for session")

	// ErrStaleWrite names a write whose on-disk hash no longer matches the
	// session's registered read. lock.Manager.ValidateWrite reports the
	// case as ValidationStale and does not return this error.
	ErrStaleWrite = errors.New("on-disk content changed since read")

	// ErrLockContended names an acquire while another session holds a
	// non-stale lock on the path. lock.Manager.Acquire reports the case as
	// Contended and does not return this error.
	ErrLockContended = errors.New("path is locked by another session")

	// ErrSessionNotFound is returned by SessionRegistry.Get for an unknown
	// or expired session id.
	ErrSessionNotFound = errors.New("session not found")
)
