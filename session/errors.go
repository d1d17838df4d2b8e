package session

import "errors"

var (
	// ErrMissingIdentity means the claims decoded but carried no subject.
	ErrMissingIdentity = errors.New("credential carries no identity")

	// ErrIdentityNotFound means the subject was well-formed but no backing
	// account exists for it. Surfaced distinctly from credential failures so
	// callers can tell "never registered" from "bad token".
	ErrIdentityNotFound = errors.New("identity has no backing account")

	// ErrNoActiveSession means reissue was attempted with no stored refresh
	// credential. The caller must log in again.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionExpired means the stored refresh credential itself was
	// invalid. The stale record is deleted as a side effect; the caller must
	// log in again.
	ErrSessionExpired = errors.New("session expired")
)
