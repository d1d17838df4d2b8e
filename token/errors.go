package token

import "errors"

var (
	// ErrMalformedCredential is returned when a token's signature does not
	// verify or its structure is unusable. Never retried.
	ErrMalformedCredential = errors.New("malformed credential")

	// ErrExpiredCredential is returned by the strict parser for a genuine
	// token whose expiry has passed.
	ErrExpiredCredential = errors.New("expired credential")
)
