package session

import (
	"context"
	"time"
)

// Record is the server-side state backing one identity's current refresh
// credential. At most one Record exists per identity; no Record existing is a
// valid terminal state (logged out or never logged in).
type Record struct {
	ProviderID   string
	RefreshToken string
	ExpiresAt    time.Time
}

// Repo is durable storage mapping an identity to its single session Record.
type Repo interface {
	// Upsert replaces the identity's record in place, creating it when
	// absent. Concurrent upserts for the same identity are last-writer-wins;
	// a partial record is never observable.
	Upsert(ctx context.Context, providerID, refreshToken string, ttl time.Duration) error

	// Find returns the identity's record, or (nil, nil) when none exists.
	Find(ctx context.Context, providerID string) (*Record, error)

	// Delete removes the identity's record. Deleting a non-existent record
	// succeeds silently. The delete is durably visible before Delete returns,
	// so a logout immediately blocks any subsequent reissue.
	Delete(ctx context.Context, providerID string) error
}
