package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tangerineshop/shop-server/token"
)

// UserDirectory resolves an identity to its backing account. The manager only
// needs existence; the wider user catalog lives elsewhere.
type UserDirectory interface {
	ExistsByProviderID(ctx context.Context, providerID string) (bool, error)
}

// Manager orchestrates the session lifecycle: issuing credential pairs,
// rotating the stored refresh token on reissue, and deleting the record on
// logout. Each operation is a single-identity transaction; concurrent reissue
// calls for the same identity resolve last-writer-wins in the store, leaving
// at most one live refresh credential (the loser's returned pair is silently
// stale). There is no distributed lock by design.
type Manager struct {
	repo               Repo
	users              UserDirectory
	codec              *token.Codec
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// ManagerOption modifies a Manager during construction.
type ManagerOption func(*Manager)

// WithTokenExpiry overrides the access and refresh token lifetimes.
func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

// NewManager creates a session manager. The access token lifetime must be
// strictly shorter than the refresh token lifetime.
func NewManager(repo Repo, users UserDirectory, codec *token.Codec, options ...ManagerOption) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[NewManager] session repo is required")
	}
	if users == nil {
		return nil, errors.New("[NewManager] user directory is required")
	}
	if codec == nil {
		return nil, errors.New("[NewManager] token codec is required")
	}

	m := &Manager{
		repo:               repo,
		users:              users,
		codec:              codec,
		accessTokenExpiry:  1 * time.Hour,
		refreshTokenExpiry: 7 * 24 * time.Hour,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry >= m.refreshTokenExpiry {
		return nil, errors.New("[NewManager] access token expiry must be shorter than refresh token expiry")
	}

	return m, nil
}

// Issue signs a fresh credential pair for the identity and upserts the
// refresh token as the identity's single session record. No prior record is
// required; this is also how a brand-new identity gets its first session. The
// returned refresh token always equals the value just written to the store.
func (m *Manager) Issue(ctx context.Context, providerID string, authorities []string) (*token.Pair, error) {
	accessToken, err := m.codec.Sign(providerID, authorities, m.accessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("[Issue] sign access token: %w", err)
	}

	refreshToken, err := m.codec.Sign(providerID, nil, m.refreshTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("[Issue] sign refresh token: %w", err)
	}

	if err := m.repo.Upsert(ctx, providerID, refreshToken, m.refreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("[Issue] store refresh token: %w", err)
	}

	return &token.Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Reissue renews a credential pair from a presented access token that may be
// expired but must be genuine. The stored refresh credential, not the
// presented access credential, is the real authority: when it no longer
// validates, the record is deleted and the caller must log in again.
func (m *Manager) Reissue(ctx context.Context, presentedAccessToken string) (*token.Pair, error) {
	claims, err := m.codec.ParseTolerant(presentedAccessToken)
	if err != nil {
		return nil, err
	}

	providerID := claims.Subject
	if providerID == "" {
		return nil, ErrMissingIdentity
	}

	exists, err := m.users.ExistsByProviderID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("[Reissue] resolve account: %w", err)
	}
	if !exists {
		return nil, ErrIdentityNotFound
	}

	record, err := m.repo.Find(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("[Reissue] load session record: %w", err)
	}
	if record == nil {
		return nil, ErrNoActiveSession
	}

	if !m.codec.Validate(record.RefreshToken) {
		// One-way invalidation: the identity cannot retry reissue on the
		// same refresh credential and must log in externally again.
		if err := m.repo.Delete(ctx, providerID); err != nil {
			return nil, fmt.Errorf("[Reissue] delete stale session record: %w", err)
		}
		log.Warn().Str("provider_id", providerID).Msg("refresh credential invalid, session invalidated")
		return nil, ErrSessionExpired
	}

	// Rotates the refresh token by overwriting the stored record.
	return m.Issue(ctx, providerID, claims.GrantedAuthorities())
}

// Invalidate deletes the identity's session record. Logout requires a
// currently valid access token: an expired credential cannot terminate a
// session, so the strict parser is used here.
func (m *Manager) Invalidate(ctx context.Context, presentedAccessToken string) error {
	claims, err := m.codec.ParseStrict(presentedAccessToken)
	if err != nil {
		return err
	}

	providerID := claims.Subject
	if providerID == "" {
		return ErrMissingIdentity
	}

	exists, err := m.users.ExistsByProviderID(ctx, providerID)
	if err != nil {
		return fmt.Errorf("[Invalidate] resolve account: %w", err)
	}
	if !exists {
		return ErrIdentityNotFound
	}

	if err := m.repo.Delete(ctx, providerID); err != nil {
		return fmt.Errorf("[Invalidate] delete session record: %w", err)
	}

	log.Info().Str("provider_id", providerID).Msg("session invalidated")
	return nil
}
