package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tangerineshop/shop-server/session"
	sessionrepofake "github.com/tangerineshop/shop-server/session/repofake"
	"github.com/tangerineshop/shop-server/token"
	"github.com/tangerineshop/shop-server/users"
	userrepofake "github.com/tangerineshop/shop-server/users/repofake"
)

const (
	secretStr      = "test-signing-secret"
	testProviderID = "3141592653"
)

type testFixture struct {
	codec       *token.Codec
	sessionRepo *spySessionRepo
	userRepo    *userrepofake.FakeUserRepo
	manager     *session.Manager
}

// spySessionRepo counts store accesses so tests can assert the store was
// never touched on early failures.
type spySessionRepo struct {
	*sessionrepofake.FakeSessionRepo
	finds   int
	deletes int
	lock    sync.Mutex
}

func (r *spySessionRepo) Find(ctx context.Context, providerID string) (*session.Record, error) {
	r.lock.Lock()
	r.finds++
	r.lock.Unlock()
	return r.FakeSessionRepo.Find(ctx, providerID)
}

func (r *spySessionRepo) Delete(ctx context.Context, providerID string) error {
	r.lock.Lock()
	r.deletes++
	r.lock.Unlock()
	return r.FakeSessionRepo.Delete(ctx, providerID)
}

func setupFixture(t *testing.T, options ...session.ManagerOption) *testFixture {
	t.Helper()

	codec := token.NewCodec(secretStr)
	sessionRepo := &spySessionRepo{FakeSessionRepo: sessionrepofake.NewFakeSessionRepo()}
	userRepo := userrepofake.NewFakeUserRepo()

	require.NoError(t, userRepo.Upsert(context.Background(), &users.User{
		ID:         "internal-1",
		ProviderID: testProviderID,
		Nickname:   "tangerine",
		Address:    users.DefaultAddress(),
	}))

	manager, err := session.NewManager(sessionRepo, userRepo, codec, options...)
	require.NoError(t, err)

	return &testFixture{
		codec:       codec,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		manager:     manager,
	}
}

func fixedClock(t *testing.T, at time.Time) func(time.Time) {
	t.Helper()
	token.NowTimeFunc = func() time.Time { return at }
	t.Cleanup(func() { token.NowTimeFunc = time.Now })
	return func(newNow time.Time) {
		token.NowTimeFunc = func() time.Time { return newNow }
	}
}

func TestManager_New(t *testing.T) {
	codec := token.NewCodec(secretStr)

	t.Run("requires all dependencies", func(t *testing.T) {
		_, err := session.NewManager(nil, userrepofake.NewFakeUserRepo(), codec)
		require.Error(t, err)

		_, err = session.NewManager(sessionrepofake.NewFakeSessionRepo(), nil, codec)
		require.Error(t, err)

		_, err = session.NewManager(sessionrepofake.NewFakeSessionRepo(), userrepofake.NewFakeUserRepo(), nil)
		require.Error(t, err)
	})

	t.Run("rejects access expiry not shorter than refresh expiry", func(t *testing.T) {
		_, err := session.NewManager(
			sessionrepofake.NewFakeSessionRepo(),
			userrepofake.NewFakeUserRepo(),
			codec,
			session.WithTokenExpiry(time.Hour, time.Hour),
		)
		require.Error(t, err)
	})
}

func TestManager_Issue(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	pair, err := f.manager.Issue(ctx, testProviderID, []string{token.DefaultAuthority})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// The stored refresh value matches the pair exactly: no drift between
	// what the client holds and what the server kept.
	record, err := f.sessionRepo.Find(ctx, testProviderID)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, pair.RefreshToken, record.RefreshToken)

	claims, err := f.codec.ParseStrict(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, testProviderID, claims.Subject)
	require.Equal(t, []string{token.DefaultAuthority}, claims.Authorities)
}

func TestManager_Issue_SecondIssuanceOverwrites(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	first, err := f.manager.Issue(ctx, testProviderID, nil)
	require.NoError(t, err)

	second, err := f.manager.Issue(ctx, testProviderID, nil)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	require.Equal(t, 1, f.sessionRepo.Len())
	record, err := f.sessionRepo.Find(ctx, testProviderID)
	require.NoError(t, err)
	require.Equal(t, second.RefreshToken, record.RefreshToken)
}

func TestManager_Reissue_ExpiredAccessTokenRotates(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	advance := fixedClock(t, issuedAt)

	f := setupFixture(t, session.WithTokenExpiry(time.Second, time.Hour))
	ctx := context.Background()

	pair, err := f.manager.Issue(ctx, testProviderID, nil)
	require.NoError(t, err)

	// Access token is now expired, refresh token still valid.
	advance(issuedAt.Add(2 * time.Second))

	renewed, err := f.manager.Reissue(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, renewed.RefreshToken)

	record, err := f.sessionRepo.Find(ctx, testProviderID)
	require.NoError(t, err)
	require.Equal(t, renewed.RefreshToken, record.RefreshToken)

	// Replaying the original expired access token still works: the tolerant
	// parse does not care it was presented before. The stored refresh token
	// has now rotated twice.
	advance(issuedAt.Add(3 * time.Second))
	again, err := f.manager.Reissue(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.NotEqual(t, renewed.RefreshToken, again.RefreshToken)

	record, err = f.sessionRepo.Find(ctx, testProviderID)
	require.NoError(t, err)
	require.Equal(t, again.RefreshToken, record.RefreshToken)
}

func TestManager_Reissue_TamperedTokenIsMalformed(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	pair, err := f.manager.Issue(ctx, testProviderID, nil)
	require.NoError(t, err)

	tampered := pair.AccessToken[:len(pair.AccessToken)-1] + "x"

	_, err = f.manager.Reissue(ctx, tampered)
	require.ErrorIs(t, err, token.ErrMalformedCredential)
	require.NotErrorIs(t, err, session.ErrSessionExpired)

	// A forged token never causes the real session to be dropped.
	record, err := f.sessionRepo.Find(ctx, testProviderID)
	require.NoError(t, err)
	require.NotNil(t, record)
}

func TestManager_Reissue_EmptySubject(t *testing.T) {
	f := setupFixture(t)

	anonymous, err := f.codec.Sign("", nil, time.Hour)
	require.NoError(t, err)

	_, err = f.manager.Reissue(context.Background(), anonymous)
	require.ErrorIs(t, err, session.ErrMissingIdentity)
	require.Zero(t, f.sessionRepo.finds)
}

func TestManager_Reissue_UnknownIdentity(t *testing.T) {
	f := setupFixture(t)

	stranger, err := f.codec.Sign("9999999999", nil, time.Hour)
	require.NoError(t, err)

	_, err = f.manager.Reissue(context.Background(), stranger)
	require.ErrorIs(t, err, session.ErrIdentityNotFound)
}

func TestManager_Reissue_NoActiveSession(t *testing.T) {
	f := setupFixture(t)

	accessToken, err := f.codec.Sign(testProviderID, nil, time.Hour)
	require.NoError(t, err)

	_, err = f.manager.Reissue(context.Background(), accessToken)
	require.ErrorIs(t, err, session.ErrNoActiveSession)
}

func TestManager_Reissue_StaleRefreshDeletesRecord(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	advance := fixedClock(t, issuedAt)

	f := setupFixture(t, session.WithTokenExpiry(time.Second, time.Minute))
	ctx := context.Background()

	pair, err := f.manager.Issue(ctx, testProviderID, nil)
	require.NoError(t, err)

	// Both tokens are now expired.
	advance(issuedAt.Add(2 * time.Minute))

	_, err = f.manager.Reissue(ctx, pair.AccessToken)
	require.ErrorIs(t, err, session.ErrSessionExpired)

	// One-way invalidation: the record is gone, a retry hits NoActiveSession.
	record, err := f.sessionRepo.Find(ctx, testProviderID)
	require.NoError(t, err)
	require.Nil(t, record)

	_, err = f.manager.Reissue(ctx, pair.AccessToken)
	require.ErrorIs(t, err, session.ErrNoActiveSession)
}

func TestManager_Invalidate(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	pair, err := f.manager.Issue(ctx, testProviderID, nil)
	require.NoError(t, err)

	require.NoError(t, f.manager.Invalidate(ctx, pair.AccessToken))

	record, err := f.sessionRepo.Find(ctx, testProviderID)
	require.NoError(t, err)
	require.Nil(t, record)

	// Logout, then reissue with the same access token.
	_, err = f.manager.Reissue(ctx, pair.AccessToken)
	require.ErrorIs(t, err, session.ErrNoActiveSession)

	// Repeated logout is a no-op.
	require.NoError(t, f.manager.Invalidate(ctx, pair.AccessToken))
}

func TestManager_Invalidate_RejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	advance := fixedClock(t, issuedAt)

	f := setupFixture(t, session.WithTokenExpiry(time.Second, time.Hour))
	ctx := context.Background()

	pair, err := f.manager.Issue(ctx, testProviderID, nil)
	require.NoError(t, err)

	advance(issuedAt.Add(2 * time.Second))

	// An expired access token cannot terminate a session.
	err = f.manager.Invalidate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, token.ErrExpiredCredential)

	record, err := f.sessionRepo.Find(ctx, testProviderID)
	require.NoError(t, err)
	require.NotNil(t, record)
}

// Concurrent reissue for the same identity is an accepted race: both callers
// may receive a pair, but only the last writer's refresh token survives in
// the store. The store must end with exactly one uncorrupted record.
func TestManager_Reissue_ConcurrentCallsLastWriterWins(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	advance := fixedClock(t, issuedAt)

	f := setupFixture(t, session.WithTokenExpiry(time.Second, time.Hour))
	ctx := context.Background()

	pair, err := f.manager.Issue(ctx, testProviderID, nil)
	require.NoError(t, err)

	advance(issuedAt.Add(2 * time.Second))

	const callers = 8
	results := make([]*token.Pair, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			renewed, err := f.manager.Reissue(ctx, pair.AccessToken)
			if err == nil {
				results[slot] = renewed
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, f.sessionRepo.Len())
	record, err := f.sessionRepo.Find(ctx, testProviderID)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.True(t, f.codec.Validate(record.RefreshToken))

	// The surviving record matches one caller's pair; every other caller
	// holds a silently stale refresh token.
	matched := 0
	for _, renewed := range results {
		if renewed != nil && renewed.RefreshToken == record.RefreshToken {
			matched++
		}
	}
	require.Equal(t, 1, matched)
}
