package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tangerineshop/shop-server/session"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

const keyPrefix = "shop:session:"

// Config holds Redis connection configuration for the session store.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Timeouts (defaults: Dial=5s, Read=3s, Write=3s).
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Store implements session.Repo on Redis. One key per identity; SET with TTL
// makes the upsert atomic (last writer wins, never a partial record), and DEL
// is synchronous and idempotent, which is exactly the store contract logout
// depends on.
type Store struct {
	client redis.UniversalClient
}

var _ session.Repo = (*Store)(nil)

// storedRecord is the JSON shape kept under each session key.
type storedRecord struct {
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// New connects to Redis and verifies the connection before returning a store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client. Used by tests with miniredis.
func NewWithClient(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Upsert(ctx context.Context, providerID, refreshToken string, ttl time.Duration) error {
	payload, err := json.Marshal(storedRecord{
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(providerID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session record: %w", err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, providerID string) (*session.Record, error) {
	raw, err := s.client.Get(ctx, sessionKey(providerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session record: %w", err)
	}

	var stored storedRecord
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("unmarshal session record: %w", err)
	}

	return &session.Record{
		ProviderID:   providerID,
		RefreshToken: stored.RefreshToken,
		ExpiresAt:    time.Unix(stored.ExpiresAt, 0),
	}, nil
}

func (s *Store) Delete(ctx context.Context, providerID string) error {
	if err := s.client.Del(ctx, sessionKey(providerID)).Err(); err != nil {
		return fmt.Errorf("delete session record: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func sessionKey(providerID string) string {
	return keyPrefix + providerID
}
