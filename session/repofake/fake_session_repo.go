package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/tangerineshop/shop-server/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	records map[string]session.Record
	lock    sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		records: make(map[string]session.Record),
	}
}

func (r *FakeSessionRepo) Upsert(_ context.Context, providerID, refreshToken string, ttl time.Duration) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.records[providerID] = session.Record{
		ProviderID:   providerID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(ttl),
	}
	return nil
}

func (r *FakeSessionRepo) Find(_ context.Context, providerID string) (*session.Record, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	record, ok := r.records[providerID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *FakeSessionRepo) Delete(_ context.Context, providerID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.records, providerID)
	return nil
}

// Len reports the number of stored records.
func (r *FakeSessionRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.records)
}
