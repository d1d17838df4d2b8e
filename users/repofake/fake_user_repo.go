package repofake

import (
	"context"
	"sync"

	apperrors "github.com/tangerineshop/shop-server/internal/errors"
	"github.com/tangerineshop/shop-server/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	byProviderID map[string]*users.User
	lock         sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		byProviderID: make(map[string]*users.User),
	}
}

func (r *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	copied := *user
	r.byProviderID[user.ProviderID] = &copied
	return nil
}

func (r *FakeUserRepo) GetByProviderID(_ context.Context, providerID string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.byProviderID[providerID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *FakeUserRepo) ExistsByProviderID(_ context.Context, providerID string) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	_, ok := r.byProviderID[providerID]
	return ok, nil
}

func (r *FakeUserRepo) UpdateAddress(_ context.Context, providerID string, address users.Address) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	user, ok := r.byProviderID[providerID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.Address = address
	return nil
}

func (r *FakeUserRepo) Delete(_ context.Context, providerID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.byProviderID, providerID)
	return nil
}
