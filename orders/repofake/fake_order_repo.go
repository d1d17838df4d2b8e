package repofake

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/tangerineshop/shop-server/internal/errors"
	"github.com/tangerineshop/shop-server/orders"
)

var _ orders.Repo = (*FakeOrderRepo)(nil)

type FakeOrderRepo struct {
	byID   map[int64]*orders.Order
	nextID int64
	lock   sync.RWMutex
}

func NewFakeOrderRepo() *FakeOrderRepo {
	return &FakeOrderRepo{
		byID:   make(map[int64]*orders.Order),
		nextID: 1,
	}
}

func (r *FakeOrderRepo) Create(_ context.Context, order *orders.Order) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	order.ID = r.nextID
	r.nextID++

	copied := *order
	r.byID[order.ID] = &copied
	return nil
}

func (r *FakeOrderRepo) GetByID(_ context.Context, orderID int64) (*orders.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	order, ok := r.byID[orderID]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *FakeOrderRepo) ListByProviderID(_ context.Context, providerID string) ([]*orders.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	result := make([]*orders.Order, 0)
	for _, order := range r.byID {
		if order.ProviderID == providerID {
			copied := *order
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *FakeOrderRepo) UpdateStatus(_ context.Context, orderID int64, status orders.Status) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	order, ok := r.byID[orderID]
	if !ok {
		return apperrors.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (r *FakeOrderRepo) Delete(_ context.Context, orderID int64) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.byID[orderID]; !ok {
		return apperrors.ErrOrderNotFound
	}
	delete(r.byID, orderID)
	return nil
}

func (r *FakeOrderRepo) ListProcessingBefore(_ context.Context, cutoff time.Time) ([]*orders.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	result := make([]*orders.Order, 0)
	for _, order := range r.byID {
		if order.Status == orders.StatusProcessing && order.CreatedAt.Before(cutoff) {
			copied := *order
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
