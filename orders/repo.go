package orders

import (
	"context"
	"time"
)

// Repo persists orders. Create assigns the order its ID.
type Repo interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, orderID int64) (*Order, error)
	ListByProviderID(ctx context.Context, providerID string) ([]*Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status Status) error
	Delete(ctx context.Context, orderID int64) error
	ListProcessingBefore(ctx context.Context, cutoff time.Time) ([]*Order, error)
}
