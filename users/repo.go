package users

import "context"

// Repo stores users keyed by their external provider ID.
type Repo interface {
	Upsert(ctx context.Context, user *User) error
	GetByProviderID(ctx context.Context, providerID string) (*User, error)
	ExistsByProviderID(ctx context.Context, providerID string) (bool, error)
	UpdateAddress(ctx context.Context, providerID string, address Address) error
	Delete(ctx context.Context, providerID string) error
}
