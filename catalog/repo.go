package catalog

import "context"

// Repo is the item and category lookup store.
type Repo interface {
	UpsertItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, itemID int64) (*Item, error)
	ListNewItems(ctx context.Context) ([]*Item, error)
	ListItemsByCategory(ctx context.Context, categoryID int64) ([]*Item, error)

	UpsertCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, categoryID int64) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
}
