package repofake

import (
	"context"
	"sort"
	"sync"

	"github.com/tangerineshop/shop-server/catalog"
	apperrors "github.com/tangerineshop/shop-server/internal/errors"
)

var _ catalog.Repo = (*FakeCatalogRepo)(nil)

type FakeCatalogRepo struct {
	items          map[int64]*catalog.Item
	categories     map[int64]*catalog.Category
	nextItemID     int64
	nextCategoryID int64
	lock           sync.RWMutex
}

func NewFakeCatalogRepo() *FakeCatalogRepo {
	return &FakeCatalogRepo{
		items:          make(map[int64]*catalog.Item),
		categories:     make(map[int64]*catalog.Category),
		nextItemID:     1,
		nextCategoryID: 1,
	}
}

func (r *FakeCatalogRepo) UpsertItem(_ context.Context, item *catalog.Item) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if item.ID == 0 {
		item.ID = r.nextItemID
		r.nextItemID++
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *FakeCatalogRepo) GetItem(_ context.Context, itemID int64) (*catalog.Item, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return nil, apperrors.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *FakeCatalogRepo) ListNewItems(_ context.Context) ([]*catalog.Item, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	items := make([]*catalog.Item, 0)
	for _, item := range r.items {
		if item.IsNew {
			copied := *item
			items = append(items, &copied)
		}
	}
	sortItems(items)
	return items, nil
}

func (r *FakeCatalogRepo) ListItemsByCategory(_ context.Context, categoryID int64) ([]*catalog.Item, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if _, ok := r.categories[categoryID]; !ok {
		return nil, apperrors.ErrCategoryNotFound
	}

	items := make([]*catalog.Item, 0)
	for _, item := range r.items {
		for _, id := range item.CategoryIDs {
			if id == categoryID {
				copied := *item
				items = append(items, &copied)
				break
			}
		}
	}
	sortItems(items)
	return items, nil
}

func (r *FakeCatalogRepo) UpsertCategory(_ context.Context, category *catalog.Category) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if category.ID == 0 {
		category.ID = r.nextCategoryID
		r.nextCategoryID++
	}
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

func (r *FakeCatalogRepo) GetCategory(_ context.Context, categoryID int64) (*catalog.Category, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	category, ok := r.categories[categoryID]
	if !ok {
		return nil, apperrors.ErrCategoryNotFound
	}
	copied := *category
	return &copied, nil
}

func (r *FakeCatalogRepo) ListCategories(_ context.Context) ([]*catalog.Category, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	categories := make([]*catalog.Category, 0, len(r.categories))
	for _, category := range r.categories {
		copied := *category
		categories = append(categories, &copied)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func sortItems(items []*catalog.Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
