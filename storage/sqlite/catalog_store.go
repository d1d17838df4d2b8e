package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tangerineshop/shop-server/catalog"
	apperrors "github.com/tangerineshop/shop-server/internal/errors"
)

var _ catalog.Repo = (*CatalogStore)(nil)

// CatalogStore persists items and categories. Item-to-category links live in
// a join table and are replaced wholesale on every item upsert.
type CatalogStore struct {
	db *DB
}

func NewCatalogStore(db *DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) UpsertItem(ctx context.Context, item *catalog.Item) error {
	tx, err := s.db.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("[UpsertItem] begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if item.ID == 0 {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO items (name, price, brand, image_path, is_new)
			 VALUES (?, ?, ?, ?, ?)`,
			item.Name, item.Price, item.Brand, item.ImagePath, item.IsNew)
		if err != nil {
			return fmt.Errorf("[UpsertItem] insert item: %w", err)
		}
		item.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("[UpsertItem] last insert id: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, name, price, brand, image_path, is_new)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name,
			   price = excluded.price,
			   brand = excluded.brand,
			   image_path = excluded.image_path,
			   is_new = excluded.is_new`,
			item.ID, item.Name, item.Price, item.Brand, item.ImagePath, item.IsNew)
		if err != nil {
			return fmt.Errorf("[UpsertItem] upsert item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM item_categories WHERE item_id = ?`, item.ID); err != nil {
		return fmt.Errorf("[UpsertItem] clear category links: %w", err)
	}
	for _, categoryID := range item.CategoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO item_categories (item_id, category_id) VALUES (?, ?)`,
			item.ID, categoryID); err != nil {
			return fmt.Errorf("[UpsertItem] link category %d: %w", categoryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("[UpsertItem] commit: %w", err)
	}
	return nil
}

func (s *CatalogStore) GetItem(ctx context.Context, itemID int64) (*catalog.Item, error) {
	row := s.db.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, price, brand, image_path, is_new FROM items WHERE id = ?`, itemID)

	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[GetItem] scan item: %w", err)
	}

	item.CategoryIDs, err = s.itemCategoryIDs(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CatalogStore) ListNewItems(ctx context.Context) ([]*catalog.Item, error) {
	return s.listItems(ctx,
		`SELECT id, name, price, brand, image_path, is_new
		   FROM items WHERE is_new = 1 ORDER BY id`)
}

func (s *CatalogStore) ListItemsByCategory(ctx context.Context, categoryID int64) ([]*catalog.Item, error) {
	return s.listItems(ctx,
		`SELECT i.id, i.name, i.price, i.brand, i.image_path, i.is_new
		   FROM items i
		   JOIN item_categories ic ON ic.item_id = i.id
		  WHERE ic.category_id = ? ORDER BY i.id`, categoryID)
}

func (s *CatalogStore) UpsertCategory(ctx context.Context, category *catalog.Category) error {
	if category.ID == 0 {
		result, err := s.db.sqlDB.ExecContext(ctx,
			`INSERT INTO categories (name) VALUES (?)`, category.Name)
		if err != nil {
			return fmt.Errorf("[UpsertCategory] insert category: %w", err)
		}
		category.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("[UpsertCategory] last insert id: %w", err)
		}
		return nil
	}

	_, err := s.db.sqlDB.ExecContext(ctx,
		`INSERT INTO categories (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		category.ID, category.Name)
	if err != nil {
		return fmt.Errorf("[UpsertCategory] upsert category: %w", err)
	}
	return nil
}

func (s *CatalogStore) GetCategory(ctx context.Context, categoryID int64) (*catalog.Category, error) {
	var category catalog.Category
	err := s.db.sqlDB.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = ?`, categoryID).
		Scan(&category.ID, &category.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[GetCategory] scan category: %w", err)
	}
	return &category, nil
}

func (s *CatalogStore) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	rows, err := s.db.sqlDB.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("[ListCategories] query categories: %w", err)
	}
	defer rows.Close()

	result := make([]*catalog.Category, 0)
	for rows.Next() {
		var category catalog.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("[ListCategories] scan category: %w", err)
		}
		result = append(result, &category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[ListCategories] iterate categories: %w", err)
	}
	return result, nil
}

func (s *CatalogStore) listItems(ctx context.Context, query string, args ...any) ([]*catalog.Item, error) {
	rows, err := s.db.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("[listItems] query items: %w", err)
	}
	defer rows.Close()

	result := make([]*catalog.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("[listItems] scan item: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[listItems] iterate items: %w", err)
	}
	return result, nil
}

func (s *CatalogStore) itemCategoryIDs(ctx context.Context, itemID int64) ([]int64, error) {
	rows, err := s.db.sqlDB.QueryContext(ctx,
		`SELECT category_id FROM item_categories WHERE item_id = ? ORDER BY category_id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("[itemCategoryIDs] query links: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("[itemCategoryIDs] scan link: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[itemCategoryIDs] iterate links: %w", err)
	}
	return ids, nil
}

func scanItem(scan func(dest ...any) error) (*catalog.Item, error) {
	var item catalog.Item
	if err := scan(&item.ID, &item.Name, &item.Price, &item.Brand, &item.ImagePath, &item.IsNew); err != nil {
		return nil, err
	}
	return &item, nil
}
