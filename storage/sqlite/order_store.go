package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/tangerineshop/shop-server/internal/errors"
	"github.com/tangerineshop/shop-server/orders"
)

var _ orders.Repo = (*OrderStore)(nil)

// OrderStore persists orders. Cancellation is a status change so the purchase
// history stays complete; Delete exists only to undo a create whose follow-up
// balance write failed.
type OrderStore struct {
	db *DB
}

func NewOrderStore(db *DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) Create(ctx context.Context, order *orders.Order) error {
	result, err := s.db.sqlDB.ExecContext(ctx,
		`INSERT INTO orders (
		   provider_id, item_id, item_name, nickname, quantity,
		   total_price, final_price, status, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ProviderID,
		order.ItemID,
		order.ItemName,
		order.Nickname,
		order.Quantity,
		order.TotalPrice,
		order.FinalPrice,
		string(order.Status),
		toMillis(order.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("[Create] insert order: %w", err)
	}
	order.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("[Create] last insert id: %w", err)
	}
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, orderID int64) (*orders.Order, error) {
	row := s.db.sqlDB.QueryRowContext(ctx,
		`SELECT id, provider_id, item_id, item_name, nickname, quantity,
		        total_price, final_price, status, created_at
		   FROM orders WHERE id = ?`, orderID)

	order, err := scanOrder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[GetByID] scan order: %w", err)
	}
	return order, nil
}

func (s *OrderStore) ListByProviderID(ctx context.Context, providerID string) ([]*orders.Order, error) {
	return s.listOrders(ctx,
		`SELECT id, provider_id, item_id, item_name, nickname, quantity,
		        total_price, final_price, status, created_at
		   FROM orders WHERE provider_id = ? ORDER BY id`, providerID)
}

func (s *OrderStore) UpdateStatus(ctx context.Context, orderID int64, status orders.Status) error {
	result, err := s.db.sqlDB.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, string(status), orderID)
	if err != nil {
		return fmt.Errorf("[UpdateStatus] update order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("[UpdateStatus] rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, orderID int64) error {
	result, err := s.db.sqlDB.ExecContext(ctx,
		`DELETE FROM orders WHERE id = ?`, orderID)
	if err != nil {
		return fmt.Errorf("[Delete] delete order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("[Delete] rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

func (s *OrderStore) ListProcessingBefore(ctx context.Context, cutoff time.Time) ([]*orders.Order, error) {
	return s.listOrders(ctx,
		`SELECT id, provider_id, item_id, item_name, nickname, quantity,
		        total_price, final_price, status, created_at
		   FROM orders WHERE status = ? AND created_at < ? ORDER BY id`,
		string(orders.StatusProcessing), toMillis(cutoff))
}

func (s *OrderStore) listOrders(ctx context.Context, query string, args ...any) ([]*orders.Order, error) {
	rows, err := s.db.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("[listOrders] query orders: %w", err)
	}
	defer rows.Close()

	result := make([]*orders.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("[listOrders] scan order: %w", err)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[listOrders] iterate orders: %w", err)
	}
	return result, nil
}

func scanOrder(scan func(dest ...any) error) (*orders.Order, error) {
	var order orders.Order
	var status string
	var createdAt int64
	err := scan(
		&order.ID,
		&order.ProviderID,
		&order.ItemID,
		&order.ItemName,
		&order.Nickname,
		&order.Quantity,
		&order.TotalPrice,
		&order.FinalPrice,
		&status,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = orders.Status(status)
	order.CreatedAt = fromMillis(createdAt)
	return &order, nil
}
