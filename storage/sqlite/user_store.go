package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/tangerineshop/shop-server/internal/errors"
	"github.com/tangerineshop/shop-server/users"
)

var _ users.Repo = (*UserStore)(nil)

// UserStore persists users keyed by their external provider ID.
type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Upsert(ctx context.Context, user *users.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.sqlDB.ExecContext(ctx,
		`INSERT INTO users (
		   id, provider_id, nickname, zipcode, address, address_detail,
		   mileage, recent_total, deletable, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(provider_id) DO UPDATE SET
		   nickname = excluded.nickname,
		   zipcode = excluded.zipcode,
		   address = excluded.address,
		   address_detail = excluded.address_detail,
		   mileage = excluded.mileage,
		   recent_total = excluded.recent_total,
		   deletable = excluded.deletable`,
		user.ID,
		user.ProviderID,
		user.Nickname,
		user.Address.Zipcode,
		user.Address.Address,
		user.Address.AddressDetail,
		user.Mileage,
		user.RecentTotal,
		user.Deletable,
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("[Upsert] store user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByProviderID(ctx context.Context, providerID string) (*users.User, error) {
	row := s.db.sqlDB.QueryRowContext(ctx,
		`SELECT id, provider_id, nickname, zipcode, address, address_detail,
		        mileage, recent_total, deletable, created_at
		   FROM users WHERE provider_id = ?`, providerID)

	var user users.User
	var createdAt int64
	err := row.Scan(
		&user.ID,
		&user.ProviderID,
		&user.Nickname,
		&user.Address.Zipcode,
		&user.Address.Address,
		&user.Address.AddressDetail,
		&user.Mileage,
		&user.RecentTotal,
		&user.Deletable,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[GetByProviderID] scan user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	return &user, nil
}

func (s *UserStore) ExistsByProviderID(ctx context.Context, providerID string) (bool, error) {
	var one int
	err := s.db.sqlDB.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE provider_id = ?`, providerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("[ExistsByProviderID] query user: %w", err)
	}
	return true, nil
}

func (s *UserStore) UpdateAddress(ctx context.Context, providerID string, address users.Address) error {
	result, err := s.db.sqlDB.ExecContext(ctx,
		`UPDATE users SET zipcode = ?, address = ?, address_detail = ?
		  WHERE provider_id = ?`,
		address.Zipcode, address.Address, address.AddressDetail, providerID)
	if err != nil {
		return fmt.Errorf("[UpdateAddress] update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("[UpdateAddress] rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, providerID string) error {
	result, err := s.db.sqlDB.ExecContext(ctx,
		`DELETE FROM users WHERE provider_id = ?`, providerID)
	if err != nil {
		return fmt.Errorf("[Delete] delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("[Delete] rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
