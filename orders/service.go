package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tangerineshop/shop-server/catalog"
	apperrors "github.com/tangerineshop/shop-server/internal/errors"
	"github.com/tangerineshop/shop-server/users"
)

// accrualRate is the share of the final price credited back as mileage.
const accrualRate = 0.1

// CreateRequest is the payload for placing an order.
type CreateRequest struct {
	ItemID       int64 `json:"itemId"`
	Quantity     int   `json:"quantity"`
	MileageToUse int   `json:"mileageToUse"`
}

// Service carries the order bookkeeping: price and mileage arithmetic on
// create and cancel, plus completion of stale processing orders.
type Service struct {
	orders  Repo
	userCat users.Repo
	items   catalog.Repo
}

func NewService(orders Repo, userCat users.Repo, items catalog.Repo) (*Service, error) {
	if orders == nil {
		return nil, errors.New("[NewService] order repo is required")
	}
	if userCat == nil {
		return nil, errors.New("[NewService] user repo is required")
	}
	if items == nil {
		return nil, errors.New("[NewService] catalog repo is required")
	}
	return &Service{orders: orders, userCat: userCat, items: items}, nil
}

// finalPrice applies mileage to the order total. Usable mileage is capped at
// the total and the result never goes below zero.
func finalPrice(totalPrice, mileageToUse int) int {
	available := min(mileageToUse, totalPrice)
	return max(totalPrice-available, 0)
}

// Create places an order for the user, spends the requested mileage, accrues
// mileage on the paid amount, and updates the user's recent payment total.
func (s *Service) Create(ctx context.Context, providerID string, req CreateRequest) (*Order, error) {
	if req.Quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}

	user, err := s.userCat.GetByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	if req.MileageToUse < 0 || req.MileageToUse > user.Mileage {
		return nil, apperrors.ErrInvalidMileage
	}

	totalPrice := item.Price * req.Quantity
	paid := finalPrice(totalPrice, req.MileageToUse)

	if err := user.UseMileage(req.MileageToUse); err != nil {
		return nil, err
	}
	user.AddMileage(int(float64(paid) * accrualRate))
	user.UpdateRecentTotal(paid)

	order := &Order{
		ProviderID: providerID,
		ItemID:     item.ID,
		ItemName:   item.Name,
		Nickname:   user.Nickname,
		Quantity:   req.Quantity,
		TotalPrice: totalPrice,
		FinalPrice: paid,
		Status:     StatusProcessing,
		CreatedAt:  time.Now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("[Create] store order: %w", err)
	}
	if err := s.userCat.Upsert(ctx, user); err != nil {
		// Undo the order so a failed balance write never leaves a paid-for
		// order behind.
		if delErr := s.orders.Delete(ctx, order.ID); delErr != nil {
			log.Error().Err(delErr).Int64("order_id", order.ID).Msg("failed to undo order after balance write error")
		}
		return nil, fmt.Errorf("[Create] update user balance: %w", err)
	}

	return order, nil
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, orderID int64) (*Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// ListByUser returns all of a user's orders.
func (s *Service) ListByUser(ctx context.Context, providerID string) ([]*Order, error) {
	return s.orders.ListByProviderID(ctx, providerID)
}

// Cancel flips the order to CANCEL rather than deleting it. Completed and
// already-cancelled orders cannot be cancelled. The mileage accrued at
// purchase is clawed back, the spent mileage refunded, and the order total
// subtracted from the recent payment total.
func (s *Service) Cancel(ctx context.Context, orderID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status == StatusComplete || order.Status == StatusCancel {
		return apperrors.ErrOrderCancelFailed
	}

	user, err := s.userCat.GetByProviderID(ctx, order.ProviderID)
	if err != nil {
		return err
	}

	accrued := int(float64(order.FinalPrice) * accrualRate)
	if user.Mileage < accrued {
		return apperrors.ErrInvalidMileage
	}

	if err := s.orders.UpdateStatus(ctx, orderID, StatusCancel); err != nil {
		return fmt.Errorf("[Cancel] update order status: %w", err)
	}

	if err := user.UseMileage(accrued); err != nil {
		return err
	}
	user.AddMileage(order.MileageUsed())
	user.UpdateRecentTotal(-order.TotalPrice)

	if err := s.userCat.Upsert(ctx, user); err != nil {
		// Put the status back so a failed balance write does not cancel the
		// order without the refund.
		if restoreErr := s.orders.UpdateStatus(ctx, orderID, order.Status); restoreErr != nil {
			log.Error().Err(restoreErr).Int64("order_id", orderID).Msg("failed to restore order status after balance write error")
		}
		return fmt.Errorf("[Cancel] update user balance: %w", err)
	}
	return nil
}

// CompleteStale marks PROCESSING orders older than maxAge as COMPLETE and
// returns how many it flipped. Run periodically from main.
func (s *Service) CompleteStale(ctx context.Context, maxAge time.Duration) (int, error) {
	stale, err := s.orders.ListProcessingBefore(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("[CompleteStale] list orders: %w", err)
	}

	completed := 0
	for _, order := range stale {
		if err := s.orders.UpdateStatus(ctx, order.ID, StatusComplete); err != nil {
			log.Error().Err(err).Int64("order_id", order.ID).Msg("failed to complete stale order")
			continue
		}
		completed++
	}
	return completed, nil
}
