package server

import (
	"net/http"

	apperrors "github.com/tangerineshop/shop-server/internal/errors"
	"github.com/tangerineshop/shop-server/orders"
)

func (s *Server) CreateOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orders.CreateRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "invalid request body")
			return
		}

		order, err := s.orders.Create(r.Context(), identityFromContext(r.Context()), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	}
}

func (s *Server) ListOrdersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listed, err := s.orders.ListByUser(r.Context(), identityFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listed)
	}
}

// GetOrderHandler returns one order. Callers only see their own orders.
func (s *Server) GetOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := pathID(r, "orderID")
		if !ok {
			badRequest(w, "invalid order id")
			return
		}

		order, err := s.ownedOrder(r, orderID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

func (s *Server) CancelOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := pathID(r, "orderID")
		if !ok {
			badRequest(w, "invalid order id")
			return
		}

		if _, err := s.ownedOrder(r, orderID); err != nil {
			writeError(w, err)
			return
		}
		if err := s.orders.Cancel(r.Context(), orderID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}
}

// ownedOrder loads the order and hides other users' orders behind a 404.
func (s *Server) ownedOrder(r *http.Request, orderID int64) (*orders.Order, error) {
	order, err := s.orders.Get(r.Context(), orderID)
	if err != nil {
		return nil, err
	}
	if order.ProviderID != identityFromContext(r.Context()) {
		return nil, apperrors.ErrOrderNotFound
	}
	return order, nil
}
