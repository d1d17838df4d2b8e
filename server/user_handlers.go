package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	apperrors "github.com/tangerineshop/shop-server/internal/errors"
	"github.com/tangerineshop/shop-server/users"
)

// UserProfileHandler returns the caller's stored profile.
func (s *Server) UserProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.users.GetByProviderID(r.Context(), identityFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// UpdateAddressHandler replaces the caller's delivery address.
func (s *Server) UpdateAddressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var address users.Address
		if err := decodeBody(r, &address); err != nil {
			badRequest(w, "invalid request body")
			return
		}
		if address.Zipcode == "" || address.Address == "" {
			badRequest(w, "zipcode and address are required")
			return
		}

		if err := s.users.UpdateAddress(r.Context(), identityFromContext(r.Context()), address); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, address)
	}
}

type mileageResponse struct {
	Mileage int `json:"mileage"`
}

// UserMileageHandler returns the caller's spendable mileage balance.
func (s *Server) UserMileageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.users.GetByProviderID(r.Context(), identityFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mileageResponse{Mileage: user.Mileage})
	}
}

// DeleteAccountHandler removes the caller's account and terminates their
// session. Accounts flagged non-deletable are protected demo data.
func (s *Server) DeleteAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID := identityFromContext(r.Context())

		user, err := s.users.GetByProviderID(r.Context(), providerID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !user.Deletable {
			writeError(w, apperrors.ErrUserNotDeletable)
			return
		}

		if err := s.sessions.Invalidate(r.Context(), bearerToken(r)); err != nil {
			writeError(w, err)
			return
		}
		if err := s.users.Delete(r.Context(), providerID); err != nil {
			writeError(w, err)
			return
		}
		log.Info().Str("provider_id", providerID).Msg("deleted user account")
		writeJSON(w, http.StatusOK, nil)
	}
}
