package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	apperrors "github.com/tangerineshop/shop-server/internal/errors"
	"github.com/tangerineshop/shop-server/token"
	"github.com/tangerineshop/shop-server/users"
)

type generateTokenRequest struct {
	ProviderID  string   `json:"providerId"`
	Nickname    string   `json:"nickname"`
	Authorities []string `json:"authorities"`
}

// GenerateTokenHandler issues a token pair directly from a provider ID,
// bypassing social login. Frontend development against a local server needs
// working tokens without a Kakao round trip.
func (s *Server) GenerateTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateTokenRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "invalid request body")
			return
		}
		if req.ProviderID == "" {
			badRequest(w, "providerId is required")
			return
		}

		_, err := s.users.GetByProviderID(r.Context(), req.ProviderID)
		if errors.Is(err, apperrors.ErrUserNotFound) {
			err = s.users.Upsert(r.Context(), &users.User{
				ID:         uuid.NewString(),
				ProviderID: req.ProviderID,
				Nickname:   req.Nickname,
				Address:    users.DefaultAddress(),
				Deletable:  true,
			})
		}
		if err != nil {
			writeError(w, err)
			return
		}

		authorities := req.Authorities
		if len(authorities) == 0 {
			authorities = []string{token.DefaultAuthority}
		}

		pair, err := s.sessions.Issue(r.Context(), req.ProviderID, authorities)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

// ReissueHandler exchanges an expired-but-genuine access token for a fresh
// pair. The session manager does all the vetting; the stored refresh token is
// the real renewal authority.
func (s *Server) ReissueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawToken := bearerToken(r)
		if rawToken == "" {
			writeError(w, token.ErrMalformedCredential)
			return
		}

		pair, err := s.sessions.Reissue(r.Context(), rawToken)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

// LogoutHandler terminates the caller's session. RequireAuth has already
// vetted the token strictly, so an expired token never reaches this point.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessions.Invalidate(r.Context(), bearerToken(r)); err != nil {
			writeError(w, err)
			return
		}
		log.Info().Str("provider_id", identityFromContext(r.Context())).Msg("user logged out")
		writeJSON(w, http.StatusOK, nil)
	}
}
