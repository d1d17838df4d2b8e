package server

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/tangerineshop/shop-server/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyProviderID stores the authenticated user's provider ID
	ContextKeyProviderID ContextKey = "provider_id"
	// ContextKeyAuthorities stores the granted authorities of the caller
	ContextKeyAuthorities ContextKey = "authorities"
)

// bearerToken extracts the raw token from the Authorization header, or ""
// when the header is absent or not a Bearer credential.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// identityFromContext returns the provider ID installed by RequireAuth or
// the reissue filter, or "" when the request carries no identity.
func identityFromContext(ctx context.Context) string {
	providerID, _ := ctx.Value(ContextKeyProviderID).(string)
	return providerID
}

func authoritiesFromContext(ctx context.Context) []string {
	authorities, _ := ctx.Value(ContextKeyAuthorities).([]string)
	return authorities
}

func withIdentity(ctx context.Context, providerID string, authorities []string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyProviderID, providerID)
	return context.WithValue(ctx, ContextKeyAuthorities, authorities)
}

// RequireAuth validates the Bearer access token strictly. An expired token is
// rejected here; only the reissue route accepts expired tokens, through its
// own filter.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rawToken := bearerToken(r)
			if rawToken == "" {
				writeError(w, token.ErrMalformedCredential)
				return
			}

			claims, err := s.codec.ParseStrict(rawToken)
			if err != nil {
				writeError(w, err)
				return
			}
			if claims.Subject == "" {
				writeError(w, token.ErrMalformedCredential)
				return
			}

			r = r.WithContext(withIdentity(r.Context(), claims.Subject, claims.GrantedAuthorities()))
			next(w, r)
		}
	}
}

// RequireAuthority rejects callers whose token does not grant the required
// authority. The provisional anonymous role installed by the reissue filter
// never passes this check.
func (s *Server) RequireAuthority(required string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authorities := authoritiesFromContext(r.Context())
			if required == token.AnonymousAuthority || !slices.Contains(authorities, required) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false,"error":{"code":"FORBIDDEN","message":"insufficient authority"}}`))
				return
			}
			next(w, r)
		}
	}
}
