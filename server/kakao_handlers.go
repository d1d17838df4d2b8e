package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tangerineshop/shop-server/internal/config"
	"github.com/tangerineshop/shop-server/server/flowstate"
	"github.com/tangerineshop/shop-server/token"
	"github.com/tangerineshop/shop-server/users"
	"golang.org/x/oauth2"
)

// KakaoAuthenticator drives the OIDC login flow against Kakao. Discovery
// happens once at construction.
type KakaoAuthenticator struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	cfg          config.KakaoConfig
}

func NewKakaoAuthenticator(ctx context.Context, cfg config.KakaoConfig) (*KakaoAuthenticator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.GetKakaoIssuer())
	if err != nil {
		return nil, fmt.Errorf("[NewKakaoAuthenticator] failed to create OIDC provider: %w", err)
	}

	return &KakaoAuthenticator{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GetKakaoClientID(),
			ClientSecret: cfg.GetKakaoClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.GetKakaoRedirectURL(),
			Scopes:       []string{oidc.ScopeOpenID, "profile_nickname"},
		},
		verifier: provider.Verifier(&oidc.Config{
			ClientID: cfg.GetKakaoClientID(),
		}),
		cfg: cfg,
	}, nil
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// KakaoLoginHandler starts the login flow: records the state and nonce, then
// sends the browser to Kakao's authorization endpoint.
func (s *Server) KakaoLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := generateRandomString(32)
		nonce := generateRandomString(32)

		redirectURL := r.URL.Query().Get("redirect")
		if !slices.Contains(s.config.GetFrontendRedirects(), redirectURL) {
			redirectURL = s.config.GetDefaultFrontendRedirect()
		}

		err := s.authState.Upsert(state, &flowstate.LoginFlow{
			Nonce:       nonce,
			RedirectURL: redirectURL,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		authURL := s.kakao.oauth2Config.AuthCodeURL(state, oidc.Nonce(nonce))
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// KakaoCallbackHandler finishes the flow: verifies the ID token, onboards the
// user on first login, opens a session, and hands the token pair back to the
// frontend via query parameters on the whitelisted redirect.
func (s *Server) KakaoCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errorParam := r.FormValue("error"); errorParam != "" {
			badRequest(w, fmt.Sprintf("authorization failed: %s - %s", errorParam, r.FormValue("error_description")))
			return
		}

		state := r.FormValue("state")
		code := r.FormValue("code")
		if code == "" || state == "" {
			badRequest(w, "missing code or state parameter")
			return
		}

		flow, err := s.authState.Get(state)
		if err != nil {
			badRequest(w, "invalid state parameter")
			return
		}
		// Clean up state after use
		if err := s.authState.Delete(state); err != nil {
			writeError(w, err)
			return
		}

		oauth2Token, err := s.kakao.oauth2Config.Exchange(r.Context(), code)
		if err != nil {
			writeError(w, fmt.Errorf("token exchange failed: %w", err))
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			writeError(w, errors.New("no ID token in response"))
			return
		}

		idToken, err := s.kakao.verifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			writeError(w, fmt.Errorf("ID token verification failed: %w", err))
			return
		}

		var claims struct {
			Nonce    string `json:"nonce"`
			Sub      string `json:"sub"`
			Nickname string `json:"nickname"`
		}
		if err := idToken.Claims(&claims); err != nil {
			writeError(w, fmt.Errorf("failed to extract claims: %w", err))
			return
		}

		// Validate nonce to prevent replay attacks
		if claims.Nonce != flow.Nonce {
			writeError(w, token.ErrMalformedCredential)
			return
		}

		if err := s.onboardUser(r.Context(), claims.Sub, claims.Nickname); err != nil {
			writeError(w, err)
			return
		}

		pair, err := s.sessions.Issue(r.Context(), claims.Sub, []string{token.DefaultAuthority})
		if err != nil {
			writeError(w, err)
			return
		}

		redirect, err := url.Parse(flow.RedirectURL)
		if err != nil {
			writeError(w, err)
			return
		}
		query := redirect.Query()
		query.Set("accessToken", pair.AccessToken)
		query.Set("refreshToken", pair.RefreshToken)
		redirect.RawQuery = query.Encode()

		http.Redirect(w, r, redirect.String(), http.StatusFound)
	}
}

// onboardUser creates the account on first social login. Existing users keep
// their stored profile; the provider's nickname is not re-synced.
func (s *Server) onboardUser(ctx context.Context, providerID, nickname string) error {
	exists, err := s.users.ExistsByProviderID(ctx, providerID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = s.users.Upsert(ctx, &users.User{
		ID:         uuid.NewString(),
		ProviderID: providerID,
		Nickname:   nickname,
		Address:    users.DefaultAddress(),
		Deletable:  true,
	})
	if err != nil {
		return fmt.Errorf("[onboardUser] create user: %w", err)
	}
	log.Info().Str("provider_id", providerID).Msg("onboarded new user")
	return nil
}
