package config

import "strings"

// KakaoConfig holds the upstream identity-provider settings for social login.
type KakaoConfig interface {
	GetKakaoIssuer() string
	GetKakaoClientID() string
	GetKakaoClientSecret() string
	GetKakaoRedirectURL() string
	GetFrontendRedirects() []string
	GetDefaultFrontendRedirect() string
}

type Kakao struct{}

var _ KakaoConfig = Kakao{}

func (Kakao) GetKakaoIssuer() string {
	return GetEnv("KAKAO_ISSUER", "https://kauth.kakao.com")
}

func (Kakao) GetKakaoClientID() string {
	return GetEnv("KAKAO_CLIENT_ID", "")
}

func (Kakao) GetKakaoClientSecret() string {
	return GetEnv("KAKAO_CLIENT_SECRET", "")
}

func (Kakao) GetKakaoRedirectURL() string {
	return GetEnv("KAKAO_REDIRECT_URL", "http://localhost:8080/auth/kakao/callback")
}

// GetFrontendRedirects is the whitelist of frontends the login callback may
// redirect to. Anything else falls back to the default.
func (Kakao) GetFrontendRedirects() []string {
	raw := GetEnv("FRONTEND_REDIRECTS", "https://tangerine-likelion.netlify.app/,http://localhost:3000")
	parts := strings.Split(raw, ",")
	redirects := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			redirects = append(redirects, trimmed)
		}
	}
	return redirects
}

func (k Kakao) GetDefaultFrontendRedirect() string {
	return k.GetFrontendRedirects()[0]
}
