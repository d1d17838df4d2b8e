package config

import (
	"strconv"
	"time"
)

// SecurityConfig exposes the token-signing parameters. The values are read
// once at startup and handed to the token codec as an immutable snapshot;
// nothing mutates them for the lifetime of the process.
type SecurityConfig interface {
	GetJWTSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "dev-only-insecure-secret")
}

func (Security) GetAccessTokenExpiry() time.Duration {
	return durationEnv("JWT_EXPIRATION_SECONDS", 1*time.Hour)
}

func (Security) GetRefreshTokenExpiry() time.Duration {
	return durationEnv("JWT_REFRESH_EXPIRATION_SECONDS", 7*24*time.Hour)
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
