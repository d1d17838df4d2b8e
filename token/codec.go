package token

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DefaultAuthority is the single role granted when a parsed token carries no
// authorities claim.
const DefaultAuthority = "ROLE_USER"

// AnonymousAuthority is the non-privileged role carried by a provisional
// identity during token reissue. It must never satisfy RequireAuthority.
const AnonymousAuthority = "ROLE_ANONYMOUS"

// Claims is the decoded payload of a signed bearer token.
type Claims struct {
	Subject     string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Authorities []string
}

// GrantedAuthorities returns the token's authorities, or the single default
// role when the claim was absent. Absent never means zero roles.
func (c *Claims) GrantedAuthorities() []string {
	if len(c.Authorities) == 0 {
		return []string{DefaultAuthority}
	}
	return c.Authorities
}

// Codec signs and parses bearer tokens using a single symmetric secret shared
// by the whole process. The secret and clock are fixed at construction; a
// Codec is safe for concurrent use.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec from the process-wide signing secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Sign creates a signed token for subject expiring after ttl. The authorities
// claim is embedded as a comma-delimited list only when non-empty. Each token
// carries a random jti so two tokens signed in the same second still differ,
// which is what makes refresh token rotation observable.
func (c *Codec) Sign(subject string, authorities []string, ttl time.Duration) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub": subject,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if len(authorities) > 0 {
		claims["authorities"] = strings.Join(authorities, ",")
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseStrict verifies the signature and decodes the claims, rejecting tokens
// whose expiry has passed. Expiry is fail-closed: now == exp counts expired.
func (c *Codec) ParseStrict(rawToken string) (*Claims, error) {
	claims, err := c.parse(rawToken)
	if err != nil {
		return nil, err
	}
	if !NowTimeFunc().Before(claims.ExpiresAt) {
		return nil, ErrExpiredCredential
	}
	return claims, nil
}

// ParseTolerant verifies the signature exactly as ParseStrict, but returns the
// decoded claims even when the token has expired. The reissue path needs a
// genuine-but-expired access token to learn the caller's identity; a forged or
// corrupted token still fails with ErrMalformedCredential.
func (c *Codec) ParseTolerant(rawToken string) (*Claims, error) {
	return c.parse(rawToken)
}

// Validate reports whether ParseStrict would succeed.
func (c *Codec) Validate(rawToken string) bool {
	_, err := c.ParseStrict(rawToken)
	return err == nil
}

func (c *Codec) parse(rawToken string) (*Claims, error) {
	parsed, err := jwtlib.Parse(rawToken, c.verificationKey, jwtlib.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return nil, ErrMalformedCredential
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, ErrMalformedCredential
	}

	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return nil, ErrMalformedCredential
	}

	subject, _ := mapClaims["sub"].(string)
	iat, _ := mapClaims["iat"].(float64)

	claims := &Claims{
		Subject:   subject,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}
	if authorities, ok := mapClaims["authorities"].(string); ok && authorities != "" {
		claims.Authorities = strings.Split(authorities, ",")
	}
	return claims, nil
}

func (c *Codec) verificationKey(t *jwtlib.Token) (any, error) {
	if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.secret, nil
}
