package token

// Pair carries a freshly issued access and refresh token. It is produced on
// demand, handed to the caller once, and never persisted as a pair.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
