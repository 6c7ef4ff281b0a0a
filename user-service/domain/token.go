package domain

import "time"

// TokenPair is the credential set handed to a client after login or refresh
type TokenPair struct {
	AccessToken   string    `json:"access_token"`
	AccessExpiry  time.Time `json:"access_expiry"`
	RefreshToken  string    `json:"refresh_token"`
	RefreshExpiry time.Time `json:"refresh_expiry"`
}

// TokenService mints and verifies client credentials
type TokenService interface {
	// MintAccessToken issues a signed access token for the user
	MintAccessToken(user *User) (token string, expiry time.Time, err error)

	// MintRefreshToken issues an opaque refresh token
	MintRefreshToken() (token string, expiry time.Time, err error)

	// VerifyAccessToken validates a signed access token and returns the
	// user ID it was issued for
	VerifyAccessToken(token string) (userID string, err error)
}
