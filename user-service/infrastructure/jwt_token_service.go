package infrastructure

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/venuehub/registration-system/shared/models"
	"github.com/venuehub/registration-system/user-service/domain"
)

// JWTTokenService implements TokenService with HMAC-signed JWTs for access
// tokens and opaque random tokens for refresh tokens.
type JWTTokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// NewJWTTokenService creates a token service signing with the given secret
func NewJWTTokenService(secret, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
	}
}

// WithTTLs overrides the access and refresh token lifetimes
func (s *JWTTokenService) WithTTLs(accessTTL, refreshTTL time.Duration) *JWTTokenService {
	s.accessTTL = accessTTL
	s.refreshTTL = refreshTTL
	return s
}

// accessClaims are the registered claims plus the user's email
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// MintAccessToken issues a signed access token for the user
func (s *JWTTokenService) MintAccessToken(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expiry := now.Add(s.accessTTL)

	claims := accessClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        models.GenerateUUID().String(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign access token")
	}

	return token, expiry, nil
}

// MintRefreshToken issues an opaque refresh token
func (s *JWTTokenService) MintRefreshToken() (string, time.Time, error) {
	return models.GenerateUUID().String(), s.now().Add(s.refreshTTL), nil
}

// VerifyAccessToken validates a signed access token and returns the user ID
func (s *JWTTokenService) VerifyAccessToken(token string) (string, error) {
	var claims accessClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", errors.Wrap(err, "invalid access token")
	}

	if !parsed.Valid {
		return "", errors.New("invalid access token")
	}

	return claims.Subject, nil
}

var _ domain.TokenService = (*JWTTokenService)(nil)
