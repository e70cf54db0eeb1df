package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the token was well-formed and correctly signed but
	// its expiry claim has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure: wrong secret,
	// cross-context token, tampered payload, malformed encoding.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the identity payload embedded in both token classes.
type Claims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and parses tokens under two independent contexts. An access
// token never validates under the refresh path and vice versa: the secrets
// differ and config validation enforces that.
type JWTManager struct {
	issuer        string
	audience      string
	accessSecret  []byte
	refreshSecret []byte
}

func NewJWTManager(issuer, audience, accessSecret, refreshSecret string) *JWTManager {
	return &JWTManager{
		issuer:        issuer,
		audience:      audience,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

func (m *JWTManager) SignAccessToken(userID uint, email, role string, ttl time.Duration) (string, error) {
	return m.sign(m.accessSecret, userID, email, role, ttl)
}

func (m *JWTManager) SignRefreshToken(userID uint, email, role string, ttl time.Duration) (string, error) {
	return m.sign(m.refreshSecret, userID, email, role, ttl)
}

func (m *JWTManager) ParseAccessToken(token string) (*Claims, error) {
	return m.parse(m.accessSecret, token)
}

func (m *JWTManager) ParseRefreshToken(token string) (*Claims, error) {
	return m.parse(m.refreshSecret, token)
}

func (m *JWTManager) sign(secret []byte, userID uint, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m *JWTManager) parse(secret []byte, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
