package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yudapratama/go-auth-api/pkg/apperrors"
)

// JWTManager issues and verifies signed bearer tokens. Verification is purely
// cryptographic plus the expiry check; there is no revocation list, so a token
// stays valid until it expires regardless of later account changes.
type JWTManager struct {
	Secret   []byte
	TokenTTL time.Duration
}

func NewJWTManager(secret string, tokenTTL time.Duration) *JWTManager {
	return &JWTManager{Secret: []byte(secret), TokenTTL: tokenTTL}
}

// Claims is the identity bundle embedded in every token.
type Claims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

// Issue signs a token carrying the given identity with the configured
// lifetime. It takes plain values so the helper stays free of domain types.
func (m *JWTManager) Issue(id, email, firstName, lastName string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.TokenTTL)
	claims := &Claims{
		UserID:    id,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Verify parses and validates a token string. An expired but otherwise valid
// token yields JWTExpiredError; any other failure yields JWTError, so callers
// can branch on the distinction.
func (m *JWTManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.JWTExpired("Token expired")
		}
		return nil, apperrors.JWT("Invalid token")
	}
	if !tkn.Valid {
		return nil, apperrors.JWT("Invalid token")
	}
	return claims, nil
}
