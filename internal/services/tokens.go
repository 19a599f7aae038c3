package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zaroda/school-backend/internal/models"
)

// TokenIssuer signs bearer tokens that identify the current session to API clients.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Secret is the HS256 key the JWT middleware verifies tokens with.
func (t *TokenIssuer) Secret() []byte { return t.secret }

// Issue returns a signed HS256 token for user and its expiry time.
func (t *TokenIssuer) Issue(user models.AuthUser) (string, time.Time, error) {
	if len(t.secret) == 0 {
		return "", time.Time{}, errors.New("token secret is not configured")
	}
	now := t.now()
	exp := now.Add(t.expiry)
	claims := jwt.MapClaims{
		"sub":         user.ID,
		"email":       user.Email,
		"role":        string(user.Role),
		"school_code": user.SchoolCode,
		"iat":         now.Unix(),
		"exp":         exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
