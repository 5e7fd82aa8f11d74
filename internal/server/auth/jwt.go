// Package auth signs and verifies the stateless HS256 session tokens. A token
// carries the identity id and role and is never stored server-side.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the session payload {id, role}.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"id"`
	Role   models.Role `json:"role"`
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  timex.Clock
}

func NewIssuer(secret []byte, ttl time.Duration, clock timex.Clock) *Issuer {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &Issuer{secret: secret, ttl: ttl, clock: clock}
}

// TTL is the fixed session lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a session token for userID valid for the issuer's TTL.
func (i *Issuer) Issue(userID string, role models.Role) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Role:   role,
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, expiresAt, nil
}

// Parse verifies signature and expiry. Every failure matches
// common.ErrInvalidToken; expiry additionally matches common.ErrTokenExpired.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	if _, err := models.ParseRole(string(claims.Role)); err != nil {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
