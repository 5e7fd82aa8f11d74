package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/guard"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  models.Identity
}

// Login verifies credentials and issues a session token.
func (e *Engine) Login(ctx context.Context, email, password, origin string) (*Session, error) {
	identity, err := e.users.VerifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			e.observer.AuthFailed("bad_credentials")
			e.logger.Info(ctx, "login failed", "origin", origin)
		}
		return nil, err
	}

	token, expiresAt, err := e.issuer.Issue(identity.ID, identity.Role)
	if err != nil {
		return nil, err
	}
	e.observer.TokenIssued(KindSession)
	e.record(ctx, identity.ID, activity.ActionLogin, "", origin)

	return &Session{Token: token, ExpiresAt: expiresAt, Identity: *identity}, nil
}

// ValidateSession checks signature and expiry only; there is no server-side
// session state and no revocation.
func (e *Engine) ValidateSession(token string) (guard.Principal, error) {
	claims, err := e.issuer.Parse(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			e.observer.AuthFailed("expired_session")
		} else {
			e.observer.AuthFailed("invalid_session")
		}
		return guard.Principal{}, err
	}
	return guard.Principal{ID: claims.UserID, Role: claims.Role}, nil
}
