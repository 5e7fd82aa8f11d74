package tokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/mailer"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/users"
)

// The stored reset token is "<hex token>.<issued unix millis>".
func encodeResetToken(token string, issued time.Time) string {
	return token + "." + strconv.FormatInt(issued.UnixMilli(), 10)
}

func resetIssuedAt(stored string) (time.Time, bool) {
	_, ms, ok := strings.Cut(stored, ".")
	if !ok {
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(n), true
}

var (
	errResetUnknown = fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrorNotFound)
	errResetExpired = fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
)

// checkReset finds the identity holding token and verifies its age.
func (e *Engine) checkReset(doc *models.Document, token string) (*models.Identity, error) {
	identity := doc.IdentityByResetToken(token)
	if identity == nil {
		return nil, errResetUnknown
	}
	issued, ok := resetIssuedAt(identity.ResetToken)
	if !ok {
		return nil, errResetUnknown
	}
	if !e.clock.Now().Before(issued.Add(e.resetTTL)) {
		return nil, errResetExpired
	}
	return identity, nil
}

// RequestReset issues a reset token for email and mails the link. The result
// is the same whether or not the email is registered; only store failures
// are returned. A new request replaces any outstanding token.
func (e *Engine) RequestReset(ctx context.Context, email, origin string) error {
	email = strings.TrimSpace(email)
	token, err := common.MakeRandHexString(common.TokenBytes)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	stored := encodeResetToken(token, e.clock.Now())

	var identityID string
	err = e.store.Update(ctx, func(doc *models.Document) error {
		identity := doc.IdentityByEmail(email)
		if identity == nil || !identity.CanLogin() {
			return errNoChange
		}
		identity.ResetToken = stored
		identityID = identity.ID
		return nil
	})
	if errors.Is(err, errNoChange) {
		e.logger.Debug(ctx, "reset requested for unknown email", "origin", origin)
		return nil
	}
	if err != nil {
		return err
	}

	e.observer.TokenIssued(KindReset)
	e.notify(ctx, mailer.ResetMessage(email, e.link("reset", token)))
	e.record(ctx, identityID, activity.ActionResetRequested, "", origin)
	return nil
}

// ValidateResetToken returns the email the token was issued for. Unknown
// tokens match common.ErrorNotFound and expired ones common.ErrTokenExpired;
// both also match common.ErrInvalidToken.
func (e *Engine) ValidateResetToken(ctx context.Context, token string) (string, error) {
	var email string
	err := e.store.View(ctx, func(doc *models.Document) error {
		identity, err := e.checkReset(doc, token)
		if err != nil {
			return err
		}
		email = identity.Email
		return nil
	})
	return email, err
}

// ConsumeReset sets a new password using token. Freshness is checked again
// here, and the token is cleared in the same store update that replaces the
// password, so it can be used only once.
func (e *Engine) ConsumeReset(ctx context.Context, token, newPassword, origin string) error {
	if err := users.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := e.users.HashPassword(newPassword)
	if err != nil {
		return err
	}

	var identityID, email string
	err = e.store.Update(ctx, func(doc *models.Document) error {
		identity, err := e.checkReset(doc, token)
		if err != nil {
			return err
		}
		identity.PasswordHash = hash
		identity.ResetToken = ""
		identityID, email = identity.ID, identity.Email
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			e.observer.AuthFailed("invalid_reset_token")
		}
		return err
	}

	e.logger.Info(ctx, "password reset", "user_id", identityID)
	e.notify(ctx, mailer.PasswordChangedMessage(email))
	e.record(ctx, identityID, activity.ActionResetConsumed, "", origin)
	return nil
}
