package tokens

import (
	"context"
	"fmt"
	"strings"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/cryptox"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/guard"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/mailer"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/quota"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/users"
	"github.com/google/uuid"
)

// Invite is a freshly created pending guest.
type Invite struct {
	GuestID    string
	GuestEmail string
	Token      string
	Link       string
}

// InviteInfo is what an invite link reveals before activation.
type InviteInfo struct {
	GuestEmail       string
	AdminDisplayName string
}

// CreateInvite creates a pending guest invited by p and mails the invite
// link. Only admins and the master may invite; the admin's guest count is
// checked against the plan's maxGuests.
func (e *Engine) CreateInvite(ctx context.Context, p guard.Principal, guestEmail, origin string) (*Invite, error) {
	if err := guard.RequireRole(p, models.RoleAdmin, models.RoleMaster); err != nil {
		return nil, err
	}
	guestEmail = strings.TrimSpace(guestEmail)
	if err := users.ValidateEmail(guestEmail); err != nil {
		return nil, err
	}

	token, err := common.MakeRandHexString(common.TokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := e.clock.Now()
	guest := models.Identity{
		ID:          uuid.NewString(),
		Email:       guestEmail,
		Role:        models.RoleGuest,
		CreatedAt:   now.UTC(),
		InvitedBy:   p.ID,
		InviteToken: token,
	}

	var inviterName string
	err = e.store.Update(ctx, func(doc *models.Document) error {
		inviter := doc.IdentityByID(p.ID)
		if inviter == nil {
			return common.ErrorNotFound
		}
		if doc.IdentityByEmail(guestEmail) != nil {
			return common.ErrConflict
		}
		plan := users.ResolvePlan(doc, inviter, now)
		if err := quota.Check(p.Role, plan, quota.LimitGuests, doc.CountGuests(p.ID)); err != nil {
			return err
		}
		inviterName = inviter.DisplayName()
		doc.Identities = append(doc.Identities, guest)
		return nil
	})
	if err != nil {
		return nil, err
	}

	link := e.link("invite", token)
	e.observer.TokenIssued(KindInvite)
	e.notify(ctx, mailer.InviteMessage(guestEmail, inviterName, link))
	e.record(ctx, p.ID, activity.ActionInviteCreated, guestEmail, origin)
	e.logger.Info(ctx, "invite created", "inviter_id", p.ID, "guest_id", guest.ID)

	return &Invite{GuestID: guest.ID, GuestEmail: guestEmail, Token: token, Link: link}, nil
}

// LookupInvite resolves a pending invite token. Activated or unknown tokens
// fail with common.ErrorNotFound.
func (e *Engine) LookupInvite(ctx context.Context, token string) (*InviteInfo, error) {
	var info *InviteInfo
	err := e.store.View(ctx, func(doc *models.Document) error {
		guest := doc.IdentityByInviteToken(token)
		if guest == nil || guest.Activated {
			return common.ErrorNotFound
		}
		info = &InviteInfo{GuestEmail: guest.Email}
		if inviter := doc.IdentityByID(guest.InvitedBy); inviter != nil {
			info.AdminDisplayName = inviter.DisplayName()
		}
		return nil
	})
	return info, err
}

// ActivateInvite sets the guest's PIN, which is also its login secret, and
// marks it activated. A second call with the same token fails with
// common.ErrAlreadyActivated and leaves the secret untouched.
func (e *Engine) ActivateInvite(ctx context.Context, token, pin, origin string) error {
	if token == "" {
		return common.ErrInvalidToken
	}
	if err := users.ValidatePIN(pin); err != nil {
		return err
	}

	hash, err := e.users.HashPassword(pin)
	if err != nil {
		return err
	}
	pinDigest := cryptox.HashPIN(pin)
	tokenDigest := cryptox.TokenDigest(token)

	var guestID, guestEmail, inviterEmail string
	err = e.store.Update(ctx, func(doc *models.Document) error {
		guest := doc.IdentityByInviteToken(token)
		if guest == nil {
			if doc.IdentityByInviteDigest(tokenDigest) != nil {
				return common.ErrAlreadyActivated
			}
			return common.ErrInvalidToken
		}
		if guest.Activated {
			return common.ErrAlreadyActivated
		}

		guest.PasswordHash = hash
		guest.PINHash = pinDigest
		guest.Activated = true
		guest.InviteToken = ""
		guest.InviteDigest = tokenDigest

		guestID, guestEmail = guest.ID, guest.Email
		if inviter := doc.IdentityByID(guest.InvitedBy); inviter != nil {
			inviterEmail = inviter.Email
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.notify(ctx, mailer.WelcomeMessage(guestEmail))
	e.notify(ctx, mailer.InviteAcceptedMessage(inviterEmail, guestEmail))
	e.record(ctx, guestID, activity.ActionInviteActivated, "", origin)
	e.logger.Info(ctx, "invite activated", "guest_id", guestID)
	return nil
}
