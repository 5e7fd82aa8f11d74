// Package users is the identity and credential manager: it creates and looks
// up identities, hashes and verifies secrets and manages plans.
package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/cryptox"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/guard"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/store"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
	"github.com/google/uuid"
)

type Service struct {
	store      *store.Store
	recorder   *activity.Recorder
	bcryptCost int
	clock      timex.Clock
	logger     logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewService(s *store.Store, recorder *activity.Recorder, bcryptCost int, clock timex.Clock, logger logging.Logger) *Service {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:      s,
		recorder:   recorder,
		bcryptCost: bcryptCost,
		clock:      clock,
		logger:     logger.With("module", "users"),
	}
}

func (s *Service) record(ctx context.Context, identityID, action, details, origin string) {
	if s.recorder != nil {
		s.recorder.Record(ctx, identityID, action, details, origin)
	}
}

// HashPassword hashes raw with the configured bcrypt cost.
func (s *Service) HashPassword(raw string) (string, error) {
	return cryptox.HashPassword(raw, s.bcryptCost)
}

// CreateIdentity registers an admin or the master. Guests only come into
// existence through invitations. Emails are case-sensitive keys.
func (s *Service) CreateIdentity(ctx context.Context, email, rawPassword string, role models.Role, plan models.Plan) (*models.Identity, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(rawPassword); err != nil {
		return nil, err
	}

	switch role {
	case models.RoleAdmin:
		if plan == "" {
			plan = models.PlanFree
		}
		if _, err := models.ParsePlan(string(plan)); err != nil {
			return nil, common.Invalid("plan", "is unknown")
		}
	case models.RoleMaster:
		plan = ""
	case models.RoleGuest:
		return nil, common.Invalid("role", "guests are created by invitation")
	default:
		return nil, common.Invalid("role", "is unknown")
	}

	hash, err := s.HashPassword(rawPassword)
	if err != nil {
		return nil, err
	}

	identity := models.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Plan:         plan,
		CreatedAt:    s.clock.Now().UTC(),
	}

	err = s.store.Update(ctx, func(doc *models.Document) error {
		if doc.IdentityByEmail(email) != nil {
			return common.ErrConflict
		}
		if role == models.RoleMaster && doc.Master() != nil {
			return common.ErrConflict
		}
		doc.Identities = append(doc.Identities, identity)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "identity created", "user_id", identity.ID, "email", email, "role", role)
	return &identity, nil
}

// Register is the public sign-up path: a Free admin with an optional
// display name.
func (s *Service) Register(ctx context.Context, email, rawPassword, name, origin string) (*models.Identity, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	identity, err := s.CreateIdentity(ctx, email, rawPassword, models.RoleAdmin, models.PlanFree)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		err = s.store.Update(ctx, func(doc *models.Document) error {
			if i := doc.IdentityByID(identity.ID); i != nil {
				i.Name = name
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		identity.Name = name
	}
	s.record(ctx, identity.ID, activity.ActionRegister, "", origin)
	return identity, nil
}

// BootstrapMaster creates the single master identity.
func (s *Service) BootstrapMaster(ctx context.Context, email, rawPassword string) (*models.Identity, error) {
	identity, err := s.CreateIdentity(ctx, email, rawPassword, models.RoleMaster, "")
	if err != nil {
		return nil, err
	}
	s.record(ctx, identity.ID, activity.ActionRegister, "master", "")
	return identity, nil
}

// VerifyCredentials returns the identity for a correct email and password.
// Unknown emails, wrong passwords and guests that have not activated their
// invite all fail with the same common.ErrorUnauthorized.
func (s *Service) VerifyCredentials(ctx context.Context, email, rawPassword string) (*models.Identity, error) {
	var found *models.Identity
	err := s.store.View(ctx, func(doc *models.Document) error {
		if i := doc.IdentityByEmail(strings.TrimSpace(email)); i != nil {
			cp := *i
			found = &cp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if found == nil || found.PasswordHash == "" {
		s.burnPasswordCheck(rawPassword)
		return nil, common.ErrorUnauthorized
	}
	if !cryptox.CheckPassword(found.PasswordHash, rawPassword) || !found.CanLogin() {
		return nil, common.ErrorUnauthorized
	}
	return found, nil
}

// burnPasswordCheck compares raw against a throwaway hash built at the
// service's cost, so a missing account costs as much as a wrong password.
func (s *Service) burnPasswordCheck(raw string) {
	s.dummyOnce.Do(func() {
		hash, err := s.HashPassword("safe360-dummy-password")
		if err != nil {
			s.logger.Error(context.Background(), "build dummy password hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	_ = cryptox.CheckPassword(s.dummyHash, raw)
}

// SetPassword re-hashes the secret of identity id and clears any
// outstanding reset token.
func (s *Service) SetPassword(ctx context.Context, id, rawPassword string) error {
	if err := ValidatePassword(rawPassword); err != nil {
		return err
	}
	hash, err := s.HashPassword(rawPassword)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, func(doc *models.Document) error {
		i := doc.IdentityByID(id)
		if i == nil {
			return common.ErrorNotFound
		}
		i.PasswordHash = hash
		i.ResetToken = ""
		return nil
	})
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, p guard.Principal, oldPassword, newPassword, origin string) error {
	current, err := s.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	if !cryptox.CheckPassword(current.PasswordHash, oldPassword) {
		return common.ErrorUnauthorized
	}
	if err := s.SetPassword(ctx, p.ID, newPassword); err != nil {
		return err
	}
	s.record(ctx, p.ID, activity.ActionPasswordChanged, "", origin)
	return nil
}

// SetPlan changes the plan of an admin. Only the master may call it and the
// new plan is not checked against current usage.
func (s *Service) SetPlan(ctx context.Context, p guard.Principal, id string, plan models.Plan, expiresAt *time.Time) error {
	if err := guard.RequireRole(p, models.RoleMaster); err != nil {
		return err
	}
	if _, err := models.ParsePlan(string(plan)); err != nil {
		return common.Invalid("plan", "is unknown")
	}

	err := s.store.Update(ctx, func(doc *models.Document) error {
		i := doc.IdentityByID(id)
		if i == nil {
			return common.ErrorNotFound
		}
		if i.Role != models.RoleAdmin {
			return common.Invalid("id", "plans apply to admins only")
		}
		i.Plan = plan
		if expiresAt != nil {
			t := expiresAt.UTC()
			i.PlanExpiresAt = &t
		} else {
			i.PlanExpiresAt = nil
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "plan changed", "user_id", id, "plan", plan)
	s.record(ctx, id, activity.ActionPlanChanged, string(plan), "")
	return nil
}

// SetPIN stores the caller's confirmation PIN used for destructive
// operations.
func (s *Service) SetPIN(ctx context.Context, p guard.Principal, pin, origin string) error {
	if err := ValidatePIN(pin); err != nil {
		return err
	}
	digest := cryptox.HashPIN(pin)

	err := s.store.Update(ctx, func(doc *models.Document) error {
		i := doc.IdentityByID(p.ID)
		if i == nil {
			return common.ErrorNotFound
		}
		i.PINHash = digest
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, p.ID, activity.ActionPINSet, "", origin)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Identity, error) {
	return s.find(ctx, func(doc *models.Document) *models.Identity { return doc.IdentityByID(id) })
}

func (s *Service) find(ctx context.Context, lookup func(doc *models.Document) *models.Identity) (*models.Identity, error) {
	var found *models.Identity
	err := s.store.View(ctx, func(doc *models.Document) error {
		i := lookup(doc)
		if i == nil {
			return common.ErrorNotFound
		}
		cp := *i
		found = &cp
		return nil
	})
	return found, err
}

// ListGuests returns the guests visible to p: its own for an admin, all of
// them for the master.
func (s *Service) ListGuests(ctx context.Context, p guard.Principal) ([]models.Identity, error) {
	if err := guard.RequireRole(p, models.RoleAdmin, models.RoleMaster); err != nil {
		return nil, err
	}
	out := []models.Identity{}
	err := s.store.View(ctx, func(doc *models.Document) error {
		for i := range doc.Identities {
			g := &doc.Identities[i]
			if g.Role != models.RoleGuest {
				continue
			}
			if p.Role == models.RoleMaster || g.InvitedBy == p.ID {
				out = append(out, *g)
			}
		}
		return nil
	})
	return out, err
}

// EffectivePlanOf returns the plan that currently applies to identity id.
func (s *Service) EffectivePlanOf(ctx context.Context, id string) (models.Plan, error) {
	var plan models.Plan
	err := s.store.View(ctx, func(doc *models.Document) error {
		i := doc.IdentityByID(id)
		if i == nil {
			return common.ErrorNotFound
		}
		plan = ResolvePlan(doc, i, s.clock.Now())
		return nil
	})
	return plan, err
}
