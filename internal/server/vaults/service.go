// Package vaults implements vault and item operations on top of the store,
// with every call authorized by the guard and growth checked by quota.
package vaults

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/cryptox"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/guard"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/mailer"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/quota"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/store"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/users"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
	"github.com/google/uuid"
)

const (
	maxNameLen        = 120
	maxTitleLen       = 200
	maxDescriptionLen = 4000
)

type Service struct {
	store    *store.Store
	recorder *activity.Recorder
	notifier mailer.Notifier
	clock    timex.Clock
	logger   logging.Logger
}

func NewService(s *store.Store, recorder *activity.Recorder, notifier mailer.Notifier, clock timex.Clock, logger logging.Logger) *Service {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:    s,
		recorder: recorder,
		notifier: notifier,
		clock:    clock,
		logger:   logger.With("module", "vaults"),
	}
}

func (s *Service) record(ctx context.Context, identityID, action, details, origin string) {
	if s.recorder != nil {
		s.recorder.Record(ctx, identityID, action, details, origin)
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.Invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", common.Invalid("name", "is too long")
	}
	return name, nil
}

func validateItem(title, description string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", common.Invalid("title", "is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", common.Invalid("title", "is too long")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "", common.Invalid("description", "is too long")
	}
	return title, nil
}

// caller resolves p against the document so a session for a removed
// identity cannot act.
func caller(doc *models.Document, p guard.Principal) (*models.Identity, error) {
	identity := doc.IdentityByID(p.ID)
	if identity == nil || identity.Role != p.Role {
		return nil, common.ErrForbidden
	}
	return identity, nil
}

// authorizedVault loads vault id and checks p may perform action on it.
func authorizedVault(doc *models.Document, p guard.Principal, action guard.Action, id string) (*models.Vault, error) {
	v := doc.VaultByID(id)
	if v == nil {
		return nil, common.ErrorNotFound
	}
	if err := guard.Authorize(p, action, guard.ResourceOf(doc, v)); err != nil {
		return nil, err
	}
	return v, nil
}

func copyVault(v *models.Vault) models.Vault {
	cp := *v
	cp.Items = append([]models.VaultItem{}, v.Items...)
	return cp
}

func vaultMetadata(v *models.Vault) models.Vault {
	cp := *v
	cp.Items = []models.VaultItem{}
	return cp
}

// CreateVault creates a vault owned by p. Vaults created by guests start
// pending and their inviting admin is notified; all others are active.
func (s *Service) CreateVault(ctx context.Context, p guard.Principal, name, origin string) (*models.Vault, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	vault := models.Vault{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   p.ID,
		CreatedAt: now.UTC(),
		Status:    models.VaultActive,
		Items:     []models.VaultItem{},
	}

	var notifyTo, ownerEmail string
	err = s.store.Update(ctx, func(doc *models.Document) error {
		owner, err := caller(doc, p)
		if err != nil {
			return err
		}
		plan := users.ResolvePlan(doc, owner, now)
		count := doc.CountVaults(owner.ID)
		if err := quota.Check(owner.Role, plan, quota.LimitVaults, count); err != nil {
			return err
		}
		if err := quota.CheckStorage(owner.Role, plan, count); err != nil {
			return err
		}

		if owner.Role == models.RoleGuest {
			vault.Status = models.VaultPending
			ownerEmail = owner.Email
			if inviter := doc.IdentityByID(owner.InvitedBy); inviter != nil {
				notifyTo = inviter.Email
			}
		}
		doc.Vaults = append(doc.Vaults, vault)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notifyTo != "" && s.notifier != nil {
		s.notifier.Notify(ctx, mailer.VaultPendingMessage(notifyTo, ownerEmail, vault.Name))
	}
	s.record(ctx, p.ID, activity.ActionVaultCreated, vault.Name, origin)
	return &vault, nil
}

// ApproveVault moves a pending vault to active.
func (s *Service) ApproveVault(ctx context.Context, p guard.Principal, id, origin string) (*models.Vault, error) {
	var out models.Vault
	err := s.store.Update(ctx, func(doc *models.Document) error {
		v, err := authorizedVault(doc, p, guard.ActionModerate, id)
		if err != nil {
			return err
		}
		if p.ID == v.OwnerID && p.Role == models.RoleGuest {
			return common.ErrForbidden
		}
		if v.Status != models.VaultPending {
			return common.ErrConflict
		}
		v.Status = models.VaultActive
		out = copyVault(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, p.ID, activity.ActionVaultApproved, id, origin)
	return &out, nil
}

// RejectVault removes a pending vault.
func (s *Service) RejectVault(ctx context.Context, p guard.Principal, id, origin string) error {
	err := s.store.Update(ctx, func(doc *models.Document) error {
		v, err := authorizedVault(doc, p, guard.ActionModerate, id)
		if err != nil {
			return err
		}
		if p.ID == v.OwnerID && p.Role == models.RoleGuest {
			return common.ErrForbidden
		}
		if v.Status != models.VaultPending {
			return common.ErrConflict
		}
		doc.RemoveVault(id)
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, p.ID, activity.ActionVaultRejected, id, origin)
	return nil
}

// DeleteVault removes a vault. The owner, the master or the owner's inviting
// admin may delete it, and only after confirming with a PIN. When the caller
// has set a PIN the confirmation must match it; a moderator deleting a
// guest's vault confirms with its own PIN, not the guest's.
func (s *Service) DeleteVault(ctx context.Context, p guard.Principal, id, pin, origin string) error {
	if pin == "" {
		return common.Invalid("pin", "confirmation is required")
	}

	var pinDigest, name string
	err := s.store.View(ctx, func(doc *models.Document) error {
		identity, err := caller(doc, p)
		if err != nil {
			return err
		}
		v, err := authorizedVault(doc, p, guard.ActionModerate, id)
		if err != nil {
			return err
		}
		pinDigest, name = identity.PINHash, v.Name
		return nil
	})
	if err != nil {
		return err
	}

	if pinDigest != "" {
		ok, err := cryptox.VerifyPIN(pinDigest, pin)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrForbidden
		}
	}

	err = s.store.Update(ctx, func(doc *models.Document) error {
		if _, err := authorizedVault(doc, p, guard.ActionModerate, id); err != nil {
			return err
		}
		doc.RemoveVault(id)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "vault deleted", "vault_id", id, "by", p.ID)
	s.record(ctx, p.ID, activity.ActionVaultDeleted, name, origin)
	return nil
}

// ListVaults returns the vaults visible to p: all for the master, an admin's
// own plus its guests', a guest's own. Vaults p may moderate but not read
// come back as metadata with no items.
func (s *Service) ListVaults(ctx context.Context, p guard.Principal) ([]models.Vault, error) {
	out := []models.Vault{}
	err := s.store.View(ctx, func(doc *models.Document) error {
		if _, err := caller(doc, p); err != nil {
			return err
		}

		var vaults []*models.Vault
		switch p.Role {
		case models.RoleMaster:
			for i := range doc.Vaults {
				vaults = append(vaults, &doc.Vaults[i])
			}
		case models.RoleAdmin:
			owners := []string{p.ID}
			for _, g := range doc.GuestsOf(p.ID) {
				owners = append(owners, g.ID)
			}
			vaults = doc.VaultsOwnedBy(owners...)
		case models.RoleGuest:
			vaults = doc.VaultsOwnedBy(p.ID)
		default:
			return common.ErrForbidden
		}

		for _, v := range vaults {
			r := guard.ResourceOf(doc, v)
			if guard.Authorize(p, guard.ActionRead, r) == nil {
				out = append(out, copyVault(v))
				continue
			}
			if guard.Authorize(p, guard.ActionModerate, r) == nil {
				out = append(out, vaultMetadata(v))
			}
		}
		return nil
	})
	return out, err
}

// GetVault returns one vault with its items.
func (s *Service) GetVault(ctx context.Context, p guard.Principal, id string) (*models.Vault, error) {
	var out models.Vault
	err := s.store.View(ctx, func(doc *models.Document) error {
		v, err := authorizedVault(doc, p, guard.ActionRead, id)
		if err != nil {
			return err
		}
		out = copyVault(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameVault changes a vault's name.
func (s *Service) RenameVault(ctx context.Context, p guard.Principal, id, name, origin string) (*models.Vault, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	var out models.Vault
	err = s.store.Update(ctx, func(doc *models.Document) error {
		v, err := authorizedVault(doc, p, guard.ActionMutate, id)
		if err != nil {
			return err
		}
		v.Name = name
		out = copyVault(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, p.ID, activity.ActionVaultRenamed, name, origin)
	return &out, nil
}

// Usage reports p's consumption against its effective plan.
func (s *Service) Usage(ctx context.Context, p guard.Principal) (quota.Report, error) {
	var report quota.Report
	err := s.store.View(ctx, func(doc *models.Document) error {
		identity, err := caller(doc, p)
		if err != nil {
			return err
		}
		plan := users.ResolvePlan(doc, identity, s.clock.Now())
		report = quota.NewReport(identity.Role, plan, doc.CountVaults(identity.ID), doc.CountGuests(identity.ID))
		return nil
	})
	return report, err
}
