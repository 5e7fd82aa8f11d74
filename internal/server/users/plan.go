package users

import (
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
)

// EffectivePlan is the plan whose limits apply to identity. Guests inherit
// the plan of the admin that invited them; a plan past its expiry counts as
// Free. The master has no plan and is never limited.
func EffectivePlan(identity, inviter *models.Identity, now time.Time) models.Plan {
	subject := identity
	if identity.Role == models.RoleGuest {
		if inviter == nil {
			return models.PlanFree
		}
		subject = inviter
	}
	if subject.Role == models.RoleMaster {
		return models.PlanScale
	}
	if subject.Plan == "" {
		return models.PlanFree
	}
	if subject.PlanExpiresAt != nil && !now.Before(*subject.PlanExpiresAt) {
		return models.PlanFree
	}
	return subject.Plan
}

// ResolvePlan looks the inviter up in doc and applies EffectivePlan.
func ResolvePlan(doc *models.Document, identity *models.Identity, now time.Time) models.Plan {
	var inviter *models.Identity
	if identity.InvitedBy != "" {
		inviter = doc.IdentityByID(identity.InvitedBy)
	}
	return EffectivePlan(identity, inviter, now)
}
