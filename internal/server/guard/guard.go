// Package guard decides whether a principal may act on a resource. The
// decision is recomputed on every call from the principal's role and the
// resource's ownership chain.
package guard

import (
	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
)

// Principal is the authenticated caller as carried by a session token.
type Principal struct {
	ID   string
	Role models.Role
}

// Action classifies an operation.
type Action int

const (
	// ActionRead views a resource.
	ActionRead Action = iota
	// ActionMutate creates, renames or edits a resource or its items.
	ActionMutate
	// ActionModerate approves, rejects or deletes a vault; an admin may do
	// this for vaults owned by guests they invited.
	ActionModerate
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionMutate:
		return "mutate"
	case ActionModerate:
		return "moderate"
	default:
		return "unknown"
	}
}

// Resource is the ownership chain of the target: its owner and, when the
// owner is a guest, the admin that invited them.
type Resource struct {
	OwnerID   string
	InviterID string
}

// ResourceOf builds the ownership chain for vault v from doc.
func ResourceOf(doc *models.Document, v *models.Vault) Resource {
	r := Resource{OwnerID: v.OwnerID}
	if owner := doc.IdentityByID(v.OwnerID); owner != nil {
		r.InviterID = owner.InvitedBy
	}
	return r
}

// Authorize returns nil when p may perform action on r and
// common.ErrForbidden otherwise.
func Authorize(p Principal, action Action, r Resource) error {
	if p.ID == "" {
		return common.ErrForbidden
	}

	switch p.Role {
	case models.RoleMaster:
		return nil
	case models.RoleAdmin:
		if r.OwnerID == p.ID {
			return nil
		}
		if action == ActionModerate && r.InviterID != "" && r.InviterID == p.ID {
			return nil
		}
		return common.ErrForbidden
	case models.RoleGuest:
		if r.OwnerID == p.ID {
			return nil
		}
		return common.ErrForbidden
	default:
		return common.ErrForbidden
	}
}

// RequireRole fails with common.ErrForbidden unless p has one of roles.
func RequireRole(p Principal, roles ...models.Role) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return common.ErrForbidden
}

// CanSeeIdentity reports whether p may read records about subject: the
// master sees everyone, an admin sees itself and its guests, a guest only
// itself.
func CanSeeIdentity(p Principal, subject *models.Identity) bool {
	switch p.Role {
	case models.RoleMaster:
		return true
	case models.RoleAdmin:
		return subject.ID == p.ID || (subject.Role == models.RoleGuest && subject.InvitedBy == p.ID)
	case models.RoleGuest:
		return subject.ID == p.ID
	default:
		return false
	}
}
