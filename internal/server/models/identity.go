// Package models defines the records held in the persisted document and the
// lookups the services run over it.
package models

import (
	"fmt"
	"time"
)

// Role is the closed set of principal kinds.
type Role string

const (
	RoleMaster Role = "master"
	RoleAdmin  Role = "admin"
	RoleGuest  Role = "guest"
)

// ParseRole accepts the persisted role labels.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleMaster, RoleAdmin, RoleGuest:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Plan is a quota tier.
type Plan string

const (
	PlanFree  Plan = "Free"
	PlanPro   Plan = "Pro"
	PlanScale Plan = "Scale"
)

// ParsePlan accepts the persisted plan names.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanFree, PlanPro, PlanScale:
		return p, nil
	default:
		return "", fmt.Errorf("unknown plan %q", s)
	}
}

// Identity is any principal: the master, an admin owner or an invited guest.
type Identity struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	PasswordHash  string     `json:"passwordHash"`
	Role          Role       `json:"role"`
	Plan          Plan       `json:"plan,omitempty"`
	PlanExpiresAt *time.Time `json:"planExpiresAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	InvitedBy     string     `json:"invitedBy,omitempty"`
	Activated     bool       `json:"activated,omitempty"`
	InviteToken   string     `json:"inviteToken,omitempty"`
	InviteDigest  string     `json:"inviteDigest,omitempty"`
	ResetToken    string     `json:"resetToken,omitempty"`
	PINHash       string     `json:"pinHash,omitempty"`
}

// CanLogin reports whether the identity is a valid login target. Guests
// become one only after their invite has been activated.
func (i *Identity) CanLogin() bool {
	if i.Role == RoleGuest {
		return i.Activated
	}
	return true
}

// DisplayName is the name shown to other users, falling back to the email.
func (i *Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}
