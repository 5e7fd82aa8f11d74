// Package models holds the client-side shapes of vault API responses.
package models

import "time"

type Identity struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	Role          string     `json:"role"`
	Plan          string     `json:"plan,omitempty"`
	PlanExpiresAt *time.Time `json:"planExpiresAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	InvitedBy     string     `json:"invitedBy,omitempty"`
	Activated     bool       `json:"activated"`
	HasPIN        bool       `json:"hasPin"`
	EffectivePlan string     `json:"effectivePlan,omitempty"`
}

// Session is the result of Login.
type Session struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Identity    Identity  `json:"identity"`
}

type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Vault struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status"`
	Items     []Item    `json:"data"`
}

type ActivityEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Origin    string    `json:"ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Limits struct {
	MaxVaults        int `json:"maxVaults"`
	MaxItemsPerVault int `json:"maxItemsPerVault"`
	MaxGuests        int `json:"maxGuests"`
	StorageMB        int `json:"storageMB"`
}

// Usage is the caller's consumption against its plan.
type Usage struct {
	Plan      string `json:"plan"`
	Unlimited bool   `json:"unlimited"`
	Limits    Limits `json:"limits"`
	Vaults    int    `json:"vaults"`
	Guests    int    `json:"guests"`
	StorageMB int    `json:"storageMB"`
}
