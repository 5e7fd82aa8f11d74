package models

import (
	"strings"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/cryptox"
)

// Document is the whole persisted state. It is only ever read and written as
// a unit by the store.
type Document struct {
	Identities  []Identity      `json:"identities"`
	Vaults      []Vault         `json:"vaults"`
	ActivityLog []ActivityEntry `json:"activityLog"`
}

// NewDocument returns an empty document with non-nil collections.
func NewDocument() *Document {
	d := &Document{}
	d.Normalize()
	return d
}

// Normalize replaces nil collections with empty ones so the document always
// serializes with arrays.
func (d *Document) Normalize() {
	if d.Identities == nil {
		d.Identities = []Identity{}
	}
	if d.Vaults == nil {
		d.Vaults = []Vault{}
	}
	if d.ActivityLog == nil {
		d.ActivityLog = []ActivityEntry{}
	}
	for i := range d.Vaults {
		if d.Vaults[i].Items == nil {
			d.Vaults[i].Items = []VaultItem{}
		}
	}
}

// The finders below return pointers into the document's slices. They stay
// valid until the slice they point into is appended to or reordered.

func (d *Document) IdentityByID(id string) *Identity {
	for i := range d.Identities {
		if d.Identities[i].ID == id {
			return &d.Identities[i]
		}
	}
	return nil
}

// IdentityByEmail matches the email exactly; emails are case-sensitive keys.
func (d *Document) IdentityByEmail(email string) *Identity {
	for i := range d.Identities {
		if d.Identities[i].Email == email {
			return &d.Identities[i]
		}
	}
	return nil
}

func (d *Document) IdentityByInviteToken(token string) *Identity {
	if token == "" {
		return nil
	}
	for i := range d.Identities {
		if cryptox.TokensEqual(d.Identities[i].InviteToken, token) {
			return &d.Identities[i]
		}
	}
	return nil
}

func (d *Document) IdentityByInviteDigest(digest string) *Identity {
	if digest == "" {
		return nil
	}
	for i := range d.Identities {
		if d.Identities[i].InviteDigest == digest {
			return &d.Identities[i]
		}
	}
	return nil
}

// IdentityByResetToken finds the identity whose stored reset token
// ("<token>.<issued millis>") carries token.
func (d *Document) IdentityByResetToken(token string) *Identity {
	if token == "" {
		return nil
	}
	for i := range d.Identities {
		stored, _, _ := strings.Cut(d.Identities[i].ResetToken, ".")
		if stored != "" && cryptox.TokensEqual(stored, token) {
			return &d.Identities[i]
		}
	}
	return nil
}

func (d *Document) Master() *Identity {
	for i := range d.Identities {
		if d.Identities[i].Role == RoleMaster {
			return &d.Identities[i]
		}
	}
	return nil
}

// GuestsOf returns the identities invited by inviterID.
func (d *Document) GuestsOf(inviterID string) []*Identity {
	var out []*Identity
	for i := range d.Identities {
		if d.Identities[i].Role == RoleGuest && d.Identities[i].InvitedBy == inviterID {
			out = append(out, &d.Identities[i])
		}
	}
	return out
}

func (d *Document) CountGuests(inviterID string) int {
	return len(d.GuestsOf(inviterID))
}

func (d *Document) VaultByID(id string) *Vault {
	for i := range d.Vaults {
		if d.Vaults[i].ID == id {
			return &d.Vaults[i]
		}
	}
	return nil
}

// VaultsOwnedBy returns the vaults whose owner is one of ownerIDs.
func (d *Document) VaultsOwnedBy(ownerIDs ...string) []*Vault {
	set := make(map[string]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		set[id] = struct{}{}
	}
	var out []*Vault
	for i := range d.Vaults {
		if _, ok := set[d.Vaults[i].OwnerID]; ok {
			out = append(out, &d.Vaults[i])
		}
	}
	return out
}

func (d *Document) CountVaults(ownerIDs ...string) int {
	return len(d.VaultsOwnedBy(ownerIDs...))
}

// RemoveVault deletes the vault with id and reports whether it existed.
func (d *Document) RemoveVault(id string) bool {
	for i := range d.Vaults {
		if d.Vaults[i].ID == id {
			d.Vaults = append(d.Vaults[:i], d.Vaults[i+1:]...)
			return true
		}
	}
	return false
}

// AppendActivity adds e and drops the oldest entries beyond limit.
func (d *Document) AppendActivity(e ActivityEntry, limit int) {
	d.ActivityLog = append(d.ActivityLog, e)
	if limit > 0 && len(d.ActivityLog) > limit {
		drop := len(d.ActivityLog) - limit
		d.ActivityLog = append([]ActivityEntry{}, d.ActivityLog[drop:]...)
	}
}
