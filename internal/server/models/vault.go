package models

import "time"

// VaultStatus tracks the guest approval workflow.
type VaultStatus string

const (
	VaultPending VaultStatus = "pending"
	VaultActive  VaultStatus = "active"
)

// Vault is a named container of items owned by one identity.
type Vault struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	OwnerID   string      `json:"userId"`
	CreatedAt time.Time   `json:"createdAt"`
	Status    VaultStatus `json:"status"`
	Items     []VaultItem `json:"data"`
}

// VaultItem is a secret entry inside a vault.
type VaultItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ItemIndex returns the position of item id or -1.
func (v *Vault) ItemIndex(id string) int {
	for i := range v.Items {
		if v.Items[i].ID == id {
			return i
		}
	}
	return -1
}
