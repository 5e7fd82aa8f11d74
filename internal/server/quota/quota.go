// Package quota holds the plan limits table and the pure checks applied at
// creation time. Nothing here is enforced retroactively: an identity over a
// limit after a downgrade is only blocked from growing further.
package quota

import (
	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
)

// Limit names a field of the limits table.
type Limit string

const (
	LimitVaults    Limit = "maxVaults"
	LimitItems     Limit = "maxItemsPerVault"
	LimitGuests    Limit = "maxGuests"
	LimitStorageMB Limit = "storageMB"
)

// VaultFootprintMB is the storage charged per vault regardless of content.
const VaultFootprintMB = 10

// Limits is one row of the plan table.
type Limits struct {
	MaxVaults        int `json:"maxVaults"`
	MaxItemsPerVault int `json:"maxItemsPerVault"`
	MaxGuests        int `json:"maxGuests"`
	StorageMB        int `json:"storageMB"`
}

var table = map[models.Plan]Limits{
	models.PlanFree:  {MaxVaults: 3, MaxItemsPerVault: 20, MaxGuests: 1, StorageMB: 200},
	models.PlanPro:   {MaxVaults: 10, MaxItemsPerVault: 100, MaxGuests: 5, StorageMB: 500},
	models.PlanScale: {MaxVaults: 50, MaxItemsPerVault: 500, MaxGuests: 25, StorageMB: 2000},
}

// For returns the limits of plan; unknown plans get the Free row.
func For(plan models.Plan) Limits {
	if l, ok := table[plan]; ok {
		return l
	}
	return table[models.PlanFree]
}

func (l Limits) max(limit Limit) int {
	switch limit {
	case LimitVaults:
		return l.MaxVaults
	case LimitItems:
		return l.MaxItemsPerVault
	case LimitGuests:
		return l.MaxGuests
	case LimitStorageMB:
		return l.StorageMB
	default:
		return 0
	}
}

// Check allows one more unit of limit when current is below the plan's
// maximum. The master role is never limited.
func Check(role models.Role, plan models.Plan, limit Limit, current int) error {
	if role == models.RoleMaster {
		return nil
	}
	max := For(plan).max(limit)
	if current >= max {
		return &common.QuotaError{Limit: string(limit), Max: max, Current: current}
	}
	return nil
}

// StorageUsedMB approximates storage as a fixed footprint per vault.
func StorageUsedMB(vaults int) int {
	return vaults * VaultFootprintMB
}

// CheckStorage allows one more vault when its footprint still fits the plan.
func CheckStorage(role models.Role, plan models.Plan, vaults int) error {
	if role == models.RoleMaster {
		return nil
	}
	used := StorageUsedMB(vaults)
	max := For(plan).StorageMB
	if used+VaultFootprintMB > max {
		return &common.QuotaError{Limit: string(LimitStorageMB), Max: max, Current: used}
	}
	return nil
}

// Report is current usage against the limits of a plan.
type Report struct {
	Plan      models.Plan `json:"plan"`
	Unlimited bool        `json:"unlimited"`
	Limits    Limits      `json:"limits"`
	Vaults    int         `json:"vaults"`
	Guests    int         `json:"guests"`
	StorageMB int         `json:"storageMB"`
}

func NewReport(role models.Role, plan models.Plan, vaults, guests int) Report {
	return Report{
		Plan:      plan,
		Unlimited: role == models.RoleMaster,
		Limits:    For(plan),
		Vaults:    vaults,
		Guests:    guests,
		StorageMB: StorageUsedMB(vaults),
	}
}
