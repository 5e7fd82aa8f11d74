package vaults

import (
	"context"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/guard"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/quota"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/users"
	"github.com/google/uuid"
)

// AddItem appends an item to an active vault, subject to the owner's
// maxItemsPerVault.
func (s *Service) AddItem(ctx context.Context, p guard.Principal, vaultID, title, description, origin string) (*models.VaultItem, error) {
	title, err := validateItem(title, description)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	item := models.VaultItem{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}

	err = s.store.Update(ctx, func(doc *models.Document) error {
		v, err := authorizedVault(doc, p, guard.ActionMutate, vaultID)
		if err != nil {
			return err
		}
		if v.Status != models.VaultActive {
			return common.ErrConflict
		}
		owner := doc.IdentityByID(v.OwnerID)
		if owner == nil {
			return common.ErrorNotFound
		}
		plan := users.ResolvePlan(doc, owner, now)
		if err := quota.Check(p.Role, plan, quota.LimitItems, len(v.Items)); err != nil {
			return err
		}
		v.Items = append(v.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, p.ID, activity.ActionItemCreated, vaultID, origin)
	return &item, nil
}

// UpdateItem replaces an item's title and description.
func (s *Service) UpdateItem(ctx context.Context, p guard.Principal, vaultID, itemID, title, description, origin string) (*models.VaultItem, error) {
	title, err := validateItem(title, description)
	if err != nil {
		return nil, err
	}

	var out models.VaultItem
	err = s.store.Update(ctx, func(doc *models.Document) error {
		v, err := authorizedVault(doc, p, guard.ActionMutate, vaultID)
		if err != nil {
			return err
		}
		i := v.ItemIndex(itemID)
		if i < 0 {
			return common.ErrorNotFound
		}
		v.Items[i].Title = title
		v.Items[i].Description = description
		v.Items[i].UpdatedAt = s.clock.Now().UTC()
		out = v.Items[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, p.ID, activity.ActionItemUpdated, vaultID, origin)
	return &out, nil
}

// DeleteItem removes an item from a vault.
func (s *Service) DeleteItem(ctx context.Context, p guard.Principal, vaultID, itemID, origin string) error {
	err := s.store.Update(ctx, func(doc *models.Document) error {
		v, err := authorizedVault(doc, p, guard.ActionMutate, vaultID)
		if err != nil {
			return err
		}
		i := v.ItemIndex(itemID)
		if i < 0 {
			return common.ErrorNotFound
		}
		v.Items = append(v.Items[:i], v.Items[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, p.ID, activity.ActionItemDeleted, vaultID, origin)
	return nil
}
