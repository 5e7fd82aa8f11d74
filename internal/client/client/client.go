package client

import (
	"context"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/client/models"
)

// Client is the admin tooling's view of the vault API.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*models.Session, error)
	SetAccessToken(token string)
	Me(ctx context.Context) (*models.Identity, error)
	SetPlan(ctx context.Context, identityID, plan string, expiresAt *time.Time) error
	ListGuests(ctx context.Context) ([]models.Identity, error)
	ListVaults(ctx context.Context) ([]models.Vault, error)
	Usage(ctx context.Context) (*models.Usage, error)
	QueryActivity(ctx context.Context, subjectID string, limit int) ([]models.ActivityEntry, error)
}
