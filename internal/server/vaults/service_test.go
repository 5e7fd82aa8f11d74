package vaults

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/cryptox"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/guard"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/mailer"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/store"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/users"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (n *fakeNotifier) Notify(_ context.Context, msg mailer.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

type fixture struct {
	svc   *Service
	users *users.Service
	store *store.Store
	rec   *activity.Recorder
	mail  *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.New(store.NewMemoryMedium(nil))
	clock := timex.NewManualClock(t0)
	rec := activity.NewRecorder(s, activity.DefaultCap, clock, logging.NewNop())
	mail := &fakeNotifier{}
	return &fixture{
		svc:   NewService(s, rec, mail, clock, logging.NewNop()),
		users: users.NewService(s, rec, cryptox.MinBcryptCost, clock, logging.NewNop()),
		store: s,
		rec:   rec,
		mail:  mail,
	}
}

func (f *fixture) master(t *testing.T) guard.Principal {
	t.Helper()
	id, err := f.users.BootstrapMaster(context.Background(), "root@x.io", "password1")
	require.NoError(t, err)
	return guard.Principal{ID: id.ID, Role: id.Role}
}

func (f *fixture) admin(t *testing.T, email string, plan models.Plan) guard.Principal {
	t.Helper()
	id, err := f.users.CreateIdentity(context.Background(), email, "password1", models.RoleAdmin, plan)
	require.NoError(t, err)
	return guard.Principal{ID: id.ID, Role: id.Role}
}

// guest seeds an activated guest invited by inviter.
func (f *fixture) guest(t *testing.T, email string, inviter guard.Principal) guard.Principal {
	t.Helper()
	id := uuid.NewString()
	err := f.store.Update(context.Background(), func(doc *models.Document) error {
		doc.Identities = append(doc.Identities, models.Identity{
			ID:        id,
			Email:     email,
			Role:      models.RoleGuest,
			CreatedAt: t0,
			InvitedBy: inviter.ID,
			Activated: true,
		})
		return nil
	})
	require.NoError(t, err)
	return guard.Principal{ID: id, Role: models.RoleGuest}
}

func (f *fixture) setPIN(t *testing.T, p guard.Principal, pin string) {
	t.Helper()
	require.NoError(t, f.users.SetPIN(context.Background(), p, pin, ""))
}

func (f *fixture) vault(t *testing.T, p guard.Principal, name string) *models.Vault {
	t.Helper()
	v, err := f.svc.CreateVault(context.Background(), p, name, "10.0.0.1")
	require.NoError(t, err)
	return v
}

func TestCreateVault_FreeAdminQuota(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t, "a@x.io", models.PlanFree)

	for i := 0; i < 3; i++ {
		v := f.vault(t, admin, "vault")
		assert.Equal(t, models.VaultActive, v.Status)
	}

	_, err := f.svc.CreateVault(context.Background(), admin, "fourth", "")
	require.ErrorIs(t, err, common.ErrQuotaExceeded)
	var qe *common.QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, common.QuotaError{Limit: "maxVaults", Max: 3, Current: 3}, *qe)

	doc, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, doc.CountVaults(admin.ID))
}

func TestCreateVault_MasterUnlimited(t *testing.T) {
	f := newFixture(t)
	master := f.master(t)

	for i := 0; i < 60; i++ {
		f.vault(t, master, "m")
	}
	list, err := f.svc.ListVaults(context.Background(), master)
	require.NoError(t, err)
	assert.Len(t, list, 60)
}

func TestCreateVault_Validation(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t, "a@x.io", models.PlanFree)

	_, err := f.svc.CreateVault(context.Background(), admin, "   ", "")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestCreateVault_UnknownCaller(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateVault(context.Background(), guard.Principal{ID: "ghost", Role: models.RoleAdmin}, "v", "")
	require.ErrorIs(t, err, common.ErrForbidden)
}

func TestCreateVault_GuestStartsPendingAndNotifiesInviter(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t, "a@x.io", models.PlanPro)
	g := f.guest(t, "g@x.io", admin)

	v := f.vault(t, g, "guest vault")
	assert.Equal(t, models.VaultPending, v.Status)

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "a@x.io", f.mail.sent[0].To)
	assert.Contains(t, f.mail.sent[0].Body, "guest vault")

	_, err := f.svc.AddItem(context.Background(), g, v.ID, "secret", "", "")
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestCreateVault_GuestUsesInviterPlan(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t, "a@x.io", models.PlanFree)
	g := f.guest(t, "g@x.io", admin)

	for i := 0; i < 3; i++ {
		f.vault(t, g, "g")
	}
	_, err := f.svc.CreateVault(context.Background(), g, "g", "")
	require.ErrorIs(t, err, common.ErrQuotaExceeded)

	// the admin's own allowance is counted separately
	f.vault(t, admin, "a")
}

func TestApproveAndRejectVault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "a@x.io", models.PlanPro)
	other := f.admin(t, "b@x.io", models.PlanPro)
	g := f.guest(t, "g@x.io", admin)

	pending := f.vault(t, g, "p1")

	_, err := f.svc.ApproveVault(ctx, g, pending.ID, "")
	require.ErrorIs(t, err, common.ErrForbidden)
	_, err = f.svc.ApproveVault(ctx, other, pending.ID, "")
	require.ErrorIs(t, err, common.ErrForbidden)

	approved, err := f.svc.ApproveVault(ctx, admin, pending.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.VaultActive, approved.Status)

	_, err = f.svc.ApproveVault(ctx, admin, pending.ID, "")
	require.ErrorIs(t, err, common.ErrConflict)

	second := f.vault(t, g, "p2")
	require.NoError(t, f.svc.RejectVault(ctx, admin, second.ID, ""))
	_, err = f.svc.GetVault(ctx, g, second.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.ErrorIs(t, f.svc.RejectVault(ctx, admin, approved.ID, ""), common.ErrConflict)
}

func TestDeleteVault_Authorization(t *testing.T) {
	ctx := context.Background()

	t.Run("sibling guest is forbidden", func(t *testing.T) {
		f := newFixture(t)
		admin := f.admin(t, "a@x.io", models.PlanPro)
		g1 := f.guest(t, "g1@x.io", admin)
		g2 := f.guest(t, "g2@x.io", admin)
		v := f.vault(t, g1, "v")

		err := f.svc.DeleteVault(ctx, g2, v.ID, "1234", "")
		require.ErrorIs(t, err, common.ErrForbidden)
	})

	t.Run("inviting admin may delete", func(t *testing.T) {
		f := newFixture(t)
		admin := f.admin(t, "a@x.io", models.PlanPro)
		g := f.guest(t, "g@x.io", admin)
		v := f.vault(t, g, "v")

		require.NoError(t, f.svc.DeleteVault(ctx, admin, v.ID, "1234", ""))
		_, err := f.svc.GetVault(ctx, g, v.ID)
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("unrelated admin is forbidden", func(t *testing.T) {
		f := newFixture(t)
		admin := f.admin(t, "a@x.io", models.PlanPro)
		other := f.admin(t, "b@x.io", models.PlanPro)
		v := f.vault(t, admin, "v")

		require.ErrorIs(t, f.svc.DeleteVault(ctx, other, v.ID, "1234", ""), common.ErrForbidden)
	})

	t.Run("master may delete any vault", func(t *testing.T) {
		f := newFixture(t)
		master := f.master(t)
		admin := f.admin(t, "a@x.io", models.PlanPro)
		v := f.vault(t, admin, "v")

		require.NoError(t, f.svc.DeleteVault(ctx, master, v.ID, "0000", ""))
	})

	t.Run("unknown vault", func(t *testing.T) {
		f := newFixture(t)
		admin := f.admin(t, "a@x.io", models.PlanPro)
		require.ErrorIs(t, f.svc.DeleteVault(ctx, admin, "nope", "1234", ""), common.ErrorNotFound)
	})
}

func TestDeleteVault_PINConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "a@x.io", models.PlanPro)
	f.setPIN(t, admin, "4321")
	v := f.vault(t, admin, "v")

	require.ErrorIs(t, f.svc.DeleteVault(ctx, admin, v.ID, "", ""), common.ErrValidation)
	require.ErrorIs(t, f.svc.DeleteVault(ctx, admin, v.ID, "1111", ""), common.ErrForbidden)

	_, err := f.svc.GetVault(ctx, admin, v.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteVault(ctx, admin, v.ID, "4321", "10.0.0.9"))

	entries, err := f.rec.Query(ctx, admin.ID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.ActionVaultDeleted, entries[0].Action)
	assert.Equal(t, "10.0.0.9", entries[0].Origin)
}

func TestDeleteVault_ModeratorConfirmsWithOwnPIN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "a@x.io", models.PlanPro)
	g := f.guest(t, "g@x.io", admin)
	f.setPIN(t, admin, "4321")
	f.setPIN(t, g, "9876")
	v := f.vault(t, g, "v")

	require.ErrorIs(t, f.svc.DeleteVault(ctx, admin, v.ID, "9876", ""), common.ErrForbidden)
	require.NoError(t, f.svc.DeleteVault(ctx, admin, v.ID, "4321", ""))

	_, err := f.svc.GetVault(ctx, g, v.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListVaults_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	master := f.master(t)
	a := f.admin(t, "a@x.io", models.PlanPro)
	b := f.admin(t, "b@x.io", models.PlanPro)
	g := f.guest(t, "g@x.io", a)

	f.vault(t, a, "a1")
	f.vault(t, b, "b1")
	f.vault(t, g, "g1")

	names := func(p guard.Principal) []string {
		list, err := f.svc.ListVaults(ctx, p)
		require.NoError(t, err)
		var out []string
		for _, v := range list {
			out = append(out, v.Name)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"a1", "b1", "g1"}, names(master))
	assert.ElementsMatch(t, []string{"a1", "g1"}, names(a))
	assert.ElementsMatch(t, []string{"b1"}, names(b))
	assert.ElementsMatch(t, []string{"g1"}, names(g))
}

func TestListVaults_AdminSeesGuestVaultWithoutItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "a@x.io", models.PlanPro)
	g := f.guest(t, "g@x.io", admin)

	gv := f.vault(t, g, "guest vault")
	_, err := f.svc.ApproveVault(ctx, admin, gv.ID, "")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, g, gv.ID, "secret", "hunter2", "")
	require.NoError(t, err)
	own := f.vault(t, admin, "own")
	_, err = f.svc.AddItem(ctx, admin, own.ID, "mine", "visible", "")
	require.NoError(t, err)

	_, err = f.svc.GetVault(ctx, admin, gv.ID)
	require.ErrorIs(t, err, common.ErrForbidden)

	list, err := f.svc.ListVaults(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 2)
	byID := map[string]models.Vault{}
	for _, v := range list {
		byID[v.ID] = v
	}

	listed := byID[gv.ID]
	assert.Equal(t, "guest vault", listed.Name)
	assert.Equal(t, g.ID, listed.OwnerID)
	assert.Equal(t, models.VaultActive, listed.Status)
	assert.NotNil(t, listed.Items)
	assert.Empty(t, listed.Items)
	assert.Len(t, byID[own.ID].Items, 1)

	mine, err := f.svc.ListVaults(ctx, g)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Items, 1)
	assert.Equal(t, "hunter2", mine[0].Items[0].Description)
}

func TestGetAndRenameVault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.admin(t, "a@x.io", models.PlanPro)
	b := f.admin(t, "b@x.io", models.PlanPro)
	v := f.vault(t, a, "old")

	_, err := f.svc.GetVault(ctx, b, v.ID)
	require.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.svc.RenameVault(ctx, b, v.ID, "stolen", "")
	require.ErrorIs(t, err, common.ErrForbidden)

	renamed, err := f.svc.RenameVault(ctx, a, v.ID, "  new  ", "")
	require.NoError(t, err)
	assert.Equal(t, "new", renamed.Name)

	got, err := f.svc.GetVault(ctx, a, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
}

func TestUsage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.admin(t, "a@x.io", models.PlanFree)
	f.guest(t, "g@x.io", a)
	f.vault(t, a, "v1")
	f.vault(t, a, "v2")

	report, err := f.svc.Usage(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, report.Plan)
	assert.False(t, report.Unlimited)
	assert.Equal(t, 2, report.Vaults)
	assert.Equal(t, 1, report.Guests)
	assert.Equal(t, 20, report.StorageMB)
	assert.Equal(t, 3, report.Limits.MaxVaults)

	master := f.master(t)
	report, err = f.svc.Usage(ctx, master)
	require.NoError(t, err)
	assert.True(t, report.Unlimited)
	assert.Equal(t, models.PlanScale, report.Plan)
}
