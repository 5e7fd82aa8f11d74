// Package activity appends to and queries the bounded audit log kept in the
// store document. Recording is best effort: failures are logged and never
// reach the caller.
package activity

import (
	"context"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/guard"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/store"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
	"github.com/google/uuid"
)

// Action labels written to the log.
const (
	ActionRegister        = "auth.register"
	ActionLogin           = "auth.login"
	ActionPasswordChanged = "auth.password_changed"
	ActionResetRequested  = "auth.reset_requested"
	ActionResetConsumed   = "auth.reset_consumed"
	ActionPINSet          = "auth.pin_set"
	ActionInviteCreated   = "invite.created"
	ActionInviteActivated = "invite.activated"
	ActionPlanChanged     = "plan.changed"
	ActionVaultCreated    = "vault.created"
	ActionVaultApproved   = "vault.approved"
	ActionVaultRejected   = "vault.rejected"
	ActionVaultDeleted    = "vault.deleted"
	ActionVaultRenamed    = "vault.renamed"
	ActionItemCreated     = "item.created"
	ActionItemUpdated     = "item.updated"
	ActionItemDeleted     = "item.deleted"
)

// DefaultCap is the global ceiling on retained entries.
const DefaultCap = 2000

const defaultQueryLimit = 100

type Recorder struct {
	store  *store.Store
	cap    int
	clock  timex.Clock
	logger logging.Logger
}

func NewRecorder(s *store.Store, cap int, clock timex.Clock, logger logging.Logger) *Recorder {
	if cap <= 0 {
		cap = DefaultCap
	}
	if clock == nil {
		clock = timex.SystemClock{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{store: s, cap: cap, clock: clock, logger: logger.With("module", "activity")}
}

// Record appends one entry in its own store update, evicting the oldest
// entries past the cap. It must not be called from inside a store update.
func (r *Recorder) Record(ctx context.Context, identityID, action, details, origin string) {
	entry := models.ActivityEntry{
		ID:        uuid.NewString(),
		UserID:    identityID,
		Action:    action,
		Details:   details,
		Origin:    origin,
		Timestamp: r.clock.Now().UTC(),
	}

	err := r.store.Update(ctx, func(doc *models.Document) error {
		doc.AppendActivity(entry, r.cap)
		return nil
	})
	if err != nil {
		r.logger.Warn(ctx, "activity record failed", "action", action, "user_id", identityID, "error", err)
	}
}

// Query returns up to limit entries, most recent first, optionally only
// those about subjectID.
func (r *Recorder) Query(ctx context.Context, subjectID string, limit int) ([]models.ActivityEntry, error) {
	var out []models.ActivityEntry
	err := r.store.View(ctx, func(doc *models.Document) error {
		out = collect(doc, limit, func(e *models.ActivityEntry) bool {
			return subjectID == "" || e.UserID == subjectID
		})
		return nil
	})
	return out, err
}

// QueryFor is Query restricted to the entries p may see: the master sees
// everything, an admin itself and its guests, a guest only itself.
func (r *Recorder) QueryFor(ctx context.Context, p guard.Principal, subjectID string, limit int) ([]models.ActivityEntry, error) {
	var out []models.ActivityEntry
	err := r.store.View(ctx, func(doc *models.Document) error {
		if subjectID != "" {
			subject := doc.IdentityByID(subjectID)
			if subject == nil {
				if p.Role == models.RoleMaster {
					out = collect(doc, limit, func(e *models.ActivityEntry) bool { return e.UserID == subjectID })
					return nil
				}
				return common.ErrForbidden
			}
			if !guard.CanSeeIdentity(p, subject) {
				return common.ErrForbidden
			}
		}

		visible := visibleSubjects(doc, p)
		out = collect(doc, limit, func(e *models.ActivityEntry) bool {
			if subjectID != "" && e.UserID != subjectID {
				return false
			}
			if visible == nil {
				return true
			}
			_, ok := visible[e.UserID]
			return ok
		})
		return nil
	})
	return out, err
}

// visibleSubjects returns nil when p may see every entry.
func visibleSubjects(doc *models.Document, p guard.Principal) map[string]struct{} {
	if p.Role == models.RoleMaster {
		return nil
	}
	set := map[string]struct{}{p.ID: {}}
	if p.Role == models.RoleAdmin {
		for _, g := range doc.GuestsOf(p.ID) {
			set[g.ID] = struct{}{}
		}
	}
	return set
}

func collect(doc *models.Document, limit int, keep func(e *models.ActivityEntry) bool) []models.ActivityEntry {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	out := make([]models.ActivityEntry, 0, min(limit, len(doc.ActivityLog)))
	for i := len(doc.ActivityLog) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(&doc.ActivityLog[i]) {
			out = append(out, doc.ActivityLog[i])
		}
	}
	return out
}
