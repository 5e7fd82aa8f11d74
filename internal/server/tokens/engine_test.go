package tokens

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/cryptox"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/auth"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/guard"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/mailer"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/store"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/users"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (n *fakeNotifier) Notify(_ context.Context, msg mailer.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *fakeNotifier) to(addr string) []mailer.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []mailer.Message
	for _, m := range n.sent {
		if m.To == addr {
			out = append(out, m)
		}
	}
	return out
}

type fakeObserver struct {
	mu      sync.Mutex
	issued  map[string]int
	failure map[string]int
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{issued: map[string]int{}, failure: map[string]int{}}
}

func (o *fakeObserver) TokenIssued(kind string) {
	o.mu.Lock()
	o.issued[kind]++
	o.mu.Unlock()
}

func (o *fakeObserver) AuthFailed(reason string) {
	o.mu.Lock()
	o.failure[reason]++
	o.mu.Unlock()
}

type fixture struct {
	engine   *Engine
	users    *users.Service
	store    *store.Store
	clock    *timex.ManualClock
	mail     *fakeNotifier
	observer *fakeObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.New(store.NewMemoryMedium(nil))
	clock := timex.NewManualClock(t0)
	rec := activity.NewRecorder(s, 500, clock, logging.NewNop())
	us := users.NewService(s, rec, cryptox.MinBcryptCost, clock, logging.NewNop())
	mail := &fakeNotifier{}
	obs := newFakeObserver()
	e := NewEngine(s, us, auth.NewIssuer([]byte("test-secret"), time.Hour, clock), rec, mail,
		WithClock(clock),
		WithObserver(obs),
		WithPublicBaseURL("https://vault.example/"),
		WithLogger(logging.NewNop()),
	)
	return &fixture{engine: e, users: us, store: s, clock: clock, mail: mail, observer: obs}
}

func (f *fixture) admin(t *testing.T, email string, plan models.Plan) guard.Principal {
	t.Helper()
	id, err := f.users.CreateIdentity(context.Background(), email, "password1", models.RoleAdmin, plan)
	require.NoError(t, err)
	return guard.Principal{ID: id.ID, Role: id.Role}
}

// tokenFromLink extracts the fragment value of a mailed link.
func tokenFromLink(t *testing.T, body, fragment string) string {
	t.Helper()
	marker := "#" + fragment + "="
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0, "link not found in %q", body)
	rest := body[i+len(marker):]
	if j := strings.IndexAny(rest, " \n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
