// Package tokens runs the three token lifecycles: stateless session tokens,
// password reset tokens stored on the identity and invite tokens stored on
// the pending guest.
package tokens

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/auth"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/mailer"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/store"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/users"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
)

// Token kinds reported to the Observer.
const (
	KindSession = "session"
	KindReset   = "reset"
	KindInvite  = "invite"
)

// DefaultResetTTL is how long a reset token stays valid after issuance.
const DefaultResetTTL = 30 * time.Minute

// Observer receives token and authentication events, typically metrics.
type Observer interface {
	TokenIssued(kind string)
	AuthFailed(reason string)
}

type nopObserver struct{}

func (nopObserver) TokenIssued(string) {}
func (nopObserver) AuthFailed(string)  {}

// errNoChange aborts a store update that has nothing to write.
var errNoChange = errors.New("no change")

type Engine struct {
	store    *store.Store
	users    *users.Service
	issuer   *auth.Issuer
	recorder *activity.Recorder
	notifier mailer.Notifier
	observer Observer
	clock    timex.Clock
	logger   logging.Logger

	resetTTL time.Duration
	baseURL  string
}

type Option func(*Engine)

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func WithClock(c timex.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithResetTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.resetTTL = ttl
		}
	}
}

// WithPublicBaseURL sets the origin that reset and invite links point at.
func WithPublicBaseURL(u string) Option {
	return func(e *Engine) { e.baseURL = strings.TrimRight(u, "/") }
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(s *store.Store, u *users.Service, issuer *auth.Issuer, recorder *activity.Recorder, notifier mailer.Notifier, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		users:    u,
		issuer:   issuer,
		recorder: recorder,
		notifier: notifier,
		observer: nopObserver{},
		clock:    timex.SystemClock{},
		logger:   logging.NewNop(),
		resetTTL: DefaultResetTTL,
		baseURL:  "http://localhost:3000",
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("module", "tokens")
	return e
}

func (e *Engine) record(ctx context.Context, identityID, action, details, origin string) {
	if e.recorder != nil {
		e.recorder.Record(ctx, identityID, action, details, origin)
	}
}

func (e *Engine) notify(ctx context.Context, msg mailer.Message) {
	if e.notifier != nil && msg.To != "" {
		e.notifier.Notify(ctx, msg)
	}
}

func (e *Engine) link(fragment, token string) string {
	return e.baseURL + "/#" + fragment + "=" + token
}
