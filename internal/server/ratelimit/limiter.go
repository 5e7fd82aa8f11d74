// Package ratelimit is a fixed-window admission counter keyed by caller
// origin and endpoint. It holds its own lock and never touches the store.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
)

// Rule bounds requests per window.
type Rule struct {
	Max    int
	Window time.Duration
}

type key struct {
	origin   string
	endpoint string
}

type window struct {
	start time.Time
	count int
	rule  Rule
}

type Option func(*Limiter)

// WithRule overrides the default rule for endpoint.
func WithRule(endpoint string, r Rule) Option {
	return func(l *Limiter) {
		l.rules[endpoint] = r
	}
}

func WithClock(c timex.Clock) Option {
	return func(l *Limiter) {
		l.clock = c
	}
}

// WithRejectObserver is called with the endpoint of every rejected request.
func WithRejectObserver(fn func(endpoint string)) Option {
	return func(l *Limiter) {
		l.onReject = fn
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger.With("module", "ratelimit")
	}
}

type Limiter struct {
	mu       sync.Mutex
	def      Rule
	rules    map[string]Rule
	windows  map[key]*window
	clock    timex.Clock
	onReject func(string)
	logger   logging.Logger
}

func New(def Rule, opts ...Option) *Limiter {
	l := &Limiter{
		def:     def,
		rules:   map[string]Rule{},
		windows: map[key]*window{},
		clock:   timex.SystemClock{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) ruleFor(endpoint string) Rule {
	if r, ok := l.rules[endpoint]; ok {
		return r
	}
	return l.def
}

// Allow counts one request from origin to endpoint and returns
// common.ErrTooManyRequests once the window's budget is spent. A rule with
// a non-positive Max disables limiting for its endpoint.
func (l *Limiter) Allow(origin, endpoint string) error {
	rule := l.ruleFor(endpoint)
	if rule.Max <= 0 || rule.Window <= 0 {
		return nil
	}

	now := l.clock.Now()
	k := key{origin: origin, endpoint: endpoint}

	l.mu.Lock()
	w, ok := l.windows[k]
	if !ok || !now.Before(w.start.Add(w.rule.Window)) {
		w = &window{start: now, rule: rule}
		l.windows[k] = w
	}
	if w.count >= rule.Max {
		l.mu.Unlock()
		if l.onReject != nil {
			l.onReject(endpoint)
		}
		return common.ErrTooManyRequests
	}
	w.count++
	l.mu.Unlock()
	return nil
}

// Sweep drops windows that ended before now and returns how many were
// removed.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, w := range l.windows {
		if !now.Before(w.start.Add(w.rule.Window)) {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}

// Len is the number of live windows.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Run sweeps expired windows every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(l.clock.Now()); n > 0 {
				l.logger.Debug(ctx, "rate limit windows swept", "removed", n)
			}
		}
	}
}
