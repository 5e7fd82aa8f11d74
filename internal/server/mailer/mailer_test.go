package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu       sync.Mutex
	sent     []Message
	err      error
	block    chan struct{}
	deadline bool
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, s.deadline = ctx.Deadline()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

func TestDispatcher_DeliversQueuedMessages(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, time.Second, 4, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	d.Notify(ctx, WelcomeMessage("g@x.io"))
	d.Notify(ctx, InviteAcceptedMessage("a@x.io", "g@x.io"))

	require.Eventually(t, func() bool { return len(sender.messages()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-d.Done()

	msgs := sender.messages()
	assert.Equal(t, "g@x.io", msgs[0].To)
	assert.Equal(t, "a@x.io", msgs[1].To)
	assert.True(t, sender.deadline, "delivery must run under a timeout")
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, time.Second, 4, logging.NewNop())

	d.Notify(context.Background(), WelcomeMessage("one@x.io"))
	d.Notify(context.Background(), WelcomeMessage("two@x.io"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	assert.Len(t, sender.messages(), 2)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, time.Second, 1, logging.NewNop())

	d.Notify(context.Background(), WelcomeMessage("kept@x.io"))
	d.Notify(context.Background(), WelcomeMessage("dropped@x.io"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "kept@x.io", msgs[0].To)
}

func TestDispatcher_SendFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, time.Second, 1, logging.NewNop())

	d.Notify(context.Background(), ResetMessage("a@x.io", "http://x/#reset=abc"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotPanics(t, func() { d.Run(ctx) })
}

func TestDispatcher_TimeoutBoundsDelivery(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(sender, 20*time.Millisecond, 1, logging.NewNop())

	d.Notify(context.Background(), WelcomeMessage("slow@x.io"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	d.Run(ctx)
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, sender.messages())
}

func TestMessages(t *testing.T) {
	m := ResetMessage("a@x.io", "http://localhost:3000/#reset=abc")
	assert.Contains(t, m.Body, "#reset=abc")

	m = InviteMessage("g@x.io", "Alice", "http://localhost:3000/#invite=def")
	assert.Contains(t, m.Subject, "Alice")
	assert.Contains(t, m.Body, "#invite=def")

	m = VaultPendingMessage("a@x.io", "g@x.io", "Family")
	assert.Contains(t, m.Body, `"Family"`)

	assert.NoError(t, NewLogSender(logging.NewNop()).Send(context.Background(), PasswordChangedMessage("a@x.io")))
}
