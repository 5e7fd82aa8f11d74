// Package mailer is the boundary to the outbound email collaborator. The
// core only hands over (recipient, subject, body); delivery happens in the
// background and its failure never affects the operation that queued it.
package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message. Implementations talk to the real provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier queues messages for delivery.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// LogSender writes messages to the log instead of delivering them. Bodies
// carry one-time links, so they are only logged at debug level.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "mailer")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info(ctx, "mail sent", "to", msg.To, "subject", msg.Subject)
	s.logger.Debug(ctx, "mail body", "to", msg.To, "body", msg.Body)
	return nil
}

const defaultQueueSize = 64

// Dispatcher delivers queued messages on a background goroutine, bounding
// each delivery by a timeout. When the queue is full new messages are
// dropped and logged.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  logging.Logger
	queue   chan Message

	once sync.Once
	done chan struct{}
}

func NewDispatcher(sender Sender, timeout time.Duration, queueSize int, logger logging.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		logger:  logger.With("module", "mailer"),
		queue:   make(chan Message, queueSize),
		done:    make(chan struct{}),
	}
}

// Notify queues msg without blocking.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn(ctx, "mail queue full, message dropped", "to", msg.To, "subject", msg.Subject)
	}
}

// Run delivers messages until ctx is cancelled, then drains what is already
// queued and returns.
func (d *Dispatcher) Run(ctx context.Context) {
	defer d.once.Do(func() { close(d.done) })

	for {
		select {
		case msg := <-d.queue:
			d.deliver(ctx, msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-d.queue:
					d.deliver(ctx, msg)
				default:
					return
				}
			}
		}
	}
}

// Done is closed when Run has returned.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

// deliver is bounded by the timeout only; stopping Run does not abort a
// send already in flight.
func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	ctx = context.WithoutCancel(ctx)
	sendCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.sender.Send(sendCtx, msg); err != nil {
		d.logger.Warn(ctx, "mail delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
	}
}
