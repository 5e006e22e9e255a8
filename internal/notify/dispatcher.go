// Package notify delivers operator notifications (new orders, contact
// messages) without ever touching the transaction that produced them. A
// bounded queue feeds one background worker; when the queue is full the
// notification is dropped with a log line, and every delivery failure is
// swallowed.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Notification is one message to deliver through every configured sink.
type Notification struct {
	Subject string
	Body    string
}

// Sink delivers a notification to one channel (Telegram, email, ...).
type Sink interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

type Dispatcher struct {
	queue  chan Notification
	sinks  []Sink
	logger *slog.Logger

	wg   sync.WaitGroup
	once sync.Once
}

func NewDispatcher(queueSize int, logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		queue:  make(chan Notification, queueSize),
		sinks:  sinks,
		logger: logger,
	}
}

// Start launches the delivery worker. It drains the queue until Close.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for n := range d.queue {
			d.deliver(n)
		}
	}()
}

// Enqueue hands a notification to the worker. It never blocks: a full
// queue drops the notification, which is acceptable for auxiliary
// communication.
func (d *Dispatcher) Enqueue(n Notification) bool {
	select {
	case d.queue <- n:
		return true
	default:
		d.logger.Warn("notification queue full, dropping", "subject", n.Subject)
		return false
	}
}

// Close stops accepting notifications and waits for queued ones to drain.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, sink := range d.sinks {
		if err := sink.Send(ctx, n); err != nil {
			d.logger.Warn("notification delivery failed",
				"sink", sink.Name(), "subject", n.Subject, "error", err)
		}
	}
}
