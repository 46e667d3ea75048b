// Package notifier delivers auction notifications off the bidding path.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-house/internal/metrics"
	"auction-house/utils"
)

// Kind of notification.
type Kind string

const (
	KindWinnerDetermined Kind = "winner_determined"
	KindOutbid           Kind = "outbid"
	KindAuctionClosed    Kind = "auction_closed"
)

// Notification is a request to tell a user something about an auction.
type Notification struct {
	Kind      Kind      `json:"kind"`
	AuctionID string    `json:"auction_id"`
	UserID    string    `json:"user_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	At        time.Time `json:"at"`
	// DedupeKey, when set, limits delivery to once per key.
	DedupeKey string `json:"dedupe_key,omitempty"`
}

// WinnerKey is the at-most-once key for a winner notification.
func WinnerKey(auctionID, winnerID string) string {
	return fmt.Sprintf("winner:%s:%s", auctionID, winnerID)
}

// Publisher hands a notification to the delivery channel. Publish must return once ctx is done.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// Deduper records which keys were already delivered.
type Deduper interface {
	// Claim returns true the first time key is seen.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so a later Claim succeeds again.
	Release(ctx context.Context, key string) error
}

// Notifier is what the bidding core depends on. Enqueue never blocks.
type Notifier interface {
	Enqueue(n Notification) bool
}

// ErrClosed is returned by Close when called twice.
var ErrClosed = errors.New("notifier: dispatcher closed")

// Options configures a Dispatcher.
type Options struct {
	QueueSize  int
	Workers    int
	MaxRetries int
	Backoff    time.Duration
	Metrics    *metrics.Metrics
}

// Dispatcher is a bounded queue drained by a fixed pool of workers.
type Dispatcher struct {
	publisher Publisher
	deduper   Deduper
	opts      Options

	queue  chan Notification
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts opts.Workers goroutines publishing through p.
func NewDispatcher(p Publisher, d Deduper, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	if d == nil {
		d = NewMemoryDeduper(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	disp := &Dispatcher{
		publisher: p,
		deduper:   d,
		opts:      opts,
		queue:     make(chan Notification, opts.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < opts.Workers; i++ {
		disp.wg.Add(1)
		go func(workerID int) {
			defer disp.wg.Done()
			disp.run(workerID)
		}(i)
	}

	utils.Info("notification dispatcher started", map[string]any{"workers": opts.Workers, "queue_size": opts.QueueSize})
	return disp
}

// Enqueue queues n for delivery. It returns false when the queue is full or closed.
func (d *Dispatcher) Enqueue(n Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.opts.Metrics.Notification(string(n.Kind), "dropped")
		return false
	}

	select {
	case d.queue <- n:
		d.opts.Metrics.Notification(string(n.Kind), "enqueued")
		d.opts.Metrics.QueueDepth(len(d.queue))
		return true
	default:
		utils.Warn("notification queue full, dropping", map[string]any{
			"kind":       n.Kind,
			"auction_id": n.AuctionID,
			"user_id":    n.UserID,
		})
		d.opts.Metrics.Notification(string(n.Kind), "dropped")
		return false
	}
}

// Close stops accepting notifications and waits for queued ones to drain. When ctx expires
// first, in-flight deliveries are cancelled, the rest of the queue is dropped and Close
// returns ctx.Err() once the workers have exited.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		utils.Info("notification dispatcher stopped", nil)
		return nil
	case <-ctx.Done():
	}

	d.cancel()
	<-done
	utils.Warn("notification dispatcher stopped before draining", map[string]any{"error": ctx.Err().Error()})
	return ctx.Err()
}

func (d *Dispatcher) run(workerID int) {
	for n := range d.queue {
		d.opts.Metrics.QueueDepth(len(d.queue))
		if d.ctx.Err() != nil {
			d.opts.Metrics.Notification(string(n.Kind), "dropped")
			continue
		}
		d.deliver(d.ctx, workerID, n)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, n Notification) {
	if n.DedupeKey != "" {
		first, err := d.deduper.Claim(ctx, n.DedupeKey)
		if err != nil {
			utils.Error("notification dedupe failed", map[string]any{"key": n.DedupeKey, "error": err.Error()})
			d.opts.Metrics.Notification(string(n.Kind), "failed")
			return
		}
		if !first {
			d.opts.Metrics.Notification(string(n.Kind), "duplicate")
			return
		}
	}

	backoff := d.opts.Backoff
	var err error
	for attempt := 0; attempt <= d.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if !sleep(ctx, backoff) {
				err = ctx.Err()
				break
			}
			backoff *= 2
		}
		if err = d.publisher.Publish(ctx, n); err == nil {
			d.opts.Metrics.Notification(string(n.Kind), "published")
			return
		}
		utils.Warn("notification publish failed", map[string]any{
			"kind":    n.Kind,
			"attempt": attempt + 1,
			"worker":  workerID,
			"error":   err.Error(),
		})
	}

	utils.Error("notification delivery gave up", map[string]any{
		"kind":       n.Kind,
		"auction_id": n.AuctionID,
		"user_id":    n.UserID,
		"error":      err.Error(),
	})
	d.opts.Metrics.Notification(string(n.Kind), "failed")

	if n.DedupeKey != "" {
		if relErr := d.deduper.Release(context.WithoutCancel(ctx), n.DedupeKey); relErr != nil {
			utils.Error("notification dedupe release failed", map[string]any{"key": n.DedupeKey, "error": relErr.Error()})
		}
	}
}

// sleep waits for d and reports false when ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
