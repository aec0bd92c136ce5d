package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// ErrDispatcherStopped is returned by Stop when called more than once.
var ErrDispatcherStopped = errors.New("dispatcher already stopped")

// DefaultQueueSize is used when a non-positive queue size is requested.
const DefaultQueueSize = 256

// Dispatcher is the in-process Publisher. Events go into a bounded queue and
// a single worker delivers them, in publish order, to every Subscriber.
type Dispatcher struct {
	queue chan Event

	// mu guards closed and the send side of queue.
	mu     sync.RWMutex
	closed bool

	subMu       sync.RWMutex
	subscribers []Subscriber

	dropped atomic.Uint64
	started atomic.Bool
	done    chan struct{}
	logger  *slog.Logger
}

var _ Publisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher whose queue holds up to queueSize events.
func NewDispatcher(queueSize int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize <= 0 {
		logger.Warn("invalid event queue size specified, using default",
			slog.Int("specified_size", queueSize),
			slog.Int("default_size", DefaultQueueSize))
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
		logger: logger.With(slog.String("component", "event_dispatcher")),
	}
}

// Subscribe registers s to receive every event delivered after this call.
func (d *Dispatcher) Subscribe(s Subscriber) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	d.subscribers = append(d.subscribers, s)
	d.logger.Debug("registered subscriber", slog.Int("subscriber_count", len(d.subscribers)))
}

// Publish enqueues e without blocking. The event is dropped, with a warning,
// when the queue is full or the dispatcher has been stopped.
func (d *Dispatcher) Publish(ctx context.Context, e Event) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		log.Warn("event dropped: dispatcher stopped", slog.String("event", e.Name()))
		return
	}

	select {
	case d.queue <- e:
		log.Debug("event enqueued",
			slog.String("event", e.Name()),
			slog.Int("queue_len", len(d.queue)),
			slog.Int("queue_cap", cap(d.queue)))
	default:
		d.dropped.Add(1)
		log.Warn("event dropped: queue full",
			slog.String("event", e.Name()),
			slog.Int("queue_cap", cap(d.queue)))
	}
}

// Dropped returns how many events were discarded since creation.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Start launches the delivery worker. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	d.logger.Info("starting event dispatcher", slog.Int("queue_cap", cap(d.queue)))
	go d.run()
}

// Stop closes the queue and waits until the worker has delivered what was
// already queued, or until ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherStopped
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	if !d.started.Load() {
		d.logger.Info("event dispatcher stopped before start",
			slog.Int("discarded", len(d.queue)))
		return nil
	}

	select {
	case <-d.done:
		d.logger.Info("event dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("event dispatcher stop timed out", slog.Int("pending", len(d.queue)))
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	ctx := logger.WithLogger(context.Background(), d.logger)
	for e := range d.queue {
		d.deliver(ctx, e)
	}
}

// deliver sends e to every subscriber. A failing subscriber does not stop
// delivery to the others.
func (d *Dispatcher) deliver(ctx context.Context, e Event) {
	env, err := NewEnvelope(e)
	if err != nil {
		d.logger.Error("failed to build envelope", slog.String("event", e.Name()), slog.Any("error", err))
		return
	}

	d.subMu.RLock()
	subscribers := make([]Subscriber, len(d.subscribers))
	copy(subscribers, d.subscribers)
	d.subMu.RUnlock()

	if len(subscribers) == 0 {
		d.logger.Debug("no subscribers registered for event", slog.String("event", e.Name()))
		return
	}

	for i, s := range subscribers {
		if err := s.Deliver(ctx, env); err != nil {
			d.logger.Error("subscriber failed to handle event",
				slog.Any("error", err),
				slog.Int("subscriber_index", i),
				slog.String("event", e.Name()))
		}
	}
}
