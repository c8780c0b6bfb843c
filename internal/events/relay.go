// Package events relays expense store changes to a message broker so that
// other programs can follow a session's activity.
package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"expensetracker/internal/log"
	"expensetracker/internal/observable"
	"expensetracker/internal/store"
)

// DefaultBuffer is the number of events queued before new ones are dropped.
const DefaultBuffer = 64

const defaultAttempts = 3

// Publisher delivers one event. *AMQPPublisher implements it.
type Publisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// StateSource is the part of *store.Store the relay follows.
type StateSource interface {
	Subscribe(fn func(store.State)) observable.Subscription
}

// Relay forwards store changes to a Publisher from its own goroutine. When
// the buffer is full, events are dropped and counted.
type Relay struct {
	pub         Publisher
	events      chan ChangeEvent
	logger      *log.Logger
	now         func() time.Time
	backoff     func(attempt int) time.Duration
	maxAttempts int

	stop      chan struct{}
	done      chan struct{}
	started   atomic.Bool
	closeOnce sync.Once
	dropped   atomic.Int64
	published atomic.Int64
}

// NewRelay creates a relay. buffer < 1 means DefaultBuffer.
func NewRelay(pub Publisher, buffer int, logger *log.Logger) *Relay {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Relay{
		pub:         pub,
		events:      make(chan ChangeEvent, buffer),
		logger:      logger.WithComponent(log.ComponentEvents),
		now:         time.Now,
		backoff:     exponentialBackoff,
		maxAttempts: defaultAttempts,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Attach subscribes the relay to src. The state held at subscription time
// is not relayed; only later changes are.
func (r *Relay) Attach(src StateSource) observable.Subscription {
	first := true
	return src.Subscribe(func(st store.State) {
		if first {
			first = false
			return
		}
		r.Enqueue(NewChangeEvent(st, r.now()))
	})
}

// Enqueue queues ev without blocking.
func (r *Relay) Enqueue(ev ChangeEvent) {
	select {
	case r.events <- ev:
	default:
		n := r.dropped.Add(1)
		r.logger.Warn("Change event dropped, relay buffer full",
			log.FieldVersion, ev.Version,
			log.FieldCount, n)
	}
}

// Start runs the delivery loop until ctx is done or Close is called.
func (r *Relay) Start(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	go r.run(ctx)
}

// Close stops the loop after delivering what is already queued.
func (r *Relay) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
		if r.started.Load() {
			<-r.done
		}
	})
}

// Dropped returns how many events were discarded because the buffer was full.
func (r *Relay) Dropped() int64 {
	return r.dropped.Load()
}

// Published returns how many events were delivered.
func (r *Relay) Published() int64 {
	return r.published.Load()
}

func (r *Relay) run(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case ev := <-r.events:
			r.deliver(ctx, ev)
		case <-r.stop:
			r.drain(ctx)
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	for {
		select {
		case ev := <-r.events:
			r.deliver(ctx, ev)
		default:
			return
		}
	}
}

func (r *Relay) deliver(ctx context.Context, ev ChangeEvent) {
	var err error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.backoff(attempt - 1)):
			}
		}

		if err = r.pub.Publish(ctx, ev); err == nil {
			r.published.Add(1)
			return
		}
		if !isConnectionError(err) {
			break
		}
	}

	r.logger.ErrorContext(ctx, "Failed to relay change event",
		log.FieldOperation, log.OpPublish,
		log.FieldVersion, ev.Version,
		log.FieldError, err.Error())
}
