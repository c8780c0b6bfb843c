// Package notify holds the transient user-facing notifications ("toasts")
// raised by any component, and expires them after their duration.
package notify

import (
	"sync"
	"time"

	"expensetracker/internal/log"
	"expensetracker/internal/observable"
)

// Type is the severity tag of a notification.
type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Info    Type = "info"
	Warning Type = "warning"
)

// DefaultDuration applies when a notification is shown with a zero Duration.
const DefaultDuration = 5 * time.Second

// Sticky as a Duration disables auto-dismissal.
const Sticky time.Duration = -1

// Notification is one visible message. ID is assigned by Show.
type Notification struct {
	ID       int64
	Type     Type
	Message  string
	Duration time.Duration // 0 once shown means no auto-dismissal
}

// Timer is the handle returned by an AfterFunc implementation.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc is the default.
type AfterFunc func(d time.Duration, f func()) Timer

// Queue is the ordered list of visible notifications. IDs start at 1 and
// are never reused within the lifetime of a Queue, including across Clear.
//
// Subscribers are called while the queue is locked; they must not call
// back into the queue synchronously.
type Queue struct {
	mu              sync.Mutex
	nextID          int64
	items           []Notification
	timers          map[int64]Timer
	subject         *observable.Subject[[]Notification]
	afterFunc       AfterFunc
	defaultDuration time.Duration
	logger          *log.Logger
	closed          bool
}

// Option configures a Queue.
type Option func(*Queue)

// WithDefaultDuration overrides DefaultDuration.
func WithDefaultDuration(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.defaultDuration = d
		}
	}
}

// WithAfterFunc replaces the timer implementation.
func WithAfterFunc(fn AfterFunc) Option {
	return func(q *Queue) { q.afterFunc = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(q *Queue) { q.logger = logger.WithComponent(log.ComponentNotify) }
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		timers:          make(map[int64]Timer),
		subject:         observable.NewSubject[[]Notification](nil),
		defaultDuration: DefaultDuration,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Show appends n with the next id and publishes the list. Unless n is
// sticky, the notification is removed automatically after its duration.
func (q *Queue) Show(n Notification) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	n.ID = q.nextID
	switch {
	case n.Duration == 0:
		n.Duration = q.defaultDuration
	case n.Duration < 0:
		n.Duration = 0
	}

	q.items = append(q.items, n)
	q.publishLocked()

	if n.Duration > 0 && !q.closed {
		id := n.ID
		q.timers[id] = q.afterFunc(n.Duration, func() { q.expire(id) })
	}

	q.logger.Debug("Notification shown",
		log.FieldNotificationID, n.ID,
		log.FieldNotificationType, string(n.Type),
		log.FieldOperation, log.OpShow)
	return n.ID
}

// Success shows a success notification with the default duration.
func (q *Queue) Success(message string) int64 {
	return q.Show(Notification{Type: Success, Message: message})
}

// Error shows an error notification with the default duration.
func (q *Queue) Error(message string) int64 {
	return q.Show(Notification{Type: Error, Message: message})
}

// Info shows an info notification with the default duration.
func (q *Queue) Info(message string) int64 {
	return q.Show(Notification{Type: Info, Message: message})
}

// Warning shows a warning notification with the default duration.
func (q *Queue) Warning(message string) int64 {
	return q.Show(Notification{Type: Warning, Message: message})
}

// Remove dismisses the notification with id and publishes the shorter list.
// An unknown id changes nothing, so nothing is published.
func (q *Queue) Remove(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	q.removeLocked(id)
}

// Clear dismisses every notification. Ids keep increasing afterwards.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopTimersLocked()
	q.items = nil
	q.publishLocked()
	q.logger.Debug("Notifications cleared", log.FieldOperation, log.OpClear)
}

// List returns a copy of the visible notifications.
func (q *Queue) List() []Notification {
	return append([]Notification(nil), q.subject.Value()...)
}

// Subscribe registers fn for every change of the visible list. fn receives
// the current list immediately.
func (q *Queue) Subscribe(fn func([]Notification)) observable.Subscription {
	return q.subject.Subscribe(fn)
}

// Close stops pending auto-dismiss timers. Notifications shown after Close
// are never auto-dismissed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.stopTimersLocked()
}

func (q *Queue) expire(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.timers, id)
	q.removeLocked(id)
}

func (q *Queue) removeLocked(id int64) {
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			q.publishLocked()
			q.logger.Debug("Notification dismissed",
				log.FieldNotificationID, id,
				log.FieldOperation, log.OpDismiss)
			return
		}
	}
}

func (q *Queue) stopTimersLocked() {
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
}

// publishLocked hands subscribers a fresh copy so that later mutations of
// q.items never alias a published snapshot.
func (q *Queue) publishLocked() {
	q.subject.Publish(append([]Notification(nil), q.items...))
}
