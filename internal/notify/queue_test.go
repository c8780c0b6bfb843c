package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every scheduled callback, including stopped ones, to model a
// timer that was already in flight when it was stopped.
func (c *fakeClock) fireAll() {
	c.mu.Lock()
	timers := append([]*fakeTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

func newTestQueue(t *testing.T) (*Queue, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	return New(WithAfterFunc(clock.AfterFunc)), clock
}

func TestQueue_ShowAssignsSequentialIDs(t *testing.T) {
	q, _ := newTestQueue(t)

	first := q.Success("a")
	second := q.Error("b")
	third := q.Info("c")

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, int64(3), third)

	list := q.List()
	require.Len(t, list, 3)
	assert.Equal(t, Success, list[0].Type)
	assert.Equal(t, Error, list[1].Type)
	assert.Equal(t, Info, list[2].Type)
}

func TestQueue_DefaultDuration(t *testing.T) {
	q, clock := newTestQueue(t)

	q.Warning("careful")

	require.Len(t, clock.timers, 1)
	assert.Equal(t, DefaultDuration, clock.timers[0].d)
	assert.Equal(t, DefaultDuration, q.List()[0].Duration)
}

func TestQueue_CustomAndStickyDuration(t *testing.T) {
	q, clock := newTestQueue(t)

	q.Show(Notification{Type: Info, Message: "short", Duration: time.Second})
	q.Show(Notification{Type: Info, Message: "sticky", Duration: Sticky})

	require.Len(t, clock.timers, 1, "sticky notifications schedule nothing")
	assert.Equal(t, time.Second, clock.timers[0].d)
	assert.Equal(t, time.Duration(0), q.List()[1].Duration)
}

func TestQueue_AutoDismiss(t *testing.T) {
	q, clock := newTestQueue(t)

	q.Success("done")
	keep := q.Show(Notification{Type: Info, Message: "stay", Duration: Sticky})
	clock.fireAll()

	list := q.List()
	require.Len(t, list, 1)
	assert.Equal(t, keep, list[0].ID)
}

func TestQueue_RemoveBeforeExpiry(t *testing.T) {
	q, clock := newTestQueue(t)

	id := q.Show(Notification{Type: Error, Message: "x"})
	q.Remove(id)

	assert.Empty(t, q.List())
	require.Len(t, clock.timers, 1)
	assert.True(t, clock.timers[0].stopped)

	// a late timer callback for the removed id changes nothing
	clock.fireAll()
	assert.Empty(t, q.List())
}

func TestQueue_RemoveUnknownIDIsNoop(t *testing.T) {
	q, _ := newTestQueue(t)
	q.Info("a")

	var publishes int
	sub := q.Subscribe(func([]Notification) { publishes++ })
	defer sub.Unsubscribe()

	q.Remove(42)

	assert.Len(t, q.List(), 1)
	assert.Equal(t, 1, publishes, "only the initial delivery")
}

func TestQueue_IDsIncreaseAcrossClear(t *testing.T) {
	q, clock := newTestQueue(t)

	q.Info("a")
	q.Info("b")
	q.Clear()
	assert.Empty(t, q.List())

	for _, timer := range clock.timers {
		assert.True(t, timer.stopped)
	}
	clock.fireAll()

	id := q.Info("c")
	assert.Equal(t, int64(3), id)
}

func TestQueue_SubscribeSeesEveryChange(t *testing.T) {
	q, _ := newTestQueue(t)

	var sizes []int
	sub := q.Subscribe(func(list []Notification) { sizes = append(sizes, len(list)) })
	defer sub.Unsubscribe()

	a := q.Info("a")
	q.Info("b")
	q.Remove(a)
	q.Clear()

	assert.Equal(t, []int{0, 1, 2, 1, 0}, sizes)
}

func TestQueue_PublishedSnapshotsAreIndependent(t *testing.T) {
	q, _ := newTestQueue(t)

	var snapshots [][]Notification
	q.Subscribe(func(list []Notification) { snapshots = append(snapshots, list) })

	q.Info("a")
	q.Info("b")
	q.Remove(1)

	require.Len(t, snapshots, 4)
	require.Len(t, snapshots[2], 2)
	assert.Equal(t, "a", snapshots[2][0].Message)
	assert.Equal(t, "b", snapshots[2][1].Message)
}

func TestQueue_ConcurrentShowsUniqueIDs(t *testing.T) {
	q, _ := newTestQueue(t)

	const n = 100
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- q.Info("msg")
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	list := q.List()
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
}

func TestQueue_CloseStopsTimers(t *testing.T) {
	q, clock := newTestQueue(t)

	q.Info("a")
	q.Close()
	q.Info("b")

	require.Len(t, clock.timers, 1)
	assert.True(t, clock.timers[0].stopped)
}

func TestQueue_RealTimerExpires(t *testing.T) {
	q := New(WithDefaultDuration(10 * time.Millisecond))
	defer q.Close()

	q.Info("soon gone")

	assert.Eventually(t, func() bool { return len(q.List()) == 0 }, time.Second, 5*time.Millisecond)
}
