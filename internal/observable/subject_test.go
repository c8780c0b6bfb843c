package observable

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject_SubscribeReceivesCurrentValue(t *testing.T) {
	s := NewSubject(1)

	var got []int
	s.Subscribe(func(v int) { got = append(got, v) })
	s.Publish(2)
	s.Publish(3)

	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 3, s.Value())
}

func TestSubject_FanOutInSubscriptionOrder(t *testing.T) {
	s := NewSubject("")

	var order []string
	s.Subscribe(func(v string) { order = append(order, "a:"+v) })
	s.Subscribe(func(v string) { order = append(order, "b:"+v) })
	order = nil

	s.Publish("x")

	assert.Equal(t, []string{"a:x", "b:x"}, order)
}

func TestSubject_Unsubscribe(t *testing.T) {
	s := NewSubject(0)

	calls := 0
	sub := s.Subscribe(func(int) { calls++ })
	sub.Unsubscribe()
	sub.Unsubscribe()
	s.Publish(1)

	assert.Equal(t, 1, calls, "only the initial delivery")
	assert.Equal(t, 0, s.Len())
}

func TestSubject_UnsubscribeDuringDelivery(t *testing.T) {
	s := NewSubject(0)

	var second Subscription
	secondCalls := 0
	s.Subscribe(func(v int) {
		if v == 1 && second != nil {
			second.Unsubscribe()
		}
	})
	second = s.Subscribe(func(int) { secondCalls++ })

	s.Publish(1)
	s.Publish(2)

	assert.Equal(t, 1, secondCalls, "removed before delivery of 1")
}

func TestSubject_ConcurrentPublishDeliversInOrderPerSubscriber(t *testing.T) {
	s := NewSubject(0)

	var mu sync.Mutex
	var seen []int
	s.Subscribe(func(v int) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			s.Publish(v)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 51)
	assert.Equal(t, seen[len(seen)-1], s.Value(), "last delivery is the held value")
}

func TestMap(t *testing.T) {
	s := NewSubject([]int{1, 2})

	var lengths []int
	Map(s, func(v []int) int { return len(v) }, func(n int) { lengths = append(lengths, n) })
	s.Publish([]int{1, 2, 3})

	assert.Equal(t, []int{2, 3}, lengths)
}
