package stream

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-capture/internal/model"
)

func env(name string) *model.Envelope {
	return &model.Envelope{Name: name, Kind: model.KindEvent, Data: model.EventData{Name: name}}
}

func drain(s *Subscription, deadline time.Time) []string {
	var names []string
	for {
		e, ok := s.Next(deadline)
		if !ok {
			return names
		}
		names = append(names, e.Name)
	}
}

func TestSubscribeSeesOnlyLaterPublications(t *testing.T) {
	h := NewHub()
	h.Publish(env("before"))

	sub := h.Subscribe()
	defer sub.Close()

	h.Publish(env("after"))

	got := drain(sub, time.Now().Add(20*time.Millisecond))
	assert.Equal(t, []string{"after"}, got)
	assert.EqualValues(t, 2, h.Published())
}

func TestPublishWithoutSubscribers(t *testing.T) {
	h := NewHub()
	h.Publish(env("lost"))
	h.Publish(nil)

	assert.EqualValues(t, 1, h.Published())
	assert.Equal(t, 0, h.Subscribers())
}

func TestNextWakesOnPublish(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	defer sub.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		h.Publish(env("late"))
	}()

	start := time.Now()
	e, ok := sub.Next(start.Add(2 * time.Second))
	require.True(t, ok)
	assert.Equal(t, "late", e.Name)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNextReturnsAtDeadline(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	defer sub.Close()

	start := time.Now()
	_, ok := sub.Next(start.Add(50 * time.Millisecond))
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestNextPastDeadlineStillReturnsEarlierItems(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	defer sub.Close()

	deadline := time.Now().Add(30 * time.Millisecond)
	h.Publish(env("a"))
	h.Publish(env("b"))

	time.Sleep(40 * time.Millisecond)
	h.Publish(env("too-late"))

	assert.Equal(t, []string{"a", "b"}, drain(sub, deadline))
}

func TestCloseStopsObservation(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	require.Equal(t, 1, h.Subscribers())

	h.Publish(env("queued"))
	sub.Close()
	sub.Close()

	h.Publish(env("ignored"))
	assert.Equal(t, 0, h.Subscribers())
	assert.Equal(t, 0, sub.Pending())

	_, ok := sub.Next(time.Now().Add(10 * time.Millisecond))
	assert.False(t, ok)
}

func TestConcurrentPublishersShareOneOrder(t *testing.T) {
	const (
		publishers = 8
		perWorker  = 200
		total      = publishers * perWorker
	)

	h := NewHub()
	subs := make([]*Subscription, 4)
	for i := range subs {
		subs[i] = h.Subscribe()
		defer subs[i].Close()
	}

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				h.Publish(env(strconv.Itoa(p) + "-" + strconv.Itoa(i)))
			}
		}(p)
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	first := drain(subs[0], deadline)
	require.Len(t, first, total)

	seen := make(map[string]struct{}, total)
	for _, n := range first {
		seen[n] = struct{}{}
	}
	assert.Len(t, seen, total, "no duplicates")

	for _, s := range subs[1:] {
		assert.Equal(t, first, drain(s, deadline))
	}
}
