// internal/stream/stream.go
package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"telemetry-capture/internal/model"
)

// Stream
// ------------------------------------------------------------
// 수신된 텔레메트리의 fan-out 발행 채널.
//
//   - Publish: 호출 시점에 구독 중인 모든 Subscription 에 item 을 1회씩 전달
//   - Subscribe: "지금"부터의 item 만 보는 새 view (과거 item replay 없음)
//
// HTTP 수집 속도와 테스트 assertion 속도를 분리하는 유일한 공유 지점이다.
type Stream interface {
	Publish(e *model.Envelope)
	Subscribe() *Subscription
}

// Hub 는 Stream 의 기본 구현.
//
// 동시성 규칙:
//   - Publish 는 mu 를 잡은 상태에서 모든 구독자 큐에 append 한다.
//     따라서 publish 순서가 곧 모든 구독자의 관찰 순서(single total order).
//   - 구독자 큐는 unbounded 이며 절대 drop 하지 않는다.
//     (느린 reader 때문에 item 이 빠지면 count assertion 이 깨진다)
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}

	published atomic.Int64
}

var _ Stream = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Publish 는 실패하지 않는다. 구독자가 없으면 item 은 아무도 관찰하지 않는다.
func (h *Hub) Publish(e *model.Envelope) {
	if e == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	at := time.Now()
	h.published.Add(1)
	for s := range h.subs {
		s.push(e, at)
	}
}

func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		hub:  h,
		wake: make(chan struct{}, 1),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Subscribers 는 현재 활성 구독 수.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Published 는 누적 publish 건수.
func (h *Hub) Published() int64 {
	return h.published.Load()
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// entry 는 구독자 큐의 한 칸. at 은 publish 시각.
type entry struct {
	e  *model.Envelope
	at time.Time
}

// Subscription
// ------------------------------------------------------------
// 하나의 query 가 독점 소유하는 stream view.
// Subscribe 이후 publish 된 item 을 도착 순서대로 Next 로 꺼낸다.
// Close 이후에는 어떤 item 도 관찰하지 않는다.
type Subscription struct {
	hub *Hub

	mu     sync.Mutex
	queue  []entry
	closed bool

	// publish 마다 non-blocking 으로 1칸 신호.
	// Next 가 polling 없이 즉시 깨어나도록 한다.
	wake chan struct{}
}

func (s *Subscription) push(e *model.Envelope, at time.Time) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, entry{e: e, at: at})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Next 는 다음 item 을 반환한다.
// item 이 없으면 deadline 까지 block 하며, deadline 이 지나거나
// 구독이 닫히면 ok=false.
//
// deadline 은 절대 시각이며 호출마다 재계산하지 않는다.
// deadline 보다 엄격히 먼저 도착한 item 은 timer 가 늦게 깨어나도 반환된다.
func (s *Subscription) Next(deadline time.Time) (*model.Envelope, bool) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		ent, ok, closed := s.pop()
		if closed {
			return nil, false
		}
		if ok {
			if ent.at.Before(deadline) {
				return ent.e, true
			}
			return nil, false
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			return nil, false
		}
		if timer == nil {
			timer = time.NewTimer(wait)
		}

		select {
		case <-s.wake:
		case <-timer.C:
			timer = nil
		}
	}
}

func (s *Subscription) pop() (ent entry, ok bool, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return entry{}, false, true
	}
	if len(s.queue) == 0 {
		return entry{}, false, false
	}
	ent = s.queue[0]
	s.queue[0] = entry{}
	s.queue = s.queue[1:]
	return ent, true, false
}

// Pending 은 아직 Next 로 꺼내지 않은 item 수.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close 는 구독을 해제한다. 여러 번 호출해도 안전하다.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	s.hub.remove(s)
}
