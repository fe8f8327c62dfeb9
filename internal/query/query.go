// internal/query/query.go
package query

import (
	"reflect"
	"time"

	zlog "github.com/rs/zerolog/log"

	"telemetry-capture/internal/model"
	"telemetry-capture/internal/stream"
)

// Query
// ------------------------------------------------------------
// "이 filter 로, 최대 Timeout 동안, Count 건" 을 기다리는 1회성 조회.
//
//   - Count 기반: Count 건이 모이는 즉시 종료. 부족하면 CountMismatchError.
//   - UntilDeadline: Count 를 무시하고 deadline 까지 모인 것을 모두 반환.
//
// deadline 은 Receive 시작 시점에 now+Timeout 으로 한 번만 계산한다.
// 매칭되지 않는 item 이 아무리 많이 와도 연장되지 않는다.
type Query struct {
	Filter        Filter
	Count         int
	Timeout       time.Duration
	UntilDeadline bool
}

// Receive 는 q 를 s 위에서 실행하고 매칭된 item 을 도착 순서대로 반환한다.
//
// 상태 전이: Idle → Subscribed → Accumulating → {Satisfied | TimedOut} → Unsubscribed
func Receive(s stream.Stream, q Query) ([]*model.Envelope, error) {
	if isNil(s) {
		return nil, ErrNilStream
	}
	if !q.UntilDeadline && q.Count < 0 {
		return nil, ErrNegativeCount
	}
	if !q.UntilDeadline && q.Count == 0 {
		return []*model.Envelope{}, nil
	}

	filter := q.Filter
	if filter == nil {
		filter = All
	}

	// query 로그는 trace 레벨. 테스트마다 수십 건씩 실행되므로
	// debug 로 켠 listener 로그를 덮지 않게 한다.
	start := time.Now()
	deadline := start.Add(q.Timeout)

	sub := s.Subscribe()
	defer sub.Close()

	batch := make([]*model.Envelope, 0, max(q.Count, 0))
	for q.UntilDeadline || len(batch) < q.Count {
		e, ok := sub.Next(deadline)
		if !ok {
			break
		}
		matched, err := filter(e)
		if err != nil {
			zlog.Trace().Err(err).Int("matched", len(batch)).Msg("query aborted")
			return nil, err
		}
		if matched {
			batch = append(batch, e)
		}
	}

	zlog.Trace().
		Int("count", q.Count).
		Int("received", len(batch)).
		Bool("until_deadline", q.UntilDeadline).
		Dur("elapsed", time.Since(start)).
		Msg("query finished")

	if !q.UntilDeadline && len(batch) != q.Count {
		return nil, &CountMismatchError{Expected: q.Count, Actual: len(batch)}
	}
	return batch, nil
}

// typed 는 envelope 를 T payload view 로 변환한다.
// batch 는 OfType[T] 를 통과한 item 만 담고 있으므로 변환은 항상 성공한다.
func typed[T model.BaseData](batch []*model.Envelope) []model.Item[T] {
	out := make([]model.Item[T], 0, len(batch))
	for _, e := range batch {
		if it, ok := model.ItemOf[T](e); ok {
			out = append(out, it)
		}
	}
	return out
}

// isNil 은 nil interface 뿐 아니라 typed nil 포인터(*stream.Hub(nil) 등)도 잡는다.
func isNil(s stream.Stream) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
