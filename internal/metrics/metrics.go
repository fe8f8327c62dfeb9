package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics 는 capture listener 상태 카운터 모음이다.
// /metrics 에서 name=value 텍스트로 노출된다.
type Metrics struct {
	// ======================
	// HTTP 레벨 지표
	// ======================

	// HTTPRequestsTotal
	// - /collect 로 들어온 모든 요청 수 (메서드/결과 무관).
	HTTPRequestsTotal int64

	// HTTPRequestsAcceptedTotal
	// - 디코딩에 성공해 item 이 publish 된 요청 수 (빈 body 포함).
	HTTPRequestsAcceptedTotal int64

	// HTTPRequestsRejectedBodyTooLargeTotal
	// - MaxBodySize 초과로 413 을 반환한 요청 수.
	HTTPRequestsRejectedBodyTooLargeTotal int64

	// HTTPRequestsRejectedDecodeTotal
	// - body 디코딩 실패로 400 을 반환한 요청 수.
	// - 이 값이 0 이 아니면 SDK 가 보내는 포맷과 Decoder 가 어긋난 것.
	//   이 요청들의 item 은 하나도 publish 되지 않는다.
	HTTPRequestsRejectedDecodeTotal int64

	// ======================
	// Stream 레벨 지표
	// ======================

	// ItemsPublishedTotal
	// - Stream 에 publish 된 item 수. 구독자 유무와 무관하게 센다.
	ItemsPublishedTotal int64

	// ItemsByKind
	// - kind 별 publish 수. 인덱스는 model.Kind.
	ItemsByKind [KindSlots]int64
}

// KindSlots 는 ItemsByKind 배열 크기. model.Kind 최대값보다 커야 한다.
const KindSlots = 16

func New() *Metrics {
	return &Metrics{}
}

// AddItem 은 kind 슬롯과 전체 카운터를 함께 올린다.
func (m *Metrics) AddItem(kind int) {
	atomic.AddInt64(&m.ItemsPublishedTotal, 1)
	if kind >= 0 && kind < KindSlots {
		atomic.AddInt64(&m.ItemsByKind[kind], 1)
	}
}

// String 은 카운터를 출력한다.
// names 는 kind 슬롯 이름 (nil 이면 kind 별 지표 생략).
// subscribers 는 현재 활성 구독 수 (gauge).
func (m *Metrics) String(names func(int) string, subscribers int) string {
	var sb strings.Builder
	sb.Grow(512)

	fmt.Fprintf(&sb, "http_requests_total=%d\n", atomic.LoadInt64(&m.HTTPRequestsTotal))
	fmt.Fprintf(&sb, "http_requests_accepted_total=%d\n", atomic.LoadInt64(&m.HTTPRequestsAcceptedTotal))
	fmt.Fprintf(&sb, "http_requests_rejected_body_too_large_total=%d\n", atomic.LoadInt64(&m.HTTPRequestsRejectedBodyTooLargeTotal))
	fmt.Fprintf(&sb, "http_requests_rejected_decode_total=%d\n", atomic.LoadInt64(&m.HTTPRequestsRejectedDecodeTotal))

	fmt.Fprintf(&sb, "items_published_total=%d\n", atomic.LoadInt64(&m.ItemsPublishedTotal))
	if names != nil {
		for k := 0; k < KindSlots; k++ {
			if n := atomic.LoadInt64(&m.ItemsByKind[k]); n > 0 {
				fmt.Fprintf(&sb, "items_published_total{kind=%q}=%d\n", names(k), n)
			}
		}
	}
	fmt.Fprintf(&sb, "stream_subscribers=%d\n", subscribers)

	return sb.String()
}
