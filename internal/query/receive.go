// internal/query/receive.go
package query

import (
	"time"

	"telemetry-capture/internal/model"
	"telemetry-capture/internal/stream"
)

// 테스트 assertion 에서 바로 쓰는 동기 조회 함수들.
// 모두 timeout 까지 block 하며, count 기반 함수는
// 부족하면 *CountMismatchError 를 반환한다.

// ReceiveItems 는 remote dependency 를 제외한 item count 건을 기다린다.
func ReceiveItems(s stream.Stream, count int, timeout time.Duration) ([]*model.Envelope, error) {
	return Receive(s, Query{Filter: Default, Count: count, Timeout: timeout})
}

// ReceiveItemsOfType 은 T kind item count 건을 typed view 로 반환한다.
func ReceiveItemsOfType[T model.BaseData](s stream.Stream, count int, timeout time.Duration) ([]model.Item[T], error) {
	batch, err := Receive(s, Query{
		Filter:  OfType[T](),
		Count:   count,
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return typed[T](batch), nil
}

func ReceiveItemsOfTypes[T1, T2 model.BaseData](s stream.Stream, count int, timeout time.Duration) ([]*model.Envelope, error) {
	return Receive(s, Query{
		Filter:  OfKinds(model.KindFor[T1](), model.KindFor[T2]()),
		Count:   count,
		Timeout: timeout,
	})
}

// ReceiveItemsOfTypesWithPrefix 는 T1|T2 kind 중 tags[tagKey] 가 prefix 로
// 시작하는 item 만 센다. T1|T2 item 에 tagKey 가 없으면 query 를 중단하고
// *MissingTagError 를 반환한다.
func ReceiveItemsOfTypesWithPrefix[T1, T2 model.BaseData](
	s stream.Stream,
	count int,
	timeout time.Duration,
	tagKey, prefix string,
) ([]*model.Envelope, error) {
	return Receive(s, Query{
		Filter:  WithTagPrefix(OfKinds(model.KindFor[T1](), model.KindFor[T2]()), tagKey, prefix),
		Count:   count,
		Timeout: timeout,
	})
}

// ReceiveItemsOfTypesWithWebPrefix 는 JavaScript(web) SDK 가 보낸 item 만 센다.
func ReceiveItemsOfTypesWithWebPrefix[T1, T2 model.BaseData](s stream.Stream, count int, timeout time.Duration) ([]*model.Envelope, error) {
	return ReceiveItemsOfTypesWithPrefix[T1, T2](s, count, timeout, model.TagInternalSdkVersion, "web")
}

// ReceiveAllDuring 은 timeout 동안 들어온 item(remote dependency 제외)을 모두 반환한다.
// count 조건이 없으므로 실패하지 않는다.
func ReceiveAllDuring(s stream.Stream, timeout time.Duration) ([]*model.Envelope, error) {
	return Receive(s, Query{Filter: Default, Timeout: timeout, UntilDeadline: true})
}

func ReceiveAllDuringOfType[T model.BaseData](s stream.Stream, timeout time.Duration) ([]model.Item[T], error) {
	batch, err := Receive(s, Query{
		Filter:        OfType[T](),
		Timeout:       timeout,
		UntilDeadline: true,
	})
	if err != nil {
		return nil, err
	}
	return typed[T](batch), nil
}

func ReceiveAllDuringOfTypes[T1, T2 model.BaseData](s stream.Stream, timeout time.Duration) ([]*model.Envelope, error) {
	return Receive(s, Query{
		Filter:        OfKinds(model.KindFor[T1](), model.KindFor[T2]()),
		Timeout:       timeout,
		UntilDeadline: true,
	})
}
