// internal/query/filter.go
package query

import (
	"strings"

	"telemetry-capture/internal/model"
)

// Filter 는 item 1건의 매칭 여부를 판단한다.
// error 를 반환하면 query 전체가 그 error 로 중단된다.
type Filter func(e *model.Envelope) (bool, error)

// All 은 모든 item 을 통과시킨다.
func All(*model.Envelope) (bool, error) { return true, nil }

// ExcludeKinds 는 ks 에 해당하지 않는 item 만 통과시킨다.
func ExcludeKinds(ks ...model.Kind) Filter {
	return func(e *model.Envelope) (bool, error) {
		return !e.Is(ks...), nil
	}
}

// OfKinds 는 ks 중 하나인 item 만 통과시킨다.
func OfKinds(ks ...model.Kind) Filter {
	return func(e *model.Envelope) (bool, error) {
		return e.Is(ks...), nil
	}
}

// OfType 은 kind 가 T 이고 payload 가 실제로 T 인 item 만 통과시킨다.
// kind 만 맞고 Data 가 비었거나 다른 타입이면 세지 않는다.
func OfType[T model.BaseData]() Filter {
	kind := model.KindFor[T]()
	return func(e *model.Envelope) (bool, error) {
		if e.Kind != kind {
			return false, nil
		}
		_, ok := e.Data.(T)
		return ok, nil
	}
}

// WithTagPrefix 는 base 를 통과한 item 에 대해서만 tag 를 조회한다.
// tag 가 없으면 *MissingTagError 로 query 를 중단한다.
func WithTagPrefix(base Filter, key, prefix string) Filter {
	return func(e *model.Envelope) (bool, error) {
		ok, err := base(e)
		if !ok || err != nil {
			return ok, err
		}
		v, found := e.Tag(key)
		if !found {
			return false, &MissingTagError{Key: key, Name: e.Name}
		}
		return strings.HasPrefix(v, prefix), nil
	}
}

// Default 는 "특별히 거를 것 없음" query 의 filter.
// 자동 수집되는 remote dependency 는 테스트 하네스의 배경 noise 로 보고 제외한다.
var Default = ExcludeKinds(model.KindRemoteDependency)
