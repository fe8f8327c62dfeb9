// internal/model/kind.go
package model

// Kind 는 텔레메트리 종류를 나타내는 discriminant.
// query 의 type filter 는 런타임 타입 검사 대신 이 값으로 비교한다.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindRequest
	KindRemoteDependency
	KindMessage
	KindEvent
	KindMetric
	KindException
	KindPageView
	KindPerformanceCounter
)

var kindNames = [...]string{
	KindUnknown:            "unknown",
	KindRequest:            "request",
	KindRemoteDependency:   "remote-dependency",
	KindMessage:            "message",
	KindEvent:              "event",
	KindMetric:             "metric",
	KindException:          "exception",
	KindPageView:           "page-view",
	KindPerformanceCounter: "performance-counter",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// baseType(wire 상의 data.baseType) → Kind
var baseTypes = map[string]Kind{
	"RequestData":            KindRequest,
	"RemoteDependencyData":   KindRemoteDependency,
	"MessageData":            KindMessage,
	"EventData":              KindEvent,
	"MetricData":             KindMetric,
	"ExceptionData":          KindException,
	"PageViewData":           KindPageView,
	"PerformanceCounterData": KindPerformanceCounter,
}

// KindOf 는 data.baseType 문자열을 Kind 로 변환한다.
// 알 수 없는 baseType 은 KindUnknown.
func KindOf(baseType string) Kind {
	if k, ok := baseTypes[baseType]; ok {
		return k
	}
	return KindUnknown
}

// KindFor 는 payload 타입 T 의 Kind 를 반환한다.
// BaseData 구현체는 모두 값 리시버이므로 zero value 로 호출 가능하다.
func KindFor[T BaseData]() Kind {
	var zero T
	return zero.Kind()
}
