// internal/model/data.go
package model

import (
	json "github.com/goccy/go-json"
)

// BaseData 는 envelope 의 kind 별 payload(data.baseData) 가 구현한다.
// 모든 구현체는 값 리시버로 Kind 를 제공해야 한다(KindFor 참고).
type BaseData interface {
	Kind() Kind
}

type RequestData struct {
	Ver          int                `json:"ver"`
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Duration     string             `json:"duration"`
	ResponseCode string             `json:"responseCode"`
	Success      bool               `json:"success"`
	Source       string             `json:"source,omitempty"`
	URL          string             `json:"url,omitempty"`
	Properties   map[string]string  `json:"properties,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
}

type RemoteDependencyData struct {
	Ver          int                `json:"ver"`
	ID           string             `json:"id,omitempty"`
	Name         string             `json:"name"`
	ResultCode   string             `json:"resultCode,omitempty"`
	Duration     string             `json:"duration"`
	Success      bool               `json:"success"`
	Data         string             `json:"data,omitempty"`
	Target       string             `json:"target,omitempty"`
	Type         string             `json:"type,omitempty"`
	Properties   map[string]string  `json:"properties,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
}

// MessageData 는 trace 로그 1건.
type MessageData struct {
	Ver           int               `json:"ver"`
	Message       string            `json:"message"`
	SeverityLevel string            `json:"severityLevel,omitempty"`
	Properties    map[string]string `json:"properties,omitempty"`
}

type EventData struct {
	Ver          int                `json:"ver"`
	Name         string             `json:"name"`
	Properties   map[string]string  `json:"properties,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
}

type DataPoint struct {
	NS     string   `json:"ns,omitempty"`
	Name   string   `json:"name"`
	Kind   string   `json:"kind,omitempty"`
	Value  float64  `json:"value"`
	Count  *int     `json:"count,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	StdDev *float64 `json:"stdDev,omitempty"`
}

type MetricData struct {
	Ver        int               `json:"ver"`
	Metrics    []DataPoint       `json:"metrics"`
	Properties map[string]string `json:"properties,omitempty"`
}

type ExceptionDetails struct {
	ID           int    `json:"id,omitempty"`
	OuterID      int    `json:"outerId,omitempty"`
	TypeName     string `json:"typeName"`
	Message      string `json:"message"`
	HasFullStack bool   `json:"hasFullStack,omitempty"`
	Stack        string `json:"stack,omitempty"`
}

type ExceptionData struct {
	Ver           int                `json:"ver"`
	Exceptions    []ExceptionDetails `json:"exceptions"`
	SeverityLevel string             `json:"severityLevel,omitempty"`
	ProblemID     string             `json:"problemId,omitempty"`
	Properties    map[string]string  `json:"properties,omitempty"`
	Measurements  map[string]float64 `json:"measurements,omitempty"`
}

type PageViewData struct {
	Ver          int                `json:"ver"`
	Name         string             `json:"name"`
	URL          string             `json:"url,omitempty"`
	Duration     string             `json:"duration,omitempty"`
	ID           string             `json:"id,omitempty"`
	Properties   map[string]string  `json:"properties,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
}

type PerformanceCounterData struct {
	Ver          int               `json:"ver"`
	CategoryName string            `json:"categoryName"`
	CounterName  string            `json:"counterName"`
	InstanceName string            `json:"instanceName,omitempty"`
	Value        float64           `json:"value"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// UnknownData 는 알 수 없는 baseType 의 payload 를 원문 그대로 보관한다.
type UnknownData struct {
	BaseType string
	Raw      json.RawMessage
}

func (RequestData) Kind() Kind { return KindRequest }
func (RemoteDependencyData) Kind() Kind { return KindRemoteDependency }
func (MessageData) Kind() Kind { return KindMessage }
func (EventData) Kind() Kind { return KindEvent }
func (MetricData) Kind() Kind { return KindMetric }
func (ExceptionData) Kind() Kind { return KindException }
func (PageViewData) Kind() Kind { return KindPageView }
func (PerformanceCounterData) Kind() Kind { return KindPerformanceCounter }
func (UnknownData) Kind() Kind { return KindUnknown }

// DecodeData 는 baseData 원문을 kind 에 해당하는 payload 로 디코딩한다.
// KindUnknown 이면 원문을 UnknownData 로 그대로 보관한다.
func DecodeData(k Kind, baseType string, raw []byte) (BaseData, error) {
	switch k {
	case KindRequest:
		return decodeAs[RequestData](raw)
	case KindRemoteDependency:
		return decodeAs[RemoteDependencyData](raw)
	case KindMessage:
		return decodeAs[MessageData](raw)
	case KindEvent:
		return decodeAs[EventData](raw)
	case KindMetric:
		return decodeAs[MetricData](raw)
	case KindException:
		return decodeAs[ExceptionData](raw)
	case KindPageView:
		return decodeAs[PageViewData](raw)
	case KindPerformanceCounter:
		return decodeAs[PerformanceCounterData](raw)
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return UnknownData{BaseType: baseType, Raw: cp}, nil
}

func decodeAs[T BaseData](raw []byte) (BaseData, error) {
	var d T
	if len(raw) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}
