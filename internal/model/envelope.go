// internal/model/envelope.go
package model

import (
	"time"
)

// Envelope
// ------------------------------------------------------------
// 계측된 클라이언트(SDK)가 전송한 텔레메트리 1건의 공통 컨테이너.
// kind 와 무관하게 tags / 메타 필드만 필요할 때 이 타입으로 다룬다.
//
// Handler → Decoder → Stream → Query 까지 그대로 전달되며,
// Stream 에 publish 된 이후에는 절대 수정하지 않는다(불변).
// 여러 query 가 같은 *Envelope 포인터를 동시에 읽기 때문이다.
type Envelope struct {
	Ver        int               `json:"ver"`
	Name       string            `json:"name"`
	Time       time.Time         `json:"time"`
	IKey       string            `json:"iKey"`
	SampleRate float64           `json:"sampleRate"`
	Seq        string            `json:"seq"`
	Tags       map[string]string `json:"tags"`

	Kind Kind     `json:"-"` // data.baseType 기준 discriminant
	Data BaseData `json:"-"` // kind 별 payload
}

// Tag 는 tags 에서 key 를 조회한다.
// tags 가 없거나 key 가 없으면 ok=false.
func (e *Envelope) Tag(key string) (string, bool) {
	if e == nil || e.Tags == nil {
		return "", false
	}
	v, ok := e.Tags[key]
	return v, ok
}

// Is 는 envelope 의 kind 가 ks 중 하나인지 확인한다.
func (e *Envelope) Is(ks ...Kind) bool {
	for _, k := range ks {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// Item
// ------------------------------------------------------------
// 단일 kind query(ReceiveItemsOfType 등)가 반환하는 typed view.
// Envelope 공통 필드와 kind 별 payload(Data) 를 함께 노출한다.
type Item[T BaseData] struct {
	*Envelope
	Data T
}

// ItemOf 는 envelope 의 payload 가 T 이면 typed view 를 반환한다.
func ItemOf[T BaseData](e *Envelope) (Item[T], bool) {
	d, ok := e.Data.(T)
	if !ok {
		return Item[T]{}, false
	}
	return Item[T]{Envelope: e, Data: d}, true
}

// 자주 쓰는 context tag key (Application Insights ContextTagKeys 기준).
const (
	TagInternalSdkVersion = "ai.internal.sdkVersion"
	TagInternalAgentVer   = "ai.internal.agentVersion"
	TagOperationID        = "ai.operation.id"
	TagOperationName      = "ai.operation.name"
	TagOperationParentID  = "ai.operation.parentId"
	TagCloudRole          = "ai.cloud.role"
	TagCloudRoleInstance  = "ai.cloud.roleInstance"
	TagDeviceID           = "ai.device.id"
	TagUserID             = "ai.user.id"
	TagSessionID          = "ai.session.id"
)
