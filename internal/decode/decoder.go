// internal/decode/decoder.go
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"telemetry-capture/internal/model"
	"telemetry-capture/internal/pool"
)

// Decoder 는 HTTP body 1건을 Envelope 목록으로 변환한다.
//
// 처리 순서:
//  1. Content-Encoding 해제 (gzip / deflate, klauspost/compress)
//  2. Content-Type charset → UTF-8 변환
//  3. JSON 디코딩 (goccy/go-json)
//     - JSON 배열 / 단일 객체 / 줄 단위(x-json-stream) 모두 허용
//  4. data.baseType 으로 kind 결정 후 baseData 를 typed payload 로 디코딩
//
// 디코딩은 body 단위 all-or-nothing 이다.
// 한 건이라도 깨져 있으면 아무 item 도 반환하지 않는다(부분 publish 금지).
type Decoder struct {
	// 압축 해제 후 허용되는 최대 크기 (바이트)
	MaxDecodedSize int64
}

func NewDecoder(maxDecodedSize int64) *Decoder {
	return &Decoder{MaxDecodedSize: maxDecodedSize}
}

var ErrUnsupportedEncoding = errors.New("decode: unsupported content encoding")

// DecodeError 는 Index 번째 envelope(0부터)에서 실패했음을 나타낸다.
// Index 가 -1 이면 envelope 파싱 이전 단계(압축 해제, charset) 실패.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode body: %v", e.Err)
	}
	return fmt.Sprintf("decode envelope #%d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// wire 포맷 (Application Insights envelope)
type wireEnvelope struct {
	model.Envelope
	Data struct {
		BaseType string          `json:"baseType"`
		BaseData json.RawMessage `json:"baseData"`
	} `json:"data"`
}

// Decode 는 body 를 디코딩한다. 빈 body 는 item 0건, error 없음.
func (d *Decoder) Decode(body []byte, contentType, contentEncoding string) ([]*model.Envelope, error) {
	if len(body) == 0 {
		return nil, nil
	}

	raw := body

	// ------------------------------------------------------------
	// 1) 압축 해제
	// ------------------------------------------------------------
	switch enc := strings.ToLower(strings.TrimSpace(contentEncoding)); enc {
	case "", "identity":
	case "gzip", "x-gzip", "deflate":
		buf := pool.BufferPool.Get().(*bytes.Buffer)
		buf.Reset()
		defer pool.PutBuffer(buf)

		var err error
		if enc == "deflate" {
			err = pool.Inflate(buf, body, d.MaxDecodedSize)
		} else {
			err = pool.Gunzip(buf, body, d.MaxDecodedSize)
		}
		if err != nil {
			return nil, &DecodeError{Index: -1, Err: err}
		}
		raw = buf.Bytes()
	default:
		return nil, &DecodeError{Index: -1, Err: fmt.Errorf("%w: %q", ErrUnsupportedEncoding, contentEncoding)}
	}

	// ------------------------------------------------------------
	// 2) charset → UTF-8
	// ------------------------------------------------------------
	raw, err := ToUTF8(raw, CharsetOf(contentType))
	if err != nil {
		return nil, &DecodeError{Index: -1, Err: err}
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	// ------------------------------------------------------------
	// 3) JSON → wireEnvelope
	// ------------------------------------------------------------
	wires, err := decodeWire(raw)
	if err != nil {
		return nil, err
	}

	// ------------------------------------------------------------
	// 4) kind 결정 + typed payload
	// ------------------------------------------------------------
	out := make([]*model.Envelope, 0, len(wires))
	for i := range wires {
		e, err := wires[i].envelope()
		if err != nil {
			return nil, &DecodeError{Index: i, Err: err}
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeWire(raw []byte) ([]wireEnvelope, error) {
	if raw[0] == '[' {
		// 배열 자체가 깨졌으면 Index -1, 원소가 깨졌으면 그 원소 위치.
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, &DecodeError{Index: -1, Err: err}
		}
		wires := make([]wireEnvelope, len(elems))
		for i, el := range elems {
			if err := json.Unmarshal(el, &wires[i]); err != nil {
				return nil, &DecodeError{Index: i, Err: err}
			}
		}
		return wires, nil
	}

	// 단일 객체 또는 줄 단위 스트림.
	// 값 경계로 끊으므로 pretty-print 된 객체도 허용된다.
	dec := json.NewDecoder(bytes.NewReader(raw))
	var wires []wireEnvelope
	for i := 0; ; i++ {
		var w wireEnvelope
		if err := dec.Decode(&w); err != nil {
			if errors.Is(err, io.EOF) {
				return wires, nil
			}
			return nil, &DecodeError{Index: i, Err: err}
		}
		wires = append(wires, w)
	}
}

func (w *wireEnvelope) envelope() (*model.Envelope, error) {
	e := w.Envelope
	e.Kind = model.KindOf(w.Data.BaseType)

	data, err := model.DecodeData(e.Kind, w.Data.BaseType, w.Data.BaseData)
	if err != nil {
		return nil, fmt.Errorf("baseData(%s): %w", w.Data.BaseType, err)
	}
	e.Data = data
	return &e, nil
}
