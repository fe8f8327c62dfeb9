package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"telemetry-capture/internal/config"
	"telemetry-capture/internal/decode"
	"telemetry-capture/internal/metrics"
	"telemetry-capture/internal/model"
	"telemetry-capture/internal/pool"
	"telemetry-capture/internal/stream"
)

type Handler struct {
	cfg     config.Config
	metrics *metrics.Metrics
	stream  stream.Stream
	decoder *decode.Decoder
	log     zerolog.Logger
}

func NewHandler(cfg config.Config, m *metrics.Metrics, s stream.Stream, log zerolog.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		metrics: m,
		stream:  s,
		decoder: decode.NewDecoder(cfg.MaxDecodedSize),
		log:     log,
	}
}

// trackResponse 는 Application Insights ingestion 응답 형태.
// SDK 는 이 응답을 보고 재전송 여부를 판단한다.
type trackResponse struct {
	ItemsReceived int        `json:"itemsReceived"`
	ItemsAccepted int        `json:"itemsAccepted"`
	Errors        []trackErr `json:"errors"`
}

type trackErr struct {
	Index      int    `json:"index"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// HandleCollect
//
// SDK 가 POST 하는 텔레메트리를 받아 Stream 에 publish 한다.
//
//  1. body 크기 제한(MaxBodySize) → 초과 시 413
//  2. BodyPool 버퍼로 body 읽기
//  3. Decoder 로 Envelope 목록 변환 → 실패 시 400, 아무것도 publish 하지 않음
//  4. 도착 순서대로 publish
//
// 응답은 publish 가 끝난 뒤에 보낸다. 따라서 SDK 가 200 을 받은 시점에는
// 그 요청의 item 이 이미 모든 구독자 큐에 들어가 있다.
func (h *Handler) HandleCollect(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&h.metrics.HTTPRequestsTotal, 1)

	switch r.Method {
	case http.MethodPost:
	case http.MethodOptions:
		// CORS preflight (JavaScript SDK)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Encoding, Sdk-Context")
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodySize)
	defer r.Body.Close()

	buf := pool.BodyPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer pool.PutBody(buf, h.cfg.MaxBodySize*2)

	if _, err := io.Copy(buf, r.Body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			atomic.AddInt64(&h.metrics.HTTPRequestsRejectedBodyTooLargeTotal, 1)
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Warn().Err(err).Str("client", clientIP(r)).Msg("read body failed")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	items, err := h.decoder.Decode(buf.Bytes(), r.Header.Get("Content-Type"), r.Header.Get("Content-Encoding"))
	if err != nil {
		atomic.AddInt64(&h.metrics.HTTPRequestsRejectedDecodeTotal, 1)
		h.log.Warn().
			Err(err).
			Str("client", clientIP(r)).
			Int("bytes", buf.Len()).
			Msg("decode failed, nothing published")

		index := -1
		var de *decode.DecodeError
		if errors.As(err, &de) {
			index = de.Index
		}
		h.writeJSON(w, http.StatusBadRequest, trackResponse{
			Errors: []trackErr{{Index: index, StatusCode: http.StatusBadRequest, Message: err.Error()}},
		})
		return
	}

	for _, e := range items {
		h.stream.Publish(e)
		h.metrics.AddItem(int(e.Kind))

		if h.cfg.LogItems {
			h.log.Debug().
				Stringer("kind", e.Kind).
				Str("name", e.Name).
				Str("sdk", e.Tags[model.TagInternalSdkVersion]).
				Msg("item captured")
		}
	}

	atomic.AddInt64(&h.metrics.HTTPRequestsAcceptedTotal, 1)
	h.log.Debug().Int("items", len(items)).Str("client", clientIP(r)).Msg("batch captured")

	h.writeJSON(w, http.StatusOK, trackResponse{
		ItemsReceived: len(items),
		ItemsAccepted: len(items),
		Errors:        []trackErr{},
	})
}

// HandleMetrics 는 listener 카운터를 text 로 출력한다.
func (h *Handler) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	subscribers := 0
	if c, ok := h.stream.(interface{ Subscribers() int }); ok {
		subscribers = c.Subscribers()
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, h.metrics.String(kindName, subscribers))
}

func kindName(k int) string { return model.Kind(k).String() }

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Debug().Err(err).Msg("write response failed")
	}
}
