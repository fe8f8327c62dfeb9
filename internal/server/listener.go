package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"telemetry-capture/internal/config"
	"telemetry-capture/internal/metrics"
	"telemetry-capture/internal/stream"
)

// Listener
//
// 테스트마다 명시적으로 만들고 명시적으로 닫는 capture 지점.
// 전역 상태가 없으므로 테스트를 병렬로 돌려도 서로의 item 을 보지 않는다.
//
// Listener 자체가 stream.Stream 이다(Hub 를 embed).
// query.ReceiveItems(l, ...) 처럼 그대로 넘기면 된다.
//
//	l := server.NewListener(config.Default(), zlog.Logger)
//	if err := l.Start(); err != nil { ... }
//	defer l.Close(context.Background())
//	// SDK endpoint = l.URL() + "/v2/track"
type Listener struct {
	*stream.Hub

	cfg     config.Config
	metrics *metrics.Metrics
	handler *Handler
	log     zerolog.Logger

	srv *http.Server

	mu     sync.Mutex
	ln     net.Listener
	closed bool

	serveErr  chan error
	closeOnce sync.Once
	closeErr  error
}

var (
	ErrAlreadyStarted = errors.New("server: listener already started")
	ErrClosed         = errors.New("server: listener closed")
)

func NewListener(cfg config.Config, log zerolog.Logger) *Listener {
	hub := stream.NewHub()
	m := metrics.New()

	l := &Listener{
		Hub:      hub,
		cfg:      cfg,
		metrics:  m,
		handler:  NewHandler(cfg, m, hub, log),
		log:      log,
		serveErr: make(chan error, 1),
	}

	l.srv = &http.Server{
		Handler:      l.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return l
}

// Routes
//
//   - /v2/track, /v2.1/track, /collect : 텔레메트리 수집
//   - /metrics : 카운터
//   - /health  : 준비 확인
func (l *Listener) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/track", l.handler.HandleCollect)
	mux.HandleFunc("/v2.1/track", l.handler.HandleCollect)
	mux.HandleFunc("/collect", l.handler.HandleCollect)
	mux.HandleFunc("/metrics", l.handler.HandleMetrics)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start 는 cfg.HTTPAddr 에 bind 하고 백그라운드에서 요청을 받기 시작한다.
// bind 가 끝난 뒤 반환하므로 Start 직후 URL() 로 바로 요청할 수 있다.
// 두 번째 호출은 ErrAlreadyStarted, Close 이후 호출은 ErrClosed.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if l.ln != nil {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", l.cfg.HTTPAddr)
	if err != nil {
		return err
	}
	l.ln = ln

	go func() {
		err := l.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		l.serveErr <- err
	}()

	l.log.Info().Str("addr", ln.Addr().String()).Msg("capture listener started")
	return nil
}

// Addr 는 실제 bind 된 주소(host:port). Start 전에는 "".
func (l *Listener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

func (l *Listener) URL() string {
	return "http://" + l.Addr()
}

func (l *Listener) Metrics() *metrics.Metrics {
	return l.metrics
}

// Close 는 새 요청 수신을 멈추고 처리 중인 요청이 끝날 때까지 기다린다.
// ctx 가 먼저 끝나면 남은 연결을 강제로 닫는다. 여러 번 호출해도 안전하다.
//
// 진행 중인 query 는 Close 와 무관하게 자기 deadline 까지 동작한다.
func (l *Listener) Close(ctx context.Context) error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		started := l.ln != nil
		l.closed = true
		l.mu.Unlock()
		if !started {
			return
		}
		if err := l.srv.Shutdown(ctx); err != nil {
			_ = l.srv.Close()
			l.closeErr = err
		}
		if err := <-l.serveErr; err != nil && l.closeErr == nil {
			l.closeErr = err
		}
		l.log.Info().Msg("capture listener closed")
	})
	return l.closeErr
}
