package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	zlog "github.com/rs/zerolog/log"

	"telemetry-capture/internal/config"
	"telemetry-capture/internal/logger"
	"telemetry-capture/internal/server"
)

// 단독 실행용 capture server.
//
// 테스트 코드 안에서는 server.NewListener 를 직접 쓰면 되고,
// 이 바이너리는 SDK 를 띄운 수동/외부 테스트에서 수신 내용을 눈으로
// 확인할 때 쓴다. (CAPTURE_LOG_ITEMS=true, CAPTURE_LOG_LEVEL=debug)
func main() {

	// ====================================================================
	// Config & Logger 초기화
	// ====================================================================
	//
	// - Config: CAPTURE_* 환경변수 기반, 전부 기본값 있음
	// - Logger: zerolog 전역 로거 교체 + 표준 log 연결
	// ====================================================================
	cfg := config.Load()
	logger.Init(cfg)

	if os.Getenv("CAPTURE_HTTP_ADDR") == "" {
		// 단독 실행 시에는 고정 포트가 편하다.
		cfg.HTTPAddr = "127.0.0.1:4318"
	}

	// ====================================================================
	// Listener 시작
	// ====================================================================
	//
	// 엔드포인트:
	//  - /v2/track, /v2.1/track, /collect : 텔레메트리 수집
	//  - /metrics : 카운터
	//  - /health  : 준비 확인
	// ====================================================================
	l := server.NewListener(cfg, zlog.Logger)
	if err := l.Start(); err != nil {
		zlog.Fatal().Err(err).Str("addr", cfg.HTTPAddr).Msg("listen failed")
	}

	// ====================================================================
	// Graceful Shutdown
	// ====================================================================
	//
	// SIGINT/SIGTERM 수신 시 새 요청을 막고, 처리 중인 요청의 publish 가
	// 끝날 때까지 최대 ShutdownTimeout 기다린다.
	// ====================================================================
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	zlog.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := l.Close(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("listener shutdown")
	}

	m := l.Metrics()
	zlog.Info().
		Int64("requests", atomic.LoadInt64(&m.HTTPRequestsTotal)).
		Int64("items", atomic.LoadInt64(&m.ItemsPublishedTotal)).
		Msg("shutdown complete")
}
