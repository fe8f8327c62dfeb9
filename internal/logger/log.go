// internal/logger/log.go
package logger

import (
	"io"
	"os"
	"strings"

	"telemetry-capture/internal/config"

	stdlog "log"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init
//
// 프로세스 시작 시 한 번 호출하는 로거 초기화 함수.
// 전역 zerolog 로거(zlog.Logger)를 교체하고 표준 log 패키지 출력도 연결한다.
//
//  1. 로그 포맷: CAPTURE_LOG_PRETTY=true 면 ConsoleWriter, 아니면 JSON
//  2. 공통 필드: 모든 로그에 "service", "instance" 부착
//  3. 샘플링: Debug/Info 는 LogSampleN 건 중 1건, Warn/Error 는 전부 기록
//
// 사용 예:
//
//	logger.Init(cfg)
//	log.Info().Msg("capture listener started")
func Init(cfg config.Config) {
	zlog.Logger = New(cfg, os.Stdout)

	stdlog.SetFlags(0)
	stdlog.SetOutput(zlog.Logger)
}

// New 는 cfg 기준 로거를 만들어 반환한다. 전역 상태는 건드리지 않는다.
// 테스트에서는 out 에 bytes.Buffer 를 넘겨 로그를 검사한다.
func New(cfg config.Config, out io.Writer) zerolog.Logger {
	// 1) 최소 레벨. 파싱 실패 시 info.
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))); err == nil {
		level = l
	}

	// 2) 출력 형태
	//    - pretty: 로컬에서 go test -v 로 볼 때 (예: 10:00:05 DBG item captured kind=request)
	//    - JSON: CI 로그 수집기용
	var w io.Writer = out
	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05.000", // deadline 디버깅에는 ms 단위가 필요
		}
	}

	// 3) 공통 필드
	base := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("instance", cfg.InstanceID).
		Logger()

	// 4) 샘플링: Debug/Info 만. Warn/Error 는 nil sampler → 전부 기록.
	if cfg.LogSampleN > 1 {
		return base.Sample(&zerolog.LevelSampler{
			DebugSampler: &zerolog.BasicSampler{N: cfg.LogSampleN},
			InfoSampler:  &zerolog.BasicSampler{N: cfg.LogSampleN},
		})
	}
	return base
}
