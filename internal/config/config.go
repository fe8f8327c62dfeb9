// internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"time"
)

// Config
//
// capture listener 실행에 필요한 설정 값 모음.
// Load() 로 한 번 초기화되며 이후에는 변경되지 않는 불변(read-only) 값이다.
//
// 운영 ingest 서버와 달리 capture listener 는 테스트 프로세스 안에서
// 환경 변수 없이도 떠야 하므로 모든 값에 기본값이 있다.
// 단, 값이 주어졌는데 형식이 틀리면 즉시 종료(fail-fast).
type Config struct {

	// ---------------------------
	// 서버 식별자 / 네트워크
	// ---------------------------

	ServiceName string // 로그 service 필드
	InstanceID  string // 프로세스 고유 ID (호스트명 기반, 실패 시 랜덤 hex)
	HTTPAddr    string // bind 주소. 기본 127.0.0.1:0 (테스트 병렬 실행 시 포트 충돌 방지)

	// ---------------------------
	// 요청 처리 파라미터
	// ---------------------------

	MaxBodySize    int64 // 단일 요청 body 최대 크기 (압축 상태, 바이트)
	MaxDecodedSize int64 // gzip/deflate 해제 후 최대 크기 (바이트)

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// ---------------------------
	// 로그
	// ---------------------------

	LogLevel   string // debug / info / warn / error
	LogPretty  bool   // true: ConsoleWriter, false: JSON
	LogSampleN uint32 // >1 이면 debug/info 를 N 건 중 1건만 기록
	LogItems   bool   // 수신 item 을 1건씩 debug 로그로 남김 (cmd/server)
}

// Default 는 환경 변수를 보지 않은 기본 설정. 테스트에서 사용한다.
func Default() Config {
	return Config{
		ServiceName: "telemetry-capture",
		InstanceID:  fallbackInstanceID(),
		HTTPAddr:    "127.0.0.1:0",

		MaxBodySize:    4 << 20,
		MaxDecodedSize: 32 << 20,

		ReadTimeout:     8 * time.Second,
		WriteTimeout:    8 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 5 * time.Second,

		LogLevel: "info",
	}
}

// Load
//
// 환경 변수(CAPTURE_*)로 Default() 를 덮어쓴다.
func Load() Config {
	d := Default()
	return Config{
		ServiceName: envOr("CAPTURE_SERVICE_NAME", d.ServiceName),
		InstanceID:  envOr("CAPTURE_INSTANCE_ID", d.InstanceID),
		HTTPAddr:    envOr("CAPTURE_HTTP_ADDR", d.HTTPAddr),

		MaxBodySize:    int64Or("CAPTURE_MAX_BODY_SIZE", d.MaxBodySize),
		MaxDecodedSize: int64Or("CAPTURE_MAX_DECODED_SIZE", d.MaxDecodedSize),

		ReadTimeout:     durOr("CAPTURE_READ_TIMEOUT", d.ReadTimeout),
		WriteTimeout:    durOr("CAPTURE_WRITE_TIMEOUT", d.WriteTimeout),
		IdleTimeout:     durOr("CAPTURE_IDLE_TIMEOUT", d.IdleTimeout),
		ShutdownTimeout: durOr("CAPTURE_SHUTDOWN_TIMEOUT", d.ShutdownTimeout),

		LogLevel:   envOr("CAPTURE_LOG_LEVEL", d.LogLevel),
		LogPretty:  boolOr("CAPTURE_LOG_PRETTY", d.LogPretty),
		LogSampleN: uint32(int64Or("CAPTURE_LOG_SAMPLE_N", int64(d.LogSampleN))),
		LogItems:   boolOr("CAPTURE_LOG_ITEMS", d.LogItems),
	}
}

// envOr / int64Or / durOr / boolOr
//
// 공통 패턴.
// 값이 없으면 기본값, 형식이 잘못되면 즉시 로그 출력 후 종료(fail-fast).
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func int64Or(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		log.Fatalf("invalid int64 env %s=%q: %v", key, v, err)
	}
	return n
}

func durOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration env %s=%q: %v", key, v, err)
	}
	return d
}

func boolOr(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("invalid bool env %s=%q: %v", key, v, err)
	}
	return b
}

// fallbackInstanceID
//   - 기본: hostname
//   - fallback: 12자리 랜덤 hex
func fallbackInstanceID() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	var b [6]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
