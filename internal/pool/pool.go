package pool

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// ---------------------------------------------------------------
// Pool 구성 목적
//
// capture listener 는 테스트 중 SDK 가 짧은 간격으로 보내는
// 요청마다 body 읽기, gzip 해제 버퍼 생성을 반복한다.
// 아래 Pool 들은 "GC 줄이기, 메모리 재사용" 목적.
//
// 디코딩된 Envelope 는 pool 로 관리하지 않는다.
// publish 이후 여러 query 가 동시에 읽는 불변 객체이기 때문.
// ---------------------------------------------------------------

var (
	// BodyPool:
	//   - POST body 를 임시 저장하는 버퍼
	//   - 초기 용량 4KB
	//   - 너무 큰 버퍼는 caller(maxCap 조건)에서 재사용하지 않음
	BodyPool = sync.Pool{
		New: func() any {
			return bytes.NewBuffer(make([]byte, 0, 4*1024))
		},
	}

	// BufferPool:
	//   - gzip/deflate 해제 결과를 담는 임시 버퍼
	//   - 1MB 초과 버퍼는 풀에 넣지 않음
	BufferPool = sync.Pool{
		New: func() any {
			return bytes.NewBuffer(make([]byte, 0, 64*1024))
		},
	}

	// GzipPool:
	//   - gzip.Reader 재사용 (Reset 으로 새 입력 연결)
	GzipPool = sync.Pool{
		New: func() any { return new(gzip.Reader) },
	}
)

// Pool 에 되돌려줄 최대 해제 버퍼 용량
const MaxBufferCap = 1 * 1024 * 1024 // 1MB

// PutBody:
//   - maxCap(보통 MaxBodySize*2)보다 크면 버려서 GC 로.
func PutBody(buf *bytes.Buffer, maxCap int64) {
	if int64(buf.Cap()) <= maxCap {
		buf.Reset()
		BodyPool.Put(buf)
	}
}

func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= MaxBufferCap {
		buf.Reset()
		BufferPool.Put(buf)
	}
}

// Gunzip 은 src 를 gzip 해제해 dst 에 쓴다.
// limit 보다 큰 결과는 io.ErrShortBuffer 로 거절한다(압축 폭탄 방지).
func Gunzip(dst *bytes.Buffer, src []byte, limit int64) error {
	zr := GzipPool.Get().(*gzip.Reader)
	defer GzipPool.Put(zr)

	if err := zr.Reset(bytes.NewReader(src)); err != nil {
		return err
	}
	return copyLimited(dst, zr, limit, zr.Close)
}

// copyLimited 는 r 을 최대 limit 바이트까지 dst 로 복사하고 closeFn 을 호출한다.
func copyLimited(dst *bytes.Buffer, r io.Reader, limit int64, closeFn func() error) error {
	n, err := io.Copy(dst, io.LimitReader(r, limit+1))
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if n > limit {
		return io.ErrShortBuffer
	}
	return nil
}

// Inflate 는 HTTP "deflate"(zlib 래핑) body 를 해제한다.
func Inflate(dst *bytes.Buffer, src []byte, limit int64) error {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return err
	}
	return copyLimited(dst, zr, limit, zr.Close)
}
