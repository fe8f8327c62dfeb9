package pool

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gz(t *testing.T, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(b)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestGunzip(t *testing.T) {
	var dst bytes.Buffer
	require.NoError(t, Gunzip(&dst, gz(t, []byte("hello")), 5))
	assert.Equal(t, "hello", dst.String())

	// 같은 pooled reader 로 두 번째 입력
	dst.Reset()
	require.NoError(t, Gunzip(&dst, gz(t, []byte("again")), 1024))
	assert.Equal(t, "again", dst.String())
}

func TestGunzipLimitAndCorrupt(t *testing.T) {
	var dst bytes.Buffer
	err := Gunzip(&dst, gz(t, []byte("0123456789")), 4)
	assert.ErrorIs(t, err, io.ErrShortBuffer)

	dst.Reset()
	assert.Error(t, Gunzip(&dst, []byte("not gzip"), 1024))
}

func TestInflate(t *testing.T) {
	var src bytes.Buffer
	zw := zlib.NewWriter(&src)
	_, _ = zw.Write([]byte("deflated"))
	require.NoError(t, zw.Close())

	var dst bytes.Buffer
	require.NoError(t, Inflate(&dst, src.Bytes(), 1024))
	assert.Equal(t, "deflated", dst.String())

	assert.Error(t, Inflate(&dst, []byte{0x00, 0x01}, 1024))
}

func TestPutBodyDropsOversized(t *testing.T) {
	big := bytes.NewBuffer(make([]byte, 0, 1024))
	big.WriteString("data")
	PutBody(big, 16)
	// 재사용되지 않았으므로 내용이 그대로 남아 있다
	assert.Equal(t, "data", big.String())

	small := bytes.NewBuffer(make([]byte, 0, 8))
	small.WriteString("x")
	PutBody(small, 16)
	assert.Equal(t, 0, small.Len())
}
