// internal/decode/charset.go
package decode

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CharsetOf 는 Content-Type 의 charset 파라미터를 반환한다. 없으면 "".
func CharsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

func lookup(charset string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc, nil
}

func isUTF8(charset string) bool {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// ToUTF8 는 charset 으로 인코딩된 b 를 UTF-8 로 변환한다.
// charset 이 비어 있거나 UTF-8 이면 b 를 그대로 반환한다.
func ToUTF8(b []byte, charset string) ([]byte, error) {
	if isUTF8(charset) {
		return b, nil
	}
	enc, err := lookup(charset)
	if err != nil {
		return nil, err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadBody 는 r 전체를 읽어 선언된 charset 기준 문자열로 반환한다.
// 응답/요청 body 를 테스트에서 그대로 비교할 때 쓴다.
func ReadBody(r io.Reader, charset string) (string, error) {
	if r == nil {
		return "", nil
	}
	if !isUTF8(charset) {
		enc, err := lookup(charset)
		if err != nil {
			return "", err
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
