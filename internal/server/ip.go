package server

import (
	"net"
	"net/http"
	"strings"
)

// clientIP
//
// 로그용 송신자 주소.
// capture listener 는 보통 loopback 으로만 요청을 받으므로
// public/private 구분 없이 첫 번째 유효 주소를 쓴다.
//
// 우선순위:
//  1. X-Forwarded-For 의 첫 번째 파싱 가능한 IP (SDK 가 프록시 뒤에서 보낼 때)
//  2. RemoteAddr
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := safeParseIP(part); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := safeParseIP(host); ip != nil {
		return ip.String()
	}
	return ""
}

// safeParseIP: 공백/빈 값, 잘못된 값 → nil
func safeParseIP(s string) net.IP {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return net.ParseIP(s)
}
