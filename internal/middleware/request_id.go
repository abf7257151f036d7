package middleware

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

type ctxKey int

const requestIDKey ctxKey = 1

const RequestIDHeader = "X-Request-Id"

// 上游透传的 request_id 超过该长度时丢弃并重新生成，避免日志被超长头污染。
const maxRequestIDLen = 128

var randRead = rand.Read

var requestIDFallbackCounter atomic.Uint64

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = newRequestID()
		}
		w.Header().Set(RequestIDHeader, rid)
		ctx := context.WithValue(r.Context(), requestIDKey, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey).(string)
	return s
}

func newRequestID() string {
	var b [16]byte
	if _, err := randRead(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}

	// crypto/rand 不可用时退化为“时间 + 计数器”，保证进程内唯一。
	binary.BigEndian.PutUint64(b[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(b[8:], requestIDFallbackCounter.Add(1))
	return hex.EncodeToString(b[:])
}
