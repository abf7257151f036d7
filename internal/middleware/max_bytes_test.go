package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMaxBytes(t *testing.T) {
	cases := []struct {
		name    string
		limit   int64
		body    string
		wantErr bool
	}{
		{name: "within limit", limit: 8, body: "user=a", wantErr: false},
		{name: "over limit", limit: 8, body: strings.Repeat("x", 9), wantErr: true},
		{name: "disabled", limit: 0, body: strings.Repeat("x", 64), wantErr: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var readErr error
			h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, readErr = io.ReadAll(r.Body)
			}), MaxBytes(tc.limit))

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tc.body))
			h.ServeHTTP(httptest.NewRecorder(), req)

			if !tc.wantErr {
				if readErr != nil {
					t.Fatalf("unexpected read error: %v", readErr)
				}
				return
			}
			var mbe *http.MaxBytesError
			if !errors.As(readErr, &mbe) {
				t.Fatalf("expected *http.MaxBytesError, got %v", readErr)
			}
		})
	}
}
