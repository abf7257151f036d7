package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gatehouse/internal/auth"
)

func TestParamsFromRequest(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		body        string
		want        auth.Params
		wantErr     bool
	}{
		{
			name:        "nested form",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"user[username]": {"admin"}, "user[password]": {"pw"}}.Encode(),
			want:        auth.Params{Username: "admin", Password: "pw"},
		},
		{
			name:        "flat form fallback",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"username": {"admin"}, "password": {"pw"}}.Encode(),
			want:        auth.Params{Username: "admin", Password: "pw"},
		},
		{
			name:        "nested json",
			contentType: "application/json; charset=utf-8",
			body:        `{"user":{"username":"admin","password":"pw"}}`,
			want:        auth.Params{Username: "admin", Password: "pw"},
		},
		{
			name:        "flat json",
			contentType: "application/json",
			body:        `{"username":"admin","password":"pw"}`,
			want:        auth.Params{Username: "admin", Password: "pw"},
		},
		{
			name:        "json non-string ignored",
			contentType: "application/json",
			body:        `{"user":{"username":42,"password":true}}`,
			want:        auth.Params{},
		},
		{
			name:        "empty json body",
			contentType: "application/json",
			body:        "",
			want:        auth.Params{},
		},
		{
			name:        "invalid json",
			contentType: "application/json",
			body:        `{"user":`,
			wantErr:     true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			got, err := ParamsFromRequest(req)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParamsFromRequest: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
