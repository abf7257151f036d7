package store

import (
	"strings"
	"testing"
)

func TestNormalizeUsername(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr string
	}{
		{name: "seed default", in: "admin", want: "admin"},
		{name: "trim keeps case", in: "  Admin01 ", want: "Admin01"},
		{name: "max length", in: strings.Repeat("u", 128), want: strings.Repeat("u", 128)},
		{name: "blank", in: " \t ", wantErr: "不能为空"},
		{name: "too long", in: strings.Repeat("u", 129), wantErr: "128"},
		{name: "nested form leftovers", in: "user[username]", wantErr: "仅支持字母/数字"},
		{name: "email", in: "admin@example.com", wantErr: "仅支持字母/数字"},
		{name: "inner space", in: "ad min", wantErr: "仅支持字母/数字"},
		{name: "non ascii", in: "管理员", wantErr: "仅支持字母/数字"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeUsername(tc.in)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("NormalizeUsername(%q) err=%v, want contains %q", tc.in, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeUsername(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("NormalizeUsername(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
