package store

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		wantDBName string
		wantParam  map[string]string
		wantErr    bool
	}{
		{
			name:       "keeps database and session params",
			in:         " gatehouse:secret@tcp(db:3306)/gatehouse?autocommit=true ",
			wantDBName: "gatehouse",
			wantParam:  map[string]string{"autocommit": "true"},
		},
		{
			name:       "overrides caller time zone",
			in:         "gatehouse:secret@tcp(db:3306)/gatehouse?time_zone=%27%2B08%3A00%27&loc=Local",
			wantDBName: "gatehouse",
		},
		{name: "empty", in: "   ", wantErr: true},
		{name: "unparsable", in: "gatehouse@tcp(db:3306", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeMySQLDSN(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got dsn %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeMySQLDSN: %v", err)
			}
			cfg, err := mysql.ParseDSN(got)
			if err != nil {
				t.Fatalf("mysql.ParseDSN(%q): %v", got, err)
			}
			if cfg.DBName != tc.wantDBName {
				t.Fatalf("DBName=%q, want %q", cfg.DBName, tc.wantDBName)
			}
			if !cfg.ParseTime || cfg.Loc != time.UTC {
				t.Fatalf("expected parseTime with UTC, got parseTime=%v loc=%v", cfg.ParseTime, cfg.Loc)
			}
			if cfg.Params["time_zone"] != "'+00:00'" {
				t.Fatalf("time_zone=%q", cfg.Params["time_zone"])
			}
			for k, v := range tc.wantParam {
				if cfg.Params[k] != v {
					t.Fatalf("param %s=%q, want %q", k, cfg.Params[k], v)
				}
			}
		})
	}
}
