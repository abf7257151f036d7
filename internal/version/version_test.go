package version

import "testing"

func TestInfo_VersionOverride(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() {
		Version, Commit, Date = oldVersion, oldCommit, oldDate
	})

	Version, Commit, Date = "9.9.9", "abc1234", "2026-01-02"
	got := Info()
	if got.Version != "9.9.9" || got.Commit != "abc1234" || got.Date != "2026-01-02" {
		t.Fatalf("unexpected build info: %+v", got)
	}
	if s := got.String(); s != "9.9.9 (abc1234, 2026-01-02)" {
		t.Fatalf("String() = %q", s)
	}
}
