// Package version 提供构建信息（通过 -ldflags 注入），供 healthz 与启动日志使用。
package version

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func Info() BuildInfo {
	return BuildInfo{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
	}
}

// String 形如 "1.2.0 (abc1234, 2026-01-02)"。
func (b BuildInfo) String() string {
	return b.Version + " (" + b.Commit + ", " + b.Date + ")"
}
