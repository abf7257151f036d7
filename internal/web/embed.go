package web

import (
	"embed"
	"errors"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets/*
var assetsFS embed.FS

var errInvalidJSON = errors.New("JSON 格式不合法")

// AssetsFS 返回以 assets/ 为根的静态资源（样式表等）。
func AssetsFS() fs.FS {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
