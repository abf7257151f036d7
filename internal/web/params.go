package web

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"gatehouse/internal/auth"
)

// MaxLoginBodyBytes 是登录请求体上限，由路由层通过 middleware.MaxBytes 施加。
const MaxLoginBodyBytes = 64 << 10

// ParamsFromRequest 从登录请求中提取用户名/密码。
//
// 表单优先读取嵌套字段 user[username]/user[password]，缺失时回退到 username/password；
// JSON 请求体同理读取 user.username 与顶层 username。
func ParamsFromRequest(r *http.Request) (auth.Params, error) {
	if r.Body == nil {
		return auth.Params{}, nil
	}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return auth.Params{}, err
		}
		if len(strings.TrimSpace(string(b))) == 0 {
			return auth.Params{}, nil
		}
		if !gjson.ValidBytes(b) {
			return auth.Params{}, errInvalidJSON
		}
		return auth.Params{
			Username: firstJSONString(b, "user.username", "username"),
			Password: firstJSONString(b, "user.password", "password"),
		}, nil
	}

	if err := r.ParseForm(); err != nil {
		return auth.Params{}, err
	}
	return auth.Params{
		Username: firstFormValue(r, "user[username]", "username"),
		Password: firstFormValue(r, "user[password]", "password"),
	}, nil
}

func firstJSONString(b []byte, paths ...string) string {
	for _, p := range paths {
		v := gjson.GetBytes(b, p)
		if v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func firstFormValue(r *http.Request, keys ...string) string {
	for _, k := range keys {
		if v := r.PostFormValue(k); v != "" {
			return v
		}
	}
	return ""
}
