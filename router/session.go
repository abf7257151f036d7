package router

import (
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"gatehouse/internal/auth"
)

// cookie 会话里的键。
const (
	sessionUserIDKey   = "uid"
	sessionReturnToKey = "return_to"
)

// attachSession 把 gin-contrib/sessions 的会话映射为 auth.Session 并放入请求上下文，
// 让 net/http 风格的 handler 与失败处理器共享同一份会话。
func attachSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		state := auth.SessionState{}
		if id, ok := sessionInt64(s, sessionUserIDKey); ok {
			state.Token = auth.Token(id)
		}
		if v, ok := s.Get(sessionReturnToKey).(string); ok {
			state.ReturnTo = strings.TrimSpace(v)
		}

		sess := auth.NewSession(state, func(st auth.SessionState) error {
			if st.Token.Valid() {
				s.Set(sessionUserIDKey, int64(st.Token))
			} else {
				s.Delete(sessionUserIDKey)
			}
			if st.ReturnTo != "" {
				s.Set(sessionReturnToKey, st.ReturnTo)
			} else {
				s.Delete(sessionReturnToKey)
			}
			return s.Save()
		})
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}

func sessionInt64(s sessions.Session, key string) (int64, bool) {
	switch x := s.Get(key).(type) {
	case int64:
		if x <= 0 {
			return 0, false
		}
		return x, true
	case int:
		if x <= 0 {
			return 0, false
		}
		return int64(x), true
	case float64:
		if x <= 0 {
			return 0, false
		}
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
