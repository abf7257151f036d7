package obs

import "github.com/prometheus/client_golang/prometheus"

var (
	// AuthAttemptsTotal 按策略与结果统计鉴权尝试。
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_auth_attempts_total",
			Help: "Authentication attempts by strategy and result",
		},
		[]string{"strategy", "result"},
	)

	// AuthDenialsTotal 统计最终被拒绝（进入失败处理器）的鉴权。
	AuthDenialsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatehouse_auth_denials_total",
			Help: "Authentication denials",
		},
	)

	// SessionResolvesTotal 统计会话 token 恢复身份的结果：hit/stale/error。
	SessionResolvesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_session_resolves_total",
			Help: "Session token resolutions by result",
		},
		[]string{"result"},
	)

	LogoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatehouse_logouts_total",
			Help: "Logouts that cleared a session token",
		},
	)
)

func init() {
	prometheus.MustRegister(
		AuthAttemptsTotal,
		AuthDenialsTotal,
		SessionResolvesTotal,
		LogoutsTotal,
	)
}

func RecordAuthAttempt(strategy string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	AuthAttemptsTotal.WithLabelValues(strategy, result).Inc()
}

func RecordDenial() {
	AuthDenialsTotal.Inc()
}

func RecordSessionResolve(result string) {
	if result == "" {
		return
	}
	SessionResolvesTotal.WithLabelValues(result).Inc()
}

func RecordLogout() {
	LogoutsTotal.Inc()
}
