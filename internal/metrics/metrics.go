package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the orchestration engine.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumen",
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"kind", "model", "status"}, // kind: completion/embedding/moderation
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lumen",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind", "model"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumen",
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"kind", "model", "type"}, // type: prompt/completion/total
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumen",
			Name:      "response_cache_total",
			Help:      "Response cache hits, misses and single-flight waits",
		},
		[]string{"result"}, // "hit" / "miss" / "wait"
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumen",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RateLimitRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumen",
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"scope"}, // "user" / "origin" / "global"
	)

	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumen",
			Name:      "tool_invocations_total",
			Help:      "Agent tool invocations",
		},
		[]string{"tool", "status"},
	)

	SafetyVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lumen",
			Name:      "safety_verdicts_total",
			Help:      "Safety pipeline verdicts",
		},
		[]string{"verdict"}, // "passed" / "rejected" / "fail_closed"
	)

	AgentRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lumen",
			Name:      "agent_run_duration_seconds",
			Help:      "Agent run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"terminal_state"},
	)
)

var registered bool

// Register registers all engine metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMTokensTotal)
	prometheus.MustRegister(ResponseCacheTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(RateLimitRejectionsTotal)
	prometheus.MustRegister(ToolInvocationsTotal)
	prometheus.MustRegister(SafetyVerdictsTotal)
	prometheus.MustRegister(AgentRunDuration)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	registered = true
}
