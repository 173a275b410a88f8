package ai

import (
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronoflux_ai_request_duration_seconds",
			Help:    "Duration of AI provider calls.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "model", "outcome"},
	)
	tokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronoflux_ai_tokens_total",
			Help: "Estimated AI tokens, partitioned by direction.",
		},
		[]string{"provider", "model", "direction"},
	)
)

func observeRequest(provider, model string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestDuration.WithLabelValues(provider, model, outcome).Observe(d.Seconds())
}

// observeTokens records an estimate of prompt and completion tokens.
// Neither provider reports exact counts on this path, so we tokenize
// with cl100k_base and fall back to a bytes/4 heuristic when the
// encoding is unavailable (first use downloads the BPE ranks).
func observeTokens(provider, model, prompt, completion string) {
	tokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(estimateTokens(prompt)))
	tokensUsed.WithLabelValues(provider, model, "completion").Add(float64(estimateTokens(completion)))
}

func estimateTokens(text string) int {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
