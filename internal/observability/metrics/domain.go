package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 回执流水线各步骤的结果。
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

var (
	intentResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatpay_intent_resolutions_total",
		Help: "Intent resolutions grouped by the path that produced the result.",
	}, []string{"source"})

	pipelineSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatpay_receipt_pipeline_steps_total",
		Help: "Best-effort receipt pipeline step outcomes.",
	}, []string{"step", "outcome"})

	indexerFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatpay_indexer_fallback_total",
		Help: "UTXO lookups that switched to the fallback indexer endpoint.",
	}, []string{"outcome"})
)

// IntentResolved 记录一次意图识别及其来源（llm/fallback）。
func IntentResolved(source string) {
	intentResolutions.WithLabelValues(source).Inc()
}

// PipelineStep 记录回执流水线某一步骤的结果。
func PipelineStep(step, outcome string) {
	pipelineSteps.WithLabelValues(step, outcome).Inc()
}

// IndexerFallback 记录一次备用端点调用的结果。
func IndexerFallback(outcome string) {
	indexerFallbacks.WithLabelValues(outcome).Inc()
}
