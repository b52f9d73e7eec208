// Package metrics exposes the pipeline's Prometheus instrumentation:
// a readiness-score gauge mirroring the original bridge's
// self.metrics.set_gauge("llm_readiness_score", ...) call, plus
// counters the CLI driver increments around each pipeline stage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ReadinessScore mirrors bridge.py's llm_readiness_score gauge: the
// most recently computed AI-readiness score.
var ReadinessScore = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "commercetxt_llm_readiness_score",
	Help: "Most recently computed AI-readiness score for a document (0-100).",
})

// DocumentsParsed counts documents the parser has consumed, labeled by
// whether parsing produced any warnings.
var DocumentsParsed = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "commercetxt_documents_parsed_total",
	Help: "Total documents parsed, labeled by whether warnings were produced.",
}, []string{"warned"})

// ValidationStatus counts validated documents by their final
// VALID/WARN/INVALID status.
var ValidationStatus = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "commercetxt_validation_status_total",
	Help: "Total documents validated, labeled by resulting status.",
}, []string{"status"})

// ShardsEmitted counts shards the generator has produced, labeled by
// attr_type.
var ShardsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "commercetxt_shards_emitted_total",
	Help: "Total shards emitted by the shard generator, labeled by attr_type.",
}, []string{"attr_type"})

func init() {
	prometheus.MustRegister(ReadinessScore, DocumentsParsed, ValidationStatus, ShardsEmitted)
}
