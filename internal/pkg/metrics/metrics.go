package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DedupDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opportune_dedup_decisions_total",
		Help: "Dedup decisions by entity kind and matched reason",
	}, []string{"kind", "reason"})
	ClusterPassDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opportune_cluster_pass_duration_seconds",
		Help:    "Clustering pass duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	ClusterPasses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opportune_cluster_pass_total",
		Help: "Clustering passes by kind and result",
	}, []string{"kind", "result"})
	EmbeddingRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opportune_embedding_requests_total",
		Help: "Embedding lookups by result (hit, ok, error)",
	}, []string{"result"})
	EmbeddingRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "opportune_embedding_retries_total",
		Help: "Embedding request retry attempts",
	})
)

func init() {
	prometheus.MustRegister(DedupDecisions, ClusterPassDuration, ClusterPasses, EmbeddingRequests, EmbeddingRetries)
}

// Handler gin 路由使用的 /metrics 处理器
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// IncDedup 记录一次去重判定，未命中时 reason 传 "none"
func IncDedup(kind, reason string) {
	DedupDecisions.WithLabelValues(kind, reason).Inc()
}

// ObserveClusterPass 记录一次聚类耗时与结果
func ObserveClusterPass(kind string, start time.Time, err error) {
	ClusterPassDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	ClusterPasses.WithLabelValues(kind, result).Inc()
}
