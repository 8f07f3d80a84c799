package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMetricsExposure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	IncDedup("post", "none")
	ObserveClusterPass("opportunity", time.Now().Add(-time.Second), nil)
	ObserveClusterPass("signal", time.Now(), errors.New("boom"))
	EmbeddingRequests.WithLabelValues("hit").Inc()
	EmbeddingRetries.Inc()

	r := gin.New()
	r.GET("/metrics", Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, m := range []string{
		"opportune_dedup_decisions_total",
		"opportune_cluster_pass_duration_seconds",
		`opportune_cluster_pass_total{kind="signal",result="error"}`,
		"opportune_embedding_requests_total",
		"opportune_embedding_retries_total",
	} {
		assert.Contains(t, body, m)
	}
}
