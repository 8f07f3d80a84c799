package llm

import (
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	defaultEmbedWeight = int64(8)
	defaultEmbedRate   = 10.0
)

// newEmbedSem 限制同时在途的向量请求数
func newEmbedSem(weight int) *semaphore.Weighted {
	w := int64(weight)
	if w <= 0 {
		w = defaultEmbedWeight
	}
	return semaphore.NewWeighted(w)
}

// newEmbedLimiter 限制每秒发往模型服务的请求数，突发量等于并发上限
func newEmbedLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		rps = defaultEmbedRate
	}
	if burst <= 0 {
		burst = int(defaultEmbedWeight)
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
