package consts

const (
	EmbeddingCacheKey = "embedding:"
)

const (
	ClusterPassLock = "lock:cluster:pass"
	CleanupLock     = "lock:cleanup:posts"
)
