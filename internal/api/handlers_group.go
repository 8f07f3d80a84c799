package api

import "Opportune/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	DedupHandler   *handler.DedupHandler
	IngestHandler  *handler.IngestHandler
	ClusterHandler *handler.ClusterHandler
}
