package job

import (
	"Opportune/internal/pkg/logger"
	"Opportune/internal/service"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// clusterJobTimeout 单次聚类任务的上限
const clusterJobTimeout = 20 * time.Minute

type ClusterJob struct {
	clusterSvc service.ClusterService
}

func NewClusterJob(clusterSvc service.ClusterService) *ClusterJob {
	return &ClusterJob{clusterSvc: clusterSvc}
}

func (s *ClusterJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-cluster-"+uuid.NewString())
	ctx, cancel := context.WithTimeout(ctx, clusterJobTimeout)
	defer cancel()

	res, err := s.clusterSvc.RunClusteringPass(ctx, false)
	if errors.Is(err, service.ErrClusterPassRunning) {
		log.InfoContext(ctx, "cluster pass already running, skip")
		return
	}
	if err != nil {
		log.ErrorContext(ctx, "cluster pass error", "err", err)
	} else {
		log.InfoContext(ctx, "cluster pass success",
			"clusters", res.Summary.TotalClusters,
			"opportunities", res.Summary.TotalOpportunities)
	}

	signals, err := s.clusterSvc.RunDemandSignalPass(ctx)
	if err != nil {
		log.ErrorContext(ctx, "demand signal pass error", "err", err)
		return
	}
	log.InfoContext(ctx, "demand signal pass success", "clusters", len(signals.Clusters))
}
