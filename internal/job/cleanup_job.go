package job

import (
	"Opportune/internal/pkg/consts"
	"Opportune/internal/pkg/logger"
	"Opportune/internal/pkg/redis"
	"Opportune/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

type CleanupJob struct {
	dedupSvc service.DedupService
}

func NewCleanupJob(dedupSvc service.DedupService) *CleanupJob {
	return &CleanupJob{dedupSvc: dedupSvc}
}

func (s *CleanupJob) Run() {
	token := uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), "job-cleanup-"+token)

	if redis.Enabled() {
		ok, err := redis.TryLock(ctx, consts.CleanupLock, token, time.Hour, 0)
		if err != nil || !ok {
			log.InfoContext(ctx, "cleanup lock not acquired, skip", "err", err)
			return
		}
		defer redis.UnLock(ctx, consts.CleanupLock, token)
	}

	res, err := s.dedupSvc.CleanupDuplicatePosts(ctx)
	if err != nil {
		log.ErrorContext(ctx, "cleanup duplicate posts error", "err", err)
		return
	}
	log.InfoContext(ctx, "cleanup duplicate posts success",
		"groups", res.Groups,
		"posts_removed", res.PostsRemoved,
		"opportunities_removed", res.OpportunitiesRemoved)
}
