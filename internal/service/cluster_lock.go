package service

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/pkg/consts"
	"Opportune/internal/pkg/redis"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// lockedClusterService 多实例部署时保证同一时刻只有一个聚类任务在跑
type lockedClusterService struct {
	ClusterService
	ttl time.Duration
}

// NewLockedClusterService Redis 未启用时直接返回 inner
func NewLockedClusterService(inner ClusterService, ttl time.Duration) ClusterService {
	if !redis.Enabled() {
		return inner
	}
	return &lockedClusterService{ClusterService: inner, ttl: ttl}
}

func (s *lockedClusterService) RunClusteringPass(ctx context.Context, topOnly bool) (*dto.ClusterPassResultDTO, error) {
	var res *dto.ClusterPassResultDTO
	err := s.withLock(ctx, func() error {
		var err error
		res, err = s.ClusterService.RunClusteringPass(ctx, topOnly)
		return err
	})
	return res, err
}

func (s *lockedClusterService) RunDemandSignalPass(ctx context.Context) (*dto.SignalPassResultDTO, error) {
	var res *dto.SignalPassResultDTO
	err := s.withLock(ctx, func() error {
		var err error
		res, err = s.ClusterService.RunDemandSignalPass(ctx)
		return err
	})
	return res, err
}

func (s *lockedClusterService) withLock(ctx context.Context, fn func() error) error {
	token := uuid.NewString()
	ok, err := redis.TryLock(ctx, consts.ClusterPassLock, token, s.ttl, 0)
	if err != nil {
		log.ErrorContext(ctx, "acquire cluster lock failed", "err", err)
		return UnExpectedError
	}
	if !ok {
		return ErrClusterPassRunning
	}
	defer redis.UnLock(context.WithoutCancel(ctx), consts.ClusterPassLock, token)
	return fn()
}
