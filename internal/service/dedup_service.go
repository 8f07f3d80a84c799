package service

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/model"
	"Opportune/internal/pkg/consts"
	"Opportune/internal/pkg/metrics"
	"Opportune/internal/pkg/similarity"
	"Opportune/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"time"
)

const (
	dedupKindPost        = "post"
	dedupKindOpportunity = "opportunity"
	reasonNone           = "none"
)

type DedupService interface {
	// CheckRedditPostDuplicate 按 reddit_id、(标题, 作者)、内容相似度依次判重
	CheckRedditPostDuplicate(ctx context.Context, req *dto.PostCandidateDTO) (*dto.DuplicateResultDTO, error)
	// CheckOpportunityDuplicate 按标题、描述与方案相似度依次判重
	CheckOpportunityDuplicate(ctx context.Context, req *dto.OpportunityCandidateDTO) (*dto.DuplicateResultDTO, error)
	// CleanupDuplicatePosts 每组 (标题, 作者) 只保留最早的一条
	CleanupDuplicatePosts(ctx context.Context) (*dto.CleanupResultDTO, error)
}

type dedupServiceImpl struct {
	postRepo repository.RedditPostRepo
	oppRepo  repository.OpportunityRepo
	opts     DedupOptions
	now      func() time.Time
}

func NewDedupService(postRepo repository.RedditPostRepo, oppRepo repository.OpportunityRepo, opts DedupOptions) DedupService {
	return &dedupServiceImpl{
		postRepo: postRepo,
		oppRepo:  oppRepo,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *dedupServiceImpl) CheckRedditPostDuplicate(ctx context.Context, req *dto.PostCandidateDTO) (*dto.DuplicateResultDTO, error) {
	if req == nil || req.RedditID == "" {
		return nil, ErrParamInvalid
	}

	post, err := s.postRepo.GetByRedditID(ctx, req.RedditID)
	if err != nil {
		return nil, s.failClosed(ctx, dedupKindPost, err)
	}
	if post != nil {
		return s.duplicate(ctx, dedupKindPost, post.ID, consts.ReasonRedditID, 1), nil
	}

	post, err = s.postRepo.GetByTitleAuthor(ctx, req.Subreddit, req.Title, req.Author)
	if err != nil {
		return nil, s.failClosed(ctx, dedupKindPost, err)
	}
	if post != nil {
		return s.duplicate(ctx, dedupKindPost, post.ID, consts.ReasonTitleAuthor, 1), nil
	}

	since := s.now().Add(-s.opts.PostWindow)
	candidates, err := s.postRepo.ListRecentBySubreddit(ctx, req.Subreddit, since, s.opts.CandidateLimit)
	if err != nil {
		return nil, s.failClosed(ctx, dedupKindPost, err)
	}

	text := req.Title + " " + req.Content
	best, bestID := 0.0, uint64(0)
	for _, c := range candidates {
		sim := similarity.Text(text, c.Text())
		if sim > best {
			best, bestID = sim, c.ID
		}
	}
	if bestID != 0 && best >= s.opts.PostThreshold {
		return s.duplicate(ctx, dedupKindPost, bestID, consts.ReasonContentSimilar, best), nil
	}

	metrics.IncDedup(dedupKindPost, reasonNone)
	return &dto.DuplicateResultDTO{IsDuplicate: false}, nil
}

func (s *dedupServiceImpl) CheckOpportunityDuplicate(ctx context.Context, req *dto.OpportunityCandidateDTO) (*dto.DuplicateResultDTO, error) {
	if req == nil || req.Title == "" {
		return nil, ErrParamInvalid
	}

	opp, err := s.oppRepo.GetByTitle(ctx, req.Title)
	if err != nil {
		return nil, s.failClosed(ctx, dedupKindOpportunity, err)
	}
	if opp != nil {
		return s.duplicate(ctx, dedupKindOpportunity, opp.ID, consts.ReasonExactTitle, 1), nil
	}

	since := s.now().Add(-s.opts.OpportunityWindow)
	candidates, err := s.oppRepo.ListRecent(ctx, since, s.opts.CandidateLimit)
	if err != nil {
		return nil, s.failClosed(ctx, dedupKindOpportunity, err)
	}

	text := req.Description + " " + req.ProposedSolution
	best, bestID := 0.0, uint64(0)
	for _, c := range candidates {
		sim := similarity.Text(text, c.SolutionText())
		if sim > best {
			best, bestID = sim, c.ID
		}
	}
	if bestID != 0 && best >= s.opts.OpportunityThreshold {
		return s.duplicate(ctx, dedupKindOpportunity, bestID, consts.ReasonSolutionSimilar, best), nil
	}

	metrics.IncDedup(dedupKindOpportunity, reasonNone)
	return &dto.DuplicateResultDTO{IsDuplicate: false}, nil
}

func (s *dedupServiceImpl) duplicate(ctx context.Context, kind string, id uint64, reason string, sim float64) *dto.DuplicateResultDTO {
	metrics.IncDedup(kind, reason)
	log.InfoContext(ctx, "duplicate detected", "kind", kind, "existing_id", id, "reason", reason, "similarity", sim)
	return &dto.DuplicateResultDTO{
		IsDuplicate: true,
		ExistingID:  id,
		Reason:      reason,
		Similarity:  sim,
	}
}

// failClosed 候选集查询失败时不判定为新内容，交由调用方重试或记录
func (s *dedupServiceImpl) failClosed(ctx context.Context, kind string, err error) error {
	log.ErrorContext(ctx, "dedup candidate fetch failed", "kind", kind, "err", err)
	return fmt.Errorf("%w: %v", ErrCandidateFetch, err)
}

func (s *dedupServiceImpl) CleanupDuplicatePosts(ctx context.Context) (*dto.CleanupResultDTO, error) {
	groups, err := s.postRepo.ListDuplicateGroups(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.CleanupResultDTO{RemovedPostIDs: make([]uint64, 0)}
	for _, g := range groups {
		if len(g.Posts) < 2 {
			continue
		}
		removed := make([]uint64, 0, len(g.Posts)-1)
		for _, p := range g.Posts[1:] {
			removed = append(removed, p.ID)
		}

		orphans, err := s.soleSourcedOpportunities(ctx, removed)
		if err != nil {
			return res, err
		}
		if err = s.postRepo.DeleteCascade(ctx, removed, orphans); err != nil {
			return res, err
		}

		log.InfoContext(ctx, "duplicate posts removed",
			"title", g.Title, "author", g.Author, "kept", g.Posts[0].ID, "removed", removed, "opportunities", orphans)
		res.Groups++
		res.PostsRemoved += len(removed)
		res.OpportunitiesRemoved += len(orphans)
		res.RemovedPostIDs = append(res.RemovedPostIDs, removed...)
	}
	return res, nil
}

// soleSourcedOpportunities 所有来源都在 postIDs 内的机会
func (s *dedupServiceImpl) soleSourcedOpportunities(ctx context.Context, postIDs []uint64) ([]uint64, error) {
	linked, err := s.oppRepo.ListSourcesByPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	if len(linked) == 0 {
		return nil, nil
	}

	removing := make(map[uint64]struct{}, len(postIDs))
	for _, id := range postIDs {
		removing[id] = struct{}{}
	}
	oppIDs := uniqueOpportunityIDs(linked)

	all, err := s.oppRepo.ListSourcesByOpportunities(ctx, oppIDs)
	if err != nil {
		return nil, err
	}
	supported := make(map[uint64]struct{})
	for _, src := range all {
		if _, ok := removing[src.RedditPostID]; !ok {
			supported[src.OpportunityID] = struct{}{}
		}
	}

	orphans := make([]uint64, 0, len(oppIDs))
	for _, id := range oppIDs {
		if _, ok := supported[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	return orphans, nil
}

func uniqueOpportunityIDs(sources []*model.OpportunitySource) []uint64 {
	seen := make(map[uint64]struct{}, len(sources))
	ids := make([]uint64, 0, len(sources))
	for _, src := range sources {
		if _, ok := seen[src.OpportunityID]; ok {
			continue
		}
		seen[src.OpportunityID] = struct{}{}
		ids = append(ids, src.OpportunityID)
	}
	return ids
}
