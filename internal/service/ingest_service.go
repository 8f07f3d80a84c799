package service

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/model"
	"Opportune/internal/pkg/consts"
	"Opportune/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/jinzhu/copier"
)

// ingestAttempts 首次执行加一次重试
const ingestAttempts = 2

type IngestService interface {
	// IngestPost 新帖子入库，重复帖子只刷新互动计数
	IngestPost(ctx context.Context, req *dto.PostPayloadDTO) (*dto.PostIngestResultDTO, error)
	// IngestOpportunity 新机会入库，重复机会追加来源
	IngestOpportunity(ctx context.Context, postID uint64, draft *dto.OpportunityDraftDTO) (*dto.OpportunityIngestResultDTO, error)
}

type ingestServiceImpl struct {
	dedup    DedupService
	postRepo repository.RedditPostRepo
	oppRepo  repository.OpportunityRepo
}

func NewIngestService(dedup DedupService, postRepo repository.RedditPostRepo, oppRepo repository.OpportunityRepo) IngestService {
	return &ingestServiceImpl{
		dedup:    dedup,
		postRepo: postRepo,
		oppRepo:  oppRepo,
	}
}

func (s *ingestServiceImpl) IngestPost(ctx context.Context, req *dto.PostPayloadDTO) (*dto.PostIngestResultDTO, error) {
	if req == nil {
		return nil, ErrParamInvalid
	}
	var (
		res *dto.PostIngestResultDTO
		err error
	)
	for attempt := 1; attempt <= ingestAttempts; attempt++ {
		res, err = s.ingestPostOnce(ctx, req)
		if err == nil || errors.Is(err, ErrParamInvalid) {
			break
		}
		log.WarnContext(ctx, "post ingestion failed", "reddit_id", req.RedditID, "attempt", attempt, "err", err)
	}
	return res, err
}

func (s *ingestServiceImpl) ingestPostOnce(ctx context.Context, req *dto.PostPayloadDTO) (*dto.PostIngestResultDTO, error) {
	e := model.Engagement{
		Score:       req.Score,
		Upvotes:     req.Upvotes,
		Downvotes:   req.Downvotes,
		NumComments: req.NumComments,
	}

	dup, err := s.dedup.CheckRedditPostDuplicate(ctx, &req.PostCandidateDTO)
	if err != nil {
		return nil, err
	}
	if dup.IsDuplicate {
		if err = s.postRepo.UpdateEngagement(ctx, dup.ExistingID, e); err != nil {
			return nil, err
		}
		return &dto.PostIngestResultDTO{PostID: dup.ExistingID, Duplicate: dup}, nil
	}

	post := &model.RedditPost{
		RedditID:    req.RedditID,
		Title:       req.Title,
		Author:      req.Author,
		Subreddit:   req.Subreddit,
		Score:       req.Score,
		Upvotes:     req.Upvotes,
		Downvotes:   req.Downvotes,
		NumComments: req.NumComments,
		Permalink:   req.Permalink,
		CreatedUtc:  req.CreatedUtc,
	}
	if req.Content != "" {
		content := req.Content
		post.Content = &content
	}

	err = s.postRepo.Create(ctx, post)
	if err == nil {
		return &dto.PostIngestResultDTO{PostID: post.ID, Created: true}, nil
	}
	if !repository.IsDuplicateKey(err) {
		return nil, err
	}

	// 并发抓取撞上 uk_reddit_id，转为更新
	id, err := s.postRepo.UpdateEngagementByRedditID(ctx, req.RedditID, e)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "reddit_id race resolved as update", "reddit_id", req.RedditID, "post_id", id)
	return &dto.PostIngestResultDTO{
		PostID: id,
		Duplicate: &dto.DuplicateResultDTO{
			IsDuplicate: true,
			ExistingID:  id,
			Reason:      consts.ReasonRedditID,
			Similarity:  1,
		},
	}, nil
}

func (s *ingestServiceImpl) IngestOpportunity(ctx context.Context, postID uint64, draft *dto.OpportunityDraftDTO) (*dto.OpportunityIngestResultDTO, error) {
	if draft == nil || postID == 0 || strings.TrimSpace(draft.Title) == "" {
		return nil, ErrParamInvalid
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	var res *dto.OpportunityIngestResultDTO
	for attempt := 1; attempt <= ingestAttempts; attempt++ {
		res, err = s.ingestOpportunityOnce(ctx, post, draft)
		if err == nil {
			break
		}
		log.WarnContext(ctx, "opportunity ingestion failed", "post_id", postID, "attempt", attempt, "err", err)
	}

	if err != nil {
		msg := truncate(err.Error(), 1024)
		if markErr := s.postRepo.MarkProcessed(ctx, postID, &msg); markErr != nil {
			log.ErrorContext(ctx, "record processing error failed", "post_id", postID, "err", markErr)
		}
		return nil, err
	}
	if markErr := s.postRepo.MarkProcessed(ctx, postID, nil); markErr != nil {
		log.ErrorContext(ctx, "mark post processed failed", "post_id", postID, "err", markErr)
	}
	return res, nil
}

func (s *ingestServiceImpl) ingestOpportunityOnce(ctx context.Context, post *model.RedditPost, draft *dto.OpportunityDraftDTO) (*dto.OpportunityIngestResultDTO, error) {
	src := &model.OpportunitySource{
		RedditPostID: post.ID,
		SourceType:   draft.SourceType,
		Confidence:   draft.Confidence,
	}
	if src.SourceType == "" {
		src.SourceType = consts.SourceTypePost
	}
	if src.Confidence == 0 {
		src.Confidence = 1
	}
	src.ClampConfidence()

	dup, err := s.dedup.CheckOpportunityDuplicate(ctx, &draft.OpportunityCandidateDTO)
	if err != nil {
		return nil, err
	}
	if dup.IsDuplicate {
		src.OpportunityID = dup.ExistingID
		attached, err := s.oppRepo.AttachSource(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("attach source: %w", err)
		}
		return &dto.OpportunityIngestResultDTO{
			OpportunityID:  dup.ExistingID,
			SourceAttached: attached,
			Duplicate:      dup,
		}, nil
	}

	opp, err := newOpportunity(post, draft)
	if err != nil {
		return nil, err
	}
	if err = s.oppRepo.CreateWithSource(ctx, opp, src); err != nil {
		return nil, fmt.Errorf("create opportunity: %w", err)
	}
	return &dto.OpportunityIngestResultDTO{
		OpportunityID:  opp.ID,
		Created:        true,
		SourceAttached: true,
	}, nil
}

func newOpportunity(post *model.RedditPost, draft *dto.OpportunityDraftDTO) (*model.Opportunity, error) {
	var scores model.SubScores
	if err := copier.Copy(&scores, &draft.Scores); err != nil {
		return nil, err
	}

	opp := &model.Opportunity{
		Title:            strings.TrimSpace(draft.Title),
		Description:      draft.Description,
		ProposedSolution: draft.ProposedSolution,
		Subreddit:        draft.Subreddit,
		BusinessType:     draft.BusinessType,
		Niche:            strings.TrimSpace(draft.Niche),
		IndustryVertical: draft.IndustryVertical,
		Platform:         draft.Platform,
		TargetAudience:   draft.TargetAudience,
		DemandSignals:    cleanSignals(draft.DemandSignals),
	}
	if opp.Subreddit == "" {
		opp.Subreddit = post.Subreddit
	}
	if opp.Niche == "" {
		opp.Niche = consts.DefaultNiche
	}
	opp.SetScores(scores)
	return opp, nil
}

func cleanSignals(signals []string) model.StringSlice {
	out := make(model.StringSlice, 0, len(signals))
	seen := make(map[string]struct{}, len(signals))
	for _, sig := range signals {
		sig = strings.TrimSpace(sig)
		if sig == "" {
			continue
		}
		key := strings.ToLower(sig)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sig)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
