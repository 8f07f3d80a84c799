package job

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/pkg/logger"
	"Opportune/internal/pkg/reddit"
	"Opportune/internal/service"
	"context"
	log "log/slog"
	"strings"

	"github.com/google/uuid"
)

// PostFetcher 拉取 subreddit 最新帖子
type PostFetcher interface {
	IsEnabled() bool
	FetchNew(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error)
}

type ScrapeJob struct {
	fetcher    PostFetcher
	ingestSvc  service.IngestService
	subreddits []string
	limit      int
}

func NewScrapeJob(fetcher PostFetcher, ingestSvc service.IngestService, subreddits []string, limit int) *ScrapeJob {
	return &ScrapeJob{
		fetcher:    fetcher,
		ingestSvc:  ingestSvc,
		subreddits: subreddits,
		limit:      limit,
	}
}

// ScrapeStats 一轮抓取统计
type ScrapeStats struct {
	Fetched    int
	Created    int
	Duplicates int
	Failed     int
}

func (s *ScrapeJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-scrape-"+uuid.NewString())
	if !s.fetcher.IsEnabled() {
		log.DebugContext(ctx, "reddit credentials missing, scrape skipped")
		return
	}
	stats := s.Scrape(ctx)
	log.InfoContext(ctx, "scrape finished",
		"fetched", stats.Fetched,
		"created", stats.Created,
		"duplicates", stats.Duplicates,
		"failed", stats.Failed)
}

// Scrape 单条帖子失败不影响同批次其他帖子
func (s *ScrapeJob) Scrape(ctx context.Context) ScrapeStats {
	var stats ScrapeStats
	for _, sub := range s.subreddits {
		posts, err := s.fetcher.FetchNew(ctx, sub, s.limit)
		if err != nil {
			log.ErrorContext(ctx, "fetch subreddit error", "subreddit", sub, "err", err)
			continue
		}
		stats.Fetched += len(posts)

		for _, p := range posts {
			if p.ID == "" || strings.TrimSpace(p.Title) == "" {
				continue
			}
			res, err := s.ingestSvc.IngestPost(ctx, toPayload(p))
			if err != nil {
				stats.Failed++
				log.ErrorContext(ctx, "ingest post error", "reddit_id", p.ID, "err", err)
				continue
			}
			if res.Created {
				stats.Created++
			} else {
				stats.Duplicates++
			}
		}
	}
	return stats
}

func toPayload(p reddit.Post) *dto.PostPayloadDTO {
	return &dto.PostPayloadDTO{
		PostCandidateDTO: dto.PostCandidateDTO{
			RedditID:  p.ID,
			Title:     p.Title,
			Content:   p.Selftext,
			Subreddit: p.Subreddit,
			Author:    p.Author,
		},
		Score:       p.Score,
		Upvotes:     p.Ups,
		Downvotes:   p.Downs,
		NumComments: p.NumComments,
		Permalink:   p.Permalink,
		CreatedUtc:  p.CreatedAt(),
	}
}
