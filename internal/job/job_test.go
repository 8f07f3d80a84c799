package job

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/pkg/reddit"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type fakeFetcher struct {
	posts map[string][]reddit.Post
	errs  map[string]error
}

func (f *fakeFetcher) IsEnabled() bool { return true }

func (f *fakeFetcher) FetchNew(_ context.Context, subreddit string, _ int) ([]reddit.Post, error) {
	if err := f.errs[subreddit]; err != nil {
		return nil, err
	}
	return f.posts[subreddit], nil
}

type mockIngest struct {
	mock.Mock
}

func (m *mockIngest) IngestPost(ctx context.Context, req *dto.PostPayloadDTO) (*dto.PostIngestResultDTO, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.PostIngestResultDTO)
	return res, args.Error(1)
}

func (m *mockIngest) IngestOpportunity(ctx context.Context, postID uint64, draft *dto.OpportunityDraftDTO) (*dto.OpportunityIngestResultDTO, error) {
	args := m.Called(ctx, postID, draft)
	res, _ := args.Get(0).(*dto.OpportunityIngestResultDTO)
	return res, args.Error(1)
}

func byRedditID(id string) interface{} {
	return mock.MatchedBy(func(req *dto.PostPayloadDTO) bool { return req.RedditID == id })
}

func TestScrape_OneFailureDoesNotStopBatch(t *testing.T) {
	fetcher := &fakeFetcher{
		posts: map[string][]reddit.Post{
			"SaaS": {
				{ID: "a", Title: "Need invoicing tool", Author: "u1", Subreddit: "SaaS", Created: 1700000000, Ups: 3},
				{ID: "b", Title: "Broken row", Author: "u2", Subreddit: "SaaS"},
				{ID: "c", Title: "Need invoicing tool", Author: "u1", Subreddit: "SaaS"},
				{ID: "", Title: "no id"},
			},
		},
		errs: map[string]error{"freelance": errors.New("429 too many requests")},
	}
	ingest := new(mockIngest)
	ingest.On("IngestPost", mock.Anything, byRedditID("a")).Return(&dto.PostIngestResultDTO{PostID: 1, Created: true}, nil)
	ingest.On("IngestPost", mock.Anything, byRedditID("b")).Return(nil, errors.New("db down"))
	ingest.On("IngestPost", mock.Anything, byRedditID("c")).Return(&dto.PostIngestResultDTO{PostID: 1}, nil)

	job := NewScrapeJob(fetcher, ingest, []string{"freelance", "SaaS"}, 25)
	stats := job.Scrape(context.Background())

	assert.Equal(t, ScrapeStats{Fetched: 4, Created: 1, Duplicates: 1, Failed: 1}, stats)
	ingest.AssertNumberOfCalls(t, "IngestPost", 3)
}

func TestToPayload(t *testing.T) {
	p := reddit.Post{
		ID: "x1", Title: "t", Selftext: "body", Author: "a", Subreddit: "SaaS",
		Permalink: "/r/SaaS/x1", Created: 1700000000, Score: 5, Ups: 7, Downs: 2, NumComments: 4,
	}
	got := toPayload(p)
	assert.Equal(t, "x1", got.RedditID)
	assert.Equal(t, "body", got.Content)
	assert.Equal(t, 7, got.Upvotes)
	assert.Equal(t, 2, got.Downvotes)
	assert.Equal(t, int64(1700000000), got.CreatedUtc.Unix())
}
