package service

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/model"
	"Opportune/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type fakePostRepo struct {
	mu        sync.Mutex
	nextID    uint64
	posts     map[uint64]*model.RedditPost
	listErr   error
	createErr error
	onCascade func(postIDs, opportunityIDs []uint64)
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[uint64]*model.RedditPost)}
}

func (r *fakePostRepo) add(p *model.RedditPost) *model.RedditPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.posts[p.ID] = p
	return p
}

func (r *fakePostRepo) sortedPosts() []*model.RedditPost {
	out := make([]*model.RedditPost, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakePostRepo) find(match func(p *model.RedditPost) bool) *model.RedditPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.sortedPosts() {
		if match(p) {
			return p
		}
	}
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id uint64) (*model.RedditPost, error) {
	return r.find(func(p *model.RedditPost) bool { return p.ID == id }), nil
}

func (r *fakePostRepo) GetByRedditID(_ context.Context, redditID string) (*model.RedditPost, error) {
	return r.find(func(p *model.RedditPost) bool { return p.RedditID == redditID }), nil
}

func (r *fakePostRepo) GetByTitleAuthor(_ context.Context, subreddit, title, author string) (*model.RedditPost, error) {
	return r.find(func(p *model.RedditPost) bool {
		return p.Subreddit == subreddit && p.Title == title && p.Author == author
	}), nil
}

func (r *fakePostRepo) ListRecentBySubreddit(_ context.Context, subreddit string, since time.Time, limit int) ([]*model.RedditPost, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.RedditPost, 0)
	for _, p := range r.sortedPosts() {
		if p.Subreddit == subreddit && !p.CreatedAt.Before(since) && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) Create(_ context.Context, post *model.RedditPost) error {
	if r.createErr != nil {
		return r.createErr
	}
	if existing, _ := r.GetByRedditID(context.Background(), post.RedditID); existing != nil {
		return gorm.ErrDuplicatedKey
	}
	r.add(post)
	return nil
}

func (r *fakePostRepo) setEngagement(p *model.RedditPost, e model.Engagement) {
	p.Score, p.Upvotes, p.Downvotes, p.NumComments = e.Score, e.Upvotes, e.Downvotes, e.NumComments
}

func (r *fakePostRepo) UpdateEngagement(_ context.Context, id uint64, e model.Engagement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.setEngagement(p, e)
	return nil
}

func (r *fakePostRepo) UpdateEngagementByRedditID(ctx context.Context, redditID string, e model.Engagement) (uint64, error) {
	p, _ := r.GetByRedditID(ctx, redditID)
	if p == nil {
		return 0, gorm.ErrRecordNotFound
	}
	return p.ID, r.UpdateEngagement(ctx, p.ID, e)
}

func (r *fakePostRepo) MarkProcessed(_ context.Context, id uint64, processingErr *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.ProcessingError = processingErr
	if processingErr == nil {
		now := time.Now()
		p.ProcessedAt = &now
	}
	return nil
}

func (r *fakePostRepo) ListDuplicateGroups(_ context.Context) ([]*repository.DuplicatePostGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	type key struct{ title, author string }
	groups := make(map[key]*repository.DuplicatePostGroup)
	order := make([]key, 0)
	for _, p := range r.sortedPosts() {
		k := key{p.Title, p.Author}
		g, ok := groups[k]
		if !ok {
			g = &repository.DuplicatePostGroup{Title: p.Title, Author: p.Author}
			groups[k] = g
			order = append(order, k)
		}
		g.Posts = append(g.Posts, p)
	}
	out := make([]*repository.DuplicatePostGroup, 0)
	for _, k := range order {
		if len(groups[k].Posts) > 1 {
			out = append(out, groups[k])
		}
	}
	return out, nil
}

// DeleteCascade 机会侧的删除由 onCascade 完成
func (r *fakePostRepo) DeleteCascade(_ context.Context, postIDs []uint64, opportunityIDs []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range postIDs {
		delete(r.posts, id)
	}
	if r.onCascade != nil {
		r.onCascade(postIDs, opportunityIDs)
	}
	return nil
}

type fakeOppRepo struct {
	mu       sync.Mutex
	nextID   uint64
	nextSrc  uint64
	opps     map[uint64]*model.Opportunity
	sources  []*model.OpportunitySource
	posts    *fakePostRepo
	listErr  error
	titleErr error
}

func newFakeOppRepo(posts *fakePostRepo) *fakeOppRepo {
	r := &fakeOppRepo{opps: make(map[uint64]*model.Opportunity), posts: posts}
	posts.onCascade = r.cascade
	return r
}

func (r *fakeOppRepo) add(o *model.Opportunity, postIDs ...uint64) *model.Opportunity {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	o.SourceCount = len(postIDs)
	r.opps[o.ID] = o
	for _, pid := range postIDs {
		r.nextSrc++
		r.sources = append(r.sources, &model.OpportunitySource{
			ID: r.nextSrc, OpportunityID: o.ID, RedditPostID: pid, SourceType: "post", Confidence: 1,
		})
	}
	return o
}

func (r *fakeOppRepo) GetByID(_ context.Context, id uint64) (*model.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opps[id], nil
}

func (r *fakeOppRepo) GetByTitle(_ context.Context, title string) (*model.Opportunity, error) {
	if r.titleErr != nil {
		return nil, r.titleErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *model.Opportunity
	for _, o := range r.opps {
		if o.Title == title && (found == nil || o.ID < found.ID) {
			found = o
		}
	}
	return found, nil
}

func (r *fakeOppRepo) ListRecent(_ context.Context, since time.Time, limit int) ([]*model.Opportunity, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Opportunity, 0)
	for _, o := range r.opps {
		if !o.CreatedAt.Before(since) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOppRepo) CreateWithSource(_ context.Context, opp *model.Opportunity, src *model.OpportunitySource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	opp.ID = r.nextID
	opp.SourceCount = 1
	opp.CreatedAt = time.Now()
	r.opps[opp.ID] = opp
	r.nextSrc++
	src.ID = r.nextSrc
	src.OpportunityID = opp.ID
	r.sources = append(r.sources, src)
	return nil
}

func (r *fakeOppRepo) AttachSource(_ context.Context, src *model.OpportunitySource) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sources {
		if s.OpportunityID == src.OpportunityID && s.RedditPostID == src.RedditPostID && s.SourceType == src.SourceType {
			return false, nil
		}
	}
	r.nextSrc++
	src.ID = r.nextSrc
	r.sources = append(r.sources, src)
	r.opps[src.OpportunityID].SourceCount++
	return true, nil
}

func (r *fakeOppRepo) ListClusterCandidates(_ context.Context) ([]*repository.ClusterCandidate, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*repository.ClusterCandidate, 0, len(r.opps))
	for _, o := range r.opps {
		c := &repository.ClusterCandidate{Opportunity: o}
		for _, s := range r.sources {
			if s.OpportunityID != o.ID {
				continue
			}
			p := r.posts.posts[s.RedditPostID]
			if p == nil {
				continue
			}
			c.Sources = append(c.Sources, repository.SourcePost{
				OpportunityID: o.ID,
				PostID:        p.ID,
				Subreddit:     p.Subreddit,
				Score:         p.Score,
				CreatedUtc:    p.CreatedUtc,
			})
		}
		out = append(out, c)
	}
	// map 遍历无序，交由 service 排序
	return out, nil
}

func (r *fakeOppRepo) ListSourcesByPosts(_ context.Context, postIDs []uint64) ([]*model.OpportunitySource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := toSet(postIDs)
	out := make([]*model.OpportunitySource, 0)
	for _, s := range r.sources {
		if _, ok := set[s.RedditPostID]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeOppRepo) ListSourcesByOpportunities(_ context.Context, opportunityIDs []uint64) ([]*model.OpportunitySource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := toSet(opportunityIDs)
	out := make([]*model.OpportunitySource, 0)
	for _, s := range r.sources {
		if _, ok := set[s.OpportunityID]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeOppRepo) cascade(postIDs, opportunityIDs []uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts, opps := toSet(postIDs), toSet(opportunityIDs)
	for id := range opps {
		delete(r.opps, id)
	}
	kept := make([]*model.OpportunitySource, 0, len(r.sources))
	for _, s := range r.sources {
		if _, ok := opps[s.OpportunityID]; ok {
			continue
		}
		if _, ok := posts[s.RedditPostID]; ok {
			if o := r.opps[s.OpportunityID]; o != nil && o.SourceCount > 0 {
				o.SourceCount--
			}
			continue
		}
		kept = append(kept, s)
	}
	r.sources = kept
}

func toSet(ids []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

type fakeClusterRepo struct {
	mu      sync.Mutex
	rows    map[string]*model.DemandCluster
	upserts int
	err     error
}

func newFakeClusterRepo() *fakeClusterRepo {
	return &fakeClusterRepo{rows: make(map[string]*model.DemandCluster)}
}

func (r *fakeClusterRepo) UpsertBatch(_ context.Context, kind, passID string, clusters []*model.DemandCluster) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	for _, c := range clusters {
		c.Kind, c.PassID, c.Active = kind, passID, true
		k := c.Kind + "|" + c.Niche + "|" + c.SignalKey
		if old, ok := r.rows[k]; ok {
			c.ID = old.ID
		} else {
			c.ID = uint64(len(r.rows) + 1)
		}
		cp := *c
		r.rows[k] = &cp
	}
	for _, row := range r.rows {
		if row.Kind == kind && row.PassID != passID {
			row.Active = false
		}
	}
	return nil
}

// ListActive 与 SQL 一致按 last_seen 降序返回，不截断
func (r *fakeClusterRepo) ListActive(_ context.Context, kind, niche string) ([]*model.DemandCluster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.DemandCluster, 0)
	for _, c := range r.rows {
		if c.Active && (kind == "" || c.Kind == kind) && (niche == "" || c.Niche == niche) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// fakeEmbedder 按文本查表，未登记的文本返回错误
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	calls   map[string]int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32), calls: make(map[string]int)}
}

func (e *fakeEmbedder) set(text string, vec ...float32) {
	e.vectors[text] = vec
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls[text]++
	vec, ok := e.vectors[text]
	if !ok {
		return nil, errors.New("embedding provider timeout")
	}
	return vec, nil
}

func (e *fakeEmbedder) totalCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.calls {
		n += c
	}
	return n
}

type mockDedup struct {
	mock.Mock
}

func (m *mockDedup) CheckRedditPostDuplicate(ctx context.Context, req *dto.PostCandidateDTO) (*dto.DuplicateResultDTO, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.DuplicateResultDTO)
	return res, args.Error(1)
}

func (m *mockDedup) CheckOpportunityDuplicate(ctx context.Context, req *dto.OpportunityCandidateDTO) (*dto.DuplicateResultDTO, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.DuplicateResultDTO)
	return res, args.Error(1)
}

func (m *mockDedup) CleanupDuplicatePosts(ctx context.Context) (*dto.CleanupResultDTO, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*dto.CleanupResultDTO)
	return res, args.Error(1)
}

func strPtr(s string) *string {
	return &s
}
