package service

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/model"
	"Opportune/internal/pkg/consts"
	"Opportune/internal/pkg/llm"
	"Opportune/internal/pkg/metrics"
	"Opportune/internal/pkg/scoring"
	"Opportune/internal/pkg/similarity"
	"Opportune/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"golang.org/x/sync/errgroup"
)

const defaultListLimit = 50

type ClusterService interface {
	// RunClusteringPass 对全部机会做一次聚类并持久化，topOnly 时只返回来源数达标的簇
	RunClusteringPass(ctx context.Context, topOnly bool) (*dto.ClusterPassResultDTO, error)
	// RunDemandSignalPass 按细分领域聚合需求信号短语
	RunDemandSignalPass(ctx context.Context) (*dto.SignalPassResultDTO, error)
	// ListDemandClusters 读取已持久化的簇，分数按当前时间重算
	ListDemandClusters(ctx context.Context, req *dto.ListClustersDTO) ([]*dto.DemandClusterDTO, error)
}

type clusterServiceImpl struct {
	oppRepo     repository.OpportunityRepo
	clusterRepo repository.DemandClusterRepo
	embedder    llm.Embedder
	opts        ClusterOptions
	now         func() time.Time
}

func NewClusterService(
	oppRepo repository.OpportunityRepo,
	clusterRepo repository.DemandClusterRepo,
	embedder llm.Embedder,
	opts ClusterOptions,
) ClusterService {
	if opts.MinClusterSize < 2 {
		opts.MinClusterSize = 2
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &clusterServiceImpl{
		oppRepo:     oppRepo,
		clusterRepo: clusterRepo,
		embedder:    embedder,
		opts:        opts,
		now:         time.Now,
	}
}

func (s *clusterServiceImpl) RunClusteringPass(ctx context.Context, topOnly bool) (res *dto.ClusterPassResultDTO, err error) {
	start := time.Now()
	defer func() { metrics.ObserveClusterPass(consts.ClusterKindOpportunity, start, err) }()

	candidates, err := s.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}
	res = &dto.ClusterPassResultDTO{Clusters: make([]*dto.ClusterDTO, 0)}
	if len(candidates) == 0 {
		// 没有机会时也要让旧簇失效
		if err = s.clusterRepo.UpsertBatch(ctx, consts.ClusterKindOpportunity, newPassID(), nil); err != nil {
			return nil, err
		}
		return res, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Opportunity.CanonicalText()
	}
	vectors, skipped := s.embedAll(ctx, texts)
	if skipped == len(candidates) {
		return nil, fmt.Errorf("%w: all %d candidates failed", ErrEmbeddingUnavailable, skipped)
	}
	res.Skipped = skipped

	now := s.now()
	groups := similarity.Greedy(vectors, s.opts.Threshold, s.opts.MinClusterSize)
	clusters := make([]*dto.ClusterDTO, 0, len(groups))
	for _, g := range groups {
		members := make([]*repository.ClusterCandidate, len(g))
		for i, idx := range g {
			members[i] = candidates[idx]
		}
		clusters = append(clusters, s.buildCluster(members, now))
	}

	rows := mergeRows(clusterRows(clusters, consts.ClusterKindOpportunity))
	if err = s.clusterRepo.UpsertBatch(ctx, consts.ClusterKindOpportunity, newPassID(), rows); err != nil {
		return nil, err
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].TrendingScore != clusters[j].TrendingScore {
			return clusters[i].TrendingScore > clusters[j].TrendingScore
		}
		return clusters[i].ID < clusters[j].ID
	})
	if topOnly {
		clusters = TopRequested(clusters, s.opts.TopMinSources)
	}

	res.Clusters = clusters
	res.Summary = s.summarize(clusters)
	log.InfoContext(ctx, "clustering pass finished",
		"candidates", len(candidates),
		"skipped", skipped,
		"clusters", res.Summary.TotalClusters,
		"avg_trending", res.Summary.AvgTrendingScore,
		"cost", time.Since(start).String())
	return res, nil
}

// TopRequested 去重后的来源帖子数不少于 minSources 的簇
func TopRequested(clusters []*dto.ClusterDTO, minSources int) []*dto.ClusterDTO {
	out := make([]*dto.ClusterDTO, 0, len(clusters))
	for _, c := range clusters {
		if c.DistinctSources >= minSources {
			out = append(out, c)
		}
	}
	return out
}

// loadCandidates 按 overall_score 降序、id 升序排定输入顺序
func (s *clusterServiceImpl) loadCandidates(ctx context.Context) ([]*repository.ClusterCandidate, error) {
	candidates, err := s.oppRepo.ListClusterCandidates(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Opportunity, candidates[j].Opportunity
		if a.OverallScore != b.OverallScore {
			return a.OverallScore > b.OverallScore
		}
		return a.ID < b.ID
	})
	return candidates, nil
}

// embedAll 并发向量化，结果按下标回填；失败项为 nil，本轮跳过
func (s *clusterServiceImpl) embedAll(ctx context.Context, texts []string) ([][]float32, int) {
	vectors := make([][]float32, len(texts))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := s.embedder.Embed(ctx, text)
			if err != nil {
				log.WarnContext(ctx, "embedding failed, candidate skipped", "index", i, "err", err)
				return nil
			}
			vectors[i] = vec
			return nil
		})
	}
	_ = g.Wait()

	skipped := 0
	for _, v := range vectors {
		if v == nil {
			skipped++
		}
	}
	return vectors, skipped
}

func (s *clusterServiceImpl) buildCluster(members []*repository.ClusterCandidate, now time.Time) *dto.ClusterDTO {
	leader := members[0].Opportunity
	c := &dto.ClusterDTO{
		ID:      leader.ID,
		Members: make([]*dto.ClusterMemberDTO, 0, len(members)),
	}

	titles := make([]string, 0, len(members))
	niches := make([]string, 0, len(members))
	subs := newStringSet()
	posts := make(map[uint64]struct{})
	scoreSum := 0.0
	span := newTimeSpan()

	for _, m := range members {
		o := m.Opportunity
		member := &dto.ClusterMemberDTO{}
		_ = copier.Copy(member, o)
		c.Members = append(c.Members, member)

		titles = append(titles, o.Title)
		niches = append(niches, o.Niche)
		c.SourceCount += o.SourceCount
		scoreSum += o.OverallScore
		span.add(o.CreatedAt)

		if len(m.Sources) == 0 {
			subs.add(o.Subreddit)
		}
		for _, src := range m.Sources {
			subs.add(src.Subreddit)
			span.add(src.CreatedUtc)
			if _, ok := posts[src.PostID]; ok {
				continue
			}
			posts[src.PostID] = struct{}{}
			c.TotalEngagement += src.Score
		}
	}

	c.DistinctSources = len(posts)
	c.AvgScore = round2(scoreSum / float64(len(members)))
	c.Subreddits = subs.sorted()
	c.FirstSeen, c.LastSeen = span.first, span.last
	c.Niche = dominant(niches)
	c.Title, c.Description = representativeTitle(titles)
	c.TrendingScore = scoring.Trending(scoring.TrendingInput{
		FirstSeen:       c.FirstSeen,
		LastSeen:        c.LastSeen,
		TotalEngagement: c.TotalEngagement,
		SubredditCount:  len(c.Subreddits),
		SourceCount:     c.SourceCount,
	}, now, s.opts.Weights)
	return c
}

// representativeTitle 取在至少两个成员标题中出现的高频词，没有时回退到首项标题
func representativeTitle(titles []string) (string, string) {
	words := similarity.RecurringWords(titles, 2, 3)
	if len(words) == 0 {
		title := fmt.Sprintf("Similar opportunities: %s (%d variations)", titles[0], len(titles))
		return title, title
	}
	parts := make([]string, len(words))
	raw := make([]string, len(words))
	for i, w := range words {
		parts[i] = capitalize(w.Word)
		raw[i] = w.Word
	}
	desc := fmt.Sprintf("%d similar opportunities mentioning: %s", len(titles), strings.Join(raw, ", "))
	return strings.Join(parts, " "), desc
}

func (s *clusterServiceImpl) summarize(clusters []*dto.ClusterDTO) dto.ClusterSummaryDTO {
	sum := dto.ClusterSummaryDTO{TotalClusters: len(clusters)}
	trending := 0.0
	for _, c := range clusters {
		sum.TotalOpportunities += len(c.Members)
		if len(c.Subreddits) >= 2 {
			sum.CrossSubredditClusters++
		}
		if c.AvgScore >= s.opts.HighViabilityScore {
			sum.HighViabilityClusters++
		}
		trending += c.TrendingScore
	}
	if len(clusters) > 0 {
		sum.AvgTrendingScore = round2(trending / float64(len(clusters)))
	}
	return sum
}

func clusterRows(clusters []*dto.ClusterDTO, kind string) []*model.DemandCluster {
	rows := make([]*model.DemandCluster, 0, len(clusters))
	for _, c := range clusters {
		ids := make(model.Uint64Slice, len(c.Members))
		for i, m := range c.Members {
			ids[i] = m.ID
		}
		rows = append(rows, &model.DemandCluster{
			Kind:            kind,
			Niche:           c.Niche,
			SignalKey:       signalKey(c.Title),
			DemandSignal:    c.Title,
			Description:     c.Description,
			OccurrenceCount: len(c.Members),
			SourceCount:     c.SourceCount,
			AvgScore:        c.AvgScore,
			Subreddits:      model.StringSlice(c.Subreddits),
			MemberIDs:       ids,
			TotalEngagement: c.TotalEngagement,
			FirstSeen:       c.FirstSeen,
			LastSeen:        c.LastSeen,
			TrendingScore:   c.TrendingScore,
		})
	}
	return rows
}

// mergeRows 同一批次内 (kind, niche, signal_key) 相同的行合并为一行
func mergeRows(rows []*model.DemandCluster) []*model.DemandCluster {
	type key struct{ kind, niche, signal string }
	index := make(map[key]int, len(rows))
	out := make([]*model.DemandCluster, 0, len(rows))
	for _, r := range rows {
		k := key{r.Kind, r.Niche, r.SignalKey}
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, r)
			continue
		}
		mergeInto(out[i], r)
	}
	return out
}

func mergeInto(dst, src *model.DemandCluster) {
	total := dst.OccurrenceCount + src.OccurrenceCount
	if total > 0 {
		dst.AvgScore = round2((dst.AvgScore*float64(dst.OccurrenceCount) + src.AvgScore*float64(src.OccurrenceCount)) / float64(total))
	}
	dst.OccurrenceCount = total
	dst.SourceCount += src.SourceCount
	dst.TotalEngagement += src.TotalEngagement
	dst.MemberIDs = append(dst.MemberIDs, src.MemberIDs...)

	subs := newStringSet()
	subs.add(dst.Subreddits...)
	subs.add(src.Subreddits...)
	dst.Subreddits = subs.sorted()

	if src.FirstSeen.Before(dst.FirstSeen) {
		dst.FirstSeen = src.FirstSeen
	}
	if src.LastSeen.After(dst.LastSeen) {
		dst.LastSeen = src.LastSeen
	}
	dst.TrendingScore = math.Max(dst.TrendingScore, src.TrendingScore)
	dst.MarketStrength = math.Max(dst.MarketStrength, src.MarketStrength)
}

func (s *clusterServiceImpl) ListDemandClusters(ctx context.Context, req *dto.ListClustersDTO) ([]*dto.DemandClusterDTO, error) {
	if req == nil {
		req = &dto.ListClustersDTO{}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.clusterRepo.ListActive(ctx, req.Kind, req.Niche)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]*dto.DemandClusterDTO, 0, len(rows))
	for _, row := range rows {
		item := &dto.DemandClusterDTO{}
		_ = copier.Copy(item, row)
		item.Subreddits = []string(row.Subreddits)
		item.MemberIDs = []uint64(row.MemberIDs)
		item.TrendingScore = scoring.Trending(scoring.TrendingInput{
			FirstSeen:       row.FirstSeen,
			LastSeen:        row.LastSeen,
			TotalEngagement: row.TotalEngagement,
			SubredditCount:  len(row.Subreddits),
			SourceCount:     row.SourceCount,
		}, now, s.opts.Weights)
		item.MarketStrength = scoring.MarketStrength(scoring.MarketInput{
			OccurrenceCount: row.OccurrenceCount,
			SubredditCount:  len(row.Subreddits),
			LastSeen:        row.LastSeen,
		}, now, s.opts.Weights)
		out = append(out, item)
	}

	bySignal := req.Kind == consts.ClusterKindSignal
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].TrendingScore, out[j].TrendingScore
		if bySignal {
			a, b = out[i].MarketStrength, out[j].MarketStrength
		}
		if a != b {
			return a > b
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// newPassID 标记一轮聚类写入的行
func newPassID() string {
	return "pass-" + uuid.New().String()
}

func signalKey(phrase string) string {
	key := similarity.NormalizePhrase(phrase)
	if r := []rune(key); len(r) > 191 {
		key = string(r[:191])
	}
	return key
}

func dominant(values []string) string {
	counts := make(map[string]int)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		counts[v]++
	}
	best, bestCount := consts.DefaultNiche, 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}

func capitalize(w string) string {
	r := []rune(w)
	if len(r) == 0 {
		return w
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type stringSet map[string]struct{}

func newStringSet() stringSet {
	return make(stringSet)
}

func (s stringSet) add(values ...string) {
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

type timeSpan struct {
	first, last time.Time
}

func newTimeSpan() *timeSpan {
	return &timeSpan{}
}

func (t *timeSpan) add(ts time.Time) {
	if ts.IsZero() {
		return
	}
	if t.first.IsZero() || ts.Before(t.first) {
		t.first = ts
	}
	if ts.After(t.last) {
		t.last = ts
	}
}
