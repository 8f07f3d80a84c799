package service

import (
	"Opportune/internal/api/dto"
	"Opportune/internal/model"
	"Opportune/internal/pkg/consts"
	"Opportune/internal/pkg/metrics"
	"Opportune/internal/pkg/scoring"
	"Opportune/internal/pkg/similarity"
	"Opportune/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"sort"
	"strings"
	"time"
)

// signalItem 一条需求信号短语及其所属机会
type signalItem struct {
	phrase string
	key    string
	cand   *repository.ClusterCandidate
}

func (s *clusterServiceImpl) RunDemandSignalPass(ctx context.Context) (res *dto.SignalPassResultDTO, err error) {
	start := time.Now()
	defer func() { metrics.ObserveClusterPass(consts.ClusterKindSignal, start, err) }()

	candidates, err := s.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}

	byNiche := make(map[string][]signalItem)
	keys := make([]string, 0)
	seenKey := make(map[string]int)
	for _, c := range candidates {
		niche := strings.TrimSpace(c.Opportunity.Niche)
		if niche == "" {
			niche = consts.DefaultNiche
		}
		for _, phrase := range c.Opportunity.DemandSignals {
			key := similarity.NormalizePhrase(phrase)
			if key == "" {
				continue
			}
			byNiche[niche] = append(byNiche[niche], signalItem{phrase: strings.TrimSpace(phrase), key: key, cand: c})
			if _, ok := seenKey[key]; !ok {
				seenKey[key] = len(keys)
				keys = append(keys, key)
			}
		}
	}

	res = &dto.SignalPassResultDTO{Clusters: make([]*dto.SignalClusterDTO, 0)}
	if len(keys) == 0 {
		if err = s.clusterRepo.UpsertBatch(ctx, consts.ClusterKindSignal, newPassID(), nil); err != nil {
			return nil, err
		}
		return res, nil
	}

	// 相同短语只向量化一次
	keyVectors, failed := s.embedAll(ctx, keys)
	if failed == len(keys) {
		return nil, fmt.Errorf("%w: all %d signals failed", ErrEmbeddingUnavailable, failed)
	}

	niches := make([]string, 0, len(byNiche))
	for n := range byNiche {
		niches = append(niches, n)
	}
	sort.Strings(niches)

	now := s.now()
	for _, niche := range niches {
		items := byNiche[niche]
		res.TotalSignals += len(items)

		vectors := make([][]float32, len(items))
		for i, it := range items {
			vectors[i] = keyVectors[seenKey[it.key]]
			if vectors[i] == nil {
				res.Skipped++
			}
		}

		for _, g := range similarity.Greedy(vectors, s.opts.SignalThreshold, s.opts.MinClusterSize) {
			members := make([]signalItem, len(g))
			for i, idx := range g {
				members[i] = items[idx]
			}
			res.Clusters = append(res.Clusters, s.buildSignalCluster(niche, members, now))
		}
	}

	rows := mergeRows(s.signalRows(res.Clusters, candidates, now))
	if err = s.clusterRepo.UpsertBatch(ctx, consts.ClusterKindSignal, newPassID(), rows); err != nil {
		return nil, err
	}

	sort.SliceStable(res.Clusters, func(i, j int) bool {
		if res.Clusters[i].MarketStrength != res.Clusters[j].MarketStrength {
			return res.Clusters[i].MarketStrength > res.Clusters[j].MarketStrength
		}
		return res.Clusters[i].SignalKey < res.Clusters[j].SignalKey
	})
	log.InfoContext(ctx, "demand signal pass finished",
		"signals", res.TotalSignals,
		"skipped", res.Skipped,
		"clusters", len(res.Clusters),
		"cost", time.Since(start).String())
	return res, nil
}

func (s *clusterServiceImpl) buildSignalCluster(niche string, members []signalItem, now time.Time) *dto.SignalClusterDTO {
	c := &dto.SignalClusterDTO{
		Niche:           niche,
		OccurrenceCount: len(members),
		Phrases:         make([]string, 0, len(members)),
		OpportunityIDs:  make([]uint64, 0, len(members)),
	}

	freq := make(map[string]int)
	original := make(map[string]string)
	subs := newStringSet()
	opps := make(map[uint64]struct{})
	span := newTimeSpan()

	for _, m := range members {
		c.Phrases = append(c.Phrases, m.phrase)
		freq[m.key]++
		if _, ok := original[m.key]; !ok {
			original[m.key] = m.phrase
		}

		o := m.cand.Opportunity
		span.add(o.CreatedAt)
		if len(m.cand.Sources) == 0 {
			subs.add(o.Subreddit)
		}
		for _, src := range m.cand.Sources {
			subs.add(src.Subreddit)
			span.add(src.CreatedUtc)
		}
		if _, ok := opps[o.ID]; !ok {
			opps[o.ID] = struct{}{}
			c.OpportunityIDs = append(c.OpportunityIDs, o.ID)
		}
	}

	c.SignalKey = representativePhrase(freq)
	c.DemandSignal = original[c.SignalKey]
	c.SignalKey = signalKey(c.SignalKey)
	c.Subreddits = subs.sorted()
	c.FirstSeen, c.LastSeen = span.first, span.last
	c.MarketStrength = scoring.MarketStrength(scoring.MarketInput{
		OccurrenceCount: c.OccurrenceCount,
		SubredditCount:  len(c.Subreddits),
		LastSeen:        c.LastSeen,
	}, now, s.opts.Weights)
	return c
}

// representativePhrase 出现次数最多的短语，同频取更短的，再按字母序
func representativePhrase(freq map[string]int) string {
	best, bestCount := "", 0
	for k, n := range freq {
		switch {
		case n > bestCount:
		case n == bestCount && len(k) < len(best):
		case n == bestCount && len(k) == len(best) && k < best:
		default:
			continue
		}
		best, bestCount = k, n
	}
	return best
}

func (s *clusterServiceImpl) signalRows(clusters []*dto.SignalClusterDTO, candidates []*repository.ClusterCandidate, now time.Time) []*model.DemandCluster {
	byID := make(map[uint64]*repository.ClusterCandidate, len(candidates))
	for _, c := range candidates {
		byID[c.Opportunity.ID] = c
	}

	rows := make([]*model.DemandCluster, 0, len(clusters))
	for _, c := range clusters {
		row := &model.DemandCluster{
			Kind:            consts.ClusterKindSignal,
			Niche:           c.Niche,
			SignalKey:       c.SignalKey,
			DemandSignal:    c.DemandSignal,
			Description:     strings.Join(c.Phrases, "; "),
			OccurrenceCount: c.OccurrenceCount,
			Subreddits:      model.StringSlice(c.Subreddits),
			MemberIDs:       model.Uint64Slice(c.OpportunityIDs),
			FirstSeen:       c.FirstSeen,
			LastSeen:        c.LastSeen,
			MarketStrength:  c.MarketStrength,
		}

		posts := make(map[uint64]struct{})
		scoreSum := 0.0
		for _, id := range c.OpportunityIDs {
			cand := byID[id]
			row.SourceCount += cand.Opportunity.SourceCount
			scoreSum += cand.Opportunity.OverallScore
			for _, src := range cand.Sources {
				if _, ok := posts[src.PostID]; ok {
					continue
				}
				posts[src.PostID] = struct{}{}
				row.TotalEngagement += src.Score
			}
		}
		if len(c.OpportunityIDs) > 0 {
			row.AvgScore = round2(scoreSum / float64(len(c.OpportunityIDs)))
		}
		row.TrendingScore = scoring.Trending(scoring.TrendingInput{
			FirstSeen:       row.FirstSeen,
			LastSeen:        row.LastSeen,
			TotalEngagement: row.TotalEngagement,
			SubredditCount:  len(row.Subreddits),
			SourceCount:     row.SourceCount,
		}, now, s.opts.Weights)
		rows = append(rows, row)
	}
	return rows
}
