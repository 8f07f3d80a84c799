package service

import (
	"Opportune/internal/api/config"
	"Opportune/internal/pkg/scoring"
	"time"
)

// DedupOptions 去重阈值与候选集范围
type DedupOptions struct {
	PostThreshold        float64
	OpportunityThreshold float64
	PostWindow           time.Duration
	OpportunityWindow    time.Duration
	CandidateLimit       int
}

// ClusterOptions 聚类阈值与评分权重
type ClusterOptions struct {
	Threshold          float64
	SignalThreshold    float64
	MinClusterSize     int
	TopMinSources      int
	HighViabilityScore float64
	Concurrency        int
	Weights            scoring.Weights
}

func DedupOptionsFromConfig(cfg config.SimilarityConfig) DedupOptions {
	return DedupOptions{
		PostThreshold:        cfg.PostDedupThreshold,
		OpportunityThreshold: cfg.OpportunityDedupThreshold,
		PostWindow:           time.Duration(cfg.PostWindowDays) * 24 * time.Hour,
		OpportunityWindow:    time.Duration(cfg.OpportunityWindowDays) * 24 * time.Hour,
		CandidateLimit:       cfg.CandidateLimit,
	}
}

func ClusterOptionsFromConfig(cfg *config.Config) ClusterOptions {
	return ClusterOptions{
		Threshold:          cfg.Similarity.ClusterThreshold,
		SignalThreshold:    cfg.Similarity.SignalClusterThreshold,
		MinClusterSize:     cfg.Similarity.MinClusterSize,
		TopMinSources:      cfg.Similarity.TopRequestedMinSources,
		HighViabilityScore: cfg.Similarity.HighViabilityScore,
		Concurrency:        cfg.LLM.Concurrency,
		Weights:            WeightsFromConfig(cfg.Scoring),
	}
}

func WeightsFromConfig(cfg config.ScoringConfig) scoring.Weights {
	return scoring.Weights{
		Recency:         cfg.RecencyWeight,
		Velocity:        cfg.VelocityWeight,
		Diversity:       cfg.DiversityWeight,
		Volume:          cfg.VolumeWeight,
		Occurrence:      cfg.OccurrenceWeight,
		MarketDiversity: cfg.MarketDivWeight,
		MarketRecency:   cfg.MarketRecWeight,
		VelocityNorm:    cfg.VelocityNorm,
		DiversityNorm:   cfg.DiversityNorm,
		VolumeNorm:      cfg.VolumeNorm,
		OccurrenceNorm:  cfg.OccurrenceNorm,
	}
}
