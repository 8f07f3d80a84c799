package dto

import "time"

// ClusterMemberDTO 簇内机会摘要
type ClusterMemberDTO struct {
	ID           uint64  `json:"id"`
	Title        string  `json:"title"`
	Subreddit    string  `json:"subreddit"`
	OverallScore float64 `json:"overall_score"`
	SourceCount  int     `json:"source_count"`
	Niche        string  `json:"niche"`
}

// ClusterDTO 一个机会簇，ID 为首项机会的 ID
type ClusterDTO struct {
	ID              uint64              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Niche           string              `json:"niche"`
	Members         []*ClusterMemberDTO `json:"members"`
	SourceCount     int                 `json:"source_count"`
	DistinctSources int                 `json:"distinct_sources"`
	AvgScore        float64             `json:"avg_score"`
	Subreddits      []string            `json:"subreddits"`
	TotalEngagement int                 `json:"total_engagement"`
	FirstSeen       time.Time           `json:"first_seen"`
	LastSeen        time.Time           `json:"last_seen"`
	TrendingScore   float64             `json:"trending_score"`
}

// ClusterSummaryDTO 聚类汇总
type ClusterSummaryDTO struct {
	TotalClusters          int     `json:"total_clusters"`
	TotalOpportunities     int     `json:"total_opportunities"`
	CrossSubredditClusters int     `json:"cross_subreddit_clusters"`
	HighViabilityClusters  int     `json:"high_viability_clusters"`
	AvgTrendingScore       float64 `json:"avg_trending_score"`
}

// ClusterPassResultDTO runClusteringPass 返回值
type ClusterPassResultDTO struct {
	Clusters []*ClusterDTO     `json:"clusters"`
	Summary  ClusterSummaryDTO `json:"summary"`
	Skipped  int               `json:"skipped"`
}

// SignalClusterDTO 需求信号簇
type SignalClusterDTO struct {
	Niche           string    `json:"niche"`
	DemandSignal    string    `json:"demand_signal"`
	SignalKey       string    `json:"signal_key"`
	Phrases         []string  `json:"phrases"`
	OccurrenceCount int       `json:"occurrence_count"`
	Subreddits      []string  `json:"subreddits"`
	OpportunityIDs  []uint64  `json:"opportunity_ids"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
	MarketStrength  float64   `json:"market_strength"`
}

// SignalPassResultDTO 需求信号聚类结果
type SignalPassResultDTO struct {
	Clusters     []*SignalClusterDTO `json:"clusters"`
	TotalSignals int                 `json:"total_signals"`
	Skipped      int                 `json:"skipped"`
}

// DemandClusterDTO 已持久化的 DemandCluster，分数按读取时刻重算
type DemandClusterDTO struct {
	ID              uint64    `json:"id"`
	Kind            string    `json:"kind"`
	Niche           string    `json:"niche"`
	DemandSignal    string    `json:"demand_signal"`
	Description     string    `json:"description"`
	OccurrenceCount int       `json:"occurrence_count"`
	SourceCount     int       `json:"source_count"`
	AvgScore        float64   `json:"avg_score"`
	Subreddits      []string  `json:"subreddits"`
	MemberIDs       []uint64  `json:"member_ids"`
	TotalEngagement int       `json:"total_engagement"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
	MarketStrength  float64   `json:"market_strength"`
	TrendingScore   float64   `json:"trending_score"`
}

// ListClustersDTO 列表查询参数
type ListClustersDTO struct {
	Kind  string `form:"kind" validate:"omitempty,oneof=opportunity signal"`
	Niche string `form:"niche" validate:"max=64"`
	Limit int    `form:"limit" validate:"gte=0,lte=500"`
}
