package model

import "time"

// DemandCluster 聚类结果，按 (kind, niche, signal_key) 幂等 upsert，不做物理删除。
// 未被最近一轮刷新的行 active=false，只保留历史
type DemandCluster struct {
	ID              uint64      `gorm:"primaryKey" json:"id"`
	Kind            string      `gorm:"type:varchar(16);not null;uniqueIndex:uk_signal,priority:1;index:idx_kind_active,priority:1" json:"kind"`
	Niche           string      `gorm:"type:varchar(64);not null;uniqueIndex:uk_signal,priority:2" json:"niche"`
	SignalKey       string      `gorm:"type:varchar(191);not null;uniqueIndex:uk_signal,priority:3" json:"signal_key"`
	DemandSignal    string      `gorm:"type:varchar(512);not null" json:"demand_signal"`
	Description     string      `gorm:"type:text" json:"description"`
	OccurrenceCount int         `gorm:"not null;default:0" json:"occurrence_count"`
	SourceCount     int         `gorm:"not null;default:0" json:"source_count"`
	AvgScore        float64     `gorm:"not null;default:0" json:"avg_score"`
	Subreddits      StringSlice `gorm:"type:json;not null" json:"subreddits"`
	MemberIDs       Uint64Slice `gorm:"type:json;not null" json:"member_ids"`
	TotalEngagement int         `gorm:"not null;default:0" json:"total_engagement"`
	FirstSeen       time.Time   `gorm:"not null" json:"first_seen"`
	LastSeen        time.Time   `gorm:"not null;index:idx_last_seen" json:"last_seen"`
	MarketStrength  float64     `gorm:"not null;default:0" json:"market_strength"`
	TrendingScore   float64     `gorm:"not null;default:0" json:"trending_score"`
	PassID          string      `gorm:"type:varchar(64);not null;default:''" json:"pass_id"`
	Active          bool        `gorm:"not null;default:true;index:idx_kind_active,priority:2" json:"active"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (DemandCluster) TableName() string {
	return "demand_clusters"
}
