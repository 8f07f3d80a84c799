package model

import "time"

// OpportunitySource Opportunity 与 RedditPost 的多对多关联
type OpportunitySource struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	OpportunityID uint64    `gorm:"not null;uniqueIndex:uk_opp_post_type,priority:1" json:"opportunity_id"`
	RedditPostID  uint64    `gorm:"not null;uniqueIndex:uk_opp_post_type,priority:2;index:idx_reddit_post" json:"reddit_post_id"`
	SourceType    string    `gorm:"type:varchar(16);not null;uniqueIndex:uk_opp_post_type,priority:3" json:"source_type"`
	Confidence    float64   `gorm:"not null;default:1" json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

func (OpportunitySource) TableName() string {
	return "opportunity_sources"
}

// ClampConfidence 置信度限制在 [0,1]
func (s *OpportunitySource) ClampConfidence() {
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
}
