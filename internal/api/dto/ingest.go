package dto

import "time"

// PostPayloadDTO 抓取到的帖子
type PostPayloadDTO struct {
	PostCandidateDTO
	Score       int       `json:"score"`
	Upvotes     int       `json:"upvotes" validate:"gte=0"`
	Downvotes   int       `json:"downvotes" validate:"gte=0"`
	NumComments int       `json:"num_comments" validate:"gte=0"`
	Permalink   string    `json:"permalink" validate:"max=512"`
	CreatedUtc  time.Time `json:"created_utc" validate:"required"`
}

// SubScoresDTO 十个维度得分
type SubScoresDTO struct {
	MarketDemand         float64 `json:"market_demand" validate:"gte=0,lte=10"`
	PainIntensity        float64 `json:"pain_intensity" validate:"gte=0,lte=10"`
	CompetitionGap       float64 `json:"competition_gap" validate:"gte=0,lte=10"`
	Monetization         float64 `json:"monetization" validate:"gte=0,lte=10"`
	TechnicalFeasibility float64 `json:"technical_feasibility" validate:"gte=0,lte=10"`
	TimeToMarket         float64 `json:"time_to_market" validate:"gte=0,lte=10"`
	Scalability          float64 `json:"scalability" validate:"gte=0,lte=10"`
	AudienceSize         float64 `json:"audience_size" validate:"gte=0,lte=10"`
	Urgency              float64 `json:"urgency" validate:"gte=0,lte=10"`
	Uniqueness           float64 `json:"uniqueness" validate:"gte=0,lte=10"`
}

// OpportunityDraftDTO AI 分析产出的机会草稿
type OpportunityDraftDTO struct {
	OpportunityCandidateDTO
	Subreddit        string       `json:"subreddit" validate:"max=64"`
	Scores           SubScoresDTO `json:"scores"`
	BusinessType     string       `json:"business_type" validate:"max=64"`
	Niche            string       `json:"niche" validate:"max=64"`
	IndustryVertical string       `json:"industry_vertical" validate:"max=64"`
	Platform         string       `json:"platform" validate:"max=64"`
	TargetAudience   string       `json:"target_audience" validate:"max=255"`
	DemandSignals    []string     `json:"demand_signals"`
	SourceType       string       `json:"source_type" validate:"omitempty,oneof=post comment"`
	Confidence       float64      `json:"confidence"`
}

// IngestOpportunityDTO 入库请求：草稿及其来源帖子
type IngestOpportunityDTO struct {
	PostID uint64              `json:"post_id" validate:"required"`
	Draft  OpportunityDraftDTO `json:"draft"`
}

// PostIngestResultDTO 帖子入库结果
type PostIngestResultDTO struct {
	PostID    uint64              `json:"post_id"`
	Created   bool                `json:"created"`
	Duplicate *DuplicateResultDTO `json:"duplicate,omitempty"`
}

// OpportunityIngestResultDTO 机会入库结果
type OpportunityIngestResultDTO struct {
	OpportunityID  uint64              `json:"opportunity_id"`
	Created        bool                `json:"created"`
	SourceAttached bool                `json:"source_attached"`
	Duplicate      *DuplicateResultDTO `json:"duplicate,omitempty"`
}
