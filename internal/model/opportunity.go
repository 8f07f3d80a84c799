package model

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// ViabilityCutoff overall_score 达到该值即视为可行
const ViabilityCutoff = 4.0

// SubScoreWeights 十个维度的权重，总和为 1.0
var SubScoreWeights = SubScores{
	MarketDemand:         0.15,
	PainIntensity:        0.15,
	CompetitionGap:       0.10,
	Monetization:         0.15,
	TechnicalFeasibility: 0.10,
	TimeToMarket:         0.05,
	Scalability:          0.10,
	AudienceSize:         0.10,
	Urgency:              0.05,
	Uniqueness:           0.05,
}

// SubScores 各维度得分，0-10
type SubScores struct {
	MarketDemand         float64 `gorm:"not null;default:0" json:"market_demand"`
	PainIntensity        float64 `gorm:"not null;default:0" json:"pain_intensity"`
	CompetitionGap       float64 `gorm:"not null;default:0" json:"competition_gap"`
	Monetization         float64 `gorm:"not null;default:0" json:"monetization"`
	TechnicalFeasibility float64 `gorm:"not null;default:0" json:"technical_feasibility"`
	TimeToMarket         float64 `gorm:"not null;default:0" json:"time_to_market"`
	Scalability          float64 `gorm:"not null;default:0" json:"scalability"`
	AudienceSize         float64 `gorm:"not null;default:0" json:"audience_size"`
	Urgency              float64 `gorm:"not null;default:0" json:"urgency"`
	Uniqueness           float64 `gorm:"not null;default:0" json:"uniqueness"`
}

func (s SubScores) values() [10]float64 {
	return [10]float64{
		s.MarketDemand, s.PainIntensity, s.CompetitionGap, s.Monetization, s.TechnicalFeasibility,
		s.TimeToMarket, s.Scalability, s.AudienceSize, s.Urgency, s.Uniqueness,
	}
}

// Weighted 按 SubScoreWeights 加权求和，保留两位小数
func (s SubScores) Weighted() float64 {
	v := s.values()
	w := SubScoreWeights.values()
	sum := 0.0
	for i := range v {
		sum += v[i] * w[i]
	}
	return math.Round(sum*100) / 100
}

// Opportunity AI 从 Reddit 内容中提炼出的商业机会
type Opportunity struct {
	ID                 uint64      `gorm:"primaryKey" json:"id"`
	Title              string      `gorm:"type:varchar(255);not null;index:idx_title" json:"title"`
	Description        string      `gorm:"type:text;not null" json:"description"`
	ProposedSolution   string      `gorm:"type:text;not null" json:"proposed_solution"`
	Subreddit          string      `gorm:"type:varchar(64);not null" json:"subreddit"`
	Scores             SubScores   `gorm:"embedded" json:"scores"`
	OverallScore       float64     `gorm:"not null;default:0;index:idx_overall" json:"overall_score"`
	ViabilityThreshold bool        `gorm:"not null;default:0" json:"viability_threshold"`
	BusinessType       string      `gorm:"type:varchar(64)" json:"business_type"`
	Niche              string      `gorm:"type:varchar(64);index:idx_niche" json:"niche"`
	IndustryVertical   string      `gorm:"type:varchar(64)" json:"industry_vertical"`
	Platform           string      `gorm:"type:varchar(64)" json:"platform"`
	TargetAudience     string      `gorm:"type:varchar(255)" json:"target_audience"`
	DemandSignals      StringSlice `gorm:"type:json" json:"demand_signals"`
	SourceCount        int         `gorm:"not null;default:0" json:"source_count"`
	CreatedAt          time.Time   `gorm:"index:idx_created" json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// SetScores 修改子分数时同步重算 overall_score 与 viability_threshold
func (o *Opportunity) SetScores(s SubScores) {
	o.Scores = s
	o.recompute()
}

func (o *Opportunity) recompute() {
	o.OverallScore = o.Scores.Weighted()
	o.ViabilityThreshold = o.OverallScore >= ViabilityCutoff
}

// BeforeSave 入库前保证派生字段与子分数一致
func (o *Opportunity) BeforeSave(_ *gorm.DB) error {
	o.recompute()
	return nil
}

// CanonicalText 用于生成向量的规范文本
func (o *Opportunity) CanonicalText() string {
	return o.Title + " " + o.Description + " " + o.ProposedSolution
}

// SolutionText 用于模糊去重的描述与方案文本
func (o *Opportunity) SolutionText() string {
	return o.Description + " " + o.ProposedSolution
}
