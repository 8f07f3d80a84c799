// Package scoring 聚类热度与需求强度评分，均为纯函数，读取时按当前时间重算。
package scoring

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// Weights 评分权重与归一化常量
type Weights struct {
	Recency   float64
	Velocity  float64
	Diversity float64
	Volume    float64

	Occurrence      float64
	MarketDiversity float64
	MarketRecency   float64

	VelocityNorm   float64
	DiversityNorm  float64
	VolumeNorm     float64
	OccurrenceNorm float64
}

// DefaultWeights 默认权重
func DefaultWeights() Weights {
	return Weights{
		Recency:         0.3,
		Velocity:        0.3,
		Diversity:       0.2,
		Volume:          0.2,
		Occurrence:      0.4,
		MarketDiversity: 0.3,
		MarketRecency:   0.3,
		VelocityNorm:    100,
		DiversityNorm:   5,
		VolumeNorm:      10,
		OccurrenceNorm:  50,
	}
}

// TrendingInput 机会簇的评分输入
type TrendingInput struct {
	FirstSeen       time.Time
	LastSeen        time.Time
	TotalEngagement int
	SubredditCount  int
	SourceCount     int
}

// MarketInput 需求信号簇的评分输入
type MarketInput struct {
	OccurrenceCount int
	SubredditCount  int
	LastSeen        time.Time
}

// Recency 分桶：<1 天 1.0，<7 天 0.8，<30 天 0.5，其余 0.2
func Recency(last, now time.Time) float64 {
	age := now.Sub(last)
	switch {
	case age < day:
		return 1.0
	case age < 7*day:
		return 0.8
	case age < 30*day:
		return 0.5
	default:
		return 0.2
	}
}

// Velocity 每天互动量 / VelocityNorm，不足一天按一天计
func Velocity(totalEngagement int, firstSeen, now time.Time, norm float64) float64 {
	days := now.Sub(firstSeen).Hours() / 24
	if days < 1 {
		days = 1
	}
	return ratio(float64(totalEngagement)/days, norm)
}

// Trending 热度分 [0,100]
func Trending(in TrendingInput, now time.Time, w Weights) float64 {
	score := w.Recency*Recency(in.LastSeen, now) +
		w.Velocity*Velocity(in.TotalEngagement, in.FirstSeen, now, w.VelocityNorm) +
		w.Diversity*ratio(float64(in.SubredditCount), w.DiversityNorm) +
		w.Volume*ratio(float64(in.SourceCount), w.VolumeNorm)
	return finalize(score)
}

// MarketStrength 需求强度 [0,100]
func MarketStrength(in MarketInput, now time.Time, w Weights) float64 {
	score := w.Occurrence*ratio(float64(in.OccurrenceCount), w.OccurrenceNorm) +
		w.MarketDiversity*ratio(float64(in.SubredditCount), w.DiversityNorm) +
		w.MarketRecency*Recency(in.LastSeen, now)
	return finalize(score)
}

// ratio v/norm 限制在 [0,1]
func ratio(v, norm float64) float64 {
	if norm <= 0 || math.IsNaN(v) {
		return 0
	}
	return clamp(v/norm, 0, 1)
}

func finalize(score float64) float64 {
	return math.Round(clamp(score*100, 0, 100)*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
