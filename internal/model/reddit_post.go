package model

import (
	"time"
)

// RedditPost 抓取到的 Reddit 帖子，reddit_id 全局唯一（uk_reddit_id 是并发去重的最终兜底）
type RedditPost struct {
	ID              uint64     `gorm:"primaryKey" json:"id"`
	RedditID        string     `gorm:"type:varchar(32);not null;uniqueIndex:uk_reddit_id" json:"reddit_id"`
	Title           string     `gorm:"type:varchar(300);not null;index:idx_title_author,priority:1" json:"title"`
	Content         *string    `gorm:"type:text" json:"content"`
	Author          string     `gorm:"type:varchar(64);not null;index:idx_title_author,priority:2" json:"author"`
	Subreddit       string     `gorm:"type:varchar(64);not null;index:idx_subreddit_created,priority:1" json:"subreddit"`
	Score           int        `gorm:"not null;default:0" json:"score"`
	Upvotes         int        `gorm:"not null;default:0" json:"upvotes"`
	Downvotes       int        `gorm:"not null;default:0" json:"downvotes"`
	NumComments     int        `gorm:"not null;default:0" json:"num_comments"`
	Permalink       string     `gorm:"type:varchar(512)" json:"permalink"`
	CreatedUtc      time.Time  `gorm:"not null" json:"created_utc"`
	ProcessingError *string    `gorm:"type:varchar(1024)" json:"processing_error,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"index:idx_subreddit_created,priority:2" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (RedditPost) TableName() string {
	return "reddit_posts"
}

// Engagement 重复抓取时允许刷新的互动计数
type Engagement struct {
	Score       int
	Upvotes     int
	Downvotes   int
	NumComments int
}

// Engagement 当前互动计数
func (p *RedditPost) Engagement() Engagement {
	return Engagement{
		Score:       p.Score,
		Upvotes:     p.Upvotes,
		Downvotes:   p.Downvotes,
		NumComments: p.NumComments,
	}
}

// Text 标题与正文拼接，用于文本相似度
func (p *RedditPost) Text() string {
	if p.Content == nil || *p.Content == "" {
		return p.Title
	}
	return p.Title + " " + *p.Content
}
