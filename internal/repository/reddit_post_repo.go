package repository

import (
	"Opportune/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// DuplicatePostGroup 标题与作者相同的一组帖子，按 created_at、id 升序
type DuplicatePostGroup struct {
	Title  string
	Author string
	Posts  []*model.RedditPost
}

type RedditPostRepo interface {
	GetByID(ctx context.Context, id uint64) (*model.RedditPost, error)
	GetByRedditID(ctx context.Context, redditID string) (*model.RedditPost, error)
	GetByTitleAuthor(ctx context.Context, subreddit, title, author string) (*model.RedditPost, error)
	ListRecentBySubreddit(ctx context.Context, subreddit string, since time.Time, limit int) ([]*model.RedditPost, error)
	Create(ctx context.Context, post *model.RedditPost) error
	UpdateEngagement(ctx context.Context, id uint64, e model.Engagement) error
	UpdateEngagementByRedditID(ctx context.Context, redditID string, e model.Engagement) (uint64, error)
	MarkProcessed(ctx context.Context, id uint64, processingErr *string) error
	ListDuplicateGroups(ctx context.Context) ([]*DuplicatePostGroup, error)
	DeleteCascade(ctx context.Context, postIDs []uint64, opportunityIDs []uint64) error
}

type redditPostRepoImpl struct {
	db *gorm.DB
}

func NewRedditPostRepository(db *gorm.DB) RedditPostRepo {
	return &redditPostRepoImpl{db: db}
}

func (r *redditPostRepoImpl) first(ctx context.Context, query interface{}, args ...interface{}) (*model.RedditPost, error) {
	var post model.RedditPost
	err := r.db.WithContext(ctx).Where(query, args...).Order("created_at ASC, id ASC").First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *redditPostRepoImpl) GetByID(ctx context.Context, id uint64) (*model.RedditPost, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *redditPostRepoImpl) GetByRedditID(ctx context.Context, redditID string) (*model.RedditPost, error) {
	return r.first(ctx, "reddit_id = ?", redditID)
}

func (r *redditPostRepoImpl) GetByTitleAuthor(ctx context.Context, subreddit, title, author string) (*model.RedditPost, error) {
	return r.first(ctx, "subreddit = ? AND title = ? AND author = ?", subreddit, title, author)
}

// ListRecentBySubreddit 模糊去重候选集：同版块、时间窗口内、数量受限
func (r *redditPostRepoImpl) ListRecentBySubreddit(ctx context.Context, subreddit string, since time.Time, limit int) ([]*model.RedditPost, error) {
	posts := make([]*model.RedditPost, 0)
	err := r.db.WithContext(ctx).
		Where("subreddit = ? AND created_at >= ?", subreddit, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *redditPostRepoImpl) Create(ctx context.Context, post *model.RedditPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func engagementColumns(e model.Engagement) map[string]interface{} {
	return map[string]interface{}{
		"score":        e.Score,
		"upvotes":      e.Upvotes,
		"downvotes":    e.Downvotes,
		"num_comments": e.NumComments,
	}
}

// UpdateEngagement 只刷新互动计数，不改动身份与 created_at
func (r *redditPostRepoImpl) UpdateEngagement(ctx context.Context, id uint64, e model.Engagement) error {
	return r.db.WithContext(ctx).Model(&model.RedditPost{}).Where("id = ?", id).Updates(engagementColumns(e)).Error
}

// UpdateEngagementByRedditID 插入撞上唯一索引后的回退路径
func (r *redditPostRepoImpl) UpdateEngagementByRedditID(ctx context.Context, redditID string, e model.Engagement) (uint64, error) {
	var id uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.RedditPost
		if err := tx.Select("id").Where("reddit_id = ?", redditID).First(&post).Error; err != nil {
			return err
		}
		id = post.ID
		return tx.Model(&model.RedditPost{}).Where("id = ?", post.ID).Updates(engagementColumns(e)).Error
	})
	return id, err
}

func (r *redditPostRepoImpl) MarkProcessed(ctx context.Context, id uint64, processingErr *string) error {
	updates := map[string]interface{}{
		"processing_error": processingErr,
	}
	if processingErr == nil {
		updates["processed_at"] = time.Now()
	}
	return r.db.WithContext(ctx).Model(&model.RedditPost{}).Where("id = ?", id).Updates(updates).Error
}

// ListDuplicateGroups 找出 (title, author) 重复的帖子分组
func (r *redditPostRepoImpl) ListDuplicateGroups(ctx context.Context) ([]*DuplicatePostGroup, error) {
	type key struct {
		Title  string
		Author string
	}
	keys := make([]key, 0)
	err := r.db.WithContext(ctx).Model(&model.RedditPost{}).
		Select("title, author").
		Group("title, author").
		Having("COUNT(*) > 1").
		Order("title, author").
		Scan(&keys).Error
	if err != nil {
		return nil, err
	}

	groups := make([]*DuplicatePostGroup, 0, len(keys))
	for _, k := range keys {
		posts := make([]*model.RedditPost, 0)
		err = r.db.WithContext(ctx).
			Where("title = ? AND author = ?", k.Title, k.Author).
			Order("created_at ASC, id ASC").
			Find(&posts).Error
		if err != nil {
			return nil, err
		}
		groups = append(groups, &DuplicatePostGroup{Title: k.Title, Author: k.Author, Posts: posts})
	}
	return groups, nil
}

// DeleteCascade 同一事务内删除帖子、其关联以及仅由这些帖子支撑的机会
func (r *redditPostRepoImpl) DeleteCascade(ctx context.Context, postIDs []uint64, opportunityIDs []uint64) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(opportunityIDs) > 0 {
			if err := tx.Where("opportunity_id IN ?", opportunityIDs).Delete(&model.OpportunitySource{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", opportunityIDs).Delete(&model.Opportunity{}).Error; err != nil {
				return err
			}
		}

		// 被删帖子曾支撑的其他机会，来源数同步减少
		type affected struct {
			OpportunityID uint64
			Cnt           int
		}
		rows := make([]affected, 0)
		err := tx.Model(&model.OpportunitySource{}).
			Select("opportunity_id, COUNT(*) AS cnt").
			Where("reddit_post_id IN ?", postIDs).
			Group("opportunity_id").
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, a := range rows {
			err = tx.Model(&model.Opportunity{}).Where("id = ?", a.OpportunityID).
				UpdateColumn("source_count", gorm.Expr("GREATEST(source_count - ?, 0)", a.Cnt)).Error
			if err != nil {
				return err
			}
		}

		if err = tx.Where("reddit_post_id IN ?", postIDs).Delete(&model.OpportunitySource{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", postIDs).Delete(&model.RedditPost{}).Error
	})
}
