package repository

import (
	"Opportune/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SourcePost 聚类时需要的关联帖子字段
type SourcePost struct {
	OpportunityID uint64
	PostID        uint64
	Subreddit     string
	Score         int
	CreatedUtc    time.Time
}

// ClusterCandidate 聚类输入：机会及其全部关联帖子
type ClusterCandidate struct {
	Opportunity *model.Opportunity
	Sources     []SourcePost
}

type OpportunityRepo interface {
	GetByID(ctx context.Context, id uint64) (*model.Opportunity, error)
	GetByTitle(ctx context.Context, title string) (*model.Opportunity, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*model.Opportunity, error)
	CreateWithSource(ctx context.Context, opp *model.Opportunity, src *model.OpportunitySource) error
	AttachSource(ctx context.Context, src *model.OpportunitySource) (bool, error)
	ListClusterCandidates(ctx context.Context) ([]*ClusterCandidate, error)
	ListSourcesByPosts(ctx context.Context, postIDs []uint64) ([]*model.OpportunitySource, error)
	ListSourcesByOpportunities(ctx context.Context, opportunityIDs []uint64) ([]*model.OpportunitySource, error)
}

type opportunityRepoImpl struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) OpportunityRepo {
	return &opportunityRepoImpl{db: db}
}

func (r *opportunityRepoImpl) GetByID(ctx context.Context, id uint64) (*model.Opportunity, error) {
	var opp model.Opportunity
	err := r.db.WithContext(ctx).First(&opp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &opp, nil
}

func (r *opportunityRepoImpl) GetByTitle(ctx context.Context, title string) (*model.Opportunity, error) {
	var opp model.Opportunity
	err := r.db.WithContext(ctx).Where("title = ?", title).Order("id ASC").First(&opp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &opp, nil
}

func (r *opportunityRepoImpl) ListRecent(ctx context.Context, since time.Time, limit int) ([]*model.Opportunity, error) {
	opps := make([]*model.Opportunity, 0)
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(limit).
		Find(&opps).Error
	if err != nil {
		return nil, err
	}
	return opps, nil
}

// CreateWithSource 新机会与第一条来源同事务写入
func (r *opportunityRepoImpl) CreateWithSource(ctx context.Context, opp *model.Opportunity, src *model.OpportunitySource) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		opp.SourceCount = 1
		if err := tx.Create(opp).Error; err != nil {
			return err
		}
		src.OpportunityID = opp.ID
		return tx.Create(src).Error
	})
}

// AttachSource 为已有机会追加来源；关联已存在时返回 false，且不重复累加 source_count
func (r *opportunityRepoImpl) AttachSource(ctx context.Context, src *model.OpportunitySource) (bool, error) {
	attached := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(src)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		attached = true
		return tx.Model(&model.Opportunity{}).Where("id = ?", src.OpportunityID).
			UpdateColumn("source_count", gorm.Expr("source_count + ?", 1)).Error
	})
	return attached, err
}

// ListClusterCandidates 全量机会按 overall_score 降序、id 升序，附带关联帖子
func (r *opportunityRepoImpl) ListClusterCandidates(ctx context.Context) ([]*ClusterCandidate, error) {
	opps := make([]*model.Opportunity, 0)
	err := r.db.WithContext(ctx).Order("overall_score DESC, id ASC").Find(&opps).Error
	if err != nil {
		return nil, err
	}
	if len(opps) == 0 {
		return []*ClusterCandidate{}, nil
	}

	sources := make([]SourcePost, 0)
	err = clusterSourcesQuery(r.db.WithContext(ctx)).Scan(&sources).Error
	if err != nil {
		return nil, err
	}

	byOpp := make(map[uint64][]SourcePost, len(opps))
	for _, s := range sources {
		byOpp[s.OpportunityID] = append(byOpp[s.OpportunityID], s)
	}

	candidates := make([]*ClusterCandidate, 0, len(opps))
	for _, o := range opps {
		candidates = append(candidates, &ClusterCandidate{Opportunity: o, Sources: byOpp[o.ID]})
	}
	return candidates, nil
}

// clusterSourcesQuery 所有机会的关联帖子，直接 JOIN 避免超长 IN 列表
func clusterSourcesQuery(db *gorm.DB) *gorm.DB {
	return db.Table("opportunity_sources AS s").
		Select("s.opportunity_id, p.id AS post_id, p.subreddit, p.score, p.created_utc").
		Joins("JOIN opportunities AS o ON o.id = s.opportunity_id").
		Joins("JOIN reddit_posts AS p ON p.id = s.reddit_post_id").
		Order("s.opportunity_id, p.id")
}

func (r *opportunityRepoImpl) ListSourcesByPosts(ctx context.Context, postIDs []uint64) ([]*model.OpportunitySource, error) {
	sources := make([]*model.OpportunitySource, 0)
	if len(postIDs) == 0 {
		return sources, nil
	}
	err := r.db.WithContext(ctx).Where("reddit_post_id IN ?", postIDs).Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *opportunityRepoImpl) ListSourcesByOpportunities(ctx context.Context, opportunityIDs []uint64) ([]*model.OpportunitySource, error) {
	sources := make([]*model.OpportunitySource, 0)
	if len(opportunityIDs) == 0 {
		return sources, nil
	}
	err := r.db.WithContext(ctx).Where("opportunity_id IN ?", opportunityIDs).Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}
