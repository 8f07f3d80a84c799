package repository

import (
	"Opportune/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DemandClusterRepo interface {
	// UpsertBatch 写入一轮聚类结果，同一事务内把该 kind 下未被本轮刷新的行置为 inactive
	UpsertBatch(ctx context.Context, kind, passID string, clusters []*model.DemandCluster) error
	// ListActive 返回 kind/niche 下全部有效行，排序与截断交给调用方
	ListActive(ctx context.Context, kind, niche string) ([]*model.DemandCluster, error)
}

type demandClusterRepoImpl struct {
	db *gorm.DB
}

func NewDemandClusterRepository(db *gorm.DB) DemandClusterRepo {
	return &demandClusterRepoImpl{db: db}
}

// UpsertBatch 整批在一个事务内写入，中途失败则保留原有记录不变
func (r *demandClusterRepoImpl) UpsertBatch(ctx context.Context, kind, passID string, clusters []*model.DemandCluster) error {
	for _, c := range clusters {
		c.Kind = kind
		c.PassID = passID
		c.Active = true
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(clusters) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "kind"}, {Name: "niche"}, {Name: "signal_key"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"demand_signal",
					"description",
					"occurrence_count",
					"source_count",
					"avg_score",
					"subreddits",
					"member_ids",
					"total_engagement",
					"first_seen",
					"last_seen",
					"market_strength",
					"trending_score",
					"pass_id",
					"active",
					"updated_at",
				}),
			}).CreateInBatches(clusters, 100).Error
			if err != nil {
				return err
			}
		}
		return retireQuery(tx, kind, passID).UpdateColumn("active", false).Error
	})
}

// retireQuery 本轮之外仍处于 active 的行
func retireQuery(tx *gorm.DB, kind, passID string) *gorm.DB {
	return tx.Model(&model.DemandCluster{}).
		Where("kind = ? AND active = ? AND pass_id <> ?", kind, true, passID)
}

func (r *demandClusterRepoImpl) ListActive(ctx context.Context, kind, niche string) ([]*model.DemandCluster, error) {
	clusters := make([]*model.DemandCluster, 0)
	err := activeQuery(r.db.WithContext(ctx), kind, niche).Find(&clusters).Error
	if err != nil {
		return nil, err
	}
	return clusters, nil
}

func activeQuery(db *gorm.DB, kind, niche string) *gorm.DB {
	q := db.Model(&model.DemandCluster{}).Where("active = ?", true)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if niche != "" {
		q = q.Where("niche = ?", niche)
	}
	return q.Order("last_seen DESC, id ASC")
}
