package repository

import (
	"Opportune/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// dryRunDB 只生成 SQL，不建立连接
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		DSN:                       "opportune:opportune@tcp(127.0.0.1:3306)/opportune?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestClusterSourcesQuery_JoinsWithoutIDList(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return clusterSourcesQuery(tx).Scan(&[]SourcePost{})
	})

	assert.Contains(t, sql, "JOIN opportunities AS o ON o.id = s.opportunity_id")
	assert.Contains(t, sql, "JOIN reddit_posts AS p ON p.id = s.reddit_post_id")
	assert.NotContains(t, sql, " IN ")
}

func TestActiveQuery_FiltersActiveWithoutLimit(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return activeQuery(tx, "signal", "fintech").Find(&[]*model.DemandCluster{})
	})

	assert.Contains(t, sql, "active = true")
	assert.Contains(t, sql, "kind = 'signal'")
	assert.Contains(t, sql, "niche = 'fintech'")
	assert.NotContains(t, sql, "LIMIT")
}

func TestRetireQuery_OnlyOtherPassesOfKind(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return retireQuery(tx, "opportunity", "pass-2").UpdateColumn("active", false)
	})

	assert.Contains(t, sql, "UPDATE `demand_clusters` SET `active`=false")
	assert.Contains(t, sql, "kind = 'opportunity' AND active = true AND pass_id <> 'pass-2'")
}
