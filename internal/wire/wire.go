package wire

import (
	"Opportune/internal/api"
	"Opportune/internal/api/config"
	"Opportune/internal/api/handler"
	"Opportune/internal/job"
	"Opportune/internal/pkg/cron"
	"Opportune/internal/pkg/llm"
	"Opportune/internal/pkg/reddit"
	"Opportune/internal/repository"
	"Opportune/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// clusterLockTTL 聚类分布式锁的过期时间，略长于单次任务上限
const clusterLockTTL = 25 * time.Minute

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	CronMgr *cron.Manager
}

func BuildApplication(db *gorm.DB, embedder llm.Embedder, cfg *config.Config) (*ApplicationContainer, error) {
	postRepo := repository.NewRedditPostRepository(db)
	oppRepo := repository.NewOpportunityRepository(db)
	clusterRepo := repository.NewDemandClusterRepository(db)

	dedupService := service.NewDedupService(postRepo, oppRepo, service.DedupOptionsFromConfig(cfg.Similarity))
	ingestService := service.NewIngestService(dedupService, postRepo, oppRepo)
	clusterService := service.NewLockedClusterService(
		service.NewClusterService(oppRepo, clusterRepo, embedder, service.ClusterOptionsFromConfig(cfg)),
		clusterLockTTL,
	)

	handlers := &api.HandlersGroup{
		DedupHandler:   handler.NewDedupHandler(dedupService),
		IngestHandler:  handler.NewIngestHandler(ingestService),
		ClusterHandler: handler.NewClusterHandler(clusterService),
	}

	router := api.SetupRouter(handlers, cfg.Logstash.Index)

	redditClient := reddit.NewClient(cfg.Reddit)
	cronMgr := cron.NewCronManager(
		cfg.Cron,
		job.NewClusterJob(clusterService),
		job.NewCleanupJob(dedupService),
		job.NewScrapeJob(redditClient, ingestService, cfg.Reddit.Subreddits, cfg.Reddit.Limit),
	)

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		CronMgr: cronMgr,
	}, nil
}
