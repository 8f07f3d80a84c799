package cron

import (
	"Opportune/internal/api/config"
	"Opportune/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine     *cron.Cron
	cfg        config.CronConfig
	clusterJob *job.ClusterJob
	cleanupJob *job.CleanupJob
	scrapeJob  *job.ScrapeJob
}

func NewCronManager(cfg config.CronConfig, clusterJob *job.ClusterJob, cleanupJob *job.CleanupJob, scrapeJob *job.ScrapeJob) *Manager {
	return &Manager{
		engine:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		cfg:        cfg,
		clusterJob: clusterJob,
		cleanupJob: cleanupJob,
		scrapeJob:  scrapeJob,
	}
}

// RegisterJobs 注册定时任务，表达式为空则不注册
func (s *Manager) RegisterJobs() error {
	jobs := []struct {
		name string
		spec string
		job  cron.Job
	}{
		{"cluster", s.cfg.ClusterSpec, s.clusterJob},
		{"cleanup", s.cfg.CleanupSpec, s.cleanupJob},
		{"scrape", s.cfg.ScrapeSpec, s.scrapeJob},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		if _, err := s.engine.AddJob(j.spec, j.job); err != nil {
			return err
		}
		log.Info("cron job registered", "job", j.name, "spec", j.spec)
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
