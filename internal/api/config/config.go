package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从 ./configs 加载配置并填充到 Cfg
func LoadConfig() error {
	cfg, err := LoadConfigFrom("./configs")
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// LoadConfigFrom 从指定目录读取 config.yaml，缺省项使用默认值
func LoadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 30)

	v.SetDefault("logstash.index", "logstash-opportune")

	v.SetDefault("llm.embedding_model", "text-embedding-3-small")
	v.SetDefault("llm.timeout_seconds", 15)
	v.SetDefault("llm.retries", 1)
	v.SetDefault("llm.concurrency", 8)
	v.SetDefault("llm.rate_per_second", 10)
	v.SetDefault("llm.cache_ttl_hours", 72)

	v.SetDefault("similarity.post_dedup_threshold", 0.85)
	v.SetDefault("similarity.opportunity_dedup_threshold", 0.85)
	v.SetDefault("similarity.cluster_threshold", 0.80)
	v.SetDefault("similarity.signal_cluster_threshold", 0.80)
	v.SetDefault("similarity.post_window_days", 30)
	v.SetDefault("similarity.opportunity_window_days", 30)
	v.SetDefault("similarity.candidate_limit", 100)
	v.SetDefault("similarity.min_cluster_size", 2)
	v.SetDefault("similarity.top_requested_min_sources", 3)
	v.SetDefault("similarity.high_viability_score", 7.0)

	v.SetDefault("scoring.recency_weight", 0.3)
	v.SetDefault("scoring.velocity_weight", 0.3)
	v.SetDefault("scoring.diversity_weight", 0.2)
	v.SetDefault("scoring.volume_weight", 0.2)
	v.SetDefault("scoring.occurrence_weight", 0.4)
	v.SetDefault("scoring.market_diversity_weight", 0.3)
	v.SetDefault("scoring.market_recency_weight", 0.3)
	v.SetDefault("scoring.velocity_norm", 100)
	v.SetDefault("scoring.diversity_norm", 5)
	v.SetDefault("scoring.volume_norm", 10)
	v.SetDefault("scoring.occurrence_norm", 50)

	v.SetDefault("cron.cluster_spec", "0 */30 * * * *")
	v.SetDefault("cron.cleanup_spec", "@daily")
	v.SetDefault("cron.scrape_spec", "0 */15 * * * *")

	v.SetDefault("reddit.user_agent", "Opportune/1.0")
	v.SetDefault("reddit.limit", 100)
}
