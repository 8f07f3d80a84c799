package config

// Config 配置主体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	DB         DBConfig         `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Logstash   LogstashConfig   `mapstructure:"logstash"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Similarity SimilarityConfig `mapstructure:"similarity"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Cron       CronConfig       `mapstructure:"cron"`
	Reddit     RedditConfig     `mapstructure:"reddit"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LogstashConfig 远程日志
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// LLMConfig 向量模型配置
type LLMConfig struct {
	URL            string  `mapstructure:"url"`
	ApiKey         string  `mapstructure:"api_key"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	Retries        int     `mapstructure:"retries"`
	Concurrency    int     `mapstructure:"concurrency"`
	RatePerSecond  float64 `mapstructure:"rate_per_second"`
	CacheTTLHours  int     `mapstructure:"cache_ttl_hours"`
}

// SimilarityConfig 去重与聚类阈值，各用途独立可调
type SimilarityConfig struct {
	PostDedupThreshold        float64 `mapstructure:"post_dedup_threshold"`
	OpportunityDedupThreshold float64 `mapstructure:"opportunity_dedup_threshold"`
	ClusterThreshold          float64 `mapstructure:"cluster_threshold"`
	SignalClusterThreshold    float64 `mapstructure:"signal_cluster_threshold"`
	PostWindowDays            int     `mapstructure:"post_window_days"`
	OpportunityWindowDays     int     `mapstructure:"opportunity_window_days"`
	CandidateLimit            int     `mapstructure:"candidate_limit"`
	MinClusterSize            int     `mapstructure:"min_cluster_size"`
	TopRequestedMinSources    int     `mapstructure:"top_requested_min_sources"`
	HighViabilityScore        float64 `mapstructure:"high_viability_score"`
}

// ScoringConfig 评分权重与归一化常量
type ScoringConfig struct {
	RecencyWeight    float64 `mapstructure:"recency_weight"`
	VelocityWeight   float64 `mapstructure:"velocity_weight"`
	DiversityWeight  float64 `mapstructure:"diversity_weight"`
	VolumeWeight     float64 `mapstructure:"volume_weight"`
	OccurrenceWeight float64 `mapstructure:"occurrence_weight"`
	MarketDivWeight  float64 `mapstructure:"market_diversity_weight"`
	MarketRecWeight  float64 `mapstructure:"market_recency_weight"`
	VelocityNorm     float64 `mapstructure:"velocity_norm"`
	DiversityNorm    float64 `mapstructure:"diversity_norm"`
	VolumeNorm       float64 `mapstructure:"volume_norm"`
	OccurrenceNorm   float64 `mapstructure:"occurrence_norm"`
}

// CronConfig 定时任务表达式
type CronConfig struct {
	ClusterSpec string `mapstructure:"cluster_spec"`
	CleanupSpec string `mapstructure:"cleanup_spec"`
	ScrapeSpec  string `mapstructure:"scrape_spec"`
}

// RedditConfig Reddit 抓取配置
type RedditConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	UserAgent    string   `mapstructure:"user_agent"`
	Subreddits   []string `mapstructure:"subreddits"`
	Limit        int      `mapstructure:"limit"`
}
