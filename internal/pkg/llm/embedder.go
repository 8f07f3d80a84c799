package llm

import (
	"Opportune/internal/api/config"
	"Opportune/internal/pkg/consts"
	"Opportune/internal/pkg/metrics"
	"Opportune/internal/pkg/redis"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	ErrEmptyText   = errors.New("embedding input is empty")
	ErrEmptyVector = errors.New("vector is empty")
)

// Embedder 文本转向量
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingModel 底层向量模型，*openai.LLM 满足该接口
type EmbeddingModel interface {
	CreateEmbedding(ctx context.Context, inputTexts []string) ([][]float32, error)
}

type EmbeddingClient struct {
	model     EmbeddingModel
	modelName string
	sem       *semaphore.Weighted
	limiter   *rate.Limiter
	timeout   time.Duration
	retries   int
	cacheTTL  time.Duration
}

// NewOpenAIEmbedder 基于 OpenAI 兼容接口创建向量客户端
func NewOpenAIEmbedder(cfg config.LLMConfig) (*EmbeddingClient, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.ApiKey),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}
	if cfg.URL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.URL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		log.Error("向量模型初始化失败", "err", err)
		return nil, err
	}
	return NewEmbeddingClient(llm, cfg), nil
}

func NewEmbeddingClient(model EmbeddingModel, cfg config.LLMConfig) *EmbeddingClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	return &EmbeddingClient{
		model:     model,
		modelName: cfg.EmbeddingModel,
		sem:       newEmbedSem(cfg.Concurrency),
		limiter:   newEmbedLimiter(cfg.RatePerSecond, cfg.Concurrency),
		timeout:   timeout,
		retries:   retries,
		cacheTTL:  time.Duration(cfg.CacheTTLHours) * time.Hour,
	}
}

// Embed 先查缓存，未命中时限流请求模型，失败按配置重试
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	key := c.cacheKey(text)
	if vec := c.loadCache(ctx, key); vec != nil {
		metrics.EmbeddingRequests.WithLabelValues("hit").Inc()
		return vec, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			metrics.EmbeddingRetries.Inc()
			log.WarnContext(ctx, "embedding retry", "attempt", attempt, "err", lastErr)
		}
		vec, err := c.fetch(ctx, text)
		if err == nil {
			metrics.EmbeddingRequests.WithLabelValues("ok").Inc()
			c.storeCache(ctx, key, vec)
			return vec, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	metrics.EmbeddingRequests.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", c.retries+1, lastErr)
}

func (c *EmbeddingClient) fetch(ctx context.Context, text string) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	vectors, err := c.model.CreateEmbedding(reqCtx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, ErrEmptyVector
	}
	return vectors[0], nil
}

func (c *EmbeddingClient) cacheKey(text string) string {
	sum := sha1.Sum([]byte(text))
	return consts.EmbeddingCacheKey + c.modelName + ":" + hex.EncodeToString(sum[:])
}

func (c *EmbeddingClient) loadCache(ctx context.Context, key string) []float32 {
	if !redis.Enabled() || c.cacheTTL <= 0 {
		return nil
	}
	raw, err := redis.GetValue(ctx, key)
	if err != nil {
		log.WarnContext(ctx, "embedding cache read failed", "err", err)
		return nil
	}
	if raw == "" {
		return nil
	}
	var vec []float32
	if err = json.Unmarshal([]byte(raw), &vec); err != nil || len(vec) == 0 {
		return nil
	}
	return vec
}

func (c *EmbeddingClient) storeCache(ctx context.Context, key string, vec []float32) {
	if !redis.Enabled() || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err = redis.SetWithExpiration(ctx, key, data, c.cacheTTL); err != nil {
		log.WarnContext(ctx, "embedding cache write failed", "err", err)
	}
}
