package logger

import (
	"Opportune/internal/pkg/consts"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSlowThreshold = 100 * time.Millisecond

// RedisLoggerHook 记录 Redis 错误与慢命令，按 key 前缀标注用途
type RedisLoggerHook struct {
	slow time.Duration
}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{slow: redisSlowThreshold}
}

func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "Redis Dial Error",
				log.String("addr", addr),
				log.Duration("latency", time.Since(start)),
				log.Any("err", err),
			)
		}
		return conn, err
	}
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)

		if err != nil && ignorableRedisErr(cmd.Name(), err) {
			return err
		}
		if err == nil && elapsed <= s.slow {
			return nil
		}

		fields := append(describeCmd(cmd), log.Duration("latency", elapsed))
		if err != nil {
			log.ErrorContext(ctx, "Redis Error", append(fields, log.Any("err", err))...)
		} else {
			log.WarnContext(ctx, "Redis Slow", fields...)
		}
		return err
	}
}

func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)

		switch {
		case err != nil:
			log.ErrorContext(ctx, "Redis Pipeline Error",
				log.Int("cmd_count", len(cmds)),
				log.Duration("latency", elapsed),
				log.Any("err", err))
		case elapsed > s.slow:
			log.WarnContext(ctx, "Redis Pipeline Slow",
				log.Int("cmd_count", len(cmds)),
				log.Duration("latency", elapsed))
		}
		return err
	}
}

// ignorableRedisErr 缓存未命中与握手兼容错误不记录
func ignorableRedisErr(name string, err error) bool {
	if errors.Is(err, redis.Nil) {
		return true
	}
	return name == "client" && strings.Contains(err.Error(), "setinfo")
}

// describeCmd 只记录命令名、key 与用途；向量缓存的值只记长度
func describeCmd(cmd redis.Cmder) []any {
	name := cmd.Name()
	args := cmd.Args()
	fields := []any{log.String("command", name)}

	if name == "auth" || name == "hello" {
		return append(fields, log.String("args", "[PROTECTED]"))
	}
	if name == "eval" || name == "evalsha" {
		// 解锁脚本：eval script numkeys key value
		if len(args) > 3 {
			key := fmt.Sprint(args[3])
			return append(fields, log.String("key", key), log.String("usage", keyUsage(key)))
		}
		return fields
	}
	if len(args) < 2 {
		return fields
	}

	key := fmt.Sprint(args[1])
	fields = append(fields, log.String("key", key), log.String("usage", keyUsage(key)))
	if len(args) > 2 {
		size := 0
		for _, a := range args[2:] {
			size += len(fmt.Sprint(a))
		}
		fields = append(fields, log.Int("payload_bytes", size))
	}
	return fields
}

func keyUsage(key string) string {
	switch {
	case strings.HasPrefix(key, consts.EmbeddingCacheKey):
		return "embedding_cache"
	case key == consts.ClusterPassLock:
		return "cluster_lock"
	case key == consts.CleanupLock:
		return "cleanup_lock"
	default:
		return "other"
	}
}
