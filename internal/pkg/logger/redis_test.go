package logger

import (
	"context"
	"errors"
	log "log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func attrs(fields []any) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		a := f.(log.Attr)
		out[a.Key] = a.Value.String()
	}
	return out
}

func TestDescribeCmd_EmbeddingCacheHidesVector(t *testing.T) {
	vec := `[0.125,0.25,0.5]`
	cmd := redis.NewStatusCmd(context.Background(), "set", "embedding:text-embedding-3-small:ab12", vec, "ex", 3600)

	got := attrs(describeCmd(cmd))
	assert.Equal(t, "set", got["command"])
	assert.Equal(t, "embedding:text-embedding-3-small:ab12", got["key"])
	assert.Equal(t, "embedding_cache", got["usage"])
	assert.Equal(t, "22", got["payload_bytes"])
	for _, v := range got {
		assert.NotContains(t, v, "0.125")
	}
}

func TestDescribeCmd_LockAndAuth(t *testing.T) {
	ctx := context.Background()

	unlock := attrs(describeCmd(redis.NewCmd(ctx, "eval", "return 1", 1, "lock:cluster:pass", "token")))
	assert.Equal(t, "cluster_lock", unlock["usage"])

	setnx := attrs(describeCmd(redis.NewBoolCmd(ctx, "setnx", "lock:cleanup:posts", "token")))
	assert.Equal(t, "cleanup_lock", setnx["usage"])

	auth := attrs(describeCmd(redis.NewStatusCmd(ctx, "auth", "secret")))
	assert.Equal(t, "[PROTECTED]", auth["args"])
	assert.NotContains(t, auth, "key")
}

func TestIgnorableRedisErr(t *testing.T) {
	assert.True(t, ignorableRedisErr("get", redis.Nil))
	assert.True(t, ignorableRedisErr("client", errors.New("ERR unknown subcommand 'setinfo'")))
	assert.False(t, ignorableRedisErr("set", errors.New("OOM command not allowed")))
}
