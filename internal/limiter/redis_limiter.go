package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/evyataryagoni/iplocation/internal/logger"
	"github.com/redis/go-redis/v9"
)

// windowScript counts a request in the client's current window and returns
// the count. The key expires with the window.
var windowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter counts requests per client in fixed windows stored in Redis,
// so every server instance shares the same limits.
// Key format: ratelimit:<client>:<window number>
type RedisLimiter struct {
	client   *redis.Client
	ctx      context.Context
	requests int64
	window   time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

// NewRedisLimiter allows requests per window for each client.
// log may be nil.
func NewRedisLimiter(addr, password string, db int, requests int, window time.Duration, log *logger.Logger) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	if requests < 1 {
		requests = 1
	}
	if window < time.Millisecond {
		window = time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	return &RedisLimiter{
		client:   client,
		ctx:      ctx,
		requests: int64(requests),
		window:   window,
		logger:   log.WithComponent("RedisLimiter"),
		now:      time.Now,
	}, nil
}

// Allow counts the request in the client's current window.
// Redis errors allow the request.
func (l *RedisLimiter) Allow(client string) bool {
	n := l.now().UnixMilli() / l.window.Milliseconds()
	key := fmt.Sprintf("ratelimit:%s:%d", client, n)

	count, err := windowScript.Run(l.ctx, l.client, []string{key}, l.window.Milliseconds()).Int64()
	if err != nil {
		l.logger.Warn().Err(err).Str("client", client).Msg("Rate limiter unavailable, allowing request")
		return true
	}
	return count <= l.requests
}

// Close closes the Redis connection
func (l *RedisLimiter) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}
