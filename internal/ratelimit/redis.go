package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "ratelimit:window"

// admitScript increments the key only while it is under the limit and
// starts the expiry on the first hit. Returns {allowed, count, pttl}.
var admitScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n >= tonumber(ARGV[1]) then
	return {0, n, redis.call('PTTL', KEYS[1])}
end
n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, n, redis.call('PTTL', KEYS[1])}
`)

// RedisLimiter shares fixed windows between processes through Redis.
type RedisLimiter struct {
	rdb    redis.Scripter
	prefix string
	size   time.Duration
	max    int
}

type RedisOption func(*RedisLimiter)

func WithKeyPrefix(prefix string) RedisOption {
	return func(l *RedisLimiter) { l.prefix = strings.Trim(prefix, ":") }
}

func NewRedis(rdb redis.Scripter, size time.Duration, max int, opts ...RedisOption) *RedisLimiter {
	l := &RedisLimiter{
		rdb:    rdb,
		prefix: defaultRedisPrefix,
		size:   size,
		max:    max,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLimiter) Admit(ctx context.Context, key string, now time.Time) (Decision, error) {
	res, err := admitScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key}, l.max, l.size.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis admit %q: %w", key, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("redis admit %q: unexpected reply %v", key, res)
	}

	allowed, count, pttl := res[0] == 1, int(res[1]), res[2]
	ttl := l.size
	if pttl > 0 {
		ttl = time.Duration(pttl) * time.Millisecond
	}

	dec := Decision{
		Allowed: allowed,
		Limit:   l.max,
		ResetAt: now.Add(ttl),
	}
	if allowed {
		dec.Remaining = l.max - count
	}
	return dec, nil
}
