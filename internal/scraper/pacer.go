package scraper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/filmbill/filmbill/internal/config"
)

// Pacer throttles outbound requests per upstream host.  The token bucket
// lives in Redis so every process scraping the same site draws from one
// shared budget.  Upstream cinema sites are small; hammering them gets the
// scraper blocked and, worse, gets the venue's programme silently dropped.
type Pacer struct {
	cfg    config.PacingConfig
	rdb    *redis.Client
	script *redis.Script
}

// NewPacer constructs a Pacer.  A nil Redis client disables pacing
// entirely; Wait then returns immediately.
func NewPacer(cfg config.PacingConfig, rdb *redis.Client) *Pacer {
	return &Pacer{
		cfg: cfg,
		rdb: rdb,
		script: redis.NewScript(`
        local key = KEYS[1]
        local now_ms = tonumber(ARGV[1])
        local capacity = tonumber(ARGV[2])
        local refill_tokens = tonumber(ARGV[3])
        local interval_ms = tonumber(ARGV[4])
        local ttl_seconds = tonumber(ARGV[5])

        local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
        local tokens = tonumber(state[1])
        local last_refill = tonumber(state[2])

        if tokens == nil or last_refill == nil then
            tokens = capacity
            last_refill = now_ms
        end

        if interval_ms > 0 and refill_tokens > 0 then
            local elapsed = math.max(0, now_ms - last_refill)
            local intervals = math.floor(elapsed / interval_ms)
            if intervals > 0 then
                tokens = math.min(capacity, tokens + (intervals * refill_tokens))
                last_refill = last_refill + (intervals * interval_ms)
            end
        end

        local allowed = 0
        local retry_after_ms = 0
        if tokens > 0 then
            allowed = 1
            tokens = tokens - 1
        else
            local until_next = interval_ms - (now_ms - last_refill)
            if until_next < 0 then until_next = 0 end
            retry_after_ms = until_next
        end

        redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
        redis.call('EXPIRE', key, ttl_seconds)

        return { allowed, retry_after_ms }
    `),
	}
}

// Wait blocks until a token is available for the given host or the context
// is done.  Redis errors fail open: a broken limiter should slow nothing
// down, it only loses cross-process fairness.
func (p *Pacer) Wait(ctx context.Context, host string) error {
	if p == nil || p.rdb == nil || !p.cfg.Enabled {
		return nil
	}
	key := fmt.Sprintf("%s:%s", p.cfg.Prefix, host)
	for {
		args := []interface{}{
			time.Now().UnixMilli(),
			p.cfg.Capacity,
			p.cfg.RefillTokens,
			p.cfg.RefillInterval.Milliseconds(),
			int64(p.cfg.TTL / time.Second),
		}
		vals, err := p.script.Run(ctx, p.rdb, []string{key}, args...).Result()
		if err != nil {
			return nil // fail open
		}
		arr, ok := vals.([]interface{})
		if !ok || len(arr) != 2 {
			return nil
		}
		if asInt64(arr[0]) == 1 {
			return nil
		}
		retry := time.Duration(asInt64(arr[1])) * time.Millisecond
		if retry <= 0 {
			retry = p.cfg.RefillInterval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
