package security

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginGuard tracks failed login attempts per (email, ip) in redis so
// repeated guessing gets cut off before the database is touched. When the
// redis client is nil the guard is a no-op; auth still works without it.
type LoginGuard struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func NewLoginGuard(rdb *redis.Client, limit int, window time.Duration) *LoginGuard {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}

	return &LoginGuard{rdb: rdb, limit: int64(limit), window: window}
}

func (g *LoginGuard) key(email, ip string) string {
	return fmt.Sprintf("login_fail:%s:%s", email, ip)
}

// Blocked reports whether this (email, ip) pair has exhausted its attempts.
// Redis being unreachable never blocks a login.
func (g *LoginGuard) Blocked(ctx context.Context, email, ip string) bool {
	if g == nil || g.rdb == nil {
		return false
	}

	n, err := g.rdb.Get(ctx, g.key(email, ip)).Int64()

	if err != nil {
		return false
	}

	return n >= g.limit
}

// RecordFailure bumps the failure counter, starting the window on the first
// failure in it.
func (g *LoginGuard) RecordFailure(ctx context.Context, email, ip string) {
	if g == nil || g.rdb == nil {
		return
	}

	key := g.key(email, ip)

	pipe := g.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, g.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return
	}

	_ = incr.Val()
}

// Reset clears the counter after a successful login.
func (g *LoginGuard) Reset(ctx context.Context, email, ip string) {
	if g == nil || g.rdb == nil {
		return
	}

	_ = g.rdb.Del(ctx, g.key(email, ip)).Err()
}
