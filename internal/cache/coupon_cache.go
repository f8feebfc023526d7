// Package cache keeps coupon lookups off the database hot path. The
// validate endpoint is hit on every keystroke of the coupon field, so
// reads go through Redis with a short TTL. The cache is advisory: any
// Redis failure degrades to a database read, never to a request failure,
// and redemption always re-reads the row under lock.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fundspark/checkout-service/internal/models"
)

// keyCoupon holds one serialized coupon: coupon:{CODE}
const keyCoupon = "coupon:%s"

type CouponCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCouponCache(rdb *redis.Client, ttl time.Duration) *CouponCache {
	return &CouponCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached coupon for a canonical code, or (nil, false) on
// a miss or cache error.
func (c *CouponCache) Get(ctx context.Context, code string) (*models.Coupon, bool) {
	payload, err := c.rdb.Get(ctx, fmt.Sprintf(keyCoupon, code)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("coupon cache read failed", "code", code, "error", err)
		}
		return nil, false
	}

	var coupon models.Coupon
	if err := json.Unmarshal(payload, &coupon); err != nil {
		slog.Warn("coupon cache entry corrupt, dropping", "code", code, "error", err)
		c.Invalidate(ctx, code)
		return nil, false
	}
	return &coupon, true
}

// Set stores a coupon under its canonical code.
func (c *CouponCache) Set(ctx context.Context, coupon *models.Coupon) {
	payload, err := json.Marshal(coupon)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, fmt.Sprintf(keyCoupon, coupon.Code), payload, c.ttl).Err(); err != nil {
		slog.Warn("coupon cache write failed", "code", coupon.Code, "error", err)
	}
}

// Invalidate drops a cached coupon, e.g. after its usage counter moved.
func (c *CouponCache) Invalidate(ctx context.Context, code string) {
	if err := c.rdb.Del(ctx, fmt.Sprintf(keyCoupon, code)).Err(); err != nil {
		slog.Warn("coupon cache invalidation failed", "code", code, "error", err)
	}
}
