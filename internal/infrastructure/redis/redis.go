package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/screenpulse/screenpulse/internal/domain"
)

// summaryTTL is short on purpose: late pushes can backfill past dates, so a
// cached rollup must age out quickly.
const summaryTTL = 5 * time.Minute

type Cache struct {
	Client *redis.Client
}

func New(addr, pass string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr, Password: pass, DB: db,
	})
	return &Cache{Client: rdb}
}

// AllowRequest: Simple Fixed Window Rate Limit
func (c *Cache) AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error) {
	key := "ratelimit:" + ip
	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return true, nil // fail open
	}
	if count == 1 {
		_ = c.Client.Expire(ctx, key, window).Err()
	}
	return count <= int64(limit), nil
}

func summaryKey(userID uuid.UUID, date string) string {
	return "summary:daily:" + userID.String() + ":" + date
}

func (c *Cache) GetDailySummary(ctx context.Context, userID uuid.UUID, date string) (domain.DailySummary, error) {
	raw, err := c.Client.Get(ctx, summaryKey(userID, date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.DailySummary{}, domain.ErrCacheMiss
		}
		return domain.DailySummary{}, err
	}
	var s domain.DailySummary
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.DailySummary{}, domain.ErrCacheMiss
	}
	return s, nil
}

func (c *Cache) SetDailySummary(ctx context.Context, userID uuid.UUID, date string, s domain.DailySummary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, summaryKey(userID, date), raw, summaryTTL).Err()
}
