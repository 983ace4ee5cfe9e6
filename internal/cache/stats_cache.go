package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/utils"
)

// StatsCache is a best-effort dashboard cache. Every method tolerates a nil
// receiver so the engine runs unchanged when Redis is not configured, and
// cache failures never propagate to the caller.
type StatsCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewStatsCache(log *logger.Logger) (*StatsCache, error) {
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSec := utils.GetEnvAsInt("STATS_CACHE_TTL_SECONDS", 30, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &StatsCache{
		log: log.With("service", "StatsCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSec) * time.Second,
	}, nil
}

func statsKey(studentID uuid.UUID) string {
	return "stats:" + studentID.String()
}

func (c *StatsCache) Get(ctx context.Context, studentID uuid.UUID) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, statsKey(studentID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Debug("Stats cache read failed", "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (c *StatsCache) Set(ctx context.Context, studentID uuid.UUID, payload []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, statsKey(studentID), payload, c.ttl).Err(); err != nil {
		c.log.Debug("Stats cache write failed", "error", err)
	}
}

func (c *StatsCache) Invalidate(ctx context.Context, studentID uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, statsKey(studentID)).Err(); err != nil {
		c.log.Debug("Stats cache invalidation failed", "error", err)
	}
}

func (c *StatsCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
