package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nickbutler25/FPLOptimizer/internal/logger"
)

// ErrMiss is returned when a key is absent or the cache is disabled.
var ErrMiss = errors.New("cache miss")

// Cache TTLs per data class. FPL data is slow-moving between deadlines;
// optimization results are keyed by the full request and can live longer.
const (
	BootstrapTTL = 1 * time.Hour
	FixturesTTL  = 6 * time.Hour
	SquadTTL     = 15 * time.Minute
	ResultTTL    = 24 * time.Hour
)

// Cache is a thin JSON layer over Redis. A nil Redis client disables
// caching: every Get misses and every Set is a no-op, so callers never
// branch on whether Redis is configured.
type Cache struct {
	client *redis.Client
	log    *logrus.Logger
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client, log: logger.Get()}
}

// Enabled reports whether a Redis client is wired in.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func key(elements ...string) string {
	return fmt.Sprintf("fpl-optimizer:%s", strings.Join(elements, ":"))
}

// Set stores a value as JSON with a TTL. Failures are logged, not
// returned.
func (c *Cache) Set(ctx context.Context, elements []string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	k := key(elements...)
	data, err := json.Marshal(value)
	if err != nil {
		c.log.WithError(err).WithField("key", k).Error("Failed to marshal cache value")
		return
	}
	if err := c.client.Set(ctx, k, data, ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", k).Warn("Failed to set cache value")
		return
	}
	c.log.WithFields(logrus.Fields{"key": k, "ttl": ttl.String()}).Debug("Cached value")
}

// Get loads a JSON value into dest. Returns ErrMiss when absent or
// when caching is disabled.
func (c *Cache) Get(ctx context.Context, elements []string, dest interface{}) error {
	if !c.Enabled() {
		return ErrMiss
	}
	k := key(elements...)
	data, err := c.client.Get(ctx, k).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrMiss
		}
		c.log.WithError(err).WithField("key", k).Warn("Failed to get cache value")
		return ErrMiss
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		c.log.WithError(err).WithField("key", k).Error("Failed to unmarshal cache value")
		return ErrMiss
	}
	c.log.WithField("key", k).Debug("Cache hit")
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, elements ...string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, key(elements...)).Err(); err != nil {
		c.log.WithError(err).Warn("Failed to delete cache value")
	}
}

// Healthy reports whether Redis answers a ping. A disabled cache
// reports healthy.
func (c *Cache) Healthy(ctx context.Context) bool {
	if !c.Enabled() {
		return true
	}
	return c.client.Ping(ctx).Err() == nil
}
