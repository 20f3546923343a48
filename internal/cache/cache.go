// Package cache memoizes calculation results in Redis. A Cache without a
// client is valid and never hits.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/construction-forecast/internal/calculator"
	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/datetime"
	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPrefix namespaces every key written by the cache.
const KeyPrefix = "construction-forecast:calc:"

// Config holds the Redis connection settings.
type Config struct {
	Address    string `yaml:"address,omitempty"`
	Password   string `yaml:"password,omitempty"`
	DB         int    `yaml:"db,omitempty"`
	TTLSeconds int    `yaml:"ttlSeconds,omitempty"`
}

// TTL returns the configured expiry, or the default when unset.
func (c Config) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return constants.DefaultCacheTTLSeconds * time.Second
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// NewClient returns a Redis client for cfg, or nil when no address is set.
func NewClient(cfg Config) *redis.Client {
	if cfg.Address == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// Cache stores results keyed by a digest of the calculation request.
type Cache struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
	logger    *zap.Logger
}

// New returns a cache over client. namespace separates results computed
// against different reference tables.
func New(client *redis.Client, ttl time.Duration, namespace string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, ttl: ttl, namespace: namespace, logger: logger}
}

// Enabled reports whether the cache is backed by Redis.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

type keyMaterial struct {
	Namespace string           `json:"namespace"`
	Inputs    project.Inputs   `json:"inputs"`
	Overrides params.Overrides `json:"overrides"`
	AsOf      string           `json:"asOf,omitempty"`
}

// Key derives the cache key of one request. asOf only matters when the
// inputs carry no start date, since the default start is the current day.
func (c *Cache) Key(in project.Inputs, overrides params.Overrides, asOf time.Time) (string, error) {
	material := keyMaterial{Inputs: in, Overrides: overrides}
	if c != nil {
		material.Namespace = c.namespace
	}
	if in.StartDate == nil {
		material.AsOf = datetime.StartOfDay(asOf).Format(constants.DateLayout)
	}
	data, err := json.Marshal(material)
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return KeyPrefix + hex.EncodeToString(sum[:]), nil
}

// Get returns the cached results for key. A miss is not an error.
func (c *Cache) Get(ctx context.Context, key string) (*calculator.Results, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached results: %w", err)
	}

	var results calculator.Results
	if err := json.Unmarshal(data, &results); err != nil {
		c.logger.Warn("discarding undecodable cache entry",
			zap.String("op", "cache.Get"),
			zap.String("key", key),
			zap.Error(err),
		)
		c.client.Del(ctx, key)
		return nil, false, nil
	}
	return &results, true, nil
}

// Set stores results under key for the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, results calculator.Results) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cached results: %w", err)
	}
	return nil
}

// Ping tests the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
