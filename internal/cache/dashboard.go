package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/andresuchdata/eximdesk/internal/config"
	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	dashboardKeyPrefix = "dashboard:status"
	dashboardTTL       = time.Minute
	unlinkBatch        = 100
	pingTimeout        = 5 * time.Second
)

// DashboardCache stores status dashboards keyed by their filter.
type DashboardCache interface {
	Get(ctx context.Context, filter *domain.DashboardFilter) (*domain.Dashboard, bool, error)
	Set(ctx context.Context, filter *domain.DashboardFilter, dashboard *domain.Dashboard) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

// NewDashboardCache connects to Redis when caching is enabled. A disabled
// cache is a no-op rather than an error.
func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("dashboard cache: redis at %s unreachable: %w", opts.Addr, err)
	}

	ttl := dashboardTTL
	if cfg.DashboardTTLSeconds > 0 {
		ttl = time.Duration(cfg.DashboardTTLSeconds) * time.Second
	}
	return &redisDashboardCache{client: client, ttl: ttl}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

// redisOptions prefers REDIS_URL and falls back to host, port and db.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("dashboard cache: bad redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func (c *redisDashboardCache) Get(ctx context.Context, filter *domain.DashboardFilter) (*domain.Dashboard, bool, error) {
	payload, err := c.client.Get(ctx, buildDashboardKey(filter)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("dashboard cache get: %w", err)
	}

	var dashboard domain.Dashboard
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil, false, fmt.Errorf("dashboard cache decode: %w", err)
	}
	return &dashboard, true, nil
}

func (c *redisDashboardCache) Set(ctx context.Context, filter *domain.DashboardFilter, dashboard *domain.Dashboard) error {
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("dashboard cache encode: %w", err)
	}
	if err := c.client.Set(ctx, buildDashboardKey(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("dashboard cache set: %w", err)
	}
	return nil
}

// InvalidateAll walks every dashboard key and unlinks them in batches.
func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, dashboardKeyPrefix+":*", unlinkBatch).Iterator()
	batch := make([]string, 0, unlinkBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("dashboard cache unlink: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == unlinkBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("dashboard cache scan: %w", err)
	}
	return flush()
}

func (n *noopDashboardCache) Get(context.Context, *domain.DashboardFilter) (*domain.Dashboard, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) Set(context.Context, *domain.DashboardFilter, *domain.Dashboard) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(context.Context) error {
	return nil
}

// buildDashboardKey hashes the filter so that importer names never leak into
// key names. An empty filter maps to the shared default key.
func buildDashboardKey(filter *domain.DashboardFilter) string {
	if filter == nil {
		return dashboardKeyPrefix + ":default"
	}
	year := strings.TrimSpace(filter.Year)
	importer := strings.ToLower(strings.TrimSpace(filter.Importer))
	if year == "" && importer == "" {
		return dashboardKeyPrefix + ":default"
	}

	sum := sha1.Sum([]byte("year=" + year + "|importer=" + importer))
	return dashboardKeyPrefix + ":" + hex.EncodeToString(sum[:])
}
