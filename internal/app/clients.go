package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/menusync-backend/internal/cache/treecache"
	"github.com/yungbote/menusync-backend/internal/clients/gcp"
	"github.com/yungbote/menusync-backend/internal/clients/redis"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
	"github.com/yungbote/menusync-backend/internal/temporalx"
)

type Clients struct {
	Redis    *goredis.Client
	Bucket   gcp.ObjectReader
	Temporal temporalsdkclient.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, tcfg temporalx.Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.CacheDriver == CacheRedis {
		rdb, err := redis.NewClient(redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis client: %w", err)
		}
		out.Redis = rdb
	}

	out.Bucket = gcp.NewBucketReader(log)

	if cfg.ReconcileDriver == ReconcileTemporal && cfg.FeedEnabled() {
		if !tcfg.Enabled() {
			out.Close()
			return Clients{}, fmt.Errorf("RECONCILE_DRIVER=temporal requires TEMPORAL_ADDRESS")
		}
		tc, err := temporalx.NewClient(ctx, tcfg, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init temporal client: %w", err)
		}
		out.Temporal = tc
	}
	return out, nil
}

// treeDocument picks the cache backend for the tree document.
func (c Clients) treeDocument(cfg Config, log *logger.Logger) treecache.Document {
	if c.Redis != nil {
		return treecache.NewRedisDocument(c.Redis, cfg.CacheKey, log)
	}
	log.Warn("Using in-process tree cache; data is not shared between instances")
	return treecache.NewMemoryDocument()
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
