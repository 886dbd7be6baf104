package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chaos-io/visionkit/config"
	"github.com/chaos-io/visionkit/util"
)

const keyPrefix = "rembg:"

// ResultCache 按原图 MD5 缓存去背景后的 PNG
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(cfg *config.RedisConfig) *ResultCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &ResultCache{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get 未命中时返回 nil, nil
func (c *ResultCache) Get(ctx context.Context, md5 string) ([]byte, error) {
	data, err := c.client.Get(ctx, keyPrefix+md5).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	util.Logger.Debug("cache hit", zap.String("md5", md5), zap.Int("bytes", len(data)))
	return data, nil
}

func (c *ResultCache) Set(ctx context.Context, md5 string, png []byte) error {
	return c.client.Set(ctx, keyPrefix+md5, png, c.ttl).Err()
}

func (c *ResultCache) Close() error {
	return c.client.Close()
}
