package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// NewClient 连接失败只记日志，计数缓存不可用时调用方直接读库
func NewClient(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		hlog.Warnf("redis %s unreachable: %v", addr, err)
	}
	return client
}

// CountCache 点赞数/粉丝数缓存，写路径只做失效不做增减
type CountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCountCache(client *redis.Client, ttl time.Duration) *CountCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CountCache{client: client, ttl: ttl}
}

// Get 第二个返回值表示是否命中
func (c *CountCache) Get(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "get count %s failed", key)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// 脏数据当作未命中
		return 0, false, nil
	}
	return n, true, nil
}

func (c *CountCache) Set(ctx context.Context, key string, n int64) error {
	return errors.Wrapf(c.client.Set(ctx, key, n, c.ttl).Err(), "set count %s failed", key)
}

func (c *CountCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "invalidate counts failed")
}
