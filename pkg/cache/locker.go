package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Locker 基于 redsync 的按 key 互斥锁，只串行化同一个 key 的操作
type Locker struct {
	rs     *redsync.Redsync
	expiry time.Duration
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: 5 * time.Second,
	}
}

// Lock 返回的 unlock 可以安全地多次调用
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	m := l.rs.NewMutex(key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(32),
		redsync.WithRetryDelay(25*time.Millisecond),
	)
	if err := m.LockContext(ctx); err != nil {
		return nil, errors.Wrapf(err, "lock %s failed", key)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			if _, err := m.UnlockContext(context.Background()); err != nil {
				hlog.Warnf("unlock %s failed: %v", key, err)
			}
		})
	}, nil
}
