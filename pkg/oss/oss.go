package oss

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	gobreaker "github.com/sony/gobreaker/v2"

	"streamhub.com/pkg/errno"
)

// AssetStore 上传服务签发的删除令牌格式为 "bucket/object"
type AssetStore struct {
	client  *minio.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewAssetStore(client *minio.Client) *AssetStore {
	return &AssetStore{client: client, breaker: newBreaker("minio-asset-delete")}
}

// 连续失败 5 次后熔断 30 秒
func newBreaker(name string) *gobreaker.CircuitBreaker[struct{}] {
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			hlog.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}

func ParseToken(token string) (bucket, object string, err error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "/")
	bucket, object, ok := strings.Cut(token, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", errno.InvalidInputErr.WithMessagef("malformed delete token %q", token)
	}
	return bucket, object, nil
}

// DeleteByToken 空令牌视为没有需要清理的资源
func (s *AssetStore) DeleteByToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	bucket, object, err := ParseToken(token)
	if err != nil {
		return err
	}
	return s.guard(func() error {
		return s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{})
	})
}

func (s *AssetStore) guard(fn func() error) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Wrap(errno.UnavailableErr, err.Error())
	}
	return errors.Wrap(err, "remove asset failed")
}
