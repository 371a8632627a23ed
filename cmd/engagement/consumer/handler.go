package main

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"streamhub.com/pkg/constants"
	"streamhub.com/pkg/mq"
)

var eventTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: constants.ServiceName,
	Name:      "consumed_events_total",
	Help:      "Engagement events consumed, by type.",
}, []string{"type"})

type invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// cacheSync 其他实例写入后，清掉本地 redis 中对应的计数缓存
type cacheSync struct {
	cache invalidator
}

func (s *cacheSync) HandleEngagementEvent(ctx context.Context, e *mq.EngagementEvent) error {
	eventTotal.WithLabelValues(e.Type).Inc()
	keys := keysFor(e)
	hlog.CtxInfof(ctx, "event %s %s actor=%d target=%s", e.EventID, e.Type, e.ActorID, e.Target)
	if len(keys) == 0 || s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, keys...)
}

func keysFor(e *mq.EngagementEvent) []string {
	switch e.Type {
	case mq.EventLike, mq.EventUnlike:
		return []string{fmt.Sprintf(constants.LikeCountKeyTemplate, e.Target.Kind, e.Target.ID)}
	case mq.EventFollow, mq.EventUnfollow:
		return []string{
			fmt.Sprintf(constants.FollowerCountKeyTemplate, e.Target.ID),
			fmt.Sprintf(constants.FollowingCountKeyTemplate, e.ActorID),
		}
	}
	return nil
}
