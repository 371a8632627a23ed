package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/mq"
)

type recordingInvalidator struct {
	keys []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, keys ...string) error {
	r.keys = append(r.keys, keys...)
	return nil
}

func TestCacheSync(t *testing.T) {
	ctx := context.Background()
	inv := &recordingInvalidator{}
	h := &cacheSync{cache: inv}

	require.NoError(t, h.HandleEngagementEvent(ctx, mq.NewEvent(mq.EventLike, 2, model.Ref{Kind: model.KindClip, ID: 7})))
	require.NoError(t, h.HandleEngagementEvent(ctx, mq.NewEvent(mq.EventFollow, 2, model.Ref{Kind: model.KindUser, ID: 1})))
	require.NoError(t, h.HandleEngagementEvent(ctx, mq.NewEvent(mq.EventCommentCreate, 2, model.Ref{Kind: model.KindComment, ID: 9})))

	assert.Equal(t, []string{"count:like:clip:7", "count:follower:1", "count:following:2"}, inv.keys)
}

func TestCacheSyncWithoutCache(t *testing.T) {
	h := &cacheSync{}
	assert.NoError(t, h.HandleEngagementEvent(context.Background(), mq.NewEvent(mq.EventUnlike, 1, model.Ref{Kind: model.KindImage, ID: 3})))
}
