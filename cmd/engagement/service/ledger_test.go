package service

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/mq"
)

func TestToggleLikeIsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.content(t, model.KindClip, 100, 1, true, base)

	liked, err := f.e.Ledger.ToggleLike(ctx, 2, clipRef(100))
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = f.e.Ledger.ToggleLike(ctx, 2, clipRef(100))
	require.NoError(t, err)
	assert.False(t, liked)

	has, err := f.e.Ledger.IsLiked(ctx, 2, clipRef(100))
	require.NoError(t, err)
	assert.False(t, has)
	n, err := f.e.Ledger.CountLikes(ctx, clipRef(100))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestToggleLikeConcurrentKeepsAtMostOneEdge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.content(t, model.KindImage, 200, 1, true, base)
	target := model.Ref{Kind: model.KindImage, ID: 200}

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.e.Ledger.ToggleLike(ctx, 2, target)
			if err != nil {
				assert.True(t, errors.Is(err, errno.ConflictErr), "unexpected error: %v", err)
				return
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
		}()
	}
	wg.Wait()

	count, err := f.d.Likes.CountLikes(ctx, target)
	require.NoError(t, err)
	assert.LessOrEqual(t, count, int64(1))
	// 每次成功的 toggle 恰好翻转一次状态
	assert.Equal(t, int64(succeeded%2), count)
}

func TestToggleLikeRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.content(t, model.KindClip, 100, 1, true, base)
	target := clipRef(100)

	t.Run("re-check sees the concurrent insert", func(t *testing.T) {
		likes := &racingLikes{LikeStore: f.d.Likes, insert: true, conflicts: 1}
		f.d.Likes = likes
		defer func() { f.d.Likes = likes.LikeStore }()
		retries := testutil.ToFloat64(ToggleRetryTotal.WithLabelValues("like"))

		liked, err := f.e.Ledger.ToggleLike(ctx, 2, target)
		require.NoError(t, err)
		// 第二轮删除了并发写入的边，结果是取消点赞
		assert.False(t, liked)
		assert.Equal(t, 1, likes.calls)
		assert.Equal(t, retries+1, testutil.ToFloat64(ToggleRetryTotal.WithLabelValues("like")))

		has, err := f.e.Ledger.IsLiked(ctx, 2, target)
		require.NoError(t, err)
		assert.Equal(t, liked, has)
		n, err := f.d.Likes.CountLikes(ctx, target)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("persistent conflict surfaces", func(t *testing.T) {
		likes := &racingLikes{LikeStore: f.d.Likes, conflicts: toggleAttempts}
		f.d.Likes = likes
		defer func() { f.d.Likes = likes.LikeStore }()

		_, err := f.e.Ledger.ToggleLike(ctx, 2, target)
		assert.True(t, errors.Is(err, errno.ConflictErr))
		assert.Equal(t, toggleAttempts, likes.calls)

		has, err := f.e.Ledger.IsLiked(ctx, 2, target)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("retry creates when nothing was inserted", func(t *testing.T) {
		likes := &racingLikes{LikeStore: f.d.Likes, conflicts: 1}
		f.d.Likes = likes
		defer func() { f.d.Likes = likes.LikeStore }()

		liked, err := f.e.Ledger.ToggleLike(ctx, 2, target)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, 2, likes.calls)
		n, err := f.d.Likes.CountLikes(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestToggleLikeChecksTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.content(t, model.KindText, 300, 1, false, base)
	f.content(t, model.KindClip, 301, 1, true, base)

	_, err := f.e.Ledger.ToggleLike(ctx, 2, model.Ref{Kind: "podcast", ID: 1})
	assert.True(t, errors.Is(err, errno.InvalidInputErr))

	_, err = f.e.Ledger.ToggleLike(ctx, 0, clipRef(301))
	assert.True(t, errors.Is(err, errno.InvalidInputErr))

	_, err = f.e.Ledger.ToggleLike(ctx, 2, clipRef(999))
	assert.True(t, errors.Is(err, errno.NotFoundErr))

	_, err = f.e.Ledger.ToggleLike(ctx, 2, model.Ref{Kind: model.KindText, ID: 300})
	assert.True(t, errors.Is(err, errno.ForbiddenErr))

	liked, err := f.e.Ledger.ToggleLike(ctx, 1, model.Ref{Kind: model.KindText, ID: 300})
	require.NoError(t, err)
	assert.True(t, liked)

	t.Run("comment", func(t *testing.T) {
		cv, err := f.e.Comments.AddComment(ctx, 2, clipRef(301), "nice")
		require.NoError(t, err)
		ref := model.Ref{Kind: model.KindComment, ID: cv.ID}
		liked, err := f.e.Ledger.ToggleLike(ctx, 1, ref)
		require.NoError(t, err)
		assert.True(t, liked)
		n, err := f.e.Ledger.CountLikes(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = f.e.Ledger.ToggleLike(ctx, 1, model.Ref{Kind: model.KindComment, ID: 12345})
		assert.True(t, errors.Is(err, errno.NotFoundErr))
	})
}

func TestToggleFollowRejectsSelf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")

	for _, u := range []int64{1, 999} {
		_, err := f.e.Ledger.ToggleFollow(ctx, u, u)
		assert.True(t, errors.Is(err, errno.InvalidOperation), "user %d", u)
	}
	n, err := f.e.Ledger.CountFollowers(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 403, errno.HTTPStatus(errno.InvalidOperation))
}

func TestToggleFollow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	pub := &recordingPublisher{}
	f.d.Events = pub

	following, err := f.e.Ledger.ToggleFollow(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, following)

	is, err := f.e.Ledger.IsFollowing(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, is)
	followers, err := f.e.Ledger.CountFollowers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
	followingCount, err := f.e.Ledger.CountFollowing(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followingCount)

	following, err = f.e.Ledger.ToggleFollow(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, following)

	_, err = f.e.Ledger.ToggleFollow(ctx, 2, 404)
	assert.True(t, errors.Is(err, errno.NotFoundErr))

	assert.Equal(t, []string{mq.EventFollow, mq.EventUnfollow}, pub.types())
}

func TestCountCacheIsInvalidatedByToggle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cache := newMemCache()
	f.d.Cache = cache
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.content(t, model.KindClip, 100, 1, true, base)

	n, err := f.e.Ledger.CountLikes(ctx, clipRef(100))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, cache.sets)

	_, err = f.e.Ledger.ToggleLike(ctx, 2, clipRef(100))
	require.NoError(t, err)
	n, err = f.e.Ledger.CountLikes(ctx, clipRef(100))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// 命中缓存不再写入
	_, err = f.e.Ledger.CountLikes(ctx, clipRef(100))
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}

type stubLocker struct {
	mu    sync.Mutex
	locks []string
	err   error
}

func (l *stubLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.locks = append(l.locks, key)
	return func() {}, nil
}

func TestToggleUsesLockerWhenConfigured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	locker := &stubLocker{}
	f.d.Locker = locker
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.content(t, model.KindClip, 100, 1, true, base)

	_, err := f.e.Ledger.ToggleLike(ctx, 2, clipRef(100))
	require.NoError(t, err)
	assert.Equal(t, []string{"lock:like:2:clip:100"}, locker.locks)

	// 锁不可用时仍然依靠唯一索引完成操作
	locker.err = errors.New("redis down")
	liked, err := f.e.Ledger.ToggleLike(ctx, 2, clipRef(100))
	require.NoError(t, err)
	assert.False(t, liked)
}
