package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/constants"
	"streamhub.com/pkg/errno"
)

func ids(items []*Projection) []int64 {
	out := make([]int64, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestChannelFeedOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.content(t, model.KindClip, 5, 1, true, base)
	f.content(t, model.KindImage, 3, 1, true, base)
	f.content(t, model.KindText, 9, 1, true, base.Add(-time.Second))
	f.content(t, model.KindText, 7, 1, false, base.Add(time.Hour))

	page, err := f.e.Composer.ComposeChannelFeed(ctx, 1, 2, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 9}, ids(page.Items))
	assert.Equal(t, int64(3), page.Total)
	assert.Empty(t, page.Degraded)
	assert.Equal(t, []model.Kind{model.KindClip, model.KindImage, model.KindText},
		[]model.Kind{page.Items[0].Kind, page.Items[1].Kind, page.Items[2].Kind})

	t.Run("owner sees private", func(t *testing.T) {
		page, err := f.e.Composer.ComposeChannelFeed(ctx, 1, 1, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{7, 5, 3, 9}, ids(page.Items))
	})

	t.Run("pages slice the merged sequence", func(t *testing.T) {
		first, err := f.e.Composer.ComposeChannelFeed(ctx, 1, 2, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{5, 3}, ids(first.Items))
		second, err := f.e.Composer.ComposeChannelFeed(ctx, 1, 2, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{9}, ids(second.Items))
		third, err := f.e.Composer.ComposeChannelFeed(ctx, 1, 2, 3, 2)
		require.NoError(t, err)
		assert.Empty(t, third.Items)
	})

	t.Run("unknown owner", func(t *testing.T) {
		_, err := f.e.Composer.ComposeChannelFeed(ctx, 404, 2, 1, 10)
		assert.True(t, errors.Is(err, errno.NotFoundErr))
	})
}

func TestChannelFeedHugePageNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.content(t, model.KindClip, 5, 1, true, base)

	var page *Page[*Projection]
	require.NotPanics(t, func() {
		var err error
		page, err = f.e.Composer.ComposeChannelFeed(ctx, 1, 0, math.MaxInt, 10)
		require.NoError(t, err)
	})
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(1), page.Total)

	liked, err := f.e.Ledger.ToggleLike(ctx, 2, clipRef(5))
	require.NoError(t, err)
	require.True(t, liked)
	feed, err := f.e.Composer.ComposeEngagementFeed(ctx, 2, math.MaxInt, 10)
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
	assert.Equal(t, int64(1), feed.Total)

	_, err = f.e.Comments.AddComment(ctx, 2, clipRef(5), "first")
	require.NoError(t, err)
	comments, err := f.e.Comments.ListComments(ctx, clipRef(5), 2, math.MaxInt, 10)
	require.NoError(t, err)
	assert.Empty(t, comments.Items)
}

func TestChannelFeedMarksTruncatedPages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.d.ChannelLimit = 2
	f.user(t, 1, "alice")
	for i := int64(1); i <= 3; i++ {
		f.content(t, model.KindClip, i, 1, true, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := f.e.Composer.ComposeChannelFeed(ctx, 1, 0, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, ids(first.Items))
	assert.False(t, first.Truncated)

	second, err := f.e.Composer.ComposeChannelFeed(ctx, 1, 0, 2, 2)
	require.NoError(t, err)
	assert.Empty(t, second.Items)
	assert.Equal(t, int64(3), second.Total)
	assert.True(t, second.Truncated)
}

func TestChannelFeedDegradesFailedBranches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.content(t, model.KindClip, 5, 1, true, base)
	f.content(t, model.KindImage, 3, 1, true, base)
	f.content(t, model.KindText, 9, 1, true, base)

	f.d.BranchTimeout = 50 * time.Millisecond
	f.d.Contents[model.KindImage] = failingStore{ContentStore: f.d.Contents[model.KindImage], err: errors.New("connection refused")}
	f.d.Contents[model.KindText] = slowStore{ContentStore: f.d.Contents[model.KindText]}

	page, err := f.e.Composer.ComposeChannelFeed(ctx, 1, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids(page.Items))
	assert.Equal(t, []string{"image", "text"}, page.Degraded)
}

func TestChannelFeedHonoursCallerCancellation(t *testing.T) {
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.d.Contents[model.KindText] = slowStore{ContentStore: f.d.Contents[model.KindText]}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := f.e.Composer.ComposeChannelFeed(ctx, 1, 1, 1, 10)
	assert.True(t, errors.Is(err, errno.UnavailableErr))
	assert.Less(t, time.Since(start), f.d.BranchTimeout)
}

func TestEngagementFeed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.content(t, model.KindClip, 100, 1, true, base)
	f.content(t, model.KindImage, 101, 1, true, base)
	f.content(t, model.KindText, 102, 1, true, base)

	cv, err := f.e.Comments.AddComment(ctx, 1, clipRef(100), "thanks for watching")
	require.NoError(t, err)

	for _, ref := range []model.Ref{
		clipRef(100),
		{Kind: model.KindImage, ID: 101},
		{Kind: model.KindComment, ID: cv.ID},
		{Kind: model.KindText, ID: 102},
	} {
		liked, err := f.e.Ledger.ToggleLike(ctx, 2, ref)
		require.NoError(t, err)
		require.True(t, liked)
	}

	// 删除图片后对它的点赞成为孤儿，读取时跳过
	require.NoError(t, f.e.Contents.DeleteContent(ctx, 1, model.Ref{Kind: model.KindImage, ID: 101}))
	// 设为私有的文字对 bob 不再可见
	_, err = f.e.Contents.ToggleVisibility(ctx, 1, model.Ref{Kind: model.KindText, ID: 102})
	require.NoError(t, err)

	page, err := f.e.Composer.ComposeEngagementFeed(ctx, 2, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, model.KindComment, page.Items[0].Kind)
	assert.Equal(t, cv.ID, page.Items[0].Comment.ID)
	assert.True(t, page.Items[0].Comment.ViewerHasLiked)
	assert.Equal(t, model.KindClip, page.Items[1].Kind)
	assert.True(t, page.Items[1].Content.ViewerHasLiked)
	assert.Equal(t, int64(1), page.Items[1].Content.CommentCount)
	assert.Empty(t, page.Degraded)
}

func TestEngagementFeedDegradesKind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.content(t, model.KindClip, 100, 1, true, base)
	f.content(t, model.KindImage, 101, 1, true, base)
	for _, ref := range []model.Ref{clipRef(100), {Kind: model.KindImage, ID: 101}} {
		_, err := f.e.Ledger.ToggleLike(ctx, 2, ref)
		require.NoError(t, err)
	}
	f.d.Contents[model.KindImage] = failingStore{ContentStore: f.d.Contents[model.KindImage], err: errors.New("timeout")}

	page, err := f.e.Composer.ComposeEngagementFeed(ctx, 2, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, model.KindClip, page.Items[0].Kind)
	assert.Equal(t, []string{"image"}, page.Degraded)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.user(t, 1, "alice")
	f.user(t, 2, "bob")
	f.user(t, 3, "carol")
	f.content(t, model.KindClip, 100, 1, true, base)
	f.content(t, model.KindClip, 101, 1, false, base)
	f.content(t, model.KindImage, 102, 1, true, base)
	f.content(t, model.KindClip, 200, 2, true, base)

	for i := 0; i < 3; i++ {
		_, err := f.e.Aggregator.GetOne(ctx, model.KindClip, 100, 2)
		require.NoError(t, err)
	}
	for _, u := range []int64{2, 3} {
		_, err := f.e.Ledger.ToggleLike(ctx, u, clipRef(100))
		require.NoError(t, err)
		_, err = f.e.Ledger.ToggleFollow(ctx, u, 1)
		require.NoError(t, err)
	}
	_, err := f.e.Ledger.ToggleLike(ctx, 2, model.Ref{Kind: model.KindImage, ID: 102})
	require.NoError(t, err)
	_, err = f.e.Ledger.ToggleFollow(ctx, 1, 3)
	require.NoError(t, err)

	stats, err := f.e.Composer.ComposeDashboardStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, KindStats{Count: 2, Views: 3, Likes: 2}, stats.Kinds[model.KindClip])
	assert.Equal(t, KindStats{Count: 1, Likes: 1}, stats.Kinds[model.KindImage])
	assert.Equal(t, KindStats{}, stats.Kinds[model.KindText])
	assert.Equal(t, int64(3), stats.TotalItems)
	assert.Equal(t, int64(3), stats.TotalLikes)
	assert.Equal(t, int64(2), stats.Followers)
	assert.Equal(t, int64(1), stats.Following)
	assert.Empty(t, stats.Degraded)

	t.Run("failed branch is zeroed", func(t *testing.T) {
		f.d.BranchTimeout = 50 * time.Millisecond
		f.d.Contents[model.KindClip] = slowStore{ContentStore: f.d.Contents[model.KindClip]}
		f.d.Contents[model.KindImage] = failingStore{ContentStore: f.d.Contents[model.KindImage], err: errors.New("boom")}

		stats, err := f.e.Composer.ComposeDashboardStats(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, KindStats{}, stats.Kinds[model.KindClip])
		assert.Equal(t, KindStats{}, stats.Kinds[model.KindImage])
		assert.Equal(t, int64(2), stats.Followers)
		assert.Equal(t, []string{"clip", "image"}, stats.Degraded)
	})
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		name                  string
		pageNum, pageSize     int
		offset, limit, wantNo int
	}{
		{"defaults", 0, 0, 0, 10, 1},
		{"capped size", 2, 500, 100, 100, 2},
		{"huge page", math.MaxInt, 10, constants.MaxPageOffset / 10 * 10, 10, constants.MaxPageOffset/10 + 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offset, limit, num := normalizePage(tc.pageNum, tc.pageSize)
			assert.Equal(t, tc.offset, offset)
			assert.Equal(t, tc.limit, limit)
			assert.Equal(t, tc.wantNo, num)
			assert.GreaterOrEqual(t, offset, 0)
		})
	}
}
