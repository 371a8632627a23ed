package service

import (
	"context"
	"sort"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/opentracing/opentracing-go"
	"golang.org/x/sync/errgroup"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/validator"
)

// Composer 把多种内容的结果合并成一条按时间排序的流。
// 每个分支独立超时，失败的分支按零或省略处理，不影响其他分支。
type Composer struct {
	d      *Deps
	agg    *Aggregator
	ledger *Ledger
}

func NewComposer(d *Deps, agg *Aggregator, ledger *Ledger) *Composer {
	d.fill()
	return &Composer{d: d, agg: agg, ledger: ledger}
}

// branch 在独立的超时和 span 中执行 fn，出错时记录降级并返回 false
func (c *Composer) branch(ctx context.Context, op, name string, deg *collect, fn func(ctx context.Context) error) bool {
	span, bctx := opentracing.StartSpanFromContext(ctx, op+"."+name)
	defer span.Finish()
	bctx, cancel := context.WithTimeout(bctx, c.d.BranchTimeout)
	defer cancel()

	if err := fn(bctx); err != nil {
		span.SetTag("error", true)
		span.SetTag("degraded", true)
		hlog.CtxWarnf(ctx, "%s branch %s degraded: %v", op, name, err)
		DegradedBranchTotal.WithLabelValues(op, name).Inc()
		deg.add(name)
		return false
	}
	return true
}

// ComposeChannelFeed 并发取出所有者每种类型的内容，合并后按时间倒序分页。
// 每种类型最多取 ChannelLimit 条，超出部分不参与合并。
func (c *Composer) ComposeChannelFeed(ctx context.Context, ownerId, viewer int64, pageNum, pageSize int) (*Page[*Projection], error) {
	defer observe("channel_feed", time.Now())
	if err := validator.CheckID(ownerId, "user_id"); err != nil {
		return nil, err
	}
	if _, err := c.d.Users.GetUser(ctx, ownerId); err != nil {
		return nil, storeErr(err)
	}
	offset, limit, num := normalizePage(pageNum, pageSize)
	need := offset + limit
	if need > c.d.ChannelLimit {
		need = c.d.ChannelLimit
	}

	var (
		deg     collect
		results = make([][]*Projection, len(model.ContentKinds))
		totals  = make([]int64, len(model.ContentKinds))
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range model.ContentKinds {
		i, kind := i, kind
		g.Go(func() error {
			c.branch(gctx, "channel_feed", string(kind), &deg, func(bctx context.Context) error {
				store, err := c.d.store(kind)
				if err != nil {
					return err
				}
				items, total, err := c.agg.listByOwner(bctx, store, ownerId, viewer, 0, need)
				if err != nil {
					return err
				}
				results[i], totals[i] = items, total
				return nil
			})
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, storeErr(err)
	}

	merged := make([]*Projection, 0)
	var total int64
	for i := range results {
		merged = append(merged, results[i]...)
		total += totals[i]
	}
	sortByRecency(merged)

	page := &Page[*Projection]{Items: []*Projection{}, Total: total, PageNum: num, PageSize: limit, Degraded: sorted(deg.degraded)}
	// 每种类型只取了前 need 条，请求范围超出时标记截断
	page.Truncated = offset+limit > need && int64(len(merged)) < total
	if offset >= 0 && offset < len(merged) {
		end := offset + limit
		if end > len(merged) {
			end = len(merged)
		}
		page.Items = merged[offset:end]
	}
	return page, nil
}

// ComposeEngagementFeed subject 点过赞的内容和评论，按点赞时间倒序。
// 目标已被删除或已不可见的点赞直接跳过。
func (c *Composer) ComposeEngagementFeed(ctx context.Context, subject int64, pageNum, pageSize int) (*Page[*LikedItem], error) {
	defer observe("engagement_feed", time.Now())
	if err := validator.CheckID(subject, "user_id"); err != nil {
		return nil, err
	}
	offset, limit, num := normalizePage(pageNum, pageSize)
	edges, err := c.d.Likes.ListLikesByUser(ctx, subject, "", offset, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	total, err := c.d.Likes.CountLikesByUser(ctx, subject, "")
	if err != nil {
		return nil, storeErr(err)
	}

	idsByKind := make(map[model.Kind][]int64)
	for _, e := range edges {
		idsByKind[e.TargetKind] = append(idsByKind[e.TargetKind], e.TargetID)
	}

	var (
		deg      collect
		resolved = make(map[model.Kind]map[int64]*Projection, len(idsByKind))
		comments map[int64]*CommentView
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range model.ContentKinds {
		ids, ok := idsByKind[kind]
		if !ok {
			continue
		}
		kind, ids, slot := kind, ids, make(map[int64]*Projection, len(ids))
		resolved[kind] = slot
		g.Go(func() error {
			c.branch(gctx, "engagement_feed", string(kind), &deg, func(bctx context.Context) error {
				contents, err := c.agg.resolveVisible(bctx, kind, ids, subject)
				if err != nil {
					return err
				}
				items, err := c.agg.enrich(bctx, contents, subject)
				if err != nil {
					return err
				}
				for _, p := range items {
					slot[p.ID] = p
				}
				return nil
			})
			return nil
		})
	}
	if ids, ok := idsByKind[model.KindComment]; ok {
		g.Go(func() error {
			c.branch(gctx, "engagement_feed", string(model.KindComment), &deg, func(bctx context.Context) (err error) {
				comments, err = c.visibleComments(bctx, ids, subject)
				return err
			})
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, storeErr(err)
	}

	items := make([]*LikedItem, 0, len(edges))
	for _, e := range edges {
		item := &LikedItem{Kind: e.TargetKind, LikedAt: e.CreatedAt}
		if e.TargetKind == model.KindComment {
			if item.Comment = comments[e.TargetID]; item.Comment == nil {
				continue
			}
		} else if item.Content = resolved[e.TargetKind][e.TargetID]; item.Content == nil {
			continue
		}
		items = append(items, item)
	}
	return &Page[*LikedItem]{Items: items, Total: total, PageNum: num, PageSize: limit, Degraded: sorted(deg.degraded)}, nil
}

// visibleComments 只保留所属内容仍然存在且 viewer 可见的评论
func (c *Composer) visibleComments(ctx context.Context, ids []int64, viewer int64) (map[int64]*CommentView, error) {
	found, err := c.d.Comments.GetComments(ctx, ids)
	if err != nil {
		return nil, storeErr(err)
	}
	parents := make(map[model.Kind][]int64)
	for _, cm := range found {
		parents[cm.TargetKind] = append(parents[cm.TargetKind], cm.TargetID)
	}
	visible := make(map[model.Ref]bool)
	for kind, pids := range parents {
		contents, err := c.agg.resolveVisible(ctx, kind, pids, viewer)
		if err != nil {
			return nil, err
		}
		for _, ct := range contents {
			visible[ct.Ref()] = true
		}
	}
	kept := make([]*model.Comment, 0, len(found))
	for _, id := range ids {
		if cm, ok := found[id]; ok && visible[cm.Target()] {
			kept = append(kept, cm)
		}
	}
	views, err := joinComments(ctx, c.d, kept, viewer)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*CommentView, len(views))
	for _, v := range views {
		out[v.ID] = v
	}
	return out, nil
}

// ComposeDashboardStats 每种类型的条数、播放量和收到的点赞数，外加粉丝与关注数。
// 任一分支失败时该分支记为零。
func (c *Composer) ComposeDashboardStats(ctx context.Context, ownerId int64) (*Stats, error) {
	defer observe("dashboard_stats", time.Now())
	if err := validator.CheckID(ownerId, "user_id"); err != nil {
		return nil, err
	}

	var (
		deg                  collect
		perKind              = make([]KindStats, len(model.ContentKinds))
		followers, following int64
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range model.ContentKinds {
		i, kind := i, kind
		g.Go(func() error {
			c.branch(gctx, "dashboard", string(kind), &deg, func(bctx context.Context) error {
				store, err := c.d.store(kind)
				if err != nil {
					return err
				}
				st, err := store.OwnerStats(bctx, ownerId)
				if err != nil {
					return err
				}
				ids, err := store.IDsByOwner(bctx, ownerId)
				if err != nil {
					return err
				}
				likes, err := c.d.Likes.CountLikesReceived(bctx, kind, ids)
				if err != nil {
					return err
				}
				perKind[i] = KindStats{Count: st.Count, Views: st.Views, Likes: likes}
				return nil
			})
			return nil
		})
	}
	g.Go(func() error {
		c.branch(gctx, "dashboard", "followers", &deg, func(bctx context.Context) (err error) {
			followers, err = c.ledger.CountFollowers(bctx, ownerId)
			return err
		})
		return nil
	})
	g.Go(func() error {
		c.branch(gctx, "dashboard", "following", &deg, func(bctx context.Context) (err error) {
			following, err = c.ledger.CountFollowing(bctx, ownerId)
			return err
		})
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, storeErr(err)
	}

	stats := &Stats{
		Kinds:     make(map[model.Kind]KindStats, len(model.ContentKinds)),
		Followers: followers,
		Following: following,
		Degraded:  sorted(deg.degraded),
	}
	for i, kind := range model.ContentKinds {
		st := perKind[i]
		stats.Kinds[kind] = st
		stats.TotalItems += st.Count
		stats.TotalViews += st.Views
		stats.TotalLikes += st.Likes
	}
	return stats, nil
}

func sorted(names []string) []string {
	sort.Strings(names)
	return names
}
