package service

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/sync/errgroup"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/validator"
)

// Aggregator 只读：把内容与所有者、点赞、评论和访问者相关的标记拼成 Projection
type Aggregator struct {
	d       *Deps
	history func(ctx context.Context, viewer, clipId int64) error
}

func NewAggregator(d *Deps) *Aggregator {
	d.fill()
	return &Aggregator{d: d}
}

// kindJoin 单一类型的批量查询结果，每个字段只由一个 goroutine 写入
type kindJoin struct {
	likes    map[int64]int64
	comments map[int64]int64
	liked    map[int64]bool
}

// enrich 批量补齐所有者、计数和访问者标记，items 可以混合多种类型，输出顺序与输入一致
func (a *Aggregator) enrich(ctx context.Context, items []*model.Content, viewer int64) ([]*Projection, error) {
	out := make([]*Projection, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	idsByKind := make(map[model.Kind][]int64)
	ownerSeen := make(map[int64]struct{})
	ownerIds := make([]int64, 0)
	for _, c := range items {
		idsByKind[c.Kind] = append(idsByKind[c.Kind], c.ID)
		if _, ok := ownerSeen[c.OwnerID]; !ok {
			ownerSeen[c.OwnerID] = struct{}{}
			ownerIds = append(ownerIds, c.OwnerID)
		}
	}

	var (
		owners  map[int64]*model.User
		follows map[int64]bool
		joins   = make(map[model.Kind]*kindJoin, len(idsByKind))
	)
	for kind := range idsByKind {
		joins[kind] = &kindJoin{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		owners, err = a.d.Users.GetUsers(gctx, ownerIds)
		return err
	})
	g.Go(func() (err error) {
		follows, err = a.d.Follows.FollowingSet(gctx, viewer, ownerIds)
		return err
	})
	for kind, ids := range idsByKind {
		kind, ids, j := kind, ids, joins[kind]
		g.Go(func() (err error) {
			j.likes, err = a.d.Likes.CountLikesBatch(gctx, kind, ids)
			return err
		})
		g.Go(func() (err error) {
			j.comments, err = a.d.Comments.CountCommentsBatch(gctx, kind, ids)
			return err
		})
		g.Go(func() (err error) {
			j.liked, err = a.d.Likes.LikedSet(gctx, viewer, kind, ids)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeErr(err)
	}

	for _, c := range items {
		p := newProjection(c)
		if u, ok := owners[c.OwnerID]; ok {
			p.Owner = u.Summary()
		}
		j := joins[c.Kind]
		p.LikeCount = j.likes[c.ID]
		p.CommentCount = j.comments[c.ID]
		p.ViewerHasLiked = j.liked[c.ID]
		p.ViewerFollowsOwner = viewer != c.OwnerID && follows[c.OwnerID]
		out = append(out, p)
	}
	return out, nil
}

// GetOne 私有内容只有所有者可见；视频每次成功读取播放量加一，计数失败不影响读取
func (a *Aggregator) GetOne(ctx context.Context, kind model.Kind, id, viewer int64) (*Projection, error) {
	defer observe("get_one", time.Now())
	ref := model.Ref{Kind: kind, ID: id}
	if err := validator.CheckRef(ref, false); err != nil {
		return nil, err
	}
	c, err := a.d.fetchVisible(ctx, ref, viewer)
	if err != nil {
		return nil, err
	}
	projections, err := a.enrich(ctx, []*model.Content{c}, viewer)
	if err != nil {
		return nil, err
	}
	p := projections[0]
	if kind == model.KindClip {
		a.recordView(ctx, c, viewer, p)
	}
	return p, nil
}

func (a *Aggregator) recordView(ctx context.Context, c *model.Content, viewer int64, p *Projection) {
	store, _ := a.d.store(c.Kind)
	if err := store.IncrementViews(ctx, c.ID); err != nil {
		hlog.CtxWarnf(ctx, "increment views of clip %d failed: %v", c.ID, err)
	} else {
		p.Views++
	}
	if viewer == 0 || a.history == nil {
		return
	}
	if err := a.history(ctx, viewer, c.ID); err != nil {
		hlog.CtxWarnf(ctx, "record watch history of user %d failed: %v", viewer, err)
	}
}

// ListByOwner 访问者不是所有者时只返回公开内容
func (a *Aggregator) ListByOwner(ctx context.Context, kind model.Kind, ownerId, viewer int64, pageNum, pageSize int) (*Page[*Projection], error) {
	defer observe("list_by_owner", time.Now())
	if err := validator.CheckID(ownerId, "user_id"); err != nil {
		return nil, err
	}
	store, err := a.d.store(kind)
	if err != nil {
		return nil, err
	}
	offset, limit, num := normalizePage(pageNum, pageSize)
	items, total, err := a.listByOwner(ctx, store, ownerId, viewer, offset, limit)
	if err != nil {
		return nil, err
	}
	return &Page[*Projection]{Items: items, Total: total, PageNum: num, PageSize: limit}, nil
}

func (a *Aggregator) listByOwner(ctx context.Context, store ContentStore, ownerId, viewer int64, offset, limit int) ([]*Projection, int64, error) {
	includePrivate := viewer != 0 && viewer == ownerId
	contents, total, err := store.ListByOwner(ctx, ownerId, includePrivate, offset, limit)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	items, err := a.enrich(ctx, contents, viewer)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Search ownerId 为 0 时搜索全站公开内容；只有访问者搜索自己的内容时包含私有内容
func (a *Aggregator) Search(ctx context.Context, kind model.Kind, query string, ownerId, viewer int64, pageNum, pageSize int) (*Page[*Projection], error) {
	defer observe("search", time.Now())
	if ownerId < 0 {
		return nil, validator.CheckID(ownerId, "owner")
	}
	store, err := a.d.store(kind)
	if err != nil {
		return nil, err
	}
	offset, limit, num := normalizePage(pageNum, pageSize)
	includePrivate := ownerId != 0 && ownerId == viewer
	contents, total, err := store.Search(ctx, query, ownerId, includePrivate, offset, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	items, err := a.enrich(ctx, contents, viewer)
	if err != nil {
		return nil, err
	}
	return &Page[*Projection]{Items: items, Total: total, PageNum: num, PageSize: limit}, nil
}

// resolveVisible 批量取出内容并过滤掉已删除或访问者不可见的项，保持 ids 的顺序
func (a *Aggregator) resolveVisible(ctx context.Context, kind model.Kind, ids []int64, viewer int64) ([]*model.Content, error) {
	store, err := a.d.store(kind)
	if err != nil {
		return nil, err
	}
	found, err := store.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]*model.Content, 0, len(found))
	for _, id := range ids {
		if c, ok := found[id]; ok && c.VisibleTo(viewer) {
			out = append(out, c)
		}
	}
	return out, nil
}

// collect 把各分支的降级信息汇总，多个 goroutine 并发追加
type collect struct {
	mu       sync.Mutex
	degraded []string
}

func (c *collect) add(name string) {
	c.mu.Lock()
	c.degraded = append(c.degraded, name)
	c.mu.Unlock()
}
