package service

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/gorm"

	"streamhub.com/cmd/engagement/dal/db"
	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/mq"
	"streamhub.com/pkg/utils"
)

// Deps 各服务共享的存储与外部协作方，Cache/Locker/Assets 可以为 nil
type Deps struct {
	Contents map[model.Kind]ContentStore
	Likes    LikeStore
	Follows  FollowStore
	Comments CommentStore
	Users    UserStore

	Cache  CountCache
	Locker Locker
	Events mq.Publisher
	Assets AssetStore

	// 组合查询中单个分支的超时
	BranchTimeout time.Duration
	// 频道流每种类型最多取多少条参与合并
	ChannelLimit int
	IDs          func() int64
}

// NewDeps 用同一个 gorm 连接构造全部存储
func NewDeps(gdb *gorm.DB) *Deps {
	return &Deps{
		Contents: map[model.Kind]ContentStore{
			model.KindClip:  db.NewClipStore(gdb),
			model.KindImage: db.NewImageStore(gdb),
			model.KindText:  db.NewTextStore(gdb),
		},
		Likes:    db.NewLikeStore(gdb),
		Follows:  db.NewFollowStore(gdb),
		Comments: db.NewCommentStore(gdb),
		Users:    db.NewUserStore(gdb),
	}
}

func (d *Deps) fill() {
	if d.Events == nil {
		d.Events = mq.NopPublisher{}
	}
	if d.BranchTimeout <= 0 {
		d.BranchTimeout = 2 * time.Second
	}
	if d.ChannelLimit <= 0 {
		d.ChannelLimit = 200
	}
	if d.IDs == nil {
		d.IDs = utils.NextID
	}
}

// publish 事件在写操作提交之后发出，失败只记日志
func (d *Deps) publish(ctx context.Context, typ string, actor int64, target model.Ref) {
	if err := d.Events.Publish(ctx, mq.NewEvent(typ, actor, target)); err != nil {
		hlog.CtxWarnf(ctx, "publish %s event for %s failed: %v", typ, target, err)
	}
}

func (d *Deps) invalidate(ctx context.Context, keys ...string) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Invalidate(ctx, keys...); err != nil {
		hlog.CtxWarnf(ctx, "invalidate %v failed: %v", keys, err)
	}
}

// cachedCount 先读缓存，缓存出错时退回到存储
func (d *Deps) cachedCount(ctx context.Context, key string, load func() (int64, error)) (int64, error) {
	if d.Cache != nil {
		n, hit, err := d.Cache.Get(ctx, key)
		if err != nil {
			hlog.CtxWarnf(ctx, "count cache get %s failed: %v", key, err)
		} else if hit {
			return n, nil
		}
	}
	n, err := load()
	if err != nil {
		return 0, storeErr(err)
	}
	if d.Cache != nil {
		if err := d.Cache.Set(ctx, key, n); err != nil {
			hlog.CtxWarnf(ctx, "count cache set %s failed: %v", key, err)
		}
	}
	return n, nil
}

func (d *Deps) store(kind model.Kind) (ContentStore, error) {
	s, ok := d.Contents[kind]
	if !ok {
		return nil, errno.InvalidInputErr.WithMessagef("unsupported content kind %q", kind)
	}
	return s, nil
}

// fetchVisible 先确认存在再判断可见性，不存在优先报 NotFound
func (d *Deps) fetchVisible(ctx context.Context, ref model.Ref, viewer int64) (*model.Content, error) {
	s, err := d.store(ref.Kind)
	if err != nil {
		return nil, err
	}
	c, err := s.FetchByID(ctx, ref.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !c.VisibleTo(viewer) {
		return nil, errno.ForbiddenErr.WithMessagef("%s %d is private", ref.Kind, ref.ID)
	}
	return c, nil
}
