package service

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/constants"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/mq"
	"streamhub.com/pkg/validator"
)

// toggleAttempts 第一次冲突说明有并发的 toggle，重新检查一次即可
const toggleAttempts = 2

// Ledger 点赞边与关注边的唯一写入方
type Ledger struct {
	d *Deps
}

func NewLedger(d *Deps) *Ledger {
	d.fill()
	return &Ledger{d: d}
}

func likeCountKey(target model.Ref) string {
	return fmt.Sprintf(constants.LikeCountKeyTemplate, target.Kind, target.ID)
}

// checkLikeTarget 点赞目标必须存在且对点赞者可见；评论的可见性跟随其所属内容
func (l *Ledger) checkLikeTarget(ctx context.Context, subject int64, target model.Ref) error {
	if target.Kind != model.KindComment {
		_, err := l.d.fetchVisible(ctx, target, subject)
		return err
	}
	comment, err := l.d.Comments.GetComment(ctx, target.ID)
	if err != nil {
		return storeErr(err)
	}
	_, err = l.d.fetchVisible(ctx, comment.Target(), subject)
	if errors.Is(err, errno.NotFoundErr) {
		return errno.NotFoundErr.WithMessagef("comment %d not found", target.ID)
	}
	return err
}

// lock 分布式锁只是附加保护，拿不到锁时依旧依靠唯一索引
func (l *Ledger) lock(ctx context.Context, key string) func() {
	if l.d.Locker == nil {
		return func() {}
	}
	unlock, err := l.d.Locker.Lock(ctx, key)
	if err != nil {
		hlog.CtxWarnf(ctx, "toggle lock %s unavailable, relying on unique index: %v", key, err)
		return func() {}
	}
	return unlock
}

// toggle 先删后建：删除影响一行即为取消；否则插入，唯一索引冲突说明并发插入已经发生，重新检查一次
func toggle(ctx context.Context, edge string, remove func() (bool, error), create func() error) (bool, error) {
	for attempt := 0; attempt < toggleAttempts; attempt++ {
		removed, err := remove()
		if err != nil {
			ToggleTotal.WithLabelValues(edge, "error").Inc()
			return false, storeErr(err)
		}
		if removed {
			ToggleTotal.WithLabelValues(edge, "removed").Inc()
			return false, nil
		}
		err = create()
		if err == nil {
			ToggleTotal.WithLabelValues(edge, "created").Inc()
			return true, nil
		}
		if !errors.Is(err, errno.ConflictErr) {
			ToggleTotal.WithLabelValues(edge, "error").Inc()
			return false, storeErr(err)
		}
		ToggleRetryTotal.WithLabelValues(edge).Inc()
		hlog.CtxDebugf(ctx, "%s toggle conflict, attempt %d", edge, attempt+1)
	}
	ToggleTotal.WithLabelValues(edge, "error").Inc()
	return false, errno.ConflictErr.WithMessagef("%s toggle kept conflicting", edge)
}

// ToggleLike 返回操作之后是否处于已点赞状态
func (l *Ledger) ToggleLike(ctx context.Context, subject int64, target model.Ref) (bool, error) {
	if err := validator.CheckID(subject, "user_id"); err != nil {
		return false, err
	}
	if err := validator.CheckRef(target, true); err != nil {
		return false, err
	}
	if err := l.checkLikeTarget(ctx, subject, target); err != nil {
		return false, err
	}

	unlock := l.lock(ctx, fmt.Sprintf(constants.LikeLockKeyTemplate, subject, target.Kind, target.ID))
	defer unlock()

	liked, err := toggle(ctx, "like",
		func() (bool, error) { return l.d.Likes.DeleteLike(ctx, subject, target) },
		func() error {
			return l.d.Likes.CreateLike(ctx, &model.LikeEdge{
				ID:         l.d.IDs(),
				UserID:     subject,
				TargetKind: target.Kind,
				TargetID:   target.ID,
			})
		})
	if err != nil {
		return false, err
	}

	l.d.invalidate(ctx, likeCountKey(target))
	typ := mq.EventUnlike
	if liked {
		typ = mq.EventLike
	}
	l.d.publish(ctx, typ, subject, target)
	return liked, nil
}

// ToggleFollow 返回操作之后是否处于已关注状态；不能关注自己
func (l *Ledger) ToggleFollow(ctx context.Context, follower, profile int64) (bool, error) {
	if err := validator.CheckID(follower, "follower_id"); err != nil {
		return false, err
	}
	if err := validator.CheckID(profile, "user_id"); err != nil {
		return false, err
	}
	if follower == profile {
		return false, errno.InvalidOperation.WithMessage("cannot follow yourself")
	}
	if _, err := l.d.Users.GetUser(ctx, profile); err != nil {
		return false, storeErr(err)
	}

	unlock := l.lock(ctx, fmt.Sprintf(constants.FollowLockKeyTemplate, follower, profile))
	defer unlock()

	following, err := toggle(ctx, "follow",
		func() (bool, error) { return l.d.Follows.DeleteFollow(ctx, follower, profile) },
		func() error {
			return l.d.Follows.CreateFollow(ctx, &model.FollowEdge{
				ID:         l.d.IDs(),
				FollowerID: follower,
				ProfileID:  profile,
			})
		})
	if err != nil {
		return false, err
	}

	l.d.invalidate(ctx,
		fmt.Sprintf(constants.FollowerCountKeyTemplate, profile),
		fmt.Sprintf(constants.FollowingCountKeyTemplate, follower))
	typ := mq.EventUnfollow
	if following {
		typ = mq.EventFollow
	}
	l.d.publish(ctx, typ, follower, model.Ref{Kind: model.KindUser, ID: profile})
	return following, nil
}

func (l *Ledger) CountLikes(ctx context.Context, target model.Ref) (int64, error) {
	if err := validator.CheckRef(target, true); err != nil {
		return 0, err
	}
	return l.d.cachedCount(ctx, likeCountKey(target), func() (int64, error) {
		return l.d.Likes.CountLikes(ctx, target)
	})
}

func (l *Ledger) CountFollowers(ctx context.Context, profile int64) (int64, error) {
	if err := validator.CheckID(profile, "user_id"); err != nil {
		return 0, err
	}
	return l.d.cachedCount(ctx, fmt.Sprintf(constants.FollowerCountKeyTemplate, profile), func() (int64, error) {
		return l.d.Follows.CountFollowers(ctx, profile)
	})
}

func (l *Ledger) CountFollowing(ctx context.Context, follower int64) (int64, error) {
	if err := validator.CheckID(follower, "user_id"); err != nil {
		return 0, err
	}
	return l.d.cachedCount(ctx, fmt.Sprintf(constants.FollowingCountKeyTemplate, follower), func() (int64, error) {
		return l.d.Follows.CountFollowing(ctx, follower)
	})
}

// IsLiked 匿名访问者总是 false
func (l *Ledger) IsLiked(ctx context.Context, subject int64, target model.Ref) (bool, error) {
	if subject == 0 {
		return false, nil
	}
	if err := validator.CheckRef(target, true); err != nil {
		return false, err
	}
	liked, err := l.d.Likes.IsLiked(ctx, subject, target)
	return liked, storeErr(err)
}

func (l *Ledger) IsFollowing(ctx context.Context, follower, profile int64) (bool, error) {
	if follower == 0 || follower == profile {
		return false, nil
	}
	following, err := l.d.Follows.IsFollowing(ctx, follower, profile)
	return following, storeErr(err)
}
