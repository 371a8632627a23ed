package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
)

type LikeStore struct {
	db *gorm.DB
}

func NewLikeStore(db *gorm.DB) *LikeStore {
	return &LikeStore{db: db}
}

// CreateLike 唯一索引冲突时返回 errno.ConflictErr
func (s *LikeStore) CreateLike(ctx context.Context, edge *model.LikeEdge) error {
	err := s.db.WithContext(ctx).Create(edge).Error
	if IsDuplicateKey(err) {
		return errors.Wrapf(errno.ConflictErr, "like %d -> %s already exists", edge.UserID, edge.Target())
	}
	return errors.Wrap(err, "create like failed")
}

// DeleteLike 返回是否真的删掉了一条边
func (s *LikeStore) DeleteLike(ctx context.Context, userId int64, target model.Ref) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userId, target.Kind, target.ID).
		Delete(&model.LikeEdge{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "delete like failed")
	}
	return res.RowsAffected > 0, nil
}

func (s *LikeStore) IsLiked(ctx context.Context, userId int64, target model.Ref) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.LikeEdge{}).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userId, target.Kind, target.ID).
		Limit(1).Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "query like failed")
	}
	return n > 0, nil
}

// LikedSet 返回 ids 中被 userId 点过赞的集合
func (s *LikeStore) LikedSet(ctx context.Context, userId int64, kind model.Kind, ids []int64) (map[int64]bool, error) {
	set := make(map[int64]bool, len(ids))
	if userId == 0 || len(ids) == 0 {
		return set, nil
	}
	var liked []int64
	err := s.db.WithContext(ctx).Model(&model.LikeEdge{}).
		Where("user_id = ? AND target_kind = ? AND target_id IN ?", userId, kind, ids).
		Pluck("target_id", &liked).Error
	if err != nil {
		return nil, errors.Wrap(err, "query liked set failed")
	}
	for _, id := range liked {
		set[id] = true
	}
	return set, nil
}

func (s *LikeStore) CountLikes(ctx context.Context, target model.Ref) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.LikeEdge{}).
		Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).
		Count(&n).Error
	return n, errors.Wrap(err, "count likes failed")
}

type idCount struct {
	ID    int64
	Count int64
}

// CountLikesBatch 未出现在结果中的 id 计数为 0
func (s *LikeStore) CountLikesBatch(ctx context.Context, kind model.Kind, ids []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []idCount
	err := s.db.WithContext(ctx).Model(&model.LikeEdge{}).
		Select("target_id AS id, COUNT(*) AS count").
		Where("target_kind = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "batch count likes failed")
	}
	for _, r := range rows {
		counts[r.ID] = r.Count
	}
	return counts, nil
}

// ListLikesByUser 按点赞时间倒序
func (s *LikeStore) ListLikesByUser(ctx context.Context, userId int64, kind model.Kind, offset, limit int) ([]*model.LikeEdge, error) {
	tx := s.db.WithContext(ctx).Where("user_id = ?", userId)
	if kind != "" {
		tx = tx.Where("target_kind = ?", kind)
	}
	var edges []*model.LikeEdge
	err := tx.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&edges).Error
	return edges, errors.Wrap(err, "list likes failed")
}

// CountLikesReceived 某用户名下内容收到的点赞总数
func (s *LikeStore) CountLikesReceived(ctx context.Context, kind model.Kind, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&model.LikeEdge{}).
		Where("target_kind = ? AND target_id IN ?", kind, ids).
		Count(&n).Error
	return n, errors.Wrap(err, "count received likes failed")
}

func (s *LikeStore) CountLikesByUser(ctx context.Context, userId int64, kind model.Kind) (int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.LikeEdge{}).Where("user_id = ?", userId)
	if kind != "" {
		tx = tx.Where("target_kind = ?", kind)
	}
	var n int64
	err := tx.Count(&n).Error
	return n, errors.Wrap(err, "count user likes failed")
}
