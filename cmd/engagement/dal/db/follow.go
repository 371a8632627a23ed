package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
)

type FollowStore struct {
	db *gorm.DB
}

func NewFollowStore(db *gorm.DB) *FollowStore {
	return &FollowStore{db: db}
}

func (s *FollowStore) CreateFollow(ctx context.Context, edge *model.FollowEdge) error {
	err := s.db.WithContext(ctx).Create(edge).Error
	if IsDuplicateKey(err) {
		return errors.Wrapf(errno.ConflictErr, "follow %d -> %d already exists", edge.FollowerID, edge.ProfileID)
	}
	return errors.Wrap(err, "create follow failed")
}

func (s *FollowStore) DeleteFollow(ctx context.Context, followerId, profileId int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND profile_id = ?", followerId, profileId).
		Delete(&model.FollowEdge{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "delete follow failed")
	}
	return res.RowsAffected > 0, nil
}

func (s *FollowStore) IsFollowing(ctx context.Context, followerId, profileId int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.FollowEdge{}).
		Where("follower_id = ? AND profile_id = ?", followerId, profileId).
		Limit(1).Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "query follow failed")
	}
	return n > 0, nil
}

// FollowingSet 返回 profileIds 中被 followerId 关注的集合
func (s *FollowStore) FollowingSet(ctx context.Context, followerId int64, profileIds []int64) (map[int64]bool, error) {
	set := make(map[int64]bool, len(profileIds))
	if followerId == 0 || len(profileIds) == 0 {
		return set, nil
	}
	var ids []int64
	err := s.db.WithContext(ctx).Model(&model.FollowEdge{}).
		Where("follower_id = ? AND profile_id IN ?", followerId, profileIds).
		Pluck("profile_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "query following set failed")
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *FollowStore) CountFollowers(ctx context.Context, profileId int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.FollowEdge{}).Where("profile_id = ?", profileId).Count(&n).Error
	return n, errors.Wrap(err, "count followers failed")
}

func (s *FollowStore) CountFollowing(ctx context.Context, followerId int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.FollowEdge{}).Where("follower_id = ?", followerId).Count(&n).Error
	return n, errors.Wrap(err, "count following failed")
}

// ListFollowers 最近关注的在前，返回关注者 id
func (s *FollowStore) ListFollowers(ctx context.Context, profileId int64, offset, limit int) ([]int64, int64, error) {
	return s.list(ctx, "profile_id", "follower_id", profileId, offset, limit)
}

func (s *FollowStore) ListFollowing(ctx context.Context, followerId int64, offset, limit int) ([]int64, int64, error) {
	return s.list(ctx, "follower_id", "profile_id", followerId, offset, limit)
}

func (s *FollowStore) list(ctx context.Context, keyCol, valCol string, key int64, offset, limit int) ([]int64, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.FollowEdge{}).Where(keyCol+" = ?", key)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count follow list failed")
	}
	ids := make([]int64, 0, limit)
	err := s.db.WithContext(ctx).Model(&model.FollowEdge{}).Where(keyCol+" = ?", key).
		Order("created_at DESC, id DESC").Offset(offset).Limit(limit).
		Pluck(valCol, &ids).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list follow failed")
	}
	return ids, total, nil
}
