package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
)

type CommentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(comment).Error, "create comment failed")
}

func (s *CommentStore) GetComment(ctx context.Context, commentId int64) (*model.Comment, error) {
	comment := &model.Comment{}
	err := s.db.WithContext(ctx).Where("id = ?", commentId).Take(comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.NotFoundErr.WithMessagef("comment %d not found", commentId)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get comment %d failed", commentId)
	}
	return comment, nil
}

func (s *CommentStore) GetComments(ctx context.Context, ids []int64) (map[int64]*model.Comment, error) {
	out := make(map[int64]*model.Comment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var comments []*model.Comment
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, errors.Wrap(err, "get comments failed")
	}
	for _, c := range comments {
		out[c.ID] = c
	}
	return out, nil
}

func (s *CommentStore) UpdateComment(ctx context.Context, commentId int64, content string) error {
	res := s.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", commentId).Update("content", content)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update comment %d failed", commentId)
	}
	if res.RowsAffected == 0 {
		return errno.NotFoundErr.WithMessagef("comment %d not found", commentId)
	}
	return nil
}

func (s *CommentStore) DeleteComment(ctx context.Context, commentId int64) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", commentId).Delete(&model.Comment{})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "delete comment %d failed", commentId)
	}
	return res.RowsAffected > 0, nil
}

// ListComments 最新评论在前
func (s *CommentStore) ListComments(ctx context.Context, target model.Ref, offset, limit int) ([]*model.Comment, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("target_kind = ? AND target_id = ?", target.Kind, target.ID)
	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count comments failed")
	}
	var comments []*model.Comment
	err := tx.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list comments failed")
	}
	return comments, total, nil
}

func (s *CommentStore) CountComments(ctx context.Context, target model.Ref) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).
		Count(&n).Error
	return n, errors.Wrap(err, "count comments failed")
}

func (s *CommentStore) CountCommentsBatch(ctx context.Context, kind model.Kind, ids []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []idCount
	err := s.db.WithContext(ctx).Model(&model.Comment{}).
		Select("target_id AS id, COUNT(*) AS count").
		Where("target_kind = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "batch count comments failed")
	}
	for _, r := range rows {
		counts[r.ID] = r.Count
	}
	return counts, nil
}

// PurgeTarget 删除某条内容下的全部评论，返回删除条数
func (s *CommentStore) PurgeTarget(ctx context.Context, target model.Ref) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).
		Delete(&model.Comment{})
	return res.RowsAffected, errors.Wrap(res.Error, "purge comments failed")
}
