package db

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser 用户名统一小写存储，重复时返回 errno.ConflictErr
func (s *UserStore) CreateUser(ctx context.Context, user *model.User) error {
	user.UserName = strings.ToLower(user.UserName)
	err := s.db.WithContext(ctx).Create(user).Error
	if IsDuplicateKey(err) {
		return errno.ConflictErr.WithMessagef("user name %q or email already taken", user.UserName)
	}
	return errors.Wrap(err, "create user failed")
}

func (s *UserStore) GetUser(ctx context.Context, userId int64) (*model.User, error) {
	user := &model.User{}
	err := s.db.WithContext(ctx).Where("id = ?", userId).Take(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.NotFoundErr.WithMessagef("user %d not found", userId)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get user %d failed", userId)
	}
	return user, nil
}

func (s *UserStore) GetUserByName(ctx context.Context, userName string) (*model.User, error) {
	user := &model.User{}
	err := s.db.WithContext(ctx).Where("user_name = ?", strings.ToLower(userName)).Take(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.NotFoundErr.WithMessagef("user %q not found", userName)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get user %q failed", userName)
	}
	return user, nil
}

func (s *UserStore) GetUsers(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	out := make(map[int64]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []*model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "get users failed")
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// UpdateProfile fields 的 key 为列名
func (s *UserStore) UpdateProfile(ctx context.Context, userId int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userId).Updates(fields)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update user %d failed", userId)
	}
	if res.RowsAffected == 0 {
		return errno.NotFoundErr.WithMessagef("user %d not found", userId)
	}
	return nil
}

// RecordWatch 同一视频重复观看只刷新时间，使其回到历史最前
func (s *UserStore) RecordWatch(ctx context.Context, entry *model.WatchHistory) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "clip_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watched_at"}),
	}).Create(entry).Error
	return errors.Wrap(err, "record watch history failed")
}

func (s *UserStore) ListWatchHistory(ctx context.Context, userId int64, offset, limit int) ([]*model.WatchHistory, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.WatchHistory{}).Where("user_id = ?", userId)
	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count watch history failed")
	}
	var entries []*model.WatchHistory
	err := tx.Session(&gorm.Session{}).
		Order("watched_at DESC, id DESC").Offset(offset).Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list watch history failed")
	}
	return entries, total, nil
}
