package service

import (
	"context"

	"streamhub.com/cmd/engagement/dal/db"
	"streamhub.com/cmd/model"
	"streamhub.com/pkg/mq"
)

// ContentStore 每种内容类型一个实现，聚合层只依赖这个接口
type ContentStore interface {
	Kind() model.Kind
	FetchByID(ctx context.Context, id int64) (*model.Content, error)
	FetchByIDs(ctx context.Context, ids []int64) (map[int64]*model.Content, error)
	ListByOwner(ctx context.Context, ownerId int64, includePrivate bool, offset, limit int) ([]*model.Content, int64, error)
	Search(ctx context.Context, query string, ownerId int64, includePrivate bool, offset, limit int) ([]*model.Content, int64, error)
	Create(ctx context.Context, c *model.Content) error
	Update(ctx context.Context, id int64, patch model.ContentPatch) error
	FlipVisibility(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	IncrementViews(ctx context.Context, id int64) error
	OwnerStats(ctx context.Context, ownerId int64) (db.OwnerStats, error)
	IDsByOwner(ctx context.Context, ownerId int64) ([]int64, error)
}

type LikeStore interface {
	CreateLike(ctx context.Context, edge *model.LikeEdge) error
	DeleteLike(ctx context.Context, userId int64, target model.Ref) (bool, error)
	IsLiked(ctx context.Context, userId int64, target model.Ref) (bool, error)
	LikedSet(ctx context.Context, userId int64, kind model.Kind, ids []int64) (map[int64]bool, error)
	CountLikes(ctx context.Context, target model.Ref) (int64, error)
	CountLikesBatch(ctx context.Context, kind model.Kind, ids []int64) (map[int64]int64, error)
	CountLikesReceived(ctx context.Context, kind model.Kind, ids []int64) (int64, error)
	CountLikesByUser(ctx context.Context, userId int64, kind model.Kind) (int64, error)
	ListLikesByUser(ctx context.Context, userId int64, kind model.Kind, offset, limit int) ([]*model.LikeEdge, error)
}

type FollowStore interface {
	CreateFollow(ctx context.Context, edge *model.FollowEdge) error
	DeleteFollow(ctx context.Context, followerId, profileId int64) (bool, error)
	IsFollowing(ctx context.Context, followerId, profileId int64) (bool, error)
	FollowingSet(ctx context.Context, followerId int64, profileIds []int64) (map[int64]bool, error)
	CountFollowers(ctx context.Context, profileId int64) (int64, error)
	CountFollowing(ctx context.Context, followerId int64) (int64, error)
	ListFollowers(ctx context.Context, profileId int64, offset, limit int) ([]int64, int64, error)
	ListFollowing(ctx context.Context, followerId int64, offset, limit int) ([]int64, int64, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, commentId int64) (*model.Comment, error)
	GetComments(ctx context.Context, ids []int64) (map[int64]*model.Comment, error)
	UpdateComment(ctx context.Context, commentId int64, content string) error
	DeleteComment(ctx context.Context, commentId int64) (bool, error)
	ListComments(ctx context.Context, target model.Ref, offset, limit int) ([]*model.Comment, int64, error)
	CountComments(ctx context.Context, target model.Ref) (int64, error)
	CountCommentsBatch(ctx context.Context, kind model.Kind, ids []int64) (map[int64]int64, error)
	PurgeTarget(ctx context.Context, target model.Ref) (int64, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userId int64) (*model.User, error)
	GetUserByName(ctx context.Context, userName string) (*model.User, error)
	GetUsers(ctx context.Context, ids []int64) (map[int64]*model.User, error)
	UpdateProfile(ctx context.Context, userId int64, fields map[string]interface{}) error
	RecordWatch(ctx context.Context, entry *model.WatchHistory) error
	ListWatchHistory(ctx context.Context, userId int64, offset, limit int) ([]*model.WatchHistory, int64, error)
}

// CountCache 计数缓存，未命中返回 false
type CountCache interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, n int64) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Locker 按 key 互斥
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// AssetStore 资源存储的删除接口
type AssetStore interface {
	DeleteByToken(ctx context.Context, token string) error
}

var (
	_ ContentStore = (*db.ClipStore)(nil)
	_ ContentStore = (*db.ImageStore)(nil)
	_ ContentStore = (*db.TextStore)(nil)
	_ LikeStore    = (*db.LikeStore)(nil)
	_ FollowStore  = (*db.FollowStore)(nil)
	_ CommentStore = (*db.CommentStore)(nil)
	_ UserStore    = (*db.UserStore)(nil)
	_ mq.Publisher = mq.NopPublisher{}
)
