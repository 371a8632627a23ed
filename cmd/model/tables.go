package model

import "streamhub.com/pkg/constants"

func (User) TableName() string         { return constants.UserTableName }
func (WatchHistory) TableName() string { return constants.WatchHistoryTableName }
func (Clip) TableName() string         { return constants.ClipTableName }
func (Image) TableName() string        { return constants.ImageTableName }
func (TextPost) TableName() string     { return constants.TextPostTableName }
func (Comment) TableName() string      { return constants.CommentTableName }
func (LikeEdge) TableName() string     { return constants.LikeTableName }
func (FollowEdge) TableName() string   { return constants.FollowTableName }

// AllTables 需要自动迁移的全部表
func AllTables() []interface{} {
	return []interface{}{
		&User{},
		&WatchHistory{},
		&Clip{},
		&Image{},
		&TextPost{},
		&Comment{},
		&LikeEdge{},
		&FollowEdge{},
	}
}
