package constants

import "time"

// CPUSampleInterval 负载保护的采样周期
const CPUSampleInterval = time.Second

const (
	DefaultPageNum      = 1
	DefaultLimit        = 10
	MaxLimit            = 100
	MaxPageOffset       = 1 << 30
	CommentMaxRunes     = 500
	CaptionMaxRunes     = 2200
	TitleMaxRunes       = 2200
	DescriptionMaxRunes = 5000
	BioMaxRunes         = 150

	LikeTableName         = "like_edges"
	FollowTableName       = "follow_edges"
	CommentTableName      = "comments"
	UserTableName         = "users"
	ClipTableName         = "clips"
	ImageTableName        = "images"
	TextPostTableName     = "text_posts"
	WatchHistoryTableName = "watch_histories"

	// redis key 模板
	LikeCountKeyTemplate      = "count:like:%s:%d"
	FollowerCountKeyTemplate  = "count:follower:%d"
	FollowingCountKeyTemplate = "count:following:%d"
	LikeLockKeyTemplate       = "lock:like:%d:%s:%d"
	FollowLockKeyTemplate     = "lock:follow:%d:%d"

	ServiceName = "streamhub"
)
