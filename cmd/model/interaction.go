package model

import "time"

// Comment 评论挂在任意内容类型上，TargetKind 与 TargetID 一起确定目标
type Comment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	UserID     int64     `gorm:"not null;index" json:"user_id,string"`
	TargetKind Kind      `gorm:"size:16;not null;index:idx_comment_target,priority:1" json:"target_kind"`
	TargetID   int64     `gorm:"not null;index:idx_comment_target,priority:2" json:"target_id,string"`
	Content    string    `gorm:"size:2000;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index:idx_comment_target,priority:3" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Comment) Target() Ref {
	return Ref{Kind: c.TargetKind, ID: c.TargetID}
}

// LikeEdge (user, target) 唯一
type LikeEdge struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false"`
	UserID     int64     `gorm:"not null;uniqueIndex:idx_like_pair,priority:1;index:idx_like_user_time,priority:1"`
	TargetKind Kind      `gorm:"size:16;not null;uniqueIndex:idx_like_pair,priority:2;index:idx_like_target,priority:1"`
	TargetID   int64     `gorm:"not null;uniqueIndex:idx_like_pair,priority:3;index:idx_like_target,priority:2"`
	CreatedAt  time.Time `gorm:"index:idx_like_user_time,priority:2"`
}

func (l *LikeEdge) Target() Ref {
	return Ref{Kind: l.TargetKind, ID: l.TargetID}
}

// FollowEdge (follower, profile) 唯一，且 follower != profile
type FollowEdge struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false"`
	FollowerID int64     `gorm:"not null;uniqueIndex:idx_follow_pair,priority:1"`
	ProfileID  int64     `gorm:"not null;uniqueIndex:idx_follow_pair,priority:2;index"`
	CreatedAt  time.Time `gorm:"index"`
}
