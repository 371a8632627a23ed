package model

import "time"

type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	UserName string `gorm:"size:64;not null;uniqueIndex:idx_user_name" json:"user_name"`
	FullName string `gorm:"size:128;not null;index" json:"full_name"`
	Email    string `gorm:"size:255;not null;uniqueIndex:idx_user_email" json:"-"`
	// 凭证由鉴权服务维护，本服务只保存不解读
	CredentialHash string    `gorm:"size:255" json:"-"`
	AvatarUrl      string    `gorm:"size:512;not null" json:"avatar_url"`
	Bio            string    `gorm:"size:600" json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OwnerSummary 对外展示的用户摘要，不含任何凭证信息
type OwnerSummary struct {
	ID        int64  `json:"id,string"`
	UserName  string `json:"user_name"`
	FullName  string `json:"full_name"`
	AvatarUrl string `json:"avatar_url"`
}

func (u *User) Summary() OwnerSummary {
	return OwnerSummary{
		ID:        u.ID,
		UserName:  u.UserName,
		FullName:  u.FullName,
		AvatarUrl: u.AvatarUrl,
	}
}

// WatchHistory 观看记录，同一用户同一视频只保留一条，WatchedAt 越新越靠前
type WatchHistory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_watch_user_clip,priority:1;index:idx_watch_user_time,priority:1"`
	ClipID    int64     `gorm:"not null;uniqueIndex:idx_watch_user_clip,priority:2"`
	WatchedAt time.Time `gorm:"not null;index:idx_watch_user_time,priority:2"`
}
