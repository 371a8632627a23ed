package model

import "time"

// Content 三种内容的统一视图，Kind 决定哪些字段有效
type Content struct {
	Kind        Kind
	ID          int64
	OwnerID     int64
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	MediaUrl    string
	DeleteToken string

	// clip
	ThumbnailUrl string
	Title        string
	Description  string
	Duration     float64
	Views        int64

	// image
	Caption string

	// text
	Body string
}

func (c *Content) Ref() Ref {
	return Ref{Kind: c.Kind, ID: c.ID}
}

// VisibleTo 私有内容只有所有者可见
func (c *Content) VisibleTo(viewer int64) bool {
	return c.IsPublic || (viewer != 0 && viewer == c.OwnerID)
}

type Clip struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:false"`
	OwnerID      int64     `gorm:"not null;index:idx_clip_owner_time,priority:1"`
	VideoUrl     string    `gorm:"size:512;not null"`
	ThumbnailUrl string    `gorm:"size:512"`
	Title        string    `gorm:"size:2200;not null"`
	Description  string    `gorm:"type:text;not null"`
	Duration     float64   `gorm:"not null"`
	Views        int64     `gorm:"not null;default:0"`
	IsPublic     bool      `gorm:"not null"`
	DeleteToken  string    `gorm:"size:512"`
	CreatedAt    time.Time `gorm:"index:idx_clip_owner_time,priority:2"`
	UpdatedAt    time.Time
}

func (c *Clip) ToContent() *Content {
	return &Content{
		Kind:         KindClip,
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		IsPublic:     c.IsPublic,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		MediaUrl:     c.VideoUrl,
		DeleteToken:  c.DeleteToken,
		ThumbnailUrl: c.ThumbnailUrl,
		Title:        c.Title,
		Description:  c.Description,
		Duration:     c.Duration,
		Views:        c.Views,
	}
}

type Image struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false"`
	OwnerID     int64     `gorm:"not null;index:idx_image_owner_time,priority:1"`
	ImageUrl    string    `gorm:"size:512;not null"`
	Caption     string    `gorm:"size:2200"`
	IsPublic    bool      `gorm:"not null"`
	DeleteToken string    `gorm:"size:512"`
	CreatedAt   time.Time `gorm:"index:idx_image_owner_time,priority:2"`
	UpdatedAt   time.Time
}

func (i *Image) ToContent() *Content {
	return &Content{
		Kind:        KindImage,
		ID:          i.ID,
		OwnerID:     i.OwnerID,
		IsPublic:    i.IsPublic,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
		MediaUrl:    i.ImageUrl,
		DeleteToken: i.DeleteToken,
		Caption:     i.Caption,
	}
}

type TextPost struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	OwnerID   int64     `gorm:"not null;index:idx_text_owner_time,priority:1"`
	Body      string    `gorm:"type:text;not null"`
	IsPublic  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"index:idx_text_owner_time,priority:2"`
	UpdatedAt time.Time
}

func (p *TextPost) ToContent() *Content {
	return &Content{
		Kind:      KindText,
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		IsPublic:  p.IsPublic,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Body:      p.Body,
	}
}

// ContentPatch 内容可修改的字段，nil 表示不修改；与内容类型不匹配的字段被忽略
type ContentPatch struct {
	Title       *string
	Description *string
	Caption     *string
	Body        *string
}
