package service

import (
	"sort"
	"time"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/constants"
)

// Projection 内容对外展示的视图，不包含删除令牌和任何凭证
type Projection struct {
	Kind      model.Kind         `json:"kind"`
	ID        int64              `json:"id,string"`
	Owner     model.OwnerSummary `json:"owner"`
	IsPublic  bool               `json:"is_public"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`

	MediaUrl     string  `json:"media_url,omitempty"`
	ThumbnailUrl string  `json:"thumbnail_url,omitempty"`
	Title        string  `json:"title,omitempty"`
	Description  string  `json:"description,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	Views        int64   `json:"views,omitempty"`
	Caption      string  `json:"caption,omitempty"`
	Body         string  `json:"body,omitempty"`

	LikeCount          int64 `json:"like_count"`
	CommentCount       int64 `json:"comment_count"`
	ViewerHasLiked     bool  `json:"viewer_has_liked"`
	ViewerFollowsOwner bool  `json:"viewer_follows_owner"`
}

func (p *Projection) Ref() model.Ref {
	return model.Ref{Kind: p.Kind, ID: p.ID}
}

func newProjection(c *model.Content) *Projection {
	return &Projection{
		Kind:         c.Kind,
		ID:           c.ID,
		Owner:        model.OwnerSummary{ID: c.OwnerID},
		IsPublic:     c.IsPublic,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		MediaUrl:     c.MediaUrl,
		ThumbnailUrl: c.ThumbnailUrl,
		Title:        c.Title,
		Description:  c.Description,
		Duration:     c.Duration,
		Views:        c.Views,
		Caption:      c.Caption,
		Body:         c.Body,
	}
}

// CommentView 评论及其点赞信息
type CommentView struct {
	ID             int64              `json:"id,string"`
	Target         model.Ref          `json:"target"`
	Author         model.OwnerSummary `json:"author"`
	Content        string             `json:"content"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	LikeCount      int64              `json:"like_count"`
	ViewerHasLiked bool               `json:"viewer_has_liked"`
}

func newCommentView(c *model.Comment) *CommentView {
	return &CommentView{
		ID:        c.ID,
		Target:    c.Target(),
		Author:    model.OwnerSummary{ID: c.UserID},
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// LikedItem 点赞流中的一项，Content 与 Comment 恰有一个非空
type LikedItem struct {
	Kind    model.Kind   `json:"kind"`
	LikedAt time.Time    `json:"liked_at"`
	Content *Projection  `json:"content,omitempty"`
	Comment *CommentView `json:"comment,omitempty"`
}

// UserView 关注/粉丝列表中的用户
type UserView struct {
	model.OwnerSummary
	ViewerFollows bool `json:"viewer_follows"`
}

type ChannelProfile struct {
	model.OwnerSummary
	Bio           string    `json:"bio"`
	CreatedAt     time.Time `json:"created_at"`
	Followers     int64     `json:"followers"`
	Following     int64     `json:"following"`
	ViewerFollows bool      `json:"viewer_follows"`
}

// Page Degraded 列出因超时或存储不可用而被省略的分支
type Page[T any] struct {
	Items    []T      `json:"items"`
	Total    int64    `json:"total"`
	PageNum  int      `json:"page_num"`
	PageSize int      `json:"page_size"`
	Degraded []string `json:"degraded,omitempty"`

	// Truncated 频道流超过单类型上限后不再返回更深的页
	Truncated bool `json:"truncated,omitempty"`
}

type KindStats struct {
	Count int64 `json:"count"`
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
}

type Stats struct {
	Kinds      map[model.Kind]KindStats `json:"kinds"`
	TotalItems int64                    `json:"total_items"`
	TotalViews int64                    `json:"total_views"`
	TotalLikes int64                    `json:"total_likes"`
	Followers  int64                    `json:"followers"`
	Following  int64                    `json:"following"`
	Degraded   []string                 `json:"degraded,omitempty"`
}

// normalizePage 页码从 1 开始，每页条数限制在 [1, MaxLimit]
func normalizePage(pageNum, pageSize int) (offset, limit, num int) {
	if pageNum < 1 {
		pageNum = constants.DefaultPageNum
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultLimit
	}
	if pageSize > constants.MaxLimit {
		pageSize = constants.MaxLimit
	}
	// offset 不超过 MaxPageOffset，超大页码只会得到空页
	if pageNum > constants.MaxPageOffset/pageSize+1 {
		pageNum = constants.MaxPageOffset/pageSize + 1
	}
	return (pageNum - 1) * pageSize, pageSize, pageNum
}

// sortByRecency 时间倒序，时间相同按 id 倒序
func sortByRecency(items []*Projection) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.ID != b.ID {
			return a.ID > b.ID
		}
		return a.Kind < b.Kind
	})
}
