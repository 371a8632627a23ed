package db

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
)

type contentRow[T any] interface {
	*T
	ToContent() *model.Content
}

// ContentTable 一种内容类型对应一张表，三种类型共用同一套查询
type ContentTable[T any, P contentRow[T]] struct {
	db         *gorm.DB
	kind       model.Kind
	searchCols []string
	hasViews   bool
	build      func(c *model.Content) P
	patch      func(p model.ContentPatch) map[string]interface{}
}

type (
	ClipStore  = ContentTable[model.Clip, *model.Clip]
	ImageStore = ContentTable[model.Image, *model.Image]
	TextStore  = ContentTable[model.TextPost, *model.TextPost]
)

func NewClipStore(db *gorm.DB) *ClipStore {
	return &ClipStore{
		db:         db,
		kind:       model.KindClip,
		searchCols: []string{"title", "description"},
		hasViews:   true,
		build: func(c *model.Content) *model.Clip {
			return &model.Clip{
				ID:           c.ID,
				OwnerID:      c.OwnerID,
				VideoUrl:     c.MediaUrl,
				ThumbnailUrl: c.ThumbnailUrl,
				Title:        c.Title,
				Description:  c.Description,
				Duration:     c.Duration,
				IsPublic:     c.IsPublic,
				DeleteToken:  c.DeleteToken,
				CreatedAt:    c.CreatedAt,
			}
		},
		patch: func(p model.ContentPatch) map[string]interface{} {
			m := map[string]interface{}{}
			if p.Title != nil {
				m["title"] = *p.Title
			}
			if p.Description != nil {
				m["description"] = *p.Description
			}
			return m
		},
	}
}

func NewImageStore(db *gorm.DB) *ImageStore {
	return &ImageStore{
		db:         db,
		kind:       model.KindImage,
		searchCols: []string{"caption"},
		build: func(c *model.Content) *model.Image {
			return &model.Image{
				ID:          c.ID,
				OwnerID:     c.OwnerID,
				ImageUrl:    c.MediaUrl,
				Caption:     c.Caption,
				IsPublic:    c.IsPublic,
				DeleteToken: c.DeleteToken,
				CreatedAt:   c.CreatedAt,
			}
		},
		patch: func(p model.ContentPatch) map[string]interface{} {
			m := map[string]interface{}{}
			if p.Caption != nil {
				m["caption"] = *p.Caption
			}
			return m
		},
	}
}

func NewTextStore(db *gorm.DB) *TextStore {
	return &TextStore{
		db:         db,
		kind:       model.KindText,
		searchCols: []string{"body"},
		build: func(c *model.Content) *model.TextPost {
			return &model.TextPost{
				ID:        c.ID,
				OwnerID:   c.OwnerID,
				Body:      c.Body,
				IsPublic:  c.IsPublic,
				CreatedAt: c.CreatedAt,
			}
		},
		patch: func(p model.ContentPatch) map[string]interface{} {
			m := map[string]interface{}{}
			if p.Body != nil {
				m["body"] = *p.Body
			}
			return m
		},
	}
}

func (s *ContentTable[T, P]) Kind() model.Kind {
	return s.kind
}

func (s *ContentTable[T, P]) notFound(id int64) error {
	return errno.NotFoundErr.WithMessagef("%s %d not found", s.kind, id)
}

func (s *ContentTable[T, P]) FetchByID(ctx context.Context, id int64) (*model.Content, error) {
	var r T
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.notFound(id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s %d failed", s.kind, id)
	}
	return P(&r).ToContent(), nil
}

// FetchByIDs 不存在的 id 不出现在结果中
func (s *ContentTable[T, P]) FetchByIDs(ctx context.Context, ids []int64) (map[int64]*model.Content, error) {
	out := make(map[int64]*model.Content, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []T
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "fetch %s batch failed", s.kind)
	}
	for i := range rows {
		c := P(&rows[i]).ToContent()
		out[c.ID] = c
	}
	return out, nil
}

func (s *ContentTable[T, P]) page(tx *gorm.DB, offset, limit int) ([]*model.Content, int64, error) {
	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "count %s failed", s.kind)
	}
	var rows []T
	err := tx.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrapf(err, "list %s failed", s.kind)
	}
	items := make([]*model.Content, 0, len(rows))
	for i := range rows {
		items = append(items, P(&rows[i]).ToContent())
	}
	return items, total, nil
}

// ListByOwner 新的在前，同一时间按 id 倒序
func (s *ContentTable[T, P]) ListByOwner(ctx context.Context, ownerId int64, includePrivate bool, offset, limit int) ([]*model.Content, int64, error) {
	tx := s.db.WithContext(ctx).Model(new(T)).Where("owner_id = ?", ownerId)
	if !includePrivate {
		tx = tx.Where("is_public = ?", true)
	}
	return s.page(tx, offset, limit)
}

// Search 对标题/描述/正文做不区分大小写的子串匹配，ownerId 为 0 时不限所有者
func (s *ContentTable[T, P]) Search(ctx context.Context, query string, ownerId int64, includePrivate bool, offset, limit int) ([]*model.Content, int64, error) {
	tx := s.db.WithContext(ctx).Model(new(T))
	if ownerId != 0 {
		tx = tx.Where("owner_id = ?", ownerId)
	}
	if !includePrivate {
		tx = tx.Where("is_public = ?", true)
	}
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		conds := make([]string, 0, len(s.searchCols))
		args := make([]interface{}, 0, len(s.searchCols))
		for _, col := range s.searchCols {
			conds = append(conds, "LOWER("+col+") LIKE ? ESCAPE '!'")
			args = append(args, pattern)
		}
		tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return s.page(tx, offset, limit)
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// Create 写入后用数据库生成的时间回填 c
func (s *ContentTable[T, P]) Create(ctx context.Context, c *model.Content) error {
	r := s.build(c)
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return errors.Wrapf(err, "create %s failed", s.kind)
	}
	*c = *r.ToContent()
	return nil
}

func (s *ContentTable[T, P]) Update(ctx context.Context, id int64, patch model.ContentPatch) error {
	fields := s.patch(patch)
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update %s %d failed", s.kind, id)
	}
	if res.RowsAffected == 0 {
		return s.notFound(id)
	}
	return nil
}

// FlipVisibility 在一条语句里取反可见性，并在同一事务中读回结果
func (s *ContentTable[T, P]) FlipVisibility(ctx context.Context, id int64) (bool, error) {
	var public bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(new(T)).Where("id = ?", id).UpdateColumn("is_public", gorm.Expr("NOT is_public"))
		if res.Error != nil {
			return errors.Wrapf(res.Error, "flip %s %d visibility failed", s.kind, id)
		}
		if res.RowsAffected == 0 {
			return s.notFound(id)
		}
		var r T
		if err := tx.Where("id = ?", id).Take(&r).Error; err != nil {
			return errors.Wrapf(err, "reload %s %d failed", s.kind, id)
		}
		public = P(&r).ToContent().IsPublic
		return nil
	})
	return public, err
}

func (s *ContentTable[T, P]) Delete(ctx context.Context, id int64) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "delete %s %d failed", s.kind, id)
	}
	return res.RowsAffected > 0, nil
}

// IncrementViews 只增不减；没有播放量的类型直接忽略
func (s *ContentTable[T, P]) IncrementViews(ctx context.Context, id int64) error {
	if !s.hasViews {
		return nil
	}
	err := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	return errors.Wrapf(err, "increment %s %d views failed", s.kind, id)
}

type OwnerStats struct {
	Count int64
	Views int64
}

func (s *ContentTable[T, P]) OwnerStats(ctx context.Context, ownerId int64) (OwnerStats, error) {
	sel := "COUNT(*) AS count, 0 AS views"
	if s.hasViews {
		sel = "COUNT(*) AS count, COALESCE(SUM(views), 0) AS views"
	}
	var st OwnerStats
	err := s.db.WithContext(ctx).Model(new(T)).Select(sel).Where("owner_id = ?", ownerId).Scan(&st).Error
	return st, errors.Wrapf(err, "stat %s of %d failed", s.kind, ownerId)
}

func (s *ContentTable[T, P]) IDsByOwner(ctx context.Context, ownerId int64) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(new(T)).Where("owner_id = ?", ownerId).Pluck("id", &ids).Error
	return ids, errors.Wrapf(err, "list %s ids of %d failed", s.kind, ownerId)
}
