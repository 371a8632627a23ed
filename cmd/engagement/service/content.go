package service

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/constants"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/mq"
	"streamhub.com/pkg/validator"
)

type ClipDraft struct {
	MediaUrl     string  `json:"media_url" validate:"notblank,max=512"`
	DeleteToken  string  `json:"delete_token" validate:"max=512"`
	ThumbnailUrl string  `json:"thumbnail_url" validate:"max=512"`
	Title        string  `json:"title" validate:"notblank,max=2200"`
	Description  string  `json:"description" validate:"max=5000"`
	Duration     float64 `json:"duration" validate:"gte=0"`
	IsPublic     bool    `json:"is_public"`
}

type ImageDraft struct {
	MediaUrl    string `json:"media_url" validate:"notblank,max=512"`
	DeleteToken string `json:"delete_token" validate:"max=512"`
	Caption     string `json:"caption" validate:"max=2200"`
	IsPublic    bool   `json:"is_public"`
}

type TextDraft struct {
	Body     string `json:"body" validate:"notblank,max=2200"`
	IsPublic bool   `json:"is_public"`
}

// ContentService 内容及其可见性的唯一写入方，所有修改都要求操作者是所有者
type ContentService struct {
	d        *Deps
	agg      *Aggregator
	comments *CommentService
}

func NewContentService(d *Deps, agg *Aggregator, comments *CommentService) *ContentService {
	d.fill()
	return &ContentService{d: d, agg: agg, comments: comments}
}

func (s *ContentService) publish(ctx context.Context, owner int64, c *model.Content) (*Projection, error) {
	if err := validator.CheckID(owner, "user_id"); err != nil {
		return nil, err
	}
	store, err := s.d.store(c.Kind)
	if err != nil {
		return nil, err
	}
	c.ID = s.d.IDs()
	c.OwnerID = owner
	if err := store.Create(ctx, c); err != nil {
		return nil, storeErr(err)
	}
	items, err := s.agg.enrich(ctx, []*model.Content{c}, owner)
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

func (s *ContentService) PublishClip(ctx context.Context, owner int64, draft *ClipDraft) (*Projection, error) {
	if err := validator.Struct(draft); err != nil {
		return nil, err
	}
	return s.publish(ctx, owner, &model.Content{
		Kind:         model.KindClip,
		IsPublic:     draft.IsPublic,
		MediaUrl:     draft.MediaUrl,
		DeleteToken:  draft.DeleteToken,
		ThumbnailUrl: draft.ThumbnailUrl,
		Title:        draft.Title,
		Description:  draft.Description,
		Duration:     draft.Duration,
	})
}

func (s *ContentService) PublishImage(ctx context.Context, owner int64, draft *ImageDraft) (*Projection, error) {
	if err := validator.Struct(draft); err != nil {
		return nil, err
	}
	return s.publish(ctx, owner, &model.Content{
		Kind:        model.KindImage,
		IsPublic:    draft.IsPublic,
		MediaUrl:    draft.MediaUrl,
		DeleteToken: draft.DeleteToken,
		Caption:     draft.Caption,
	})
}

func (s *ContentService) PublishText(ctx context.Context, owner int64, draft *TextDraft) (*Projection, error) {
	if err := validator.Struct(draft); err != nil {
		return nil, err
	}
	return s.publish(ctx, owner, &model.Content{
		Kind:     model.KindText,
		IsPublic: draft.IsPublic,
		Body:     draft.Body,
	})
}

// owned 取出内容并确认 actor 是所有者
func (s *ContentService) owned(ctx context.Context, actor int64, ref model.Ref) (ContentStore, *model.Content, error) {
	if err := validator.CheckID(actor, "user_id"); err != nil {
		return nil, nil, err
	}
	if err := validator.CheckRef(ref, false); err != nil {
		return nil, nil, err
	}
	store, err := s.d.store(ref.Kind)
	if err != nil {
		return nil, nil, err
	}
	c, err := store.FetchByID(ctx, ref.ID)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if c.OwnerID != actor {
		return nil, nil, errno.ForbiddenErr.WithMessagef("%s %d is not yours", ref.Kind, ref.ID)
	}
	return store, c, nil
}

func checkPatch(kind model.Kind, patch *model.ContentPatch) error {
	check := func(p **string, field string, maxRunes int, required bool) error {
		if *p == nil {
			return nil
		}
		if !required && **p == "" {
			return nil
		}
		v, err := validator.CheckText(**p, field, maxRunes)
		if err != nil {
			return err
		}
		*p = &v
		return nil
	}
	switch kind {
	case model.KindClip:
		patch.Caption, patch.Body = nil, nil
		if err := check(&patch.Title, "title", constants.TitleMaxRunes, true); err != nil {
			return err
		}
		return check(&patch.Description, "description", constants.DescriptionMaxRunes, false)
	case model.KindImage:
		patch.Title, patch.Description, patch.Body = nil, nil, nil
		return check(&patch.Caption, "caption", constants.CaptionMaxRunes, false)
	default:
		patch.Title, patch.Description, patch.Caption = nil, nil, nil
		return check(&patch.Body, "body", constants.CaptionMaxRunes, true)
	}
}

// UpdateContent 只修改与类型相符的字段
func (s *ContentService) UpdateContent(ctx context.Context, actor int64, ref model.Ref, patch model.ContentPatch) (*Projection, error) {
	if err := validator.CheckRef(ref, false); err != nil {
		return nil, err
	}
	if err := checkPatch(ref.Kind, &patch); err != nil {
		return nil, err
	}
	store, _, err := s.owned(ctx, actor, ref)
	if err != nil {
		return nil, err
	}
	if err := store.Update(ctx, ref.ID, patch); err != nil {
		return nil, storeErr(err)
	}
	c, err := store.FetchByID(ctx, ref.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	items, err := s.agg.enrich(ctx, []*model.Content{c}, actor)
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// ToggleVisibility 返回切换后的可见性
func (s *ContentService) ToggleVisibility(ctx context.Context, actor int64, ref model.Ref) (bool, error) {
	store, _, err := s.owned(ctx, actor, ref)
	if err != nil {
		return false, err
	}
	public, err := store.FlipVisibility(ctx, ref.ID)
	if err != nil {
		return false, storeErr(err)
	}
	return public, nil
}

// DeleteContent 删除内容后清理评论并释放资源；点赞边保留，读取时跳过
func (s *ContentService) DeleteContent(ctx context.Context, actor int64, ref model.Ref) error {
	store, c, err := s.owned(ctx, actor, ref)
	if err != nil {
		return err
	}
	removed, err := store.Delete(ctx, ref.ID)
	if err != nil {
		return storeErr(err)
	}
	if !removed {
		return errno.NotFoundErr.WithMessagef("%s %d not found", ref.Kind, ref.ID)
	}
	s.comments.PurgeForContent(ctx, ref)
	if s.d.Assets != nil && c.DeleteToken != "" {
		if err := s.d.Assets.DeleteByToken(ctx, c.DeleteToken); err != nil {
			hlog.CtxWarnf(ctx, "delete asset of %s failed: %v", ref, err)
		}
	}
	s.d.publish(ctx, mq.EventContentDelete, actor, ref)
	return nil
}
