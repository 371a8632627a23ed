package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"streamhub.com/cmd/engagement/service"
	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/validator"
)

type VisibilityResult struct {
	IsPublic bool `json:"is_public"`
}

type ContentPatchParam struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Caption     *string `json:"caption"`
	Body        *string `json:"body"`
}

// PublishContent POST /contents/:kind，请求体按类型解析
func PublishContent(ctx context.Context, c *app.RequestContext) {
	kind, err := validator.ParseKind(c.Param("kind"), false)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	owner := Viewer(c)
	var p *service.Projection
	switch kind {
	case model.KindClip:
		var draft service.ClipDraft
		if err = bindJSON(c, &draft); err == nil {
			p, err = engine.Contents.PublishClip(ctx, owner, &draft)
		}
	case model.KindImage:
		var draft service.ImageDraft
		if err = bindJSON(c, &draft); err == nil {
			p, err = engine.Contents.PublishImage(ctx, owner, &draft)
		}
	default:
		var draft service.TextDraft
		if err = bindJSON(c, &draft); err == nil {
			p, err = engine.Contents.PublishText(ctx, owner, &draft)
		}
	}
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, p)
}

// UpdateContent PUT /contents/:kind/:id
func UpdateContent(ctx context.Context, c *app.RequestContext) {
	ref, err := pathRef(c, false)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	var req ContentPatchParam
	if err := bindJSON(c, &req); err != nil {
		fail(ctx, c, err)
		return
	}
	p, err := engine.Contents.UpdateContent(ctx, Viewer(c), ref, model.ContentPatch{
		Title:       req.Title,
		Description: req.Description,
		Caption:     req.Caption,
		Body:        req.Body,
	})
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, p)
}

// ToggleVisibility PUT /contents/:kind/:id/visibility
func ToggleVisibility(ctx context.Context, c *app.RequestContext) {
	ref, err := pathRef(c, false)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	public, err := engine.Contents.ToggleVisibility(ctx, Viewer(c), ref)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, VisibilityResult{IsPublic: public})
}

// DeleteContent DELETE /contents/:kind/:id
func DeleteContent(ctx context.Context, c *app.RequestContext) {
	ref, err := pathRef(c, false)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	if err := engine.Contents.DeleteContent(ctx, Viewer(c), ref); err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, nil)
}
