package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"streamhub.com/pkg/errno"
)

type CommentParam struct {
	Content string `json:"content"`
}

// AddComment POST /comments/:kind/:id
func AddComment(ctx context.Context, c *app.RequestContext) {
	ref, err := pathRef(c, false)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	var req CommentParam
	if err := bindJSON(c, &req); err != nil {
		fail(ctx, c, err)
		return
	}
	cv, err := engine.Comments.AddComment(ctx, Viewer(c), ref, req.Content)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, cv)
}

// UpdateComment PUT /comments/:comment_id
func UpdateComment(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "comment_id")
	if err != nil {
		fail(ctx, c, err)
		return
	}
	var req CommentParam
	if err := bindJSON(c, &req); err != nil {
		fail(ctx, c, err)
		return
	}
	cv, err := engine.Comments.UpdateComment(ctx, Viewer(c), id, req.Content)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, cv)
}

// DeleteComment DELETE /comments/:comment_id
func DeleteComment(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "comment_id")
	if err != nil {
		fail(ctx, c, err)
		return
	}
	if err := engine.Comments.DeleteComment(ctx, Viewer(c), id); err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, nil)
}

// ListComments GET /comments/:kind/:id
func ListComments(ctx context.Context, c *app.RequestContext) {
	ref, err := pathRef(c, false)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	p, err := bindPage(c)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	page, err := engine.Comments.ListComments(ctx, ref, Viewer(c), p.PageNum, p.PageSize)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, page)
}
