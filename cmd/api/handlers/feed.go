package handlers

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"

	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/validator"
)

// ChannelFeed GET /channels/:user_id/feed
func ChannelFeed(ctx context.Context, c *app.RequestContext) {
	owner, err := pathID(c, "user_id")
	if err != nil {
		fail(ctx, c, err)
		return
	}
	p, err := bindPage(c)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	page, err := engine.Composer.ComposeChannelFeed(ctx, owner, Viewer(c), p.PageNum, p.PageSize)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, page)
}

// EngagementFeed GET /me/likes
func EngagementFeed(ctx context.Context, c *app.RequestContext) {
	p, err := bindPage(c)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	page, err := engine.Composer.ComposeEngagementFeed(ctx, Viewer(c), p.PageNum, p.PageSize)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, page)
}

// Dashboard GET /me/dashboard
func Dashboard(ctx context.Context, c *app.RequestContext) {
	stats, err := engine.Composer.ComposeDashboardStats(ctx, Viewer(c))
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, stats)
}

// GetContent GET /contents/:kind/:id
func GetContent(ctx context.Context, c *app.RequestContext) {
	ref, err := pathRef(c, false)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	p, err := engine.Aggregator.GetOne(ctx, ref.Kind, ref.ID, Viewer(c))
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, p)
}

// ListByOwner GET /users/:user/contents/:kind
func ListByOwner(ctx context.Context, c *app.RequestContext) {
	owner, err := pathID(c, "user")
	if err != nil {
		fail(ctx, c, err)
		return
	}
	kind, err := validator.ParseKind(c.Param("kind"), false)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	p, err := bindPage(c)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	page, err := engine.Aggregator.ListByOwner(ctx, kind, owner, Viewer(c), p.PageNum, p.PageSize)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, page)
}

type SearchParam struct {
	Query string `query:"q"`
	Owner string `query:"owner"`
}

// Search GET /contents/:kind?q=&owner=
func Search(ctx context.Context, c *app.RequestContext) {
	kind, err := validator.ParseKind(c.Param("kind"), false)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	var req SearchParam
	if err := c.BindQuery(&req); err != nil {
		fail(ctx, c, errno.InvalidInputErr.WithMessage(err.Error()))
		return
	}
	var owner int64
	if strings.TrimSpace(req.Owner) != "" {
		if owner, err = validator.ParseID(req.Owner, "owner"); err != nil {
			fail(ctx, c, err)
			return
		}
	}
	p, err := bindPage(c)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	page, err := engine.Aggregator.Search(ctx, kind, req.Query, owner, Viewer(c), p.PageNum, p.PageSize)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, page)
}

// WatchHistory GET /me/history
func WatchHistory(ctx context.Context, c *app.RequestContext) {
	p, err := bindPage(c)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	page, err := engine.Users.ListWatchHistory(ctx, Viewer(c), p.PageNum, p.PageSize)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, page)
}
