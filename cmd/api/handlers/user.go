package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"streamhub.com/cmd/engagement/service"
	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
)

type RegisterResult struct {
	User   *model.User `json:"user"`
	Token  string      `json:"token,omitempty"`
	Expire int64       `json:"expire,omitempty"`
}

// CreateUser POST /users，凭证校验由外部鉴权服务负责，这里只签发访问令牌
func CreateUser(ctx context.Context, c *app.RequestContext) {
	var req service.NewUser
	if err := bindJSON(c, &req); err != nil {
		fail(ctx, c, err)
		return
	}
	user, err := engine.Users.CreateUser(ctx, &req)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	res := RegisterResult{User: user}
	if tokens != nil {
		token, expire, err := tokens.Token(user.ID)
		if err != nil {
			fail(ctx, c, err)
			return
		}
		res.Token, res.Expire = token, expire.Unix()
	}
	SendResponse(c, errno.Success, res)
}

// GetChannelProfile GET /users/:user，:user 为用户名
func GetChannelProfile(ctx context.Context, c *app.RequestContext) {
	profile, err := engine.Users.GetChannelProfile(ctx, c.Param("user"), Viewer(c))
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, profile)
}

// UpdateProfile PUT /me/profile
func UpdateProfile(ctx context.Context, c *app.RequestContext) {
	var req service.ProfilePatch
	if err := bindJSON(c, &req); err != nil {
		fail(ctx, c, err)
		return
	}
	user, err := engine.Users.UpdateProfile(ctx, Viewer(c), &req)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, user)
}

// ListFollowers GET /users/:user/followers
func ListFollowers(ctx context.Context, c *app.RequestContext) {
	listEdges(ctx, c, engine.Users.ListFollowers)
}

// ListFollowing GET /users/:user/following
func ListFollowing(ctx context.Context, c *app.RequestContext) {
	listEdges(ctx, c, engine.Users.ListFollowing)
}

func listEdges(ctx context.Context, c *app.RequestContext,
	list func(ctx context.Context, userId, viewer int64, pageNum, pageSize int) (*service.Page[*service.UserView], error)) {
	userId, err := pathID(c, "user")
	if err != nil {
		fail(ctx, c, err)
		return
	}
	p, err := bindPage(c)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	page, err := list(ctx, userId, Viewer(c), p.PageNum, p.PageSize)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, page)
}
