package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"streamhub.com/pkg/errno"
)

type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

type FollowResult struct {
	Following bool  `json:"following"`
	Followers int64 `json:"followers"`
}

// ToggleLike POST /likes/:kind/:id
func ToggleLike(ctx context.Context, c *app.RequestContext) {
	ref, err := pathRef(c, true)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	liked, err := engine.Ledger.ToggleLike(ctx, Viewer(c), ref)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	count, err := engine.Ledger.CountLikes(ctx, ref)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, LikeResult{Liked: liked, LikeCount: count})
}

// ToggleFollow POST /follows/:user_id
func ToggleFollow(ctx context.Context, c *app.RequestContext) {
	profile, err := pathID(c, "user_id")
	if err != nil {
		fail(ctx, c, err)
		return
	}
	following, err := engine.Ledger.ToggleFollow(ctx, Viewer(c), profile)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	followers, err := engine.Ledger.CountFollowers(ctx, profile)
	if err != nil {
		fail(ctx, c, err)
		return
	}
	SendResponse(c, errno.Success, FollowResult{Following: following, Followers: followers})
}
