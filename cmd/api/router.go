package main

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"streamhub.com/cmd/api/handlers"
	"streamhub.com/cmd/api/mw"
)

type Routes struct {
	Auth        *mw.Auth
	Shedder     *mw.CPUShedder
	MetricsPath string
}

func register(r *server.Hertz, rt Routes) {
	if rt.MetricsPath != "" {
		r.GET(rt.MetricsPath, adaptor.HertzHandler(promhttp.Handler()))
	}

	common := []app.HandlerFunc{mw.Tracing()}
	if rt.Shedder != nil {
		common = append(common, rt.Shedder.Middleware())
	}
	common = append(common, rt.Auth.Viewer())
	v1 := r.Group("/api/v1", common...)
	must := mw.RequireViewer()

	v1.POST("/likes/:kind/:id", must, mw.FlowControl(mw.ToggleLikeResource), handlers.ToggleLike)
	v1.POST("/follows/:user_id", must, mw.FlowControl(mw.ToggleFollowResource), handlers.ToggleFollow)

	v1.GET("/channels/:user_id/feed", handlers.ChannelFeed)

	v1.POST("/comments/:kind/:id", must, handlers.AddComment)
	v1.GET("/comments/:kind/:id", handlers.ListComments)
	v1.PUT("/comments/:comment_id", must, handlers.UpdateComment)
	v1.DELETE("/comments/:comment_id", must, handlers.DeleteComment)

	v1.GET("/contents/:kind", handlers.Search)
	v1.GET("/contents/:kind/:id", handlers.GetContent)
	v1.POST("/contents/:kind", must, handlers.PublishContent)
	v1.PUT("/contents/:kind/:id", must, handlers.UpdateContent)
	v1.PUT("/contents/:kind/:id/visibility", must, handlers.ToggleVisibility)
	v1.DELETE("/contents/:kind/:id", must, handlers.DeleteContent)

	v1.POST("/users", handlers.CreateUser)
	v1.GET("/users/:user", handlers.GetChannelProfile)
	v1.GET("/users/:user/contents/:kind", handlers.ListByOwner)
	v1.GET("/users/:user/followers", handlers.ListFollowers)
	v1.GET("/users/:user/following", handlers.ListFollowing)

	me := v1.Group("/me", must)
	me.GET("/likes", handlers.EngagementFeed)
	me.GET("/dashboard", handlers.Dashboard)
	me.GET("/history", handlers.WatchHistory)
	me.PUT("/profile", handlers.UpdateProfile)
}
