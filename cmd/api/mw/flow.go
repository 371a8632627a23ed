package mw

import (
	"context"

	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"streamhub.com/cmd/api/handlers"
	"streamhub.com/pkg/errno"
)

const (
	ToggleLikeResource   = "toggle_like"
	ToggleFollowResource = "toggle_follow"
)

// InitSentinel 初始化 sentinel 并为 toggle 接口加载 QPS 限流规则
func InitSentinel(qps float64) error {
	if err := sentinel.InitDefault(); err != nil {
		return err
	}
	return LoadToggleRules(qps)
}

func LoadToggleRules(qps float64) error {
	rules := make([]*flow.Rule, 0, 2)
	for _, res := range []string{ToggleLikeResource, ToggleFollowResource} {
		rules = append(rules, &flow.Rule{
			Resource:               res,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              qps,
			StatIntervalInMs:       1000,
		})
	}
	_, err := flow.LoadRules(rules)
	return err
}

// FlowControl 超出阈值的请求返回 Unavailable
func FlowControl(resource string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		e, b := sentinel.Entry(resource, sentinel.WithTrafficType(base.Inbound))
		if b != nil {
			hlog.CtxWarnf(ctx, "%s blocked by sentinel: %v", resource, b.BlockMsg())
			handlers.SendResponse(c, errno.UnavailableErr.WithMessage("too many requests"), nil)
			c.Abort()
			return
		}
		defer e.Exit()
		c.Next(ctx)
	}
}
