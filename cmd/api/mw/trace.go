package mw

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// Tracing 为每个请求开启根 span，下游的 gorm 与组合查询 span 挂在它下面
func Tracing() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		span, ctx := opentracing.StartSpanFromContext(ctx, string(c.Method())+" "+c.FullPath())
		defer span.Finish()
		ext.HTTPMethod.Set(span, string(c.Method()))
		ext.HTTPUrl.Set(span, string(c.Path()))
		c.Next(ctx)
		ext.HTTPStatusCode.Set(span, uint16(c.Response.StatusCode()))
		if c.Response.StatusCode() >= 500 {
			ext.Error.Set(span, true)
		}
	}
}
