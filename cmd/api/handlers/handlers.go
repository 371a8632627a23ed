package handlers

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/pkg/errors"

	"streamhub.com/cmd/engagement/service"
	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/validator"
)

// ViewerKey 鉴权中间件把访问者 id 写入 RequestContext 的键
const ViewerKey = "viewer_id"

// TokenIssuer 为新注册的用户签发访问令牌
type TokenIssuer interface {
	Token(userId int64) (string, time.Time, error)
}

var (
	engine *service.Engine
	tokens TokenIssuer
)

func Init(e *service.Engine, issuer TokenIssuer) {
	engine = e
	tokens = issuer
}

type Response struct {
	Code    int64       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// SendResponse pack response
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	Err := errno.ConvertErr(err)
	c.JSON(errno.HTTPStatus(err), Response{
		Code:    Err.ErrCode,
		Message: Err.ErrMsg,
		Data:    data,
	})
}

// fail 5xx 打印完整堆栈，其余只记录根因
func fail(ctx context.Context, c *app.RequestContext, err error) {
	if errno.HTTPStatus(err) >= consts.StatusInternalServerError {
		hlog.CtxErrorf(ctx, "%s %s: %+v", c.Method(), c.Path(), err)
	} else {
		hlog.CtxInfof(ctx, "%s %s: %v", c.Method(), c.Path(), errors.Cause(err))
	}
	SendResponse(c, err, nil)
}

// Viewer 匿名访问返回 0
func Viewer(c *app.RequestContext) int64 {
	if v, ok := c.Get(ViewerKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

type PageParam struct {
	PageNum  int `query:"page_num"`
	PageSize int `query:"page_size"`
}

func bindPage(c *app.RequestContext) (PageParam, error) {
	var p PageParam
	if err := c.BindQuery(&p); err != nil {
		return p, errno.InvalidInputErr.WithMessage(err.Error())
	}
	return p, nil
}

func bindJSON(c *app.RequestContext, v interface{}) error {
	if err := c.BindJSON(v); err != nil {
		return errno.InvalidInputErr.WithMessagef("invalid request body: %v", err)
	}
	return nil
}

func pathID(c *app.RequestContext, name string) (int64, error) {
	return validator.ParseID(c.Param(name), name)
}

// pathRef 解析 :kind/:id 形式的多态引用
func pathRef(c *app.RequestContext, allowComment bool) (model.Ref, error) {
	kind, err := validator.ParseKind(c.Param("kind"), allowComment)
	if err != nil {
		return model.Ref{}, err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return model.Ref{}, err
	}
	return model.Ref{Kind: kind, ID: id}, nil
}
