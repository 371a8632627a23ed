package mw

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"streamhub.com/cmd/api/handlers"
	"streamhub.com/pkg/constants"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/utils"
)

// Auth 只负责从令牌中解析访问者身份，账号密码校验不在本服务
type Auth struct {
	mw          *jwt.HertzJWTMiddleware
	identityKey string
}

func NewAuth(secret, identityKey string, timeout time.Duration) (*Auth, error) {
	if timeout <= 0 {
		timeout = 24 * time.Hour
	}
	m, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:         constants.ServiceName,
		Key:           []byte(secret),
		Timeout:       timeout,
		MaxRefresh:    timeout,
		IdentityKey:   identityKey,
		TokenLookup:   "header: Authorization, query: token",
		TokenHeadName: "Bearer",
		TimeFunc:      time.Now,
		PayloadFunc: func(data interface{}) jwt.MapClaims {
			if id, ok := data.(int64); ok {
				return jwt.MapClaims{identityKey: strconv.FormatInt(id, 10)}
			}
			return jwt.MapClaims{}
		},
	})
	if err != nil {
		return nil, err
	}
	return &Auth{mw: m, identityKey: identityKey}, nil
}

// Token 签发携带用户 id 的访问令牌
func (a *Auth) Token(userId int64) (string, time.Time, error) {
	return a.mw.TokenGenerator(userId)
}

// Viewer 没有携带令牌时按匿名访问者处理，令牌无效时直接拒绝
func (a *Auth) Viewer() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if len(c.GetHeader("Authorization")) == 0 && c.Query("token") == "" {
			c.Next(ctx)
			return
		}
		claims, err := a.mw.GetClaimsFromJWT(ctx, c)
		if err != nil {
			handlers.SendResponse(c, errno.AuthorizationErr, nil)
			c.Abort()
			return
		}
		id := utils.Transfer(claims[a.identityKey])
		if id <= 0 {
			handlers.SendResponse(c, errno.AuthorizationErr, nil)
			c.Abort()
			return
		}
		c.Set(handlers.ViewerKey, id)
		c.Next(ctx)
	}
}

// RequireViewer 写操作和 /me 路由要求已识别的访问者
func RequireViewer() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if handlers.Viewer(c) <= 0 {
			handlers.SendResponse(c, errno.AuthorizationErr.WithMessage("login required"), nil)
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}
