package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/cors"
	"github.com/sirupsen/logrus"

	"streamhub.com/cmd/api/handlers"
	"streamhub.com/cmd/api/mw"
	"streamhub.com/cmd/engagement/dal/db"
	"streamhub.com/cmd/engagement/service"
	"streamhub.com/config"
	"streamhub.com/config/pprof"
	"streamhub.com/pkg/cache"
	"streamhub.com/pkg/constants"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/mq"
	"streamhub.com/pkg/oss"
	"streamhub.com/pkg/tracer"
	"streamhub.com/pkg/utils"
)

// Init 按配置装配依赖，redis/rabbitmq/minio 未配置时对应能力关闭
func Init() (*service.Deps, []io.Closer) {
	config.Init()
	c := config.ConfigInfo
	var closers []io.Closer

	if err := utils.InitSnowflake(c.Snowflake.WorkerId, c.Snowflake.DatacenterId); err != nil {
		logrus.Fatalf("init snowflake failed: %v", err)
	}
	closer, err := tracer.InitJaeger(constants.ServiceName, c.Jaeger.AgentAddr, c.Jaeger.Enabled)
	if err != nil {
		logrus.Fatalf("init jaeger failed: %v", err)
	}
	closers = append(closers, closer)

	db.Init()
	d := service.NewDeps(db.DB)
	d.BranchTimeout = c.Feed.BranchTimeout
	d.ChannelLimit = c.Feed.ChannelLimit

	if c.Redis.Addr != "" {
		client := cache.NewClient(c.Redis.Addr, c.Redis.Password, c.Redis.DB)
		d.Cache = cache.NewCountCache(client, c.Redis.CountTTL)
		if c.Redis.ToggleLock {
			d.Locker = cache.NewLocker(client)
		}
		closers = append(closers, client)
	}
	if c.RabbitMq.Url != "" {
		producer, err := mq.NewProducer(c.RabbitMq.Url)
		if err != nil {
			hlog.Warnf("rabbitmq unavailable, engagement events disabled: %v", err)
		} else {
			d.Events = producer
			closers = append(closers, producer)
		}
	}
	if c.Minio.Endpoint != "" {
		client, err := oss.NewMinioClient(c.Minio.Endpoint, c.Minio.AccessKey, c.Minio.SecretKey, c.Minio.UseSSL)
		if err != nil {
			hlog.Warnf("minio unavailable, asset cleanup disabled: %v", err)
		} else {
			d.Assets = oss.NewAssetStore(client)
		}
	}
	return d, closers
}

func main() {
	d, closers := Init()
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	c := config.ConfigInfo
	pprof.Load(c.Server.PprofAddr)

	auth, err := mw.NewAuth(c.Jwt.Secret, c.Jwt.IdentityKey, c.Jwt.Timeout)
	if err != nil {
		logrus.Fatalf("init jwt failed: %v", err)
	}
	if err := mw.InitSentinel(c.Limits.ToggleQPS); err != nil {
		logrus.Fatalf("init sentinel failed: %v", err)
	}
	shedder := mw.NewCPUShedder(c.Limits.CpuShedPercent)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go shedder.Run(ctx, constants.CPUSampleInterval)

	handlers.Init(service.NewEngine(d), auth)

	h := server.New(
		server.WithHostPorts(c.Server.Addr),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(cors.New(cors.Config{
		AllowOrigins:     c.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))
	h.Use(recovery.Recovery(recovery.WithRecoveryHandler(
		func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte) {
			hlog.SystemLogger().CtxErrorf(ctx, "[Recovery] err=%v\nstack=%s", err, stack)
			c.JSON(consts.StatusInternalServerError, handlers.Response{
				Code:    errno.ServiceErrCode,
				Message: fmt.Sprintf("[Recovery] err=%v", err),
			})
		})))

	register(h, Routes{
		Auth:        auth,
		Shedder:     shedder,
		MetricsPath: c.Server.MetricsPath,
	})
	h.Spin()
}
