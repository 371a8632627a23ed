package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/sirupsen/logrus"

	"streamhub.com/config"
	"streamhub.com/pkg/cache"
	"streamhub.com/pkg/mq"
)

func main() {
	config.Init()
	c := config.ConfigInfo
	if c.RabbitMq.Url == "" {
		logrus.Fatal("rabbitmq.url is required for the event consumer")
	}

	handler := &cacheSync{}
	if c.Redis.Addr != "" {
		client := cache.NewClient(c.Redis.Addr, c.Redis.Password, c.Redis.DB)
		defer client.Close()
		handler.cache = cache.NewCountCache(client, c.Redis.CountTTL)
	}

	consumer, err := mq.NewConsumer(c.RabbitMq.Url)
	if err != nil {
		logrus.Fatalf("Failed to create consumer: %v", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	hlog.Info("Engagement event consumer started")
	if err := consumer.Consume(ctx, handler); err != nil && ctx.Err() == nil {
		hlog.Errorf("consumer stopped: %v", err)
	}
	hlog.Info("Engagement event consumer exited")
}
