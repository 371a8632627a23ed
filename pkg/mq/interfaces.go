package mq

import "context"

// Publisher 事件发布者
type Publisher interface {
	Publish(ctx context.Context, event *EngagementEvent) error
}

// NopPublisher 未配置 RabbitMQ 时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *EngagementEvent) error { return nil }

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = NopPublisher{}
)
