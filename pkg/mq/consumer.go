package mq

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

type EventHandler interface {
	HandleEngagementEvent(ctx context.Context, event *EngagementEvent) error
}

// HandlerFunc 让普通函数实现 EventHandler
type HandlerFunc func(ctx context.Context, event *EngagementEvent) error

func (f HandlerFunc) HandleEngagementEvent(ctx context.Context, event *EngagementEvent) error {
	return f(ctx, event)
}

func NewConsumer(rabbitmqURL string) (*Consumer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open a channel")
	}

	// 限制未确认消息数量
	if err = ch.Qos(10, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrap(err, "failed to set QoS")
	}

	if err = setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrap(err, "failed to setup topology")
	}

	return &Consumer{conn: conn, channel: ch}, nil
}

// Consume 阻塞直到 ctx 取消或通道关闭
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	msgs, err := c.channel.Consume(
		EngagementEventQueue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "failed to register a consumer")
	}

	for {
		select {
		case <-ctx.Done():
			hlog.Info("Engagement event consumer context cancelled")
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				hlog.Info("Engagement event consumer channel closed")
				return nil
			}
			var event EngagementEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				hlog.Errorf("Failed to unmarshal engagement event: %v", err)
				d.Nack(false, false) // 格式错误，不重新入队
				continue
			}
			if err := handler.HandleEngagementEvent(ctx, &event); err != nil {
				hlog.Errorf("Failed to handle engagement event %s: %v", event.EventID, err)
				d.Nack(false, !d.Redelivered) // 只重试一次
				continue
			}
			d.Ack(false)
		}
	}
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
