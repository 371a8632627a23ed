package mq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
)

type Producer struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewProducer(rabbitmqURL string) (*Producer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open a channel")
	}

	producer := &Producer{
		conn:    conn,
		channel: ch,
	}

	if err := setupTopology(ch); err != nil {
		producer.Close()
		return nil, errors.Wrap(err, "failed to setup topology")
	}

	return producer, nil
}

// setupTopology topic 交换机，队列接收全部事件类型
func setupTopology(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		EngagementEventExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "failed to declare engagement exchange")
	}

	_, err = ch.QueueDeclare(
		EngagementEventQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "failed to declare engagement queue")
	}

	if err = ch.QueueBind(EngagementEventQueue, "#", EngagementEventExchange, false, nil); err != nil {
		return errors.Wrap(err, "failed to bind engagement queue")
	}
	return nil
}

func (p *Producer) Publish(ctx context.Context, event *EngagementEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal engagement event")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(
		ctx,
		EngagementEventExchange,
		event.Type,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.EventID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to publish %s event", event.Type)
	}

	hlog.CtxDebugf(ctx, "Published engagement event: %+v", event)
	return nil
}

func (p *Producer) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
