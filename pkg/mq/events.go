package mq

import (
	"time"

	"github.com/google/uuid"

	"streamhub.com/cmd/model"
)

// 事件类型
const (
	EventLike          = "like"
	EventUnlike        = "unlike"
	EventFollow        = "follow"
	EventUnfollow      = "unfollow"
	EventCommentCreate = "comment_create"
	EventCommentUpdate = "comment_update"
	EventCommentDelete = "comment_delete"
	EventContentDelete = "content_delete"
)

const (
	EngagementEventExchange = "engagement_events"
	EngagementEventQueue    = "engagement_event_queue"
)

// EngagementEvent 写操作提交之后发出，routing key 为 Type
type EngagementEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	ActorID   int64     `json:"actor_id,string"`
	Target    model.Ref `json:"target"`
	Timestamp int64     `json:"timestamp"`
}

func NewEvent(typ string, actorId int64, target model.Ref) *EngagementEvent {
	return &EngagementEvent{
		EventID:   uuid.NewString(),
		Type:      typ,
		ActorID:   actorId,
		Target:    target,
		Timestamp: time.Now().UnixMilli(),
	}
}
