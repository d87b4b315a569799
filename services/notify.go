package services

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// NotifyFollow отправляет уведомление о новой подписке. Сначала пробуем
// RabbitMQ; если брокер недоступен - доставляем напрямую через WebSocket.
func NotifyFollow(ctx context.Context, targetID, actorID, actorName string) {
	event := NotifyEvent{
		UserID:    targetID,
		Kind:      "follow",
		ActorID:   actorID,
		ActorName: actorName,
		CreatedAt: time.Now(),
	}

	if err := PublishNotifyEvent(ctx, event); err != nil {
		data, merr := json.Marshal(event)
		if merr != nil {
			log.Printf("notify: failed to marshal event: %v", merr)
			return
		}
		GlobalWSConnManager.Send(targetID, data)
	}
}
