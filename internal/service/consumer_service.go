package service

import (
	"context"
	"encoding/json"
	"log"

	"clipboard-api-be/internal/model"
	"clipboard-api-be/internal/repository/unitofwork"
	"clipboard-api-be/internal/websocket"
	"clipboard-api-be/pkg/events"
	pktNats "clipboard-api-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process event bus: every event becomes an
// audit_logs row, public clipboard events go to the websocket feed, and an
// optional NATS publisher mirrors everything for external consumers.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	feedHub        *websocket.Hub
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	feedHub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		feedHub:        feedHub,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload eventEnvelope
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal event message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	entry := &model.AuditLog{
		Id:        uuid.New(),
		EventType: payload.Type,
		CreatedAt: payload.OccurredAt,
	}
	if actor, ok := payload.Data["actor"].(string); ok && actor != "" {
		entry.Actor = &actor
	}
	if code, ok := payload.Data["code"].(string); ok && code != "" {
		entry.ClipboardCode = &code
	}
	if detail, err := json.Marshal(payload.Data); err == nil {
		entry.Detail = datatypes.JSON(detail)
	}

	if err := uow.AuditLogRepository().Create(ctx, entry); err != nil {
		log.Printf("[ERROR] Failed to write audit log for %s: %v", payload.Type, err)
		msg.Nack() // Retriable: the DB was there a moment ago
		return
	}

	// Feed only carries public clipboard events; the actor never leaves
	// the audit trail.
	if cs.feedHub != nil {
		if public, ok := payload.Data["is_public"].(bool); ok && public {
			cs.feedHub.Broadcast(payload.Type, map[string]interface{}{
				"code": payload.Data["code"],
			})
		}
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type:       payload.Type,
			Data:       payload.Data,
			OccurredAt: payload.OccurredAt,
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to mirror %s event to NATS: %v", payload.Type, err)
		}
	}

	msg.Ack()
}
