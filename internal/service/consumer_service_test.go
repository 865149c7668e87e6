package service

import (
	"context"
	"testing"
	"time"

	"clipboard-api-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPipelineWritesAuditLog(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	factory := newFakeUowFactory()

	consumer := NewConsumerService(pubSub, "TEST_EVENTS", factory, nil, nil)
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("TEST_EVENTS", pubSub)
	publisher.PublishEvent(ctx, events.ClipboardCreated, map[string]interface{}{
		"code":      "ABC123",
		"actor":     "user-1",
		"is_public": true,
	})

	require.Eventually(t, func() bool {
		return len(factory.uow.auditLogs.logs) == 1
	}, time.Second, 10*time.Millisecond)

	entry := factory.uow.auditLogs.logs[0]
	assert.Equal(t, events.ClipboardCreated, entry.EventType)
	require.NotNil(t, entry.Actor)
	assert.Equal(t, "user-1", *entry.Actor)
	require.NotNil(t, entry.ClipboardCode)
	assert.Equal(t, "ABC123", *entry.ClipboardCode)
	assert.NotEmpty(t, entry.Detail)
}

func TestEventPipelineIgnoresGarbage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	factory := newFakeUowFactory()

	consumer := NewConsumerService(pubSub, "TEST_EVENTS", factory, nil, nil)
	require.NoError(t, consumer.Consume(ctx))

	// A payload that is not an event envelope is acked and dropped.
	publishRaw(t, pubSub, "TEST_EVENTS", []byte("not json"))

	publisher := NewPublisherService("TEST_EVENTS", pubSub)
	publisher.PublishEvent(ctx, events.ClipboardDeleted, map[string]interface{}{"code": "ABC123"})

	require.Eventually(t, func() bool {
		return len(factory.uow.auditLogs.logs) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, events.ClipboardDeleted, factory.uow.auditLogs.logs[0].EventType)
}

func publishRaw(t *testing.T, pubSub *gochannel.GoChannel, topic string, payload []byte) {
	t.Helper()
	msg := message.NewMessage(watermill.NewUUID(), payload)
	require.NoError(t, pubSub.Publish(topic, msg))
}
