package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"clipboard-api-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const feedChannel = "clipboard_feed"

// Hub fans public clipboard lifecycle events out to connected feed clients.
// With Redis configured, events published on one instance reach clients on
// every instance via pub/sub.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Feed client registered", map[string]interface{}{"clients": len(h.clients)})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast pushes an event to every feed client. With Redis available the
// event goes through pub/sub so all instances (this one included) deliver
// it; local fan-out is the single-instance fallback.
func (h *Hub) Broadcast(eventType string, payload map[string]interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})

	if h.rdb != nil {
		if err := h.rdb.Publish(context.Background(), feedChannel, data).Err(); err == nil {
			return
		} else {
			h.logger.Warn("Hub", "Redis publish failed, delivering locally only", map[string]interface{}{"error": err.Error()})
		}
	}

	h.fanOut(data)
}

func (h *Hub) fanOut(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer, drop it. Unregister happens via the read pump.
			h.logger.Warn("Hub", "Feed client send buffer full, dropping message", nil)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, feedChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var data json.RawMessage
		if err := json.Unmarshal([]byte(msg.Payload), &data); err != nil {
			log.Printf("Redis feed msg parse error: %v", err)
			continue
		}
		h.fanOut(data)
	}
}
