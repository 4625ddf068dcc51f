package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

// Event types
const (
	EventReservationUpdate  = "reservation_update"
	EventRoomUpdate         = "room_update"
	EventCleaningUpdate     = "cleaning_update"
	EventMaintenanceUpdate  = "maintenance_update"
	EventInvoiceUpdate      = "invoice_update"
	EventPaymentReceived    = "payment_received"
	EventServiceOrderUpdate = "service_order_update"
	EventFeedbackReceived   = "feedback_received"
	EventStaffNotification  = "staff_notification"
)

const (
	DefaultChannel = "hotel:events"
	writeWait      = 5 * time.Second
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	At    time.Time   `json:"at"`
}

// Hub holds the websocket clients of this process. With Redis attached,
// Publish goes through a pub/sub channel so every instance delivers it.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex

	redisMu    sync.RWMutex
	redis      *redis.Client
	channel    string
	subscribed chan struct{}
}

func New() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]string),
		channel:    DefaultChannel,
		subscribed: make(chan struct{}),
	}
}

// UseRedis routes Publish through channel on client. Call Run to consume it.
func (h *Hub) UseRedis(client *redis.Client, channel string) {
	h.redisMu.Lock()
	h.redis = client
	h.redisMu.Unlock()
	if channel != "" {
		h.channel = channel
	}
}

// Register adds a connection under the given role.
func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// ServeConn registers conn and blocks reading until the client goes away.
func (h *Hub) ServeConn(conn *websocket.Conn, role string) {
	h.Register(conn, role)
	defer h.Unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish sends an event to every connected client.
func (h *Hub) Publish(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data, At: time.Now().UTC()})
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s event: %v", event, err)
		return
	}

	if client := h.redisClient(); client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := client.Publish(ctx, h.channel, payload).Err()
		if err == nil {
			return
		}
		utils.ErrorLogger.Errorf("Redis publish failed, delivering locally: %v", err)
	}
	h.broadcast(payload)
}

func (h *Hub) redisClient() *redis.Client {
	h.redisMu.RLock()
	defer h.redisMu.RUnlock()
	return h.redis
}

// detach drops Redis once the subscription is gone so Publish delivers locally.
func (h *Hub) detach(reason error) {
	h.redisMu.Lock()
	h.redis = nil
	h.redisMu.Unlock()
	utils.ErrorLogger.Errorf("Live events lost redis channel %s, delivering locally: %v", h.channel, reason)
}

// Subscribed is closed once Run has an active Redis subscription.
func (h *Hub) Subscribed() <-chan struct{} {
	return h.subscribed
}

// Run forwards messages from the Redis channel to local clients until ctx ends.
// Without Redis it just waits for ctx. If the subscription fails or drops,
// the hub falls back to local delivery.
func (h *Hub) Run(ctx context.Context) error {
	client := h.redisClient()
	if client == nil {
		<-ctx.Done()
		return nil
	}

	pubsub := client.Subscribe(ctx, h.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		h.detach(err)
		return err
	}
	close(h.subscribed)
	utils.InfoLogger.Printf("Live events subscribed to redis channel %s", h.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				h.detach(errors.New("subscription closed"))
				return nil
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(payload []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, role := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Errorf("Dropping %s client after write error: %v", role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
