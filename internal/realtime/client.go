package realtime

import (
	"github.com/gorilla/websocket"
	"restaurant_chat/pkg/logger"
)

// AnonymousID — идентичность соединения без токена. Такое соединение
// классифицируется, но не отклоняется.
const AnonymousID = "anonymous"

const sendBufferSize = 64

// Client — одно websocket-соединение с назначенной логической идентичностью.
type Client struct {
	ID      string
	UserID  string
	IsAdmin bool

	conn *websocket.Conn
	send chan OutEvent
	log  logger.Logger
}

func NewClient(id, userID string, isAdmin bool, conn *websocket.Conn, log logger.Logger) *Client {
	return &Client{
		ID:      id,
		UserID:  userID,
		IsAdmin: isAdmin,
		conn:    conn,
		send:    make(chan OutEvent, sendBufferSize),
		log:     log,
	}
}

func (c *Client) Anonymous() bool {
	return c.UserID == AnonymousID
}

// Send ставит кадр в очередь отправки. Медленный клиент кадры теряет,
// блокировать общий цикл рассылки нельзя.
func (c *Client) Send(event OutEvent) {
	select {
	case c.send <- event:
	default:
		c.log.Warn("Dropping frame for slow client", "client_id", c.ID, "event", event.Event)
	}
}

// WritePump последовательно пишет кадры из очереди в соединение.
// Завершается после закрытия очереди в Hub.Unregister.
func (c *Client) WritePump() {
	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			c.log.Warn("Failed to write frame", "client_id", c.ID, "error", err)
			return
		}
	}
}

func (c *Client) ReadEnvelope() (*Envelope, error) {
	var env Envelope
	if err := c.conn.ReadJSON(&env); err != nil {
		return nil, err
	}
	return &env, nil
}
