package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Frame is the wire envelope for every outbound socket message. Acks carry
// the request id and ok flag; broadcasts carry only event and data.
type Frame struct {
	Event   string      `json:"event"`
	ID      int64       `json:"id,omitempty"`
	OK      *bool       `json:"ok,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// inbound is the envelope clients send; data stays raw until the event
// handler knows its shape.
type inbound struct {
	Event string          `json:"event"`
	ID    int64           `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// wsConn is the slice of the websocket connection the adapter needs.
type wsConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one live socket session of an authenticated user.
type Client struct {
	UserID uuid.UUID

	mu   sync.Mutex
	conn wsConn
}

func NewClient(userID uuid.UUID, conn wsConn) *Client {
	return &Client{UserID: userID, conn: conn}
}

// Send writes one frame; writes are serialized per connection.
func (c *Client) Send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(f)
}

// Ack answers a request frame. A failed ack carries a message, a successful
// one carries the payload.
func (c *Client) Ack(id int64, ok bool, data interface{}, message string) error {
	return c.Send(Frame{Event: "ack", ID: id, OK: &ok, Data: data, Message: message})
}
