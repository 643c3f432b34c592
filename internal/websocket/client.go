package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/branyang02/smart-oh-ws-server/internal/models"
	"github.com/branyang02/smart-oh-ws-server/internal/protocol"
	"github.com/branyang02/smart-oh-ws-server/internal/state"
	"github.com/branyang02/smart-oh-ws-server/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client is one live websocket connection for an authenticated user. The
// handshake collaborator resolves identity and role before the client is
// created; the hub never sees an unauthenticated connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	user models.User
	role state.Role
}

// NewClient wraps an upgraded connection. The caller registers it with the
// hub and starts both pumps.
func NewClient(hub *Hub, conn *websocket.Conn, user models.User, role state.Role) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		user: user,
		role: role,
	}
}

// enqueue queues an outbound payload without blocking the hub. A client too
// far behind to take one more message is left for the broadcast path to
// evict.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

// ReadPump decodes inbound envelopes and forwards them to the hub until the
// connection drops. Undecodable messages are answered on this connection
// only; they never reach the room.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.shutdown:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Error("read error for %s: %v", c.user.ID, err)
			}
			break
		}

		env, err := protocol.DecodeEnvelope(message)
		if err != nil {
			c.enqueue(protocol.MarshalError(err))
			continue
		}

		select {
		case c.hub.actions <- inboundAction{client: c, envelope: env}:
		case <-c.hub.shutdown:
			return
		}
	}
}

// WritePump drains the send channel onto the wire and keeps the connection
// alive with pings. It exits when the hub closes the send channel or a
// write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("write error for %s: %v", c.user.ID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
