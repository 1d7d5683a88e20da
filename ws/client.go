package ws

import (
	"time"

	"github.com/gorilla/websocket"

	"edulink_backend/internal/live"
	"edulink_backend/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer absorbs snapshot bursts; every message is a full window
	// so a slow reader only delays, never corrupts, its view.
	sendBuffer = 32
)

// feedMessage is one frame on the wire: the feed name and its full
// re-evaluated snapshot.
type feedMessage struct {
	Feed     string      `json:"feed"`
	Snapshot interface{} `json:"snapshot"`
	Error    string      `json:"error,omitempty"`
}

type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan feedMessage
	closed chan struct{}

	subscriptions []*live.Subscription
}

func newClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan feedMessage, sendBuffer),
		closed: make(chan struct{}),
	}
}

// enqueue hands a frame to the write pump. It must not block: it is
// called from subscription callbacks, which run under the subscription
// lock. A full buffer drops the oldest pending frame; the newest full
// snapshot supersedes anything queued before it.
func (c *Client) enqueue(msg feedMessage) {
	for {
		select {
		case <-c.closed:
			return
		case c.send <- msg:
			return
		default:
			select {
			case <-c.send:
			default:
			}
		}
	}
}

// readPump discards client frames but keeps the connection's read side
// alive for pong handling and close detection.
func (c *Client) readPump() {
	defer c.shutdown()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read closed", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Debug("websocket write failed", "user_id", c.userID, "error", err)
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

// shutdown tears down all feed subscriptions, then signals the write
// pump. Unsubscribe blocks until any in-flight callback finishes, so no
// frame is enqueued after closed is closed.
func (c *Client) shutdown() {
	for _, sub := range c.subscriptions {
		sub.Unsubscribe()
	}

	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	c.conn.Close()
}
