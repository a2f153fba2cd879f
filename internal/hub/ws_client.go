package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer bounds per-client backlog; a slow client that fills it
	// is disconnected rather than blocking the publisher.
	sendBuffer = 64
)

// WSClient adapts one websocket connection into a hub Subscriber for a
// single conversation channel.
type WSClient struct {
	hub            *Hub
	conversationID string
	conn           *websocket.Conn
	send           chan Event
	done           chan struct{}
	closeOnce      sync.Once
}

// NewWSClient wraps an upgraded connection, joins it to the conversation's
// channel and starts the read/write pumps.
func NewWSClient(h *Hub, conversationID string, conn *websocket.Conn) *WSClient {
	c := &WSClient{
		hub:            h,
		conversationID: conversationID,
		conn:           conn,
		send:           make(chan Event, sendBuffer),
		done:           make(chan struct{}),
	}

	h.Subscribe(conversationID, c)
	go c.writePump()
	go c.readPump()

	return c
}

// Deliver queues an event for the connection. If the client's buffer is
// full it is considered dead and closed.
func (c *WSClient) Deliver(ev Event) {
	select {
	case <-c.done:
	case c.send <- ev:
	default:
		log.Printf("[Hub] Dropping slow subscriber on %s", c.conversationID)
		go c.Close()
	}
}

// Close leaves the channel and tears the connection down. Safe to call
// more than once.
func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		c.hub.Unsubscribe(c.conversationID, c)
		close(c.done)
		_ = c.conn.Close()
	})
}

// readPump drains inbound frames to keep pong handling alive. The UI never
// sends data frames; any read error ends the subscription.
func (c *WSClient) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(8 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			b, err := json.Marshal(ev)
			if err != nil {
				log.Printf("[Hub] Failed to encode event: %v", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ Subscriber = (*WSClient)(nil)
