package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/itam-dev/itam-store/internal/registry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeTimeout = 10 * time.Second

// Hub fans registry change events out to connected websocket clients, so the
// asset list and audit views can refresh without polling.
type Hub struct {
	clients    map[*watchClient]bool
	register   chan *watchClient
	unregister chan *watchClient
	metrics    *Metrics // optional, counts sessions
}

type watchClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. metrics may be nil.
func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		clients:    make(map[*watchClient]bool),
		register:   make(chan *watchClient),
		unregister: make(chan *watchClient),
		metrics:    metrics,
	}
}

// Run pumps registry events to every connected client until the event channel
// closes (registry teardown).
func (h *Hub) Run(events <-chan registry.Event) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			if h.metrics != nil {
				h.metrics.watchSessions.Inc()
			}

		case client := <-h.unregister:
			if h.clients[client] {
				delete(h.clients, client)
				close(client.send)
				if h.metrics != nil {
					h.metrics.watchSessions.Dec()
				}
			}

		case ev, ok := <-events:
			if !ok {
				for client := range h.clients {
					delete(h.clients, client)
					close(client.send)
				}
				return
			}
			msg, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow consumer: drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
					if h.metrics != nil {
						h.metrics.watchSessions.Dec()
					}
				}
			}
		}
	}
}

// ServeWS upgrades the request and attaches the client to the hub.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Watch upgrade failed: %v", err)
		return
	}

	client := &watchClient{conn: conn, send: make(chan []byte, 16)}
	h.register <- client

	go client.writePump()
	go client.readPump(h)
}

func (c *watchClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames; its job is noticing the peer went away.
func (c *watchClient) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
