package controllers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"restaurant_map/internal/models"
)

const writeWait = 5 * time.Second

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the map page may be served from any origin
	},
}

// ChangeHub fans record changes out to every connected map client.
type ChangeHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan models.ChangeEvent
	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// NewChangeHub starts the broadcasting goroutine; stop it with Close.
func NewChangeHub() *ChangeHub {
	hub := &ChangeHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan models.ChangeEvent, 100),
		done:      make(chan struct{}),
	}
	go hub.run()
	return hub
}

func (h *ChangeHub) run() {
	for {
		select {
		case <-h.done:
			return
		case event := <-h.broadcast:
			h.send(event)
		}
	}
}

func (h *ChangeHub) send(event models.ChangeEvent) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", conn)).
				Info("dropping map client after failed write")
			h.unregister(conn)
			conn.Close()
		}
	}
}

// Publish never blocks the caller; events are dropped when the buffer is full.
func (h *ChangeHub) Publish(event models.ChangeEvent) {
	select {
	case h.broadcast <- event:
	default:
		logrus.WithField("id", event.ID).Warn("change broadcast channel full, dropping event")
	}
}

func (h *ChangeHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("map client connected")
}

func (h *ChangeHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("map client disconnected")
	}
}

func (h *ChangeHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close stops broadcasting and disconnects every client.
func (h *ChangeHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		defer h.mu.Unlock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
	})
}

// ServeWS upgrades /ws/changes. Clients only listen; anything they send is ignored.
func (h *ChangeHub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}

	h.register(conn)
	defer func() {
		h.unregister(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("map client read failed")
			}
			return
		}
	}
}
