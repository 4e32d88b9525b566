// Package realtime 通过 websocket 向在线用户推送业务事件
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// client 一个 websocket 连接
type client struct {
	email string
	conn  *websocket.Conn
	send  chan []byte
}

// Hub 按用户邮箱管理 websocket 连接，同一用户可以有多个连接
type Hub struct {
	mu       sync.Mutex
	clients  map[string]map[*client]struct{}
	upgrader websocket.Upgrader
	closed   bool
}

// NewHub 创建连接中心。allowOrigin 为 "*" 时接受任意来源。
func NewHub(allowOrigin string) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowOrigin == "*" || origin == "" || origin == allowOrigin
			},
		},
	}
}

// Name 投递通道名称
func (h *Hub) Name() string {
	return "websocket"
}

// Serve 将请求升级为 websocket 并阻塞到连接断开
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, email string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{email: email, conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		return conn.Close()
	}

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// Publish 将事件发送给接收人的所有连接。接收人不在线时直接丢弃。
func (h *Hub) Publish(_ context.Context, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[event.Recipient] {
		select {
		case c.send <- data:
		default:
			// 发送缓冲已满，断开慢连接
			logger.Warning("websocket 客户端 %s 发送缓冲已满，断开连接", c.email)
			h.removeLocked(c)
		}
	}
	return nil
}

// ClientCount 当前在线连接数
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Close 断开所有连接，之后的连接请求会被拒绝
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[c.email]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.email] = set
	}
	set[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked 调用方需持有 h.mu
func (h *Hub) removeLocked(c *client) {
	set, ok := h.clients[c.email]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.email)
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// 客户端只接收事件，收到的消息一律忽略
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warning("websocket 连接异常断开 %s: %v", c.email, err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
