package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"triagedesk/dashboard/internal/query"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	sendBuffer   = 256
)

// upgraderFactory 创建带有 Origin 验证的 WebSocket 升级器
func upgraderFactory(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			requestOrigin := r.Header.Get("Origin")
			if requestOrigin == "" {
				return true
			}
			for _, origin := range allowedOrigins {
				if origin == "*" || origin == requestOrigin {
					return true
				}
			}
			return false
		},
	}
}

// MessageType 定义WebSocket消息类型
type MessageType string

const (
	MessageTypeInvalidate  MessageType = "invalidate"
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeSubscribed  MessageType = "subscribed"
	MessageTypeError       MessageType = "error"
)

// Message 定义WebSocket消息结构
//
// 服务端推送 invalidate 消息时 Keys 为失效的键前缀；客户端通过 subscribe
// 只接收某一类键（例如 "emails"、"teams"），未订阅任何类别时接收全部。
type Message struct {
	Type      MessageType `json:"type"`
	Topic     string      `json:"topic,omitempty"`
	Keys      []string    `json:"keys,omitempty"`
	Removed   int         `json:"removed,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientCounter 连接数变化时回调（监控指标）
type ClientCounter interface {
	UpdateWebSocketClients(count int)
}

// Client 代表一个WebSocket客户端连接
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	topics map[string]bool
	closed bool
	mu     sync.RWMutex
	log    *zap.Logger
}

// close 关闭发送通道，由 Hub 的 Run 协程调用
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub 管理所有WebSocket连接，并把查询缓存的失效事件推送给浏览器
type Hub struct {
	clients        map[string]*Client
	register       chan *Client
	unregister     chan *Client
	broadcast      chan *Message
	done           chan struct{}
	mu             sync.RWMutex
	log            *zap.Logger
	allowedOrigins []string
	counter        ClientCounter
}

// NewHub 创建WebSocket Hub
func NewHub(allowedOrigins []string, log *zap.Logger) *Hub {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Hub{
		clients:        make(map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan *Message, sendBuffer),
		done:           make(chan struct{}),
		log:            log,
		allowedOrigins: allowedOrigins,
	}
}

// SetClientCounter 设置连接数回调
func (h *Hub) SetClientCounter(c ClientCounter) {
	h.counter = c
}

// Run 启动Hub，ctx 结束时关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.log.Info("websocket hub stopped")
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			n := len(h.clients)
			h.mu.Unlock()
			h.countChanged(n)
			h.log.Debug("client registered", zap.String("id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				client.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.countChanged(n)
			h.log.Debug("client unregistered", zap.String("id", client.ID))

		case msg := <-h.broadcast:
			h.broadcastInvalidation(msg)
		}
	}
}

func (h *Hub) countChanged(n int) {
	if h.counter != nil {
		h.counter.UpdateWebSocketClients(n)
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ObserveLookup 缓存命中不推送
func (h *Hub) ObserveLookup(query.Key, bool) {}

// ObserveInvalidation 把失效的键前缀推送给客户端，广播队列满时丢弃
func (h *Hub) ObserveInvalidation(prefixes []query.Key, removed int) {
	keys := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		keys = append(keys, string(p))
	}
	msg := &Message{
		Type:      MessageTypeInvalidate,
		Keys:      keys,
		Removed:   removed,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("broadcast queue full, dropping invalidation", zap.Strings("keys", keys))
	}
}

// broadcastInvalidation 向关心这些键的客户端发送失效消息
func (h *Hub) broadcastInvalidation(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if !client.wants(msg.Keys) {
			continue
		}
		select {
		case client.send <- data:
		default:
			// 客户端阻塞，跳过
			h.log.Warn("client channel blocked, skipping", zap.String("clientID", client.ID))
		}
	}
}

// closeAllClients 关闭所有客户端连接
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		client.close()
	}
	h.clients = make(map[string]*Client)
}

// HandleWebSocket 处理WebSocket连接
func HandleWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := upgraderFactory(hub.allowedOrigins)

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("failed to upgrade connection",
				zap.Error(err),
				zap.String("origin", c.Request.Header.Get("Origin")),
				zap.String("remote_addr", c.ClientIP()))
			return
		}

		client := &Client{
			ID:     uuid.NewString(),
			conn:   conn,
			hub:    hub,
			send:   make(chan []byte, sendBuffer),
			topics: make(map[string]bool),
			log:    hub.log,
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// wants 客户端是否订阅了任一键所属的类别
func (c *Client) wants(keys []string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.topics) == 0 {
		return true
	}
	for _, k := range keys {
		if c.topics[query.Key(k).Kind()] {
			return true
		}
	}
	return false
}

// readPump 处理客户端消息
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket error", zap.Error(err))
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump 发送消息给客户端
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
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

// handleMessage 处理接收到的消息
func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeSubscribe:
		if msg.Topic == "" {
			c.sendError("topic is required")
			return
		}
		c.mu.Lock()
		c.topics[msg.Topic] = true
		c.mu.Unlock()
		c.sendMessage(&Message{Type: MessageTypeSubscribed, Topic: msg.Topic, Timestamp: time.Now()})
	case MessageTypeUnsubscribe:
		c.mu.Lock()
		delete(c.topics, msg.Topic)
		c.mu.Unlock()
	default:
		c.log.Debug("unknown message type", zap.String("type", string(msg.Type)))
		c.sendError("unknown message type")
	}
}

// sendError 发送错误消息给客户端
func (c *Client) sendError(errMsg string) {
	c.sendMessage(&Message{
		Type:      MessageTypeError,
		Error:     errMsg,
		Timestamp: time.Now(),
	})
}

// sendMessage 发送消息给客户端
func (c *Client) sendMessage(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("failed to marshal message", zap.Error(err))
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("client channel blocked", zap.String("clientID", c.ID))
	}
}
