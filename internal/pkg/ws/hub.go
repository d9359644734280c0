package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// 单条推送的写超时
const writeWait = 5 * time.Second

// Hub 管理厨房看板的 websocket 连接，同一个管理员会话可以开多个标签页
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	SessionID string
	Conn      *websocket.Conn
	mu        sync.Mutex // 写锁，gorilla 连接不支持并发写
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.SessionID] == nil {
		h.clients[client.SessionID] = make(map[*Client]struct{})
	}
	h.clients[client.SessionID][client] = struct{}{}

	log.Debug().
		Str("session", client.SessionID).
		Int("session_conns", len(h.clients[client.SessionID])).
		Msg("kitchen board connected")
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.SessionID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.SessionID)
		}
	}
	log.Debug().Str("session", client.SessionID).Msg("kitchen board disconnected")
}

// Broadcast 向所有看板连接推送消息，写失败的连接会被移除并关闭，不影响其它连接
func (h *Hub) Broadcast(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, conns := range h.clients {
		for c := range conns {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Str("session", c.SessionID).Str("type", msg.Type).Msg("kitchen board write failed, dropping connection")
			h.Unregister(c)
			c.Conn.Close()
		}
	}
	return nil
}

func (h *Hub) IsOnline(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID]) > 0
}

// ConnectionCount 获取在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
