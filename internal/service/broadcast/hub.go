package broadcast

import (
	"sync"

	"sandpixel-be/internal/service/game"

	"go.uber.org/zap"
)

const RESP_CHANNEL_SIZE = 64

// Hub 按 session 保存响应通道，按房间保存订阅者。
// 所有发送都是非阻塞的，通道已满的消息直接丢弃
type Hub struct {
	mu sync.RWMutex

	sessions map[string]chan game.ResponseWrapper
	rooms    map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]chan game.ResponseWrapper),
		rooms:    make(map[string]map[string]struct{}),
	}
}

// Register 为新连接创建响应通道
func (h *Hub) Register(sessionID string) <-chan game.ResponseWrapper {
	h.mu.Lock()
	defer h.mu.Unlock()

	respCh := make(chan game.ResponseWrapper, RESP_CHANNEL_SIZE)
	h.sessions[sessionID] = respCh

	return respCh
}

// Unregister 关闭响应通道并移除该 session 的全部订阅
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if respCh, ok := h.sessions[sessionID]; ok {
		close(respCh)
		delete(h.sessions, sessionID)
	}

	for roomID, members := range h.rooms {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) Subscribe(roomID, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[roomID] = members
	}
	members[sessionID] = struct{}{}
}

func (h *Hub) Unsubscribe(roomID, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return
	}

	delete(members, sessionID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) BroadcastToRoom(roomID string, resp game.ResponseWrapper) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sessionID := range h.rooms[roomID] {
		h.sendLocked(sessionID, resp)
	}
}

func (h *Hub) SendToPlayer(sessionID string, resp game.ResponseWrapper) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.sendLocked(sessionID, resp)
}

func (h *Hub) sendLocked(sessionID string, resp game.ResponseWrapper) {
	respCh, ok := h.sessions[sessionID]
	if !ok {
		zap.L().Debug(
			"session 不存在，丢弃响应",
			zap.String("session_id", sessionID),
			zap.String("response_type", resp.RespType),
		)
		return
	}

	select {
	case respCh <- resp:
	default:
		zap.L().Warn(
			"发送响应失败：响应通道已满",
			zap.String("session_id", sessionID),
			zap.String("response_type", resp.RespType),
		)
	}
}

func (h *Hub) SubscriberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomID])
}
