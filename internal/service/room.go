package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"sandpixel-be/internal/service/dto"
	"sandpixel-be/internal/service/game"

	"go.uber.org/zap"
)

// RoomService 是进程内唯一的房间注册表，负责房间的创建、加入、离开和过期清理。
// 锁顺序固定为先注册表后房间
type RoomService struct {
	state  *roomServiceState
	timers *game.TimerManager

	inactivity time.Duration
}

type roomServiceState struct {
	mu sync.RWMutex

	rooms map[string]*game.Room
	// session ID 到房间 ID 的索引
	sessionRooms map[string]string

	cleanUpDone chan struct{}
	wg          sync.WaitGroup
}

func NewRoomService(timers *game.TimerManager, inactivity, cleanupInterval time.Duration) *RoomService {
	rs := &RoomService{
		state: &roomServiceState{
			rooms:        make(map[string]*game.Room),
			sessionRooms: make(map[string]string),
			cleanUpDone:  make(chan struct{}),
		},
		timers:     timers,
		inactivity: inactivity,
	}

	// 启动一个 goroutine 定期清理过期的房间
	rs.state.wg.Add(1)
	go rs.startCleanupLoop(cleanupInterval)

	return rs
}

func (rs *RoomService) startCleanupLoop(interval time.Duration) {
	defer rs.state.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.state.cleanUpDone:
			return

		case <-ticker.C:
			rs.RemoveExpired()
		}
	}
}

// RemoveExpired 删除长时间无活动的房间及其全部 session 索引，返回删除的房间 ID
func (rs *RoomService) RemoveExpired() []string {
	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	var removed []string
	for roomID, room := range rs.state.rooms {
		room.Lock()
		valid := isRoomValid(room, rs.inactivity)
		room.Unlock()

		if valid {
			continue
		}

		zap.S().Infof("房间 %s 长时间无活动，开始清理", roomID)
		rs.removeRoomLocked(roomID)
		removed = append(removed, roomID)
	}

	return removed
}

// removeRoomLocked 调用方必须持有注册表写锁
func (rs *RoomService) removeRoomLocked(roomID string) {
	delete(rs.state.rooms, roomID)

	for sid, rid := range rs.state.sessionRooms {
		if rid == roomID {
			delete(rs.state.sessionRooms, sid)
		}
	}

	rs.timers.Cleanup(roomID)
}

func (rs *RoomService) Close() {
	close(rs.state.cleanUpDone)
	rs.state.wg.Wait()
}

func (rs *RoomService) CreateRoom(playerName, sessionID string, settings game.RoomSettings) (*game.Room, *game.Player, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, nil, fmt.Errorf("player name is required: %w", game.ErrInvalidRequest)
	}

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	// 房间号不保证唯一，冲突时重新生成
	roomID := game.GenRoomID()
	for rs.state.rooms[roomID] != nil {
		roomID = game.GenRoomID()
	}

	room := game.NewRoom(roomID, settings)
	player := game.NewPlayer(playerName, sessionID)

	room.Lock()
	room.AddPlayer(player)
	room.Unlock()

	rs.state.rooms[roomID] = room
	rs.state.sessionRooms[sessionID] = roomID

	zap.S().Infof("房间 %s 由 %s 创建，模式 %s", roomID, playerName, room.Settings.GameMode)

	return room, player, nil
}

func (rs *RoomService) JoinRoom(roomID, playerName, sessionID string) (*game.Room, *game.Player, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, nil, fmt.Errorf("player name is required: %w", game.ErrInvalidRequest)
	}

	roomID = normalizeRoomID(roomID)

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	room := rs.state.rooms[roomID]
	if room == nil {
		return nil, nil, game.ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	if room.State.Phase != game.PHASE_LOBBY {
		return nil, nil, game.ErrGameInProgress
	}
	if room.IsFull() {
		return nil, nil, game.ErrRoomFull
	}

	player := game.NewPlayer(playerName, sessionID)
	room.AddPlayer(player)
	rs.state.sessionRooms[sessionID] = roomID

	zap.S().Infof("房间 %s 接纳玩家 %s(%s)", roomID, playerName, player.ID)

	return room, player, nil
}

// RejoinRoom 把掉线的玩家绑定到新的 session 上，玩家 ID 保持不变
func (rs *RoomService) RejoinRoom(roomID, playerID, sessionID string) (*game.Room, *game.Player, error) {
	roomID = normalizeRoomID(roomID)

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	room := rs.state.rooms[roomID]
	if room == nil {
		return nil, nil, game.ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	player := room.GetPlayerByID(playerID)
	if player == nil {
		return nil, nil, game.ErrPlayerNotFound
	}
	if player.Connected {
		return nil, nil, fmt.Errorf("player %s is still connected: %w", playerID, game.ErrInvalidRequest)
	}

	oldSessionID := player.SessionID
	room.RebindSession(oldSessionID, sessionID)

	delete(rs.state.sessionRooms, oldSessionID)
	rs.state.sessionRooms[sessionID] = roomID

	zap.S().Infof("玩家 %s 重新连接到房间 %s", playerID, roomID)

	return room, player, nil
}

// LeaveRoom 返回离开后的房间，房间因此变空被删除时返回 nil
func (rs *RoomService) LeaveRoom(roomID, sessionID string) (*game.Room, *game.Player) {
	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	delete(rs.state.sessionRooms, sessionID)

	room := rs.state.rooms[roomID]
	if room == nil {
		return nil, nil
	}

	room.Lock()
	player := room.RemovePlayer(sessionID)
	empty := room.IsEmpty()
	room.Unlock()

	if player != nil {
		zap.S().Infof("玩家 %s 离开房间 %s", player.Name, roomID)
	}

	if empty {
		zap.S().Infof("房间 %s 已空，删除", roomID)
		rs.removeRoomLocked(roomID)
		return nil, player
	}

	return room, player
}

func (rs *RoomService) ToggleReady(sessionID string) (*game.Room, error) {
	room := rs.GetRoom(rs.GetRoomIDForSession(sessionID))
	if room == nil {
		return nil, game.ErrNotInRoom
	}

	room.Lock()
	defer room.Unlock()

	player := room.GetPlayer(sessionID)
	if player == nil {
		return nil, game.ErrPlayerNotFound
	}

	player.Ready = !player.Ready
	room.Touch()

	return room, nil
}

// HandleDisconnect 只把玩家标记为离线，等待其重新连接
func (rs *RoomService) HandleDisconnect(sessionID string) string {
	roomID := rs.GetRoomIDForSession(sessionID)
	room := rs.GetRoom(roomID)
	if room == nil {
		return ""
	}

	room.Lock()
	defer room.Unlock()

	if player := room.GetPlayer(sessionID); player != nil {
		player.Connected = false
		zap.S().Debugf("玩家 %s 在房间 %s 中掉线", player.Name, roomID)
	}

	return roomID
}

func (rs *RoomService) GetRoom(roomID string) *game.Room {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	return rs.state.rooms[normalizeRoomID(roomID)]
}

func (rs *RoomService) GetRoomIDForSession(sessionID string) string {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	return rs.state.sessionRooms[sessionID]
}

// GetPlayerBySession 返回玩家的副本
func (rs *RoomService) GetPlayerBySession(sessionID string) (game.Player, bool) {
	room := rs.GetRoom(rs.GetRoomIDForSession(sessionID))
	if room == nil {
		return game.Player{}, false
	}

	room.Lock()
	defer room.Unlock()

	player := room.GetPlayer(sessionID)
	if player == nil {
		return game.Player{}, false
	}

	return *player, true
}

// ListRooms 列出仍在大厅且未满的房间
func (rs *RoomService) ListRooms() []dto.RoomSummary {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	summaries := make([]dto.RoomSummary, 0, len(rs.state.rooms))
	for _, room := range rs.state.rooms {
		room.Lock()
		if room.State.Phase == game.PHASE_LOBBY && !room.IsFull() {
			summaries = append(summaries, toRoomSummary(room))
		}
		room.Unlock()
	}

	sortRoomSummaries(summaries)
	return summaries
}

func (rs *RoomService) RoomCount() int {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	return len(rs.state.rooms)
}
