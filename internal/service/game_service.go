package service

import (
	"fmt"

	"sandpixel-be/internal/service/game"

	"go.uber.org/zap"
)

// Notifier 在 Broadcaster 之外还需要维护房间的订阅关系
type Notifier interface {
	game.Broadcaster
	Subscribe(roomID, sessionID string)
	Unsubscribe(roomID, sessionID string)
}

// 需要 session 已经在房间中的请求
var roomRequests = map[string]struct{}{
	game.REQ_START_GAME:               {},
	game.REQ_SELECT_WORD:              {},
	game.REQ_DRAW_STROKE:              {},
	game.REQ_SUBMIT_DRAWING:           {},
	game.REQ_SUBMIT_GUESS:             {},
	game.REQ_SUBMIT_TELEPHONE_DRAWING: {},
	game.REQ_SUBMIT_TELEPHONE_GUESS:   {},
	game.REQ_CAST_VOTE:                {},
	game.REQ_SEND_CHAT:                {},
	game.REQ_SEND_REACTION:            {},
}

// GameService 把客户端请求分发到注册表和游戏状态机
type GameService struct {
	rooms   *RoomService
	machine *game.GameMachine
	out     Notifier
}

func NewGameService(rooms *RoomService, machine *game.GameMachine, out Notifier) *GameService {
	return &GameService{
		rooms:   rooms,
		machine: machine,
		out:     out,
	}
}

func (gs *GameService) Rooms() *RoomService {
	return gs.rooms
}

// Handle 处理一个客户端请求，返回的错误应当只回复给发起请求的 session
func (gs *GameService) Handle(sessionID string, req game.RequestWrapper) error {
	switch req.ReqType {
	case game.REQ_CREATE_ROOM:
		r := game.TryUnwrap[game.CreateRoomRequest](req, game.REQ_CREATE_ROOM)
		if r == nil {
			return game.ErrInvalidRequest
		}
		return gs.createRoom(sessionID, *r)

	case game.REQ_JOIN_ROOM:
		r := game.TryUnwrap[game.JoinRoomRequest](req, game.REQ_JOIN_ROOM)
		if r == nil {
			return game.ErrInvalidRequest
		}
		return gs.joinRoom(sessionID, *r)

	case game.REQ_REJOIN_ROOM:
		r := game.TryUnwrap[game.RejoinRoomRequest](req, game.REQ_REJOIN_ROOM)
		if r == nil {
			return game.ErrInvalidRequest
		}
		return gs.rejoinRoom(sessionID, *r)

	case game.REQ_LEAVE_ROOM:
		return gs.leaveRoom(sessionID)

	case game.REQ_TOGGLE_READY:
		room, err := gs.rooms.ToggleReady(sessionID)
		if err != nil {
			return err
		}
		gs.out.BroadcastToRoom(room.ID, game.WrapResponse(game.RESP_ROOM_STATE, snapshot(room)))
		return nil
	}

	if _, ok := roomRequests[req.ReqType]; !ok {
		return unknownRequest(req.ReqType)
	}

	roomID := gs.rooms.GetRoomIDForSession(sessionID)
	if roomID == "" {
		return game.ErrNotInRoom
	}

	switch req.ReqType {
	case game.REQ_START_GAME:
		return gs.machine.StartGame(roomID, sessionID)

	case game.REQ_SELECT_WORD:
		r := game.TryUnwrap[game.SelectWordRequest](req, game.REQ_SELECT_WORD)
		if r == nil {
			return game.ErrInvalidRequest
		}
		return gs.machine.SelectWord(roomID, sessionID, r.WordIndex)

	case game.REQ_DRAW_STROKE:
		r := game.TryUnwrap[game.DrawStrokeRequest](req, game.REQ_DRAW_STROKE)
		if r == nil {
			return nil
		}
		return gs.machine.DrawStroke(roomID, sessionID, r.Stroke)

	case game.REQ_SUBMIT_DRAWING:
		r := game.TryUnwrap[game.SubmitDrawingRequest](req, game.REQ_SUBMIT_DRAWING)
		if r == nil {
			return game.ErrInvalidRequest
		}
		return gs.machine.SubmitDrawing(roomID, sessionID, r.Drawing)

	case game.REQ_SUBMIT_GUESS:
		r := game.TryUnwrap[game.SubmitGuessRequest](req, game.REQ_SUBMIT_GUESS)
		if r == nil {
			return nil
		}
		return gs.machine.SubmitGuess(roomID, sessionID, r.Text)

	case game.REQ_SUBMIT_TELEPHONE_DRAWING:
		r := game.TryUnwrap[game.SubmitDrawingRequest](req, game.REQ_SUBMIT_TELEPHONE_DRAWING)
		if r == nil {
			return game.ErrInvalidRequest
		}
		return gs.machine.SubmitTelephoneDrawing(roomID, sessionID, r.Drawing)

	case game.REQ_SUBMIT_TELEPHONE_GUESS:
		r := game.TryUnwrap[game.SubmitGuessRequest](req, game.REQ_SUBMIT_TELEPHONE_GUESS)
		if r == nil {
			return game.ErrInvalidRequest
		}
		return gs.machine.SubmitTelephoneGuess(roomID, sessionID, r.Text)

	case game.REQ_CAST_VOTE:
		r := game.TryUnwrap[game.CastVoteRequest](req, game.REQ_CAST_VOTE)
		if r == nil {
			return game.ErrInvalidRequest
		}
		return gs.machine.CastVote(roomID, sessionID, r.DrawerID)

	case game.REQ_SEND_CHAT:
		r := game.TryUnwrap[game.SendChatRequest](req, game.REQ_SEND_CHAT)
		if r == nil {
			return game.ErrInvalidRequest
		}
		return gs.machine.SendChat(roomID, sessionID, r.Text)

	case game.REQ_SEND_REACTION:
		r := game.TryUnwrap[game.SendReactionRequest](req, game.REQ_SEND_REACTION)
		if r == nil {
			return nil
		}
		return gs.machine.SendReaction(roomID, sessionID, r.Emoji)
	}

	return unknownRequest(req.ReqType)
}

func unknownRequest(reqType string) error {
	return fmt.Errorf("unknown request type %q: %w", reqType, game.ErrInvalidRequest)
}

func (gs *GameService) createRoom(sessionID string, req game.CreateRoomRequest) error {
	gs.leaveCurrentRoom(sessionID)

	room, player, err := gs.rooms.CreateRoom(req.PlayerName, sessionID, req.Settings)
	if err != nil {
		return err
	}

	gs.out.Subscribe(room.ID, sessionID)
	gs.out.SendToPlayer(sessionID, game.WrapResponse(game.RESP_ROOM_JOINED, game.RoomJoinedResponse{
		Room:     snapshot(room),
		PlayerID: player.ID,
	}))

	return nil
}

func (gs *GameService) joinRoom(sessionID string, req game.JoinRoomRequest) error {
	gs.leaveCurrentRoom(sessionID)

	room, player, err := gs.rooms.JoinRoom(req.RoomID, req.PlayerName, sessionID)
	if err != nil {
		return err
	}

	snap := snapshot(room)

	gs.out.Subscribe(room.ID, sessionID)
	gs.out.SendToPlayer(sessionID, game.WrapResponse(game.RESP_ROOM_JOINED, game.RoomJoinedResponse{
		Room:     snap,
		PlayerID: player.ID,
	}))
	gs.out.BroadcastToRoom(room.ID, game.WrapResponse(game.RESP_PLAYER_JOINED, game.PlayerJoinedResponse{
		Player: *player,
		Room:   snap,
	}))

	return nil
}

func (gs *GameService) rejoinRoom(sessionID string, req game.RejoinRoomRequest) error {
	room, player, err := gs.rooms.RejoinRoom(req.RoomID, req.PlayerID, sessionID)
	if err != nil {
		return err
	}

	snap := snapshot(room)

	gs.out.Subscribe(room.ID, sessionID)
	gs.out.SendToPlayer(sessionID, game.WrapResponse(game.RESP_ROOM_JOINED, game.RoomJoinedResponse{
		Room:     snap,
		PlayerID: player.ID,
	}))
	gs.out.BroadcastToRoom(room.ID, game.WrapResponse(game.RESP_ROOM_STATE, snap))

	return nil
}

func (gs *GameService) leaveRoom(sessionID string) error {
	if !gs.leaveCurrentRoom(sessionID) {
		return game.ErrNotInRoom
	}
	return nil
}

// leaveCurrentRoom 让 session 离开它所在的房间，不在任何房间时返回 false
func (gs *GameService) leaveCurrentRoom(sessionID string) bool {
	roomID := gs.rooms.GetRoomIDForSession(sessionID)
	if roomID == "" {
		return false
	}

	room, player := gs.rooms.LeaveRoom(roomID, sessionID)
	gs.out.Unsubscribe(roomID, sessionID)

	if room == nil || player == nil {
		return true
	}

	gs.machine.HandleDeparture(roomID, sessionID)

	gs.out.BroadcastToRoom(roomID, game.WrapResponse(game.RESP_PLAYER_LEFT, game.PlayerLeftResponse{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Room:       snapshot(room),
	}))

	return true
}

// Disconnect 在连接断开时调用。大厅中的玩家直接离开，游戏中的玩家保留席位等待重连
func (gs *GameService) Disconnect(sessionID string) {
	roomID := gs.rooms.GetRoomIDForSession(sessionID)
	room := gs.rooms.GetRoom(roomID)
	if room == nil {
		return
	}

	room.Lock()
	inLobby := room.State.Phase == game.PHASE_LOBBY
	room.Unlock()

	if inLobby {
		gs.leaveCurrentRoom(sessionID)
		return
	}

	gs.rooms.HandleDisconnect(sessionID)
	gs.out.Unsubscribe(roomID, sessionID)
	gs.machine.HandleDeparture(roomID, sessionID)

	zap.L().Debug(
		"玩家掉线，保留席位",
		zap.String("room_id", roomID),
		zap.String("session_id", sessionID),
	)

	gs.out.BroadcastToRoom(roomID, game.WrapResponse(game.RESP_ROOM_STATE, snapshot(room)))
}

func snapshot(room *game.Room) game.RoomSnapshot {
	room.Lock()
	defer room.Unlock()

	return room.Snapshot()
}
