package game

import (
	"go.uber.org/zap"
)

// Broadcaster 负责把响应投递给客户端，两个方法都不保证送达
type Broadcaster interface {
	BroadcastToRoom(roomID string, resp ResponseWrapper)
	SendToPlayer(sessionID string, resp ResponseWrapper)
}

type WordBank interface {
	// GetWordOptions 返回 min(count, 可用数量) 个互不相同的词
	GetWordOptions(count int) []string
	MarkUsed(word string)
}

type RoomLookup interface {
	GetRoom(roomID string) *Room
}

// Timings 是各阶段的时长，单位为 TimerManager 的计时单位
type Timings struct {
	Countdown               int `mapstructure:"countdown"`
	WordSelection           int `mapstructure:"word_selection"`
	EarlyEndGrace           int `mapstructure:"early_end_grace"`
	Results                 int `mapstructure:"results"`
	GameOver                int `mapstructure:"game_over"`
	Voting                  int `mapstructure:"voting"`
	VotingReset             int `mapstructure:"voting_reset"`
	TelephoneDraw           int `mapstructure:"telephone_draw"`
	TelephoneGuess          int `mapstructure:"telephone_guess"`
	TelephoneRevealBase     int `mapstructure:"telephone_reveal_base"`
	TelephoneRevealPerEntry int `mapstructure:"telephone_reveal_per_entry"`
}

func DefaultTimings() Timings {
	return Timings{
		Countdown:               3,
		WordSelection:           15,
		EarlyEndGrace:           2,
		Results:                 5,
		GameOver:                5,
		Voting:                  30,
		VotingReset:             5,
		TelephoneDraw:           60,
		TelephoneGuess:          30,
		TelephoneRevealBase:     5,
		TelephoneRevealPerEntry: 3,
	}
}

// GameContext 汇总各个管理器共享的依赖
type GameContext struct {
	Rooms   RoomLookup
	Out     Broadcaster
	Words   WordBank
	Timers  *TimerManager
	Phases  *PhaseManager
	Timings Timings
}

func NewGameContext(rooms RoomLookup, out Broadcaster, words WordBank, timers *TimerManager, timings Timings) *GameContext {
	return &GameContext{
		Rooms:   rooms,
		Out:     out,
		Words:   words,
		Timers:  timers,
		Phases:  NewPhaseManager(timers),
		Timings: timings,
	}
}

// withRoom 查找房间并在持有房间锁的情况下执行 fn，房间已不存在时什么也不做
func (gc *GameContext) withRoom(roomID string, fn func(room *Room)) {
	room := gc.Rooms.GetRoom(roomID)
	if room == nil {
		zap.L().Debug(
			"房间已不存在，忽略定时任务",
			zap.String("room_id", roomID),
		)
		return
	}

	room.Lock()
	defer room.Unlock()

	fn(room)
}

func (gc *GameContext) broadcast(room *Room, respType string, data any) {
	gc.Out.BroadcastToRoom(room.ID, WrapResponse(respType, data))
}

func (gc *GameContext) unicast(sessionID string, respType string, data any) {
	gc.Out.SendToPlayer(sessionID, WrapResponse(respType, data))
}

func (gc *GameContext) broadcastRoomState(room *Room) {
	gc.broadcast(room, RESP_ROOM_STATE, room.Snapshot())
}
