package game

import (
	"slices"

	"go.uber.org/zap"
)

const (
	WORD_OPTION_COUNT = 3
	SKIPPED_WORD      = "(skipped)"
)

// RoundManager 负责经典/协作模式下一局的开始与结束。
// 所有方法都要求调用方已经持有房间锁
type RoundManager struct {
	*GameContext
}

func NewRoundManager(gc *GameContext) *RoundManager {
	return &RoundManager{GameContext: gc}
}

func (rm *RoundManager) IsGameOver(room *Room) bool {
	return room.State.CurrentRound >= room.State.TotalRounds
}

// StartNextRound 选出画手并进入选词阶段，局数已满时返回 false
func (rm *RoundManager) StartNextRound(room *Room) bool {
	if rm.IsGameOver(room) {
		return false
	}

	drawers := rm.selectDrawers(room)
	if len(drawers) == 0 {
		zap.L().Warn(
			"房间内没有可以作画的玩家",
			zap.String("room_id", room.ID),
		)
		return false
	}

	if !rm.Phases.Transition(room, PHASE_WORD_SELECTION) {
		return false
	}

	options := rm.Words.GetWordOptions(WORD_OPTION_COUNT)
	st := room.State
	st.StartNewRound(drawers, options)

	zap.L().Info(
		"新一局开始",
		zap.String("room_id", room.ID),
		zap.Int("round", st.CurrentRound),
		zap.Strings("drawer_ids", st.CurrentDrawerIDs),
	)

	rm.broadcast(room, RESP_ROUND_START, RoundStartResponse{
		Round:       st.CurrentRound,
		TotalRounds: st.TotalRounds,
		DrawerID:    st.CurrentDrawerIDs[0],
		DrawerIDs:   slices.Clone(st.CurrentDrawerIDs),
	})

	for _, sid := range st.CurrentDrawerSessionIDs {
		rm.unicast(sid, RESP_WORD_OPTIONS, WordOptionsResponse{Words: slices.Clone(options)})
	}

	return true
}

// selectDrawers 经典模式选一人；协作模式沿同一个轮换下标选出 N 个不同的画手，不足 2 人时退化为经典模式
func (rm *RoundManager) selectDrawers(room *Room) []*Player {
	first := room.NextDrawer()
	if first == nil {
		return nil
	}

	if room.Settings.GameMode != MODE_COLLABORATIVE {
		return []*Player{first}
	}

	want := min(room.Settings.CollaborativeCount, room.PlayerCount())
	drawers := []*Player{first}

	for attempts := 0; len(drawers) < want && attempts < room.PlayerCount(); attempts++ {
		next := room.NextDrawer()
		if !slices.Contains(drawers, next) {
			drawers = append(drawers, next)
		}
	}

	if len(drawers) < 2 {
		return drawers[:1]
	}

	return drawers
}

func (rm *RoundManager) SelectWord(room *Room, sessionID string, index int) error {
	st := room.State
	if st.Phase != PHASE_WORD_SELECTION {
		return ErrWrongPhase
	}
	if !st.IsCurrentDrawer(sessionID) {
		return ErrNotDrawer
	}
	if index < 0 || index >= len(st.WordOptions) {
		return ErrInvalidRequest
	}

	rm.beginDrawing(room, st.WordOptions[index])
	return nil
}

// AutoSelectWord 选词超时后自动选第一个候选词
func (rm *RoundManager) AutoSelectWord(room *Room) bool {
	st := room.State
	if st.Phase != PHASE_WORD_SELECTION || len(st.WordOptions) == 0 {
		return false
	}

	zap.L().Debug(
		"选词超时，自动选择第一个候选词",
		zap.String("room_id", room.ID),
	)

	rm.beginDrawing(room, st.WordOptions[0])
	return true
}

func (rm *RoundManager) beginDrawing(room *Room, word string) {
	st := room.State

	if !rm.Phases.Transition(room, PHASE_DRAWING) {
		return
	}

	st.CurrentWord = word
	st.WordOptions = nil
	rm.Words.MarkUsed(word)

	rm.broadcast(room, RESP_DRAWING_PHASE, DrawingPhaseResponse{
		DrawTime:   room.Settings.DrawTime,
		WordLength: len([]rune(word)),
		WordHint:   WordHint(word),
	})

	for _, sid := range st.CurrentDrawerSessionIDs {
		rm.unicast(sid, RESP_WORD_SELECTED, WordSelectedResponse{Word: word})
	}
}

func (rm *RoundManager) SubmitDrawing(room *Room, sessionID string, drawing string) error {
	st := room.State
	if st.Phase != PHASE_DRAWING {
		return ErrWrongPhase
	}
	if !st.IsCurrentDrawer(sessionID) {
		return ErrNotDrawer
	}

	rm.reveal(room, drawing)
	return nil
}

// ExpireDrawing 绘画超时，以空画作进入揭晓阶段
func (rm *RoundManager) ExpireDrawing(room *Room) bool {
	if room.State.Phase != PHASE_DRAWING {
		return false
	}

	rm.reveal(room, "")
	return true
}

func (rm *RoundManager) reveal(room *Room, drawing string) {
	if !rm.Phases.Transition(room, PHASE_REVEAL) {
		return
	}

	room.State.Drawing = drawing

	rm.broadcast(room, RESP_REVEAL_PHASE, RevealPhaseResponse{
		Drawing:    drawing,
		RevealTime: room.Settings.RevealTime,
		WordHint:   WordHint(room.State.CurrentWord),
	})
}

func (rm *RoundManager) guesserCount(room *Room) int {
	n := 0
	for sid := range room.Players {
		if !room.State.IsRoundDrawer(sid) {
			n++
		}
	}
	return n
}

// AllGuessed 所有非画手都已猜中
func (rm *RoundManager) AllGuessed(room *Room) bool {
	n := rm.guesserCount(room)
	return n > 0 && len(room.State.CorrectGuessers) >= n
}

// EndRound 结算本局。阶段已不是 DRAWING/REVEAL 时什么也不做，因此重复调用是安全的
func (rm *RoundManager) EndRound(room *Room) bool {
	st := room.State

	if st.Phase == PHASE_DRAWING {
		rm.reveal(room, st.Drawing)
	}
	if st.Phase != PHASE_REVEAL {
		zap.L().Debug(
			"本局已结算，忽略重复的结束请求",
			zap.String("room_id", room.ID),
			zap.String("phase", string(st.Phase)),
		)
		return false
	}

	rm.Timers.Cancel(room.ID)

	correct := len(st.CorrectGuessers)
	if correct > 0 {
		points := CalculateDrawerPoints(correct, room.PlayerCount())
		for _, sid := range st.RoundDrawerSessionIDs {
			if drawer := room.GetPlayer(sid); drawer != nil {
				drawer.AddScore(points)
			}
		}
	}

	if st.Drawing != "" && len(st.RoundDrawerIDs) > 0 {
		entry := &DrawingEntry{
			Round:   st.CurrentRound,
			Word:    st.CurrentWord,
			Drawing: st.Drawing,
		}
		for _, sid := range st.RoundDrawerSessionIDs {
			if drawer := room.GetPlayer(sid); drawer != nil {
				entry.DrawerID = drawer.ID
				entry.DrawerName = drawer.Name
				break
			}
		}
		if entry.DrawerID != "" {
			st.RoundDrawings = append(st.RoundDrawings, entry)
		}
	}

	for sid, p := range room.Players {
		if !st.IsRoundDrawer(sid) && !st.HasGuessedCorrectly(p.ID) {
			p.ResetStreak()
		}
	}

	rm.Phases.Transition(room, PHASE_RESULTS)

	zap.L().Info(
		"本局结束",
		zap.String("room_id", room.ID),
		zap.Int("round", st.CurrentRound),
		zap.Int("correct_guessers", correct),
	)

	rm.broadcast(room, RESP_ROUND_END, RoundEndResponse{
		Word:   st.CurrentWord,
		Scores: RoundScores(room),
	})

	return true
}

func (rm *RoundManager) EndGame(room *Room) bool {
	if !rm.Phases.Transition(room, PHASE_GAME_OVER) {
		return false
	}

	zap.L().Info(
		"游戏结束",
		zap.String("room_id", room.ID),
	)

	rm.broadcast(room, RESP_GAME_OVER, GameOverResponse{
		FinalScores: FinalScores(room),
	})

	return true
}

// ResetRoom 清空本场数据回到大厅
func (rm *RoundManager) ResetRoom(room *Room) bool {
	if !CanTransition(room.State.Phase, PHASE_LOBBY) {
		return false
	}

	rm.Timers.Cancel(room.ID)
	room.ResetForNewGame()
	rm.Timers.NotifyPhaseChange(room.ID, PHASE_LOBBY)

	rm.broadcastRoomState(room)
	return true
}

// HandleDrawerDisconnect 画手在选词或绘画阶段离开时跳过本局。
// 协作模式下只要还有其他在线画手就继续
func (rm *RoundManager) HandleDrawerDisconnect(room *Room, sessionID string) bool {
	st := room.State
	if st.Phase != PHASE_WORD_SELECTION && st.Phase != PHASE_DRAWING {
		return false
	}
	if !st.IsCurrentDrawer(sessionID) {
		return false
	}

	for _, sid := range st.CurrentDrawerSessionIDs {
		if sid == sessionID {
			continue
		}
		if p := room.GetPlayer(sid); p != nil && p.Connected {
			return false
		}
	}

	rm.SkipRound(room, "Drawer disconnected, skipping to next round...")
	return true
}

// SkipRound 不计分直接进入结算阶段
func (rm *RoundManager) SkipRound(room *Room, notice string) bool {
	st := room.State

	rm.Timers.Cancel(room.ID)
	rm.broadcast(room, RESP_CHAT, NewSystemMessage(notice))

	if !rm.Phases.FastForward(room, PHASE_RESULTS) {
		return false
	}

	word := st.CurrentWord
	if word == "" {
		word = SKIPPED_WORD
	}

	zap.L().Info(
		"跳过本局",
		zap.String("room_id", room.ID),
		zap.Int("round", st.CurrentRound),
	)

	rm.broadcast(room, RESP_ROUND_END, RoundEndResponse{
		Word:   word,
		Scores: RoundScores(room),
	})

	return true
}
