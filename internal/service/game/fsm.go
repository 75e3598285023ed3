package game

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const MAX_CHAT_LENGTH = 200

var ALLOWED_EMOJIS = []string{"👍", "👏", "😂", "🔥", "❤️", "😮", "🤔", "😭", "💀", "🎨"}

// GameMachine 把各个管理器串成对外可见的阶段序列。
// 玩家请求和定时任务都在房间锁内修改状态，每个阶段结束处理函数开头都会重新检查阶段，
// 因此同一局被并发结束多次时只有第一次生效
type GameMachine struct {
	ctx *GameContext

	rounds    *RoundManager
	guesses   *GuessProcessor
	voting    *VotingManager
	telephone *TelephoneManager
}

func NewGameMachine(ctx *GameContext) *GameMachine {
	rounds := NewRoundManager(ctx)

	return &GameMachine{
		ctx:       ctx,
		rounds:    rounds,
		guesses:   NewGuessProcessor(ctx, rounds),
		voting:    NewVotingManager(ctx),
		telephone: NewTelephoneManager(ctx),
	}
}

// do 在持有房间锁的情况下执行 fn
func (gm *GameMachine) do(roomID string, fn func(room *Room) error) error {
	room := gm.ctx.Rooms.GetRoom(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	room.Touch()
	return fn(room)
}

// after 安排一个只在 phase 阶段仍然有效的定时任务
func (gm *GameMachine) after(room *Room, phase Phase, delay int, fn func(room *Room)) {
	roomID := room.ID
	gm.ctx.Timers.ScheduleForPhase(roomID, phase, delay, func() {
		gm.ctx.withRoom(roomID, fn)
	})
}

func (gm *GameMachine) StartGame(roomID, sessionID string) error {
	return gm.do(roomID, func(room *Room) error {
		if !room.IsHost(sessionID) {
			return ErrNotHost
		}
		if room.State.Phase != PHASE_LOBBY {
			return ErrGameInProgress
		}
		if room.PlayerCount() < 2 {
			return ErrNotEnoughPlayers
		}

		room.State = NewGameState(room.Settings.Rounds)
		if !gm.ctx.Phases.Transition(room, PHASE_COUNTDOWN) {
			return ErrWrongPhase
		}

		zap.L().Info(
			"游戏开始倒计时",
			zap.String("room_id", room.ID),
			zap.String("mode", room.Settings.GameMode),
			zap.Int("players", room.PlayerCount()),
		)

		seconds := gm.ctx.Timings.Countdown
		gm.ctx.broadcast(room, RESP_COUNTDOWN, CountdownResponse{Seconds: seconds})
		gm.after(room, PHASE_COUNTDOWN, seconds, gm.onCountdownDone)

		return nil
	})
}

func (gm *GameMachine) onCountdownDone(room *Room) {
	if room.State.Phase != PHASE_COUNTDOWN {
		return
	}
	gm.beginRound(room)
}

func (gm *GameMachine) beginRound(room *Room) {
	if room.Settings.GameMode == MODE_TELEPHONE {
		turn, ok := gm.telephone.StartRound(room)
		if !ok {
			gm.finishGame(room)
			return
		}
		gm.scheduleTelephoneTurn(room, turn)
		return
	}

	if !gm.rounds.StartNextRound(room) {
		gm.finishGame(room)
		return
	}

	if len(room.State.WordOptions) == 0 {
		gm.rounds.SkipRound(room, "No words available, skipping round...")
		gm.scheduleResults(room)
		return
	}

	gm.after(room, PHASE_WORD_SELECTION, gm.ctx.Timings.WordSelection, gm.onWordSelectionTimeout)
}

func (gm *GameMachine) onWordSelectionTimeout(room *Room) {
	if gm.rounds.AutoSelectWord(room) {
		gm.scheduleDrawing(room)
	}
}

func (gm *GameMachine) SelectWord(roomID, sessionID string, index int) error {
	return gm.do(roomID, func(room *Room) error {
		if err := gm.rounds.SelectWord(room, sessionID, index); err != nil {
			return err
		}
		gm.scheduleDrawing(room)
		return nil
	})
}

func (gm *GameMachine) scheduleDrawing(room *Room) {
	gm.after(room, PHASE_DRAWING, room.Settings.DrawTime, gm.onDrawingTimeout)
}

func (gm *GameMachine) onDrawingTimeout(room *Room) {
	if gm.rounds.ExpireDrawing(room) {
		gm.scheduleRoundEnd(room)
	}
}

func (gm *GameMachine) SubmitDrawing(roomID, sessionID, drawing string) error {
	return gm.do(roomID, func(room *Room) error {
		if err := gm.rounds.SubmitDrawing(room, sessionID, drawing); err != nil {
			return err
		}
		gm.scheduleRoundEnd(room)
		return nil
	})
}

// scheduleRoundEnd 揭晓阶段的结束时间；所有人都已猜中时只等待一个短暂的缓冲
func (gm *GameMachine) scheduleRoundEnd(room *Room) {
	delay := room.Settings.RevealTime
	if gm.rounds.AllGuessed(room) {
		delay = gm.ctx.Timings.EarlyEndGrace
	}
	gm.after(room, room.State.Phase, delay, gm.onRoundTimeout)
}

func (gm *GameMachine) onRoundTimeout(room *Room) {
	if gm.rounds.EndRound(room) {
		gm.scheduleResults(room)
	}
}

func (gm *GameMachine) SubmitGuess(roomID, sessionID, text string) error {
	return gm.do(roomID, func(room *Room) error {
		result := gm.guesses.ProcessGuess(room, sessionID, text)
		if result.AllGuessed {
			zap.L().Debug(
				"所有玩家都已猜中，提前结束本局",
				zap.String("room_id", room.ID),
			)
			gm.ctx.Timers.Cancel(room.ID)
			gm.after(room, room.State.Phase, gm.ctx.Timings.EarlyEndGrace, gm.onRoundTimeout)
		}
		return nil
	})
}

func (gm *GameMachine) scheduleResults(room *Room) {
	gm.after(room, PHASE_RESULTS, gm.ctx.Timings.Results, gm.onResultsDone)
}

func (gm *GameMachine) onResultsDone(room *Room) {
	if room.State.Phase != PHASE_RESULTS {
		return
	}

	if gm.rounds.IsGameOver(room) {
		gm.finishGame(room)
		return
	}
	gm.beginRound(room)
}

func (gm *GameMachine) finishGame(room *Room) {
	if !gm.rounds.EndGame(room) {
		return
	}
	gm.after(room, PHASE_GAME_OVER, gm.ctx.Timings.GameOver, gm.onGameOverDone)
}

func (gm *GameMachine) onGameOverDone(room *Room) {
	if room.State.Phase != PHASE_GAME_OVER {
		return
	}

	if gm.voting.StartVoting(room) {
		gm.after(room, PHASE_VOTING, gm.ctx.Timings.Voting, gm.closeVoting)
		return
	}
	gm.rounds.ResetRoom(room)
}

func (gm *GameMachine) CastVote(roomID, sessionID, drawerID string) error {
	return gm.do(roomID, func(room *Room) error {
		complete, err := gm.voting.ProcessVote(room, sessionID, drawerID)
		if err != nil {
			return err
		}
		if complete {
			gm.closeVoting(room)
		}
		return nil
	})
}

func (gm *GameMachine) closeVoting(room *Room) {
	if !gm.voting.EndVoting(room) {
		return
	}
	gm.after(room, PHASE_VOTING, gm.ctx.Timings.VotingReset, func(room *Room) {
		gm.rounds.ResetRoom(room)
	})
}

func (gm *GameMachine) SubmitTelephoneDrawing(roomID, sessionID, drawing string) error {
	return gm.do(roomID, func(room *Room) error {
		turn, err := gm.telephone.SubmitDrawing(room, sessionID, drawing)
		if err != nil {
			return err
		}
		gm.scheduleTelephoneTurn(room, turn)
		return nil
	})
}

func (gm *GameMachine) SubmitTelephoneGuess(roomID, sessionID, guess string) error {
	return gm.do(roomID, func(room *Room) error {
		turn, err := gm.telephone.SubmitGuess(room, sessionID, guess)
		if err != nil {
			return err
		}
		gm.scheduleTelephoneTurn(room, turn)
		return nil
	})
}

func (gm *GameMachine) scheduleTelephoneTurn(room *Room, turn TelephoneTurn) {
	switch turn.Phase {
	case PHASE_TELEPHONE_DRAW, PHASE_TELEPHONE_GUESS:
		gm.after(room, turn.Phase, turn.Duration, func(room *Room) {
			if next, ok := gm.telephone.Expire(room, turn); ok {
				gm.scheduleTelephoneTurn(room, next)
			}
		})
	case PHASE_TELEPHONE_REVEAL:
		gm.after(room, turn.Phase, turn.Duration, func(room *Room) {
			if gm.telephone.EndRound(room) {
				gm.scheduleResults(room)
			}
		})
	}
}

// DrawStroke 只转发当前画手在绘画阶段的笔画
func (gm *GameMachine) DrawStroke(roomID, sessionID string, stroke json.RawMessage) error {
	return gm.do(roomID, func(room *Room) error {
		st := room.State
		player := room.GetPlayer(sessionID)
		if player == nil || st.Phase != PHASE_DRAWING || !st.IsCurrentDrawer(sessionID) {
			return nil
		}

		gm.ctx.broadcast(room, RESP_DRAW_STROKE, DrawStrokeResponse{
			PlayerID: player.ID,
			Stroke:   stroke,
		})
		return nil
	})
}

func (gm *GameMachine) SendChat(roomID, sessionID, text string) error {
	return gm.do(roomID, func(room *Room) error {
		player := room.GetPlayer(sessionID)
		if player == nil {
			return ErrPlayerNotFound
		}

		text = strings.TrimSpace(text)
		if text == "" || utf8.RuneCountInString(text) > MAX_CHAT_LENGTH {
			return ErrInvalidRequest
		}

		gm.ctx.broadcast(room, RESP_CHAT, NewChatMessage(player, text))
		return nil
	})
}

// SendReaction 不在白名单内的表情被静默丢弃
func (gm *GameMachine) SendReaction(roomID, sessionID, emoji string) error {
	return gm.do(roomID, func(room *Room) error {
		player := room.GetPlayer(sessionID)
		if player == nil {
			return ErrPlayerNotFound
		}
		if !slices.Contains(ALLOWED_EMOJIS, emoji) {
			return nil
		}

		gm.ctx.broadcast(room, RESP_REACTION, ReactionResponse{
			PlayerID:   player.ID,
			PlayerName: player.Name,
			Emoji:      emoji,
			Timestamp:  time.Now().UnixMilli(),
		})
		return nil
	})
}

// HandleDeparture 玩家掉线或离开后调用，处理画手或传话当前玩家缺席的情况
func (gm *GameMachine) HandleDeparture(roomID, sessionID string) {
	_ = gm.do(roomID, func(room *Room) error {
		if gm.rounds.HandleDrawerDisconnect(room, sessionID) {
			gm.scheduleResults(room)
			return nil
		}

		if turn, ok := gm.telephone.HandleDeparture(room, sessionID); ok {
			gm.scheduleTelephoneTurn(room, turn)
			return nil
		}

		if room.State.Phase == PHASE_VOTING && !room.State.VotingClosed &&
			len(room.State.VotedPlayers) >= room.PlayerCount() {
			gm.closeVoting(room)
		}

		return nil
	})
}
