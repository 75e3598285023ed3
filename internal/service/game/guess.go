package game

import (
	"strings"
)

// 猜词结果
const (
	GUESS_IGNORED = "IGNORED"
	GUESS_CORRECT = "CORRECT"
	GUESS_CLOSE   = "CLOSE"
	GUESS_WRONG   = "WRONG"
)

type GuessResult struct {
	Type   string
	Points int
	// 本次猜中后所有非画手都已猜中，调用方应提前结束本局
	AllGuessed bool
}

type GuessProcessor struct {
	*GameContext
	rounds *RoundManager
}

func NewGuessProcessor(gc *GameContext, rounds *RoundManager) *GuessProcessor {
	return &GuessProcessor{GameContext: gc, rounds: rounds}
}

func (gp *GuessProcessor) CanPlayerGuess(room *Room, sessionID string) bool {
	st := room.State
	if st.Phase != PHASE_DRAWING && st.Phase != PHASE_REVEAL {
		return false
	}
	if st.IsCurrentDrawer(sessionID) || st.IsRoundDrawer(sessionID) {
		return false
	}

	player := room.GetPlayer(sessionID)
	if player == nil {
		return false
	}

	return !st.HasGuessedCorrectly(player.ID)
}

// ProcessGuess 调用方必须持有房间锁。无资格或无效的猜测被静默忽略
func (gp *GuessProcessor) ProcessGuess(room *Room, sessionID, text string) GuessResult {
	if !IsValidGuess(text) || !gp.CanPlayerGuess(room, sessionID) {
		return GuessResult{Type: GUESS_IGNORED}
	}

	st := room.State
	player := room.GetPlayer(sessionID)
	text = strings.TrimSpace(text)

	if IsCorrectGuess(text, st.CurrentWord) {
		totalTime := room.Settings.DrawTime
		if st.Phase == PHASE_REVEAL {
			totalTime = room.Settings.RevealTime
		}

		isFirst := len(st.CorrectGuessers) == 0
		points := CalculateGuesserPointsWithStreak(st.PhaseStartTime, totalTime, isFirst, player.CurrentStreak)

		player.AddScore(points.Points)
		player.IncrementStreak()
		st.CorrectGuessers[player.ID] = struct{}{}

		gp.broadcast(room, RESP_CORRECT_GUESS, CorrectGuessResponse{
			PlayerID:      player.ID,
			PlayerName:    player.Name,
			Points:        points.Points,
			TotalGuessers: len(st.CorrectGuessers),
			Streak:        player.CurrentStreak,
			Multiplier:    points.Multiplier,
		})

		return GuessResult{
			Type:       GUESS_CORRECT,
			Points:     points.Points,
			AllGuessed: gp.rounds.AllGuessed(room),
		}
	}

	if IsCloseGuess(text, st.CurrentWord) {
		gp.unicast(sessionID, RESP_CLOSE_GUESS, CloseGuessResponse{
			PlayerID: player.ID,
			Guess:    text,
		})
		return GuessResult{Type: GUESS_CLOSE}
	}

	gp.broadcast(room, RESP_CHAT, NewChatMessage(player, text))
	return GuessResult{Type: GUESS_WRONG}
}
