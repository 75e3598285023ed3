package game

import (
	"strings"

	"go.uber.org/zap"
)

// 传话模式计分
const (
	TELEPHONE_DRAW_POINTS     = 25
	TELEPHONE_GUESS_POINTS    = 100
	TELEPHONE_SURVIVED_POINTS = 50

	TIMED_OUT_GUESS = "(timed out)"
)

// TelephoneTurn 描述刚刚开始的回合，调用方据此安排超时
type TelephoneTurn struct {
	Phase    Phase
	Duration int
	// 回合开始时的游标，用于识别过期的超时
	Cursor int
}

type TelephoneManager struct {
	*GameContext
}

func NewTelephoneManager(gc *GameContext) *TelephoneManager {
	return &TelephoneManager{GameContext: gc}
}

// StartRound 选一个词并以打乱的玩家顺序开始新的传话链
func (tm *TelephoneManager) StartRound(room *Room) (TelephoneTurn, bool) {
	st := room.State
	if st.CurrentRound >= st.TotalRounds {
		return TelephoneTurn{}, false
	}

	words := tm.Words.GetWordOptions(1)
	if len(words) == 0 {
		zap.L().Error(
			"词库为空，无法开始传话",
			zap.String("room_id", room.ID),
		)
		return TelephoneTurn{}, false
	}

	if !tm.Phases.Transition(room, PHASE_TELEPHONE_DRAW) {
		return TelephoneTurn{}, false
	}

	word := words[0]
	tm.Words.MarkUsed(word)

	st.StartNewRound(nil, nil)
	st.CurrentWord = word
	st.Telephone = NewTelephoneChain(word, room.SessionIDs())

	zap.L().Info(
		"传话开始",
		zap.String("room_id", room.ID),
		zap.Int("round", st.CurrentRound),
		zap.Int("chain_length", len(st.Telephone.Queue)),
	)

	return tm.beginTurn(room), true
}

// beginTurn 跳过已离开的玩家并宣布下一回合，链条走完时进入揭晓
func (tm *TelephoneManager) beginTurn(room *Room) TelephoneTurn {
	st := room.State
	chain := st.Telephone

	for !chain.IsComplete() && room.GetPlayer(chain.CurrentSessionID()) == nil {
		chain.Skip()
	}

	if chain.IsComplete() {
		return tm.reveal(room)
	}

	sessionID := chain.CurrentSessionID()
	player := room.GetPlayer(sessionID)

	phase, respType, duration := PHASE_TELEPHONE_DRAW, RESP_TELEPHONE_DRAW, tm.Timings.TelephoneDraw
	promptType := PROMPT_GUESS
	if chain.NextEntryType() == ENTRY_GUESS {
		phase, respType, duration = PHASE_TELEPHONE_GUESS, RESP_TELEPHONE_GUESS, tm.Timings.TelephoneGuess
		promptType = PROMPT_DRAWING
	} else if len(chain.Entries) == 0 {
		promptType = PROMPT_WORD
	}

	if st.Phase != phase {
		tm.Phases.Transition(room, phase)
	} else {
		tm.Timers.NotifyPhaseChange(room.ID, phase)
	}

	tm.broadcast(room, respType, TelephoneTurnResponse{
		PlayerID:         player.ID,
		PlayerName:       player.Name,
		TimeLimit:        duration,
		RemainingPlayers: len(chain.Queue) - chain.Cursor,
	})

	tm.unicast(sessionID, RESP_TELEPHONE_PROMPT, TelephonePromptResponse{
		Prompt: chain.CurrentPrompt(),
		Type:   promptType,
	})

	return TelephoneTurn{Phase: phase, Duration: duration, Cursor: chain.Cursor}
}

func (tm *TelephoneManager) SubmitDrawing(room *Room, sessionID, drawing string) (TelephoneTurn, error) {
	return tm.submit(room, sessionID, PHASE_TELEPHONE_DRAW, ENTRY_DRAW, drawing)
}

func (tm *TelephoneManager) SubmitGuess(room *Room, sessionID, guess string) (TelephoneTurn, error) {
	if !IsValidGuess(guess) {
		return TelephoneTurn{}, ErrInvalidRequest
	}
	return tm.submit(room, sessionID, PHASE_TELEPHONE_GUESS, ENTRY_GUESS, strings.TrimSpace(guess))
}

func (tm *TelephoneManager) submit(room *Room, sessionID string, phase Phase, entryType, content string) (TelephoneTurn, error) {
	st := room.State
	if st.Phase != phase || st.Telephone == nil {
		return TelephoneTurn{}, ErrWrongPhase
	}
	if st.Telephone.CurrentSessionID() != sessionID {
		return TelephoneTurn{}, ErrNotYourTurn
	}

	player := room.GetPlayer(sessionID)
	if player == nil {
		return TelephoneTurn{}, ErrPlayerNotFound
	}

	tm.Timers.Cancel(room.ID)
	st.Telephone.AddEntry(player, entryType, content)

	return tm.beginTurn(room), nil
}

// Expire 回合超时，以占位内容代替当前玩家的提交。回合已经推进时返回 false
func (tm *TelephoneManager) Expire(room *Room, turn TelephoneTurn) (TelephoneTurn, bool) {
	st := room.State
	if st.Phase != turn.Phase || st.Telephone == nil || st.Telephone.Cursor != turn.Cursor {
		return TelephoneTurn{}, false
	}

	chain := st.Telephone
	player := room.GetPlayer(chain.CurrentSessionID())
	if player == nil {
		chain.Skip()
		return tm.beginTurn(room), true
	}

	content := ""
	if chain.NextEntryType() == ENTRY_GUESS {
		content = TIMED_OUT_GUESS
	}

	zap.L().Debug(
		"传话回合超时",
		zap.String("room_id", room.ID),
		zap.String("player_id", player.ID),
	)

	chain.AddEntry(player, chain.NextEntryType(), content)
	return tm.beginTurn(room), true
}

// HandleDeparture 当前回合的玩家离开房间时直接进入下一回合。
// 只是掉线的玩家仍在房间中，他的回合照常超时并留下占位内容
func (tm *TelephoneManager) HandleDeparture(room *Room, sessionID string) (TelephoneTurn, bool) {
	st := room.State
	if room.GetPlayer(sessionID) != nil {
		return TelephoneTurn{}, false
	}
	if st.Phase != PHASE_TELEPHONE_DRAW && st.Phase != PHASE_TELEPHONE_GUESS {
		return TelephoneTurn{}, false
	}
	if st.Telephone == nil || st.Telephone.CurrentSessionID() != sessionID {
		return TelephoneTurn{}, false
	}

	tm.Timers.Cancel(room.ID)
	st.Telephone.Skip()

	return tm.beginTurn(room), true
}

func (tm *TelephoneManager) reveal(room *Room) TelephoneTurn {
	st := room.State
	chain := st.Telephone

	if !tm.Phases.Transition(room, PHASE_TELEPHONE_REVEAL) {
		return TelephoneTurn{}
	}

	tm.scoreChain(room)

	items := make([]TelephoneChainItem, 0, len(chain.Entries)+1)
	items = append(items, TelephoneChainItem{
		Type:       PROMPT_WORD,
		Content:    chain.OriginalWord,
		PlayerName: "Original Word",
	})
	for _, e := range chain.Entries {
		items = append(items, TelephoneChainItem{
			Type:       strings.ToLower(e.Type),
			Content:    e.Content,
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
		})
	}

	duration := tm.Timings.TelephoneRevealBase + tm.Timings.TelephoneRevealPerEntry*len(chain.Entries)

	tm.broadcast(room, RESP_TELEPHONE_REVEAL, TelephoneRevealResponse{
		OriginalWord: chain.OriginalWord,
		Chain:        items,
		RevealTime:   duration,
	})

	return TelephoneTurn{Phase: PHASE_TELEPHONE_REVEAL, Duration: duration, Cursor: chain.Cursor}
}

func (tm *TelephoneManager) scoreChain(room *Room) {
	st := room.State
	chain := st.Telephone

	for _, e := range chain.Entries {
		p := room.GetPlayerByID(e.PlayerID)
		if p == nil {
			continue
		}

		switch e.Type {
		case ENTRY_DRAW:
			p.AddScore(TELEPHONE_DRAW_POINTS)
		case ENTRY_GUESS:
			if IsCorrectGuess(e.Content, chain.OriginalWord) {
				p.AddScore(TELEPHONE_GUESS_POINTS)
				p.IncrementStreak()
				st.CorrectGuessers[p.ID] = struct{}{}
			} else {
				p.ResetStreak()
			}
		}
	}

	if n := len(chain.Entries); n > 0 {
		last := chain.Entries[n-1]
		if last.Type == ENTRY_GUESS && IsCorrectGuess(last.Content, chain.OriginalWord) {
			rewarded := make(map[string]struct{}, n)
			for _, e := range chain.Entries {
				if _, ok := rewarded[e.PlayerID]; ok {
					continue
				}
				rewarded[e.PlayerID] = struct{}{}

				if p := room.GetPlayerByID(e.PlayerID); p != nil {
					p.AddScore(TELEPHONE_SURVIVED_POINTS)
				}
			}
		}
	}
}

// EndRound 揭晓结束后进入结算阶段
func (tm *TelephoneManager) EndRound(room *Room) bool {
	st := room.State
	if st.Phase != PHASE_TELEPHONE_REVEAL {
		return false
	}
	if !tm.Phases.Transition(room, PHASE_RESULTS) {
		return false
	}

	tm.broadcast(room, RESP_ROUND_END, RoundEndResponse{
		Word:   st.Telephone.OriginalWord,
		Scores: RoundScores(room),
	})

	return true
}
