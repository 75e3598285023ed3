package game

import (
	"cmp"
	"slices"

	"go.uber.org/zap"
)

const VOTE_WINNER_BONUS = 100

// VotingManager 负责游戏结束后的"最佳画作"投票
type VotingManager struct {
	*GameContext
}

func NewVotingManager(gc *GameContext) *VotingManager {
	return &VotingManager{GameContext: gc}
}

// StartVoting 本场没有收集到画作时返回 false，调用方应直接重置房间
func (vm *VotingManager) StartVoting(room *Room) bool {
	st := room.State
	if len(st.RoundDrawings) == 0 {
		return false
	}
	if !vm.Phases.Transition(room, PHASE_VOTING) {
		return false
	}

	st.VotedPlayers = make(map[string]struct{})
	st.VotingClosed = false

	drawings := make([]VotingDrawing, 0, len(st.RoundDrawings))
	for _, d := range st.RoundDrawings {
		drawings = append(drawings, VotingDrawing{
			DrawerID:   d.DrawerID,
			DrawerName: d.DrawerName,
			Word:       d.Word,
			Drawing:    d.Drawing,
		})
	}

	vm.broadcast(room, RESP_VOTING_START, VotingStartResponse{
		Drawings:   drawings,
		VotingTime: vm.Timings.Voting,
	})

	return true
}

// ProcessVote 记录一票，所有玩家都投完时 complete 为 true
func (vm *VotingManager) ProcessVote(room *Room, voterSessionID, votedDrawerID string) (complete bool, err error) {
	st := room.State
	if st.Phase != PHASE_VOTING || st.VotingClosed {
		return false, ErrWrongPhase
	}

	voter := room.GetPlayer(voterSessionID)
	if voter == nil {
		return false, ErrPlayerNotFound
	}
	if voter.ID == votedDrawerID {
		return false, ErrSelfVote
	}
	if _, ok := st.VotedPlayers[voter.ID]; ok {
		return false, ErrAlreadyVoted
	}

	idx := slices.IndexFunc(st.RoundDrawings, func(d *DrawingEntry) bool {
		return d.DrawerID == votedDrawerID
	})
	if idx < 0 {
		return false, ErrUnknownDrawing
	}

	st.RoundDrawings[idx].Votes++
	st.VotedPlayers[voter.ID] = struct{}{}

	vm.broadcast(room, RESP_VOTE_RECEIVED, VoteReceivedResponse{
		VoterID:      voter.ID,
		VoterName:    voter.Name,
		TotalVotes:   len(st.VotedPlayers),
		TotalPlayers: room.PlayerCount(),
	})

	return len(st.VotedPlayers) >= room.PlayerCount(), nil
}

// EndVoting 公布结果，票数最高者获得奖励，平票取靠前的画作
func (vm *VotingManager) EndVoting(room *Room) bool {
	st := room.State
	if st.Phase != PHASE_VOTING || st.VotingClosed {
		return false
	}

	vm.Timers.Cancel(room.ID)
	st.VotingClosed = true

	var winner *DrawingEntry
	for _, d := range st.RoundDrawings {
		if winner == nil || d.Votes > winner.Votes {
			winner = d
		}
	}

	resp := VotingResultsResponse{}
	if winner != nil && winner.Votes > 0 {
		resp.WinnerID = winner.DrawerID
		resp.BonusPoints = VOTE_WINNER_BONUS
		if p := room.GetPlayerByID(winner.DrawerID); p != nil {
			p.AddScore(VOTE_WINNER_BONUS)
		}
	} else {
		winner = nil
	}

	ranked := slices.Clone(st.RoundDrawings)
	slices.SortStableFunc(ranked, func(a, b *DrawingEntry) int {
		return cmp.Compare(b.Votes, a.Votes)
	})

	for _, d := range ranked {
		resp.Results = append(resp.Results, VotingResult{
			DrawerID:   d.DrawerID,
			DrawerName: d.DrawerName,
			Word:       d.Word,
			Votes:      d.Votes,
			IsWinner:   d == winner,
		})
	}

	zap.L().Info(
		"投票结束",
		zap.String("room_id", room.ID),
		zap.String("winner_id", resp.WinnerID),
	)

	vm.broadcast(room, RESP_VOTING_RESULTS, resp)
	return true
}
