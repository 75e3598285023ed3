package game

import (
	"slices"
	"time"

	"go.uber.org/zap"
)

type Phase string

// 游戏阶段
const (
	PHASE_LOBBY            Phase = "LOBBY"
	PHASE_COUNTDOWN        Phase = "COUNTDOWN"
	PHASE_WORD_SELECTION   Phase = "WORD_SELECTION"
	PHASE_DRAWING          Phase = "DRAWING"
	PHASE_REVEAL           Phase = "REVEAL"
	PHASE_RESULTS          Phase = "RESULTS"
	PHASE_GAME_OVER        Phase = "GAME_OVER"
	PHASE_VOTING           Phase = "VOTING"
	PHASE_TELEPHONE_DRAW   Phase = "TELEPHONE_DRAW"
	PHASE_TELEPHONE_GUESS  Phase = "TELEPHONE_GUESS"
	PHASE_TELEPHONE_REVEAL Phase = "TELEPHONE_REVEAL"
)

// allowed 返回从 from 出发的合法目标阶段，未知阶段没有任何出边
func allowed(from Phase) []Phase {
	switch from {
	case PHASE_LOBBY:
		return []Phase{PHASE_COUNTDOWN}
	case PHASE_COUNTDOWN:
		return []Phase{PHASE_WORD_SELECTION, PHASE_TELEPHONE_DRAW}
	case PHASE_WORD_SELECTION:
		return []Phase{PHASE_DRAWING}
	case PHASE_DRAWING:
		return []Phase{PHASE_REVEAL}
	case PHASE_REVEAL:
		return []Phase{PHASE_RESULTS}
	case PHASE_RESULTS:
		return []Phase{PHASE_WORD_SELECTION, PHASE_GAME_OVER, PHASE_TELEPHONE_DRAW}
	case PHASE_GAME_OVER:
		return []Phase{PHASE_VOTING, PHASE_LOBBY}
	case PHASE_VOTING:
		return []Phase{PHASE_LOBBY}
	case PHASE_TELEPHONE_DRAW:
		return []Phase{PHASE_TELEPHONE_GUESS, PHASE_TELEPHONE_REVEAL}
	case PHASE_TELEPHONE_GUESS:
		return []Phase{PHASE_TELEPHONE_DRAW, PHASE_TELEPHONE_REVEAL}
	case PHASE_TELEPHONE_REVEAL:
		return []Phase{PHASE_RESULTS, PHASE_TELEPHONE_DRAW}
	default:
		return nil
	}
}

func CanTransition(from, to Phase) bool {
	return slices.Contains(allowed(from), to)
}

// PhaseManager 守护阶段迁移表，并把每一次阶段变化同步给 TimerManager
type PhaseManager struct {
	timers *TimerManager
}

func NewPhaseManager(timers *TimerManager) *PhaseManager {
	return &PhaseManager{timers: timers}
}

// Transition 在迁移合法时更新房间阶段并返回 true，否则保持原状并返回 false。
// 调用方必须持有房间锁
func (pm *PhaseManager) Transition(room *Room, to Phase) bool {
	from := room.State.Phase
	if !CanTransition(from, to) {
		zap.L().Warn(
			"拒绝非法的阶段迁移",
			zap.String("room_id", room.ID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false
	}

	room.State.Phase = to
	room.State.PhaseStartTime = time.Now()

	// 离开选词/绘画阶段后不再有"当前画手"
	if to != PHASE_WORD_SELECTION && to != PHASE_DRAWING {
		room.State.CurrentDrawerSessionIDs = nil
		room.State.CurrentDrawerIDs = nil
	}

	if pm.timers != nil {
		pm.timers.NotifyPhaseChange(room.ID, to)
	}

	zap.L().Debug(
		"阶段迁移",
		zap.String("room_id", room.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	return true
}

// FastForward 沿迁移表走最短路径到达 target，用于画手掉线等需要提前结算的场景。
// 每一步都经过 Transition 校验，无路可走时返回 false
func (pm *PhaseManager) FastForward(room *Room, target Phase) bool {
	path := shortestPath(room.State.Phase, target)
	if path == nil {
		zap.L().Warn(
			"无法快进到目标阶段",
			zap.String("room_id", room.ID),
			zap.String("from", string(room.State.Phase)),
			zap.String("to", string(target)),
		)
		return false
	}

	for _, next := range path {
		if !pm.Transition(room, next) {
			return false
		}
	}

	return true
}

func shortestPath(from, to Phase) []Phase {
	if from == to {
		return nil
	}

	prev := map[Phase]Phase{from: ""}
	queue := []Phase{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range allowed(cur) {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur

			if next == to {
				var path []Phase
				for p := to; p != from; p = prev[p] {
					path = append([]Phase{p}, path...)
				}
				return path
			}

			queue = append(queue, next)
		}
	}

	return nil
}
