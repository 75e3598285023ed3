package game

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimerManager 为每个房间维护唯一一个待执行的延时任务。
// 新任务会顶替旧任务；带阶段标签的任务在触发时若发现房间阶段已变化则直接丢弃
type TimerManager struct {
	mu sync.Mutex

	// 1 个单位的时长，生产环境为 1 秒，测试中可以缩短
	unit time.Duration

	timers map[string]*roomTimer
	// 房间当前的期望阶段
	phases map[string]Phase
	// 全局递增的任务代号，被取消或被顶替的任务凭此识别自己已失效
	seq uint64
}

type roomTimer struct {
	timer *time.Timer
	epoch uint64
}

func NewTimerManager(unit time.Duration) *TimerManager {
	if unit <= 0 {
		unit = time.Second
	}

	return &TimerManager{
		unit:   unit,
		timers: make(map[string]*roomTimer),
		phases: make(map[string]Phase),
	}
}

// Schedule 在 delay 个单位后执行 task
func (tm *TimerManager) Schedule(roomID string, delay int, task func()) {
	tm.schedule(roomID, "", delay, task)
}

// ScheduleForPhase 与 Schedule 相同，但只有触发时房间仍处于 expected 阶段才会执行
func (tm *TimerManager) ScheduleForPhase(roomID string, expected Phase, delay int, task func()) {
	tm.schedule(roomID, expected, delay, task)
}

func (tm *TimerManager) schedule(roomID string, expected Phase, delay int, task func()) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if prev, ok := tm.timers[roomID]; ok && prev.timer != nil {
		prev.timer.Stop()
	}

	tm.seq++
	epoch := tm.seq

	if expected != "" {
		tm.phases[roomID] = expected
	}

	entry := &roomTimer{epoch: epoch}
	entry.timer = time.AfterFunc(time.Duration(delay)*tm.unit, func() {
		if !tm.claim(roomID, epoch, expected) {
			return
		}
		task()
	})
	tm.timers[roomID] = entry
}

// claim 判断触发的任务是否仍然有效，有效则将其从槽位中移除
func (tm *TimerManager) claim(roomID string, epoch uint64, expected Phase) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	entry, ok := tm.timers[roomID]
	if !ok || entry.epoch != epoch {
		zap.L().Debug(
			"丢弃已被取代的定时任务",
			zap.String("room_id", roomID),
		)
		return false
	}

	if expected != "" && tm.phases[roomID] != expected {
		zap.L().Debug(
			"丢弃过期的阶段定时任务",
			zap.String("room_id", roomID),
			zap.String("expected", string(expected)),
			zap.String("current", string(tm.phases[roomID])),
		)
		delete(tm.timers, roomID)
		return false
	}

	delete(tm.timers, roomID)
	return true
}

// Cancel 取消房间当前的任务，可重复调用
func (tm *TimerManager) Cancel(roomID string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	entry, ok := tm.timers[roomID]
	if !ok {
		return
	}

	if entry.timer != nil {
		entry.timer.Stop()
	}

	// 留下一个新代号的空槽位，已经开始执行的回调在 claim 时会发现自己失效
	tm.seq++
	tm.timers[roomID] = &roomTimer{epoch: tm.seq}
}

func (tm *TimerManager) NotifyPhaseChange(roomID string, phase Phase) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.phases[roomID] = phase
}

func (tm *TimerManager) Cleanup(roomID string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if entry, ok := tm.timers[roomID]; ok && entry.timer != nil {
		entry.timer.Stop()
	}

	delete(tm.timers, roomID)
	delete(tm.phases, roomID)
}
