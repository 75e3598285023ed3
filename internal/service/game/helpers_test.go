package game

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// 测试中一个计时单位为 10ms
const testUnit = 10 * time.Millisecond

type recordingBroadcaster struct {
	mu sync.Mutex

	room    []ResponseWrapper
	private map[string][]ResponseWrapper
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{private: make(map[string][]ResponseWrapper)}
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, resp ResponseWrapper) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.room = append(b.room, resp)
}

func (b *recordingBroadcaster) SendToPlayer(sessionID string, resp ResponseWrapper) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.private[sessionID] = append(b.private[sessionID], resp)
}

func (b *recordingBroadcaster) roomEvents(respType string) []ResponseWrapper {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []ResponseWrapper
	for _, r := range b.room {
		if r.RespType == respType {
			out = append(out, r)
		}
	}
	return out
}

func (b *recordingBroadcaster) privateEvents(sessionID, respType string) []ResponseWrapper {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []ResponseWrapper
	for _, r := range b.private[sessionID] {
		if r.RespType == respType {
			out = append(out, r)
		}
	}
	return out
}

type mockWordBank struct {
	mock.Mock
}

func (m *mockWordBank) GetWordOptions(count int) []string {
	args := m.Called(count)
	return args.Get(0).([]string)
}

func (m *mockWordBank) MarkUsed(word string) {
	m.Called(word)
}

func newMockWordBank() *mockWordBank {
	words := &mockWordBank{}
	words.On("GetWordOptions", WORD_OPTION_COUNT).Return([]string{"apple", "house", "tree"}).Maybe()
	words.On("GetWordOptions", 1).Return([]string{"apple"}).Maybe()
	words.On("MarkUsed", mock.Anything).Return().Maybe()
	return words
}

type roomTable struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func (t *roomTable) GetRoom(roomID string) *Room {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rooms[roomID]
}

type harness struct {
	rooms   *roomTable
	out     *recordingBroadcaster
	words   *mockWordBank
	timers  *TimerManager
	ctx     *GameContext
	machine *GameMachine
}

func testTimings() Timings {
	return Timings{
		Countdown:               1,
		WordSelection:           5000,
		EarlyEndGrace:           2,
		Results:                 5000,
		GameOver:                5000,
		Voting:                  5000,
		VotingReset:             5000,
		TelephoneDraw:           5000,
		TelephoneGuess:          5000,
		TelephoneRevealBase:     5000,
		TelephoneRevealPerEntry: 0,
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		rooms:  &roomTable{rooms: make(map[string]*Room)},
		out:    newRecordingBroadcaster(),
		words:  newMockWordBank(),
		timers: NewTimerManager(testUnit),
	}
	h.ctx = NewGameContext(h.rooms, h.out, h.words, h.timers, testTimings())
	h.machine = NewGameMachine(h.ctx)

	t.Cleanup(func() {
		h.rooms.mu.RLock()
		defer h.rooms.mu.RUnlock()
		for id := range h.rooms.rooms {
			h.timers.Cleanup(id)
		}
	})

	return h
}

// addRoom 创建一个房间，玩家 session 依次为 s1, s2, ...
func (h *harness) addRoom(settings RoomSettings, players int) *Room {
	room := NewRoom(GenRoomID(), settings)
	for i := 1; i <= players; i++ {
		room.AddPlayer(NewPlayer(fmt.Sprintf("player%d", i), fmt.Sprintf("s%d", i)))
	}

	h.rooms.mu.Lock()
	h.rooms.rooms[room.ID] = room
	h.rooms.mu.Unlock()

	return room
}

func (h *harness) phase(room *Room) Phase {
	room.Lock()
	defer room.Unlock()
	return room.State.Phase
}

func (h *harness) score(room *Room, sessionID string) int {
	room.Lock()
	defer room.Unlock()
	return room.GetPlayer(sessionID).Score
}

func (h *harness) waitPhase(t *testing.T, room *Room, phase Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.phase(room) == phase
	}, 2*time.Second, 5*time.Millisecond, "room never reached %s", phase)
}

func classicSettings() RoomSettings {
	return RoomSettings{
		Rounds:     1,
		DrawTime:   180,
		RevealTime: 60,
		GameMode:   MODE_CLASSIC,
	}
}
