package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessGuess(t *testing.T) {
	h := newHarness(t)
	room := h.addRoom(classicSettings(), 3)
	rm := NewRoundManager(h.ctx)
	gp := NewGuessProcessor(h.ctx, rm)
	startDrawing(t, h, rm, room)

	t.Run("drawer cannot guess", func(t *testing.T) {
		assert.False(t, gp.CanPlayerGuess(room, "s1"))
		assert.Equal(t, GUESS_IGNORED, gp.ProcessGuess(room, "s1", "apple").Type)
	})

	t.Run("unknown session is ignored", func(t *testing.T) {
		assert.Equal(t, GUESS_IGNORED, gp.ProcessGuess(room, "nobody", "apple").Type)
	})

	t.Run("blank guess is ignored", func(t *testing.T) {
		assert.Equal(t, GUESS_IGNORED, gp.ProcessGuess(room, "s2", "   ").Type)
	})

	t.Run("wrong guess becomes chat", func(t *testing.T) {
		assert.Equal(t, GUESS_WRONG, gp.ProcessGuess(room, "s2", "banana").Type)
		chats := h.out.roomEvents(RESP_CHAT)
		require.Len(t, chats, 1)
		assert.Equal(t, "banana", chats[0].Data.(ChatMessage).Text)
	})

	t.Run("close guess is private", func(t *testing.T) {
		assert.Equal(t, GUESS_CLOSE, gp.ProcessGuess(room, "s2", "apply").Type)
		assert.Len(t, h.out.privateEvents("s2", RESP_CLOSE_GUESS), 1)
		assert.Len(t, h.out.roomEvents(RESP_CHAT), 1)
	})

	t.Run("first correct guess gets the bonus", func(t *testing.T) {
		result := gp.ProcessGuess(room, "s2", " APPLE ")
		require.Equal(t, GUESS_CORRECT, result.Type)
		assert.False(t, result.AllGuessed)
		assert.GreaterOrEqual(t, result.Points, 590)
		assert.LessOrEqual(t, result.Points, 600)
		assert.Equal(t, result.Points, room.GetPlayer("s2").Score)

		events := h.out.roomEvents(RESP_CORRECT_GUESS)
		require.Len(t, events, 1)
		data := events[0].Data.(CorrectGuessResponse)
		assert.Equal(t, 1, data.TotalGuessers)
		assert.Equal(t, 1, data.Streak)
	})

	t.Run("repeat guess is ignored", func(t *testing.T) {
		assert.Equal(t, GUESS_IGNORED, gp.ProcessGuess(room, "s2", "apple").Type)
	})

	t.Run("last guesser completes the round", func(t *testing.T) {
		room.GetPlayer("s3").CurrentStreak = 3
		result := gp.ProcessGuess(room, "s3", "apple")
		require.Equal(t, GUESS_CORRECT, result.Type)
		assert.True(t, result.AllGuessed)
		// 第 4 次连胜翻倍
		assert.GreaterOrEqual(t, result.Points, 980)
		assert.LessOrEqual(t, result.Points, 1000)
		assert.True(t, rm.AllGuessed(room))
	})
}

func TestGuessingClosedOutsideRound(t *testing.T) {
	h := newHarness(t)
	room := h.addRoom(classicSettings(), 3)
	rm := NewRoundManager(h.ctx)
	gp := NewGuessProcessor(h.ctx, rm)

	room.State.CurrentWord = "apple"
	for _, phase := range []Phase{PHASE_LOBBY, PHASE_WORD_SELECTION, PHASE_RESULTS, PHASE_GAME_OVER} {
		room.State.Phase = phase
		assert.Equal(t, GUESS_IGNORED, gp.ProcessGuess(room, "s2", "apple").Type, "phase %s", phase)
	}
}

func TestRoundDrawerCannotGuessDuringReveal(t *testing.T) {
	h := newHarness(t)
	room := h.addRoom(classicSettings(), 3)
	rm := NewRoundManager(h.ctx)
	gp := NewGuessProcessor(h.ctx, rm)
	startDrawing(t, h, rm, room)
	require.NoError(t, rm.SubmitDrawing(room, "s1", "img"))

	require.Empty(t, room.State.CurrentDrawerSessionIDs)
	assert.False(t, gp.CanPlayerGuess(room, "s1"))
	assert.True(t, gp.CanPlayerGuess(room, "s2"))
}
