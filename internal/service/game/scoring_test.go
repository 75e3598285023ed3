package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateGuesserPoints(t *testing.T) {
	now := time.Now()

	t.Run("immediate guess earns nearly full points", func(t *testing.T) {
		points := CalculateGuesserPoints(time.Now(), 60, false)
		assert.GreaterOrEqual(t, points, 495)
		assert.LessOrEqual(t, points, 500)
	})

	t.Run("late guess floors at minimum", func(t *testing.T) {
		assert.Equal(t, 50, CalculateGuesserPoints(now.Add(-120*time.Second), 60, false))
	})

	t.Run("late first guess keeps the bonus", func(t *testing.T) {
		assert.Equal(t, 100, CalculateGuesserPoints(now.Add(-120*time.Second), 60, true))
	})

	t.Run("halfway rounds half up", func(t *testing.T) {
		assert.Equal(t, 250, guesserPointsAt(now, now.Add(-30*time.Second), 60, false))
		assert.Equal(t, 350, guesserPointsAt(now, now.Add(-30*time.Second), 60, true))
	})
}

func TestStreakMultiplier(t *testing.T) {
	tests := []struct {
		streak int
		want   float64
	}{
		{-3, 1.0},
		{0, 1.0},
		{1, 1.0},
		{2, 1.25},
		{3, 1.5},
		{4, 2.0},
		{10, 2.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StreakMultiplier(tt.streak), "streak %d", tt.streak)
	}
}

func TestCalculateGuesserPointsWithStreak(t *testing.T) {
	late := time.Now().Add(-120 * time.Second)

	// 之前连胜 2 次，本次为第 3 次
	got := CalculateGuesserPointsWithStreak(late, 60, true, 2)
	assert.Equal(t, 100, got.Base)
	assert.Equal(t, 1.5, got.Multiplier)
	assert.Equal(t, 150, got.Points)

	got = CalculateGuesserPointsWithStreak(late, 60, false, 0)
	assert.Equal(t, 50, got.Points)
	assert.Equal(t, 1.0, got.Multiplier)
}

func TestCalculateDrawerPoints(t *testing.T) {
	assert.Equal(t, 150, CalculateDrawerPoints(2, 5))
	assert.Equal(t, 300, CalculateDrawerPoints(2, 3))
	assert.Equal(t, 214, CalculateDrawerPoints(5, 8))

	for _, n := range []int{1, 2, 5, 12} {
		assert.Equal(t, 0, CalculateDrawerPoints(0, n))
	}
	for _, k := range []int{0, 1, 3} {
		assert.Equal(t, 0, CalculateDrawerPoints(k, 1))
	}
}

func TestRoundAndFinalScoresAreSorted(t *testing.T) {
	room := NewRoom("ABCDEF", DefaultRoomSettings())
	for _, name := range []string{"ann", "bob", "cat"} {
		room.AddPlayer(NewPlayer(name, "sid-"+name))
	}

	room.GetPlayer("sid-ann").Score = 100
	room.GetPlayer("sid-bob").Score = 300
	room.GetPlayer("sid-cat").Score = 100
	room.GetPlayer("sid-cat").MaxStreak = 4
	room.State.RoundDrawerIDs = []string{room.GetPlayer("sid-bob").ID}
	room.State.CorrectGuessers[room.GetPlayer("sid-cat").ID] = struct{}{}

	round := RoundScores(room)
	require.Len(t, round, 3)
	assert.Equal(t, "bob", round[0].PlayerName)
	assert.True(t, round[0].IsDrawer)
	// 同分保持加入顺序
	assert.Equal(t, "ann", round[1].PlayerName)
	assert.Equal(t, "cat", round[2].PlayerName)
	assert.True(t, round[2].GuessedCorrectly)

	final := FinalScores(room)
	require.Len(t, final, 3)
	assert.Equal(t, 1, final[0].Rank)
	assert.Equal(t, "bob", final[0].PlayerName)
	assert.Equal(t, 3, final[2].Rank)
	assert.Equal(t, 4, final[2].MaxStreak)
}
