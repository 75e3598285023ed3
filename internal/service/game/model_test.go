package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomSettingsNormalize(t *testing.T) {
	t.Run("zero values take defaults", func(t *testing.T) {
		assert.Equal(t, DefaultRoomSettings(), RoomSettings{}.Normalize())
	})

	t.Run("out of range values are clamped", func(t *testing.T) {
		got := RoomSettings{
			MaxPlayers:         50,
			Rounds:             -1,
			DrawTime:           5,
			RevealTime:         500,
			GameMode:           "telephone",
			CollaborativeCount: 9,
		}.Normalize()

		assert.Equal(t, 12, got.MaxPlayers)
		assert.Equal(t, 1, got.Rounds)
		assert.Equal(t, 30, got.DrawTime)
		assert.Equal(t, 60, got.RevealTime)
		assert.Equal(t, MODE_TELEPHONE, got.GameMode)
		assert.Equal(t, 4, got.CollaborativeCount)
	})

	t.Run("unknown mode falls back to classic", func(t *testing.T) {
		assert.Equal(t, MODE_CLASSIC, RoomSettings{GameMode: "battle"}.Normalize().GameMode)
	})
}

func TestGenRoomID(t *testing.T) {
	for range 100 {
		id := GenRoomID()
		require.Len(t, id, ROOM_ID_LENGTH)
		for _, c := range id {
			assert.True(t, strings.ContainsRune(ROOM_ID_CHARS, c), "unexpected char %q", c)
		}
	}

	assert.NotContains(t, ROOM_ID_CHARS, "0")
	assert.NotContains(t, ROOM_ID_CHARS, "O")
	assert.NotContains(t, ROOM_ID_CHARS, "1")
	assert.NotContains(t, ROOM_ID_CHARS, "I")
}

func TestRoomHostTransfer(t *testing.T) {
	room := NewRoom("ROOM01", DefaultRoomSettings())
	room.AddPlayer(NewPlayer("alice", "s1"))
	room.AddPlayer(NewPlayer("bob", "s2"))
	room.AddPlayer(NewPlayer("carol", "s3"))

	assert.True(t, room.IsHost("s1"))

	removed := room.RemovePlayer("s1")
	require.NotNil(t, removed)
	assert.Equal(t, "alice", removed.Name)
	assert.True(t, room.IsHost("s2"))
	assert.Equal(t, []string{"s2", "s3"}, room.SessionIDs())

	assert.Nil(t, room.RemovePlayer("s1"))

	room.RemovePlayer("s2")
	room.RemovePlayer("s3")
	assert.True(t, room.IsEmpty())
	assert.Empty(t, room.HostSessionID)
}

func TestRoomIsFull(t *testing.T) {
	room := NewRoom("ROOM01", RoomSettings{MaxPlayers: 2})
	room.AddPlayer(NewPlayer("alice", "s1"))
	assert.False(t, room.IsFull())
	room.AddPlayer(NewPlayer("bob", "s2"))
	assert.True(t, room.IsFull())
}

func TestNextDrawerRotation(t *testing.T) {
	room := NewRoom("ROOM01", DefaultRoomSettings())
	room.AddPlayer(NewPlayer("alice", "s1"))
	room.AddPlayer(NewPlayer("bob", "s2"))
	room.AddPlayer(NewPlayer("carol", "s3"))

	var order []string
	for range 4 {
		order = append(order, room.NextDrawer().SessionID)
	}
	assert.Equal(t, []string{"s1", "s2", "s3", "s1"}, order)
}

func TestNextDrawerSurvivesRemoval(t *testing.T) {
	room := NewRoom("ROOM01", DefaultRoomSettings())
	room.AddPlayer(NewPlayer("alice", "s1"))
	room.AddPlayer(NewPlayer("bob", "s2"))
	room.AddPlayer(NewPlayer("carol", "s3"))

	require.Equal(t, "s1", room.NextDrawer().SessionID)
	require.Equal(t, "s2", room.NextDrawer().SessionID)

	// 刚画完的玩家离开，下一位仍是 carol
	room.RemovePlayer("s2")
	assert.Equal(t, "s3", room.NextDrawer().SessionID)
}

func TestRebindSession(t *testing.T) {
	room := NewRoom("ROOM01", DefaultRoomSettings())
	alice := NewPlayer("alice", "s1")
	room.AddPlayer(alice)
	room.AddPlayer(NewPlayer("bob", "s2"))
	room.State.StartNewRound([]*Player{alice}, []string{"apple"})
	room.State.Telephone = &TelephoneChain{Queue: []string{"s2", "s1"}}
	alice.Connected = false

	got := room.RebindSession("s1", "s9")
	require.NotNil(t, got)
	assert.Same(t, alice, got)
	assert.True(t, alice.Connected)
	assert.Equal(t, "s9", alice.SessionID)
	assert.Nil(t, room.GetPlayer("s1"))
	assert.Same(t, alice, room.GetPlayer("s9"))
	assert.True(t, room.IsHost("s9"))
	assert.Equal(t, []string{"s9", "s2"}, room.SessionIDs())
	assert.True(t, room.State.IsCurrentDrawer("s9"))
	assert.True(t, room.State.IsRoundDrawer("s9"))
	assert.Equal(t, []string{"s2", "s9"}, room.State.Telephone.Queue)

	assert.Nil(t, room.RebindSession("missing", "s10"))
}

func TestPlayerStreak(t *testing.T) {
	p := NewPlayer("alice", "s1")
	p.IncrementStreak()
	p.IncrementStreak()
	p.ResetStreak()
	p.IncrementStreak()

	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 2, p.MaxStreak)
}

func TestResetForNewGame(t *testing.T) {
	room := NewRoom("ROOM01", RoomSettings{Rounds: 4})
	p := NewPlayer("alice", "s1")
	room.AddPlayer(p)
	p.Score, p.Ready, p.CurrentStreak, p.MaxStreak = 900, true, 2, 3
	room.State.Phase = PHASE_VOTING

	room.ResetForNewGame()

	assert.Zero(t, p.Score)
	assert.False(t, p.Ready)
	assert.Zero(t, p.MaxStreak)
	assert.Equal(t, PHASE_LOBBY, room.State.Phase)
	assert.Equal(t, 4, room.State.TotalRounds)
	assert.Equal(t, -1, room.State.DrawerIndex)
}

func TestTelephoneChain(t *testing.T) {
	chain := NewTelephoneChain("cat", []string{"s1", "s2", "s3"})
	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, chain.Queue)
	assert.Equal(t, "cat", chain.CurrentPrompt())
	assert.Equal(t, ENTRY_DRAW, chain.NextEntryType())

	first := chain.CurrentSessionID()
	chain.AddEntry(&Player{ID: "p1", Name: "alice"}, ENTRY_DRAW, "img1")
	assert.NotEqual(t, first, chain.CurrentSessionID())
	assert.Equal(t, "img1", chain.CurrentPrompt())
	assert.Equal(t, ENTRY_GUESS, chain.NextEntryType())

	chain.Skip()
	chain.AddEntry(&Player{ID: "p3", Name: "carol"}, ENTRY_GUESS, "dog")
	assert.True(t, chain.IsComplete())
	assert.Empty(t, chain.CurrentSessionID())
	assert.Equal(t, ENTRY_DRAW, chain.NextEntryType())
}

func TestWordHint(t *testing.T) {
	assert.Equal(t, "_ _ _", WordHint("cat"))
	assert.Equal(t, "_ _ _  _ _ _ _ _", WordHint("ice cream"))
	assert.Equal(t, "_ _ -_ _", WordHint("tv-ad"))
	assert.Empty(t, WordHint(""))
}

func TestSnapshot(t *testing.T) {
	room := NewRoom("ROOM01", DefaultRoomSettings())
	alice := NewPlayer("alice", "s1")
	room.AddPlayer(alice)
	room.AddPlayer(NewPlayer("bob", "s2"))

	snap := room.Snapshot()
	assert.Equal(t, alice.ID, snap.HostID)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "alice", snap.Players[0].Name)

	snap.Players[0].Score = 999
	assert.Zero(t, alice.Score)
	assert.False(t, snap.AllReady)

	for _, p := range room.Players {
		p.Ready = true
	}
	assert.True(t, room.Snapshot().AllReady)
}
