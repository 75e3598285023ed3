package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"sandpixel-be/internal/service/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoomService(t *testing.T) *RoomService {
	t.Helper()

	rs := NewRoomService(game.NewTimerManager(10*time.Millisecond), time.Minute, time.Hour)
	t.Cleanup(rs.Close)
	return rs
}

func TestCreateRoom(t *testing.T) {
	rs := newTestRoomService(t)

	_, _, err := rs.CreateRoom("  ", "s1", game.RoomSettings{})
	assert.ErrorIs(t, err, game.ErrInvalidRequest)

	room, player, err := rs.CreateRoom("alice", "s1", game.RoomSettings{GameMode: "collaborative"})
	require.NoError(t, err)

	assert.Len(t, room.ID, game.ROOM_ID_LENGTH)
	assert.True(t, room.IsHost("s1"))
	assert.Equal(t, "alice", player.Name)
	assert.Equal(t, game.MODE_COLLABORATIVE, room.Settings.GameMode)
	assert.Equal(t, room.ID, rs.GetRoomIDForSession("s1"))
	assert.Same(t, room, rs.GetRoom(strings.ToLower(room.ID)))
}

func TestJoinRoom(t *testing.T) {
	rs := newTestRoomService(t)
	room, _, err := rs.CreateRoom("alice", "s1", game.RoomSettings{MaxPlayers: 2})
	require.NoError(t, err)

	_, _, err = rs.JoinRoom("NOPE00", "bob", "s2")
	assert.ErrorIs(t, err, game.ErrRoomNotFound)

	_, player, err := rs.JoinRoom(" "+strings.ToLower(room.ID)+" ", "bob", "s2")
	require.NoError(t, err)
	assert.Equal(t, "bob", player.Name)
	assert.Equal(t, room.ID, rs.GetRoomIDForSession("s2"))

	_, _, err = rs.JoinRoom(room.ID, "carol", "s3")
	assert.ErrorIs(t, err, game.ErrRoomFull)
	assert.Empty(t, rs.GetRoomIDForSession("s3"))
}

func TestJoinRoomDuringGame(t *testing.T) {
	rs := newTestRoomService(t)
	room, _, err := rs.CreateRoom("alice", "s1", game.RoomSettings{})
	require.NoError(t, err)

	room.Lock()
	room.State.Phase = game.PHASE_DRAWING
	room.Unlock()

	_, _, err = rs.JoinRoom(room.ID, "bob", "s2")
	assert.ErrorIs(t, err, game.ErrGameInProgress)
}

func TestLeaveRoom(t *testing.T) {
	rs := newTestRoomService(t)
	room, _, err := rs.CreateRoom("alice", "s1", game.RoomSettings{})
	require.NoError(t, err)
	_, _, err = rs.JoinRoom(room.ID, "bob", "s2")
	require.NoError(t, err)

	left, player := rs.LeaveRoom(room.ID, "s1")
	require.NotNil(t, left)
	assert.Equal(t, "alice", player.Name)
	assert.True(t, room.IsHost("s2"))
	assert.Empty(t, rs.GetRoomIDForSession("s1"))

	left, player = rs.LeaveRoom(room.ID, "s2")
	assert.Nil(t, left)
	assert.Equal(t, "bob", player.Name)
	assert.Nil(t, rs.GetRoom(room.ID))
	assert.Zero(t, rs.RoomCount())

	left, player = rs.LeaveRoom(room.ID, "s2")
	assert.Nil(t, left)
	assert.Nil(t, player)
}

func TestRemoveExpired(t *testing.T) {
	rs := newTestRoomService(t)
	stale, _, err := rs.CreateRoom("alice", "s1", game.RoomSettings{})
	require.NoError(t, err)
	fresh, _, err := rs.CreateRoom("bob", "s2", game.RoomSettings{})
	require.NoError(t, err)

	stale.Lock()
	stale.LastActivity = time.Now().Add(-2 * time.Minute)
	stale.Unlock()

	removed := rs.RemoveExpired()
	assert.Equal(t, []string{stale.ID}, removed)
	assert.Nil(t, rs.GetRoom(stale.ID))
	assert.Empty(t, rs.GetRoomIDForSession("s1"))
	assert.Same(t, fresh, rs.GetRoom(fresh.ID))
}

func TestRejoinRoom(t *testing.T) {
	rs := newTestRoomService(t)
	room, _, err := rs.CreateRoom("alice", "s1", game.RoomSettings{})
	require.NoError(t, err)
	_, bob, err := rs.JoinRoom(room.ID, "bob", "s2")
	require.NoError(t, err)

	_, _, err = rs.RejoinRoom(room.ID, bob.ID, "s9")
	assert.ErrorIs(t, err, game.ErrInvalidRequest)

	assert.Equal(t, room.ID, rs.HandleDisconnect("s2"))
	got, ok := rs.GetPlayerBySession("s2")
	require.True(t, ok)
	assert.False(t, got.Connected)

	_, _, err = rs.RejoinRoom(room.ID, "missing", "s9")
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)
	_, _, err = rs.RejoinRoom("NOPE00", bob.ID, "s9")
	assert.ErrorIs(t, err, game.ErrRoomNotFound)

	_, player, err := rs.RejoinRoom(room.ID, bob.ID, "s9")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, player.ID)
	assert.True(t, player.Connected)
	assert.Empty(t, rs.GetRoomIDForSession("s2"))
	assert.Equal(t, room.ID, rs.GetRoomIDForSession("s9"))
}

func TestToggleReady(t *testing.T) {
	rs := newTestRoomService(t)
	_, err := rs.ToggleReady("s1")
	assert.ErrorIs(t, err, game.ErrNotInRoom)

	_, _, err = rs.CreateRoom("alice", "s1", game.RoomSettings{})
	require.NoError(t, err)

	_, err = rs.ToggleReady("s1")
	require.NoError(t, err)
	p, _ := rs.GetPlayerBySession("s1")
	assert.True(t, p.Ready)

	_, err = rs.ToggleReady("s1")
	require.NoError(t, err)
	p, _ = rs.GetPlayerBySession("s1")
	assert.False(t, p.Ready)
}

func TestListRooms(t *testing.T) {
	rs := newTestRoomService(t)
	first, _, err := rs.CreateRoom("alice", "s1", game.RoomSettings{})
	require.NoError(t, err)
	full, _, err := rs.CreateRoom("bob", "s2", game.RoomSettings{MaxPlayers: 2})
	require.NoError(t, err)
	_, _, err = rs.JoinRoom(full.ID, "carol", "s3")
	require.NoError(t, err)
	playing, _, err := rs.CreateRoom("dave", "s4", game.RoomSettings{})
	require.NoError(t, err)
	last, _, err := rs.CreateRoom("erin", "s5", game.RoomSettings{GameMode: game.MODE_TELEPHONE})
	require.NoError(t, err)

	playing.Lock()
	playing.State.Phase = game.PHASE_DRAWING
	playing.Unlock()

	rooms := rs.ListRooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, first.ID, rooms[0].ID)
	assert.Equal(t, "alice", rooms[0].HostName)
	assert.Equal(t, last.ID, rooms[1].ID)
	assert.Equal(t, game.MODE_TELEPHONE, rooms[1].GameMode)
}

func TestConcurrentJoinAndLeave(t *testing.T) {
	rs := newTestRoomService(t)
	room, _, err := rs.CreateRoom("host", "host", game.RoomSettings{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 11 {
		sessionID := fmt.Sprintf("s%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := rs.JoinRoom(room.ID, "player", sessionID)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, room.ID, rs.GetRoomIDForSession(sessionID))
			rs.ListRooms()
			rs.RemoveExpired()

			if i%2 == 0 {
				rs.LeaveRoom(room.ID, sessionID)
				assert.Empty(t, rs.GetRoomIDForSession(sessionID))
			}
		}()
	}
	wg.Wait()

	room.Lock()
	count := room.PlayerCount()
	room.Unlock()

	// 11 人加入，其中 6 人离开
	assert.Equal(t, 6, count)
	assert.Equal(t, 1, rs.RoomCount())

	_, _, err = rs.JoinRoom(room.ID, "late", "late")
	require.NoError(t, err)
}
