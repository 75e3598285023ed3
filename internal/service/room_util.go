package service

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"sandpixel-be/internal/service/dto"
	"sandpixel-be/internal/service/game"
)

func normalizeRoomID(roomID string) string {
	return strings.ToUpper(strings.TrimSpace(roomID))
}

// isRoomValid 调用方必须持有房间锁
func isRoomValid(room *game.Room, inactivity time.Duration) bool {
	if room == nil {
		return false
	}

	if room.IsEmpty() {
		return false
	}

	return !room.IsInactive(inactivity)
}

// toRoomSummary 调用方必须持有房间锁
func toRoomSummary(room *game.Room) dto.RoomSummary {
	var hostName string
	if host := room.GetPlayer(room.HostSessionID); host != nil {
		hostName = host.Name
	}

	return dto.RoomSummary{
		ID:          room.ID,
		HostName:    hostName,
		PlayerCount: room.PlayerCount(),
		MaxPlayers:  room.Settings.MaxPlayers,
		GameMode:    room.Settings.GameMode,
		CreatedAt:   room.CreatedAt,
	}
}

func sortRoomSummaries(summaries []dto.RoomSummary) {
	slices.SortFunc(summaries, func(a, b dto.RoomSummary) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})
}
