package dto

import "time"

// 大厅列表中展示的房间信息
type RoomSummary struct {
	ID          string    `json:"id"`
	HostName    string    `json:"host_name"`
	PlayerCount int       `json:"player_count"`
	MaxPlayers  int       `json:"max_players"`
	GameMode    string    `json:"game_mode"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListRoomsResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}
