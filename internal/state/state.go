package state

import (
	"sandpixel-be/internal/config"
	"sandpixel-be/internal/service"
	"sandpixel-be/internal/service/broadcast"
)

// AppState 是交给传输层的全部依赖
type AppState struct {
	Cfg     *config.AppConfig
	RoomSvc *service.RoomService
	GameSvc *service.GameService
	Hub     *broadcast.Hub
}

func NewAppState(
	cfg *config.AppConfig,
	gameSvc *service.GameService,
	hub *broadcast.Hub,
) *AppState {
	return &AppState{
		Cfg:     cfg,
		RoomSvc: gameSvc.Rooms(),
		GameSvc: gameSvc,
		Hub:     hub,
	}
}
