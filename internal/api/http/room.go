package http

import (
	"sandpixel-be/internal/service/dto"
	"sandpixel-be/internal/state"

	"github.com/kataras/iris/v12"
)

// ListRooms 返回仍在大厅且未满的房间
func ListRooms(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(dto.ListRoomsResponse{
			Rooms: appState.RoomSvc.ListRooms(),
		})
	}
}
