package main

import (
	"time"

	"sandpixel-be/internal/api/http"
	"sandpixel-be/internal/config"
	"sandpixel-be/internal/logger"
	"sandpixel-be/internal/service"
	"sandpixel-be/internal/service/broadcast"
	"sandpixel-be/internal/service/game"
	"sandpixel-be/internal/service/wordbank"
	"sandpixel-be/internal/state"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	lgr := logger.InitLogger(cfg.LogLevel)
	defer lgr.Sync()

	words, err := wordbank.Load(cfg.WordListPath)
	if err != nil {
		zap.L().Fatal("加载词库失败", zap.Error(err))
	}

	timers := game.NewTimerManager(time.Second)
	hub := broadcast.NewHub()

	roomSvc := service.NewRoomService(timers, cfg.RoomInactivity(), cfg.CleanupInterval())
	defer roomSvc.Close()

	machine := game.NewGameMachine(
		game.NewGameContext(roomSvc, hub, words, timers, cfg.Timings),
	)

	// 组装应用状态
	appState := state.NewAppState(
		cfg,
		service.NewGameService(roomSvc, machine, hub),
		hub,
	)

	// 启动服务器
	if err := http.RunServer(appState); err != nil {
		zap.L().Error("服务器退出", zap.Error(err))
	}
}
