package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"sandpixel-be/internal/service/game"
	"sandpixel-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ServeSession 每个 WebSocket 连接就是一个 session，session ID 由服务端生成
func ServeSession(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer conn.Close()

		conn.SetReadLimit(MAX_MESSAGE_SIZE)
		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		sessionID := game.GenID()
		clientIP := ctx.RemoteAddr()

		respCh := appState.Hub.Register(sessionID)

		zap.L().Info(
			"客户端已连接",
			zap.String("client_ip", clientIP),
			zap.String("session_id", sessionID),
		)

		// 写协程的退出信号
		writeDoneCh := make(chan struct{})
		writerExited := make(chan struct{})

		go writeLoop(conn, respCh, writeDoneCh, writerExited, clientIP)

		limiter := rate.NewLimiter(
			rate.Limit(appState.Cfg.InboundRatePerSecond),
			appState.Cfg.InboundBurst,
		)

		readLoop(conn, appState, sessionID, limiter, clientIP)

		// 读循环退出，表示客户端断开连接
		zap.L().Info(
			"客户端连接断开",
			zap.String("client_ip", clientIP),
			zap.String("session_id", sessionID),
		)

		appState.GameSvc.Disconnect(sessionID)
		close(writeDoneCh)
		appState.Hub.Unregister(sessionID)
		<-writerExited
	}
}

func readLoop(conn *websocket.Conn, appState *state.AppState, sessionID string, limiter *rate.Limiter, clientIP string) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				zap.L().Error(
					"读取消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
			}
			return
		}

		if !limiter.Allow() {
			appState.Hub.SendToPlayer(sessionID, game.WrapErrResponse("too many requests"))
			continue
		}

		var wrapper game.RequestWrapper

		if err := json.Unmarshal(msg, &wrapper); err != nil {
			zap.L().Debug(
				"解析消息失败",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)

			appState.Hub.SendToPlayer(sessionID, game.WrapErrResponse("invalid request format"))
			continue
		}

		if err := appState.GameSvc.Handle(sessionID, wrapper); err != nil {
			zap.L().Debug(
				"请求被拒绝",
				zap.String("session_id", sessionID),
				zap.String("request_type", wrapper.ReqType),
				zap.Error(err),
			)

			appState.Hub.SendToPlayer(sessionID, game.WrapErrResponse(errorMessage(err)))
		}
	}
}

func writeLoop(
	conn *websocket.Conn,
	respCh <-chan game.ResponseWrapper,
	doneCh <-chan struct{},
	exited chan<- struct{},
	clientIP string,
) {
	defer close(exited)

	ticker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-doneCh:
			return

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Error(
					"发送心跳失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				return
			}

		case resp, ok := <-respCh:
			if !ok {
				return
			}

			conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
			if err := conn.WriteJSON(resp); err != nil {
				zap.L().Error(
					"发送消息失败",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				return
			}
		}
	}
}

// errorMessage 只把预期内的拒绝原因返回给客户端
func errorMessage(err error) string {
	for _, known := range []error{
		game.ErrRoomNotFound,
		game.ErrRoomFull,
		game.ErrGameInProgress,
		game.ErrNotInRoom,
		game.ErrPlayerNotFound,
		game.ErrNotHost,
		game.ErrNotEnoughPlayers,
		game.ErrNotDrawer,
		game.ErrNotYourTurn,
		game.ErrWrongPhase,
		game.ErrAlreadyVoted,
		game.ErrSelfVote,
		game.ErrUnknownDrawing,
		game.ErrInvalidRequest,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "internal error"
}
