package game

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 请求类型
const (
	REQ_CREATE_ROOM              = "CREATE_ROOM"
	REQ_JOIN_ROOM                = "JOIN_ROOM"
	REQ_REJOIN_ROOM              = "REJOIN_ROOM"
	REQ_LEAVE_ROOM               = "LEAVE_ROOM"
	REQ_TOGGLE_READY             = "TOGGLE_READY"
	REQ_START_GAME               = "START_GAME"
	REQ_SELECT_WORD              = "SELECT_WORD"
	REQ_DRAW_STROKE              = "DRAW_STROKE"
	REQ_SUBMIT_DRAWING           = "SUBMIT_DRAWING"
	REQ_SUBMIT_GUESS             = "SUBMIT_GUESS"
	REQ_SUBMIT_TELEPHONE_DRAWING = "SUBMIT_TELEPHONE_DRAWING"
	REQ_SUBMIT_TELEPHONE_GUESS   = "SUBMIT_TELEPHONE_GUESS"
	REQ_CAST_VOTE                = "CAST_VOTE"
	REQ_SEND_CHAT                = "SEND_CHAT"
	REQ_SEND_REACTION            = "SEND_REACTION"
)

type RequestWrapper struct {
	ReqType string          `json:"request_type"`
	Data    json.RawMessage `json:"data"`
}

// TryUnwrap 在类型匹配且数据可以解析时返回请求体，否则返回 nil
func TryUnwrap[T any](wrapper RequestWrapper, reqType string) *T {
	if wrapper.ReqType != reqType {
		return nil
	}

	var req T
	if len(wrapper.Data) == 0 {
		return &req
	}

	err := json.Unmarshal(wrapper.Data, &req)
	if err != nil {
		zap.L().Warn(
			"Failed to unwrap request",
			zap.String("request_type", reqType),
			zap.Error(err),
		)
		return nil
	}

	return &req
}

// 响应类型
const (
	RESP_ERROR = "ERROR"

	RESP_ROOM_JOINED      = "ROOM_JOINED"
	RESP_ROOM_STATE       = "ROOM_STATE"
	RESP_PLAYER_JOINED    = "PLAYER_JOINED"
	RESP_PLAYER_LEFT      = "PLAYER_LEFT"
	RESP_COUNTDOWN        = "COUNTDOWN"
	RESP_ROUND_START      = "ROUND_START"
	RESP_WORD_OPTIONS     = "WORD_OPTIONS"
	RESP_DRAWING_PHASE    = "DRAWING_PHASE"
	RESP_WORD_SELECTED    = "WORD_SELECTED"
	RESP_DRAW_STROKE      = "DRAW_STROKE"
	RESP_REVEAL_PHASE     = "REVEAL_PHASE"
	RESP_CORRECT_GUESS    = "CORRECT_GUESS"
	RESP_CLOSE_GUESS      = "CLOSE_GUESS"
	RESP_CHAT             = "CHAT"
	RESP_REACTION         = "REACTION"
	RESP_ROUND_END        = "ROUND_END"
	RESP_GAME_OVER        = "GAME_OVER"
	RESP_VOTING_START     = "VOTING_START"
	RESP_VOTE_RECEIVED    = "VOTE_RECEIVED"
	RESP_VOTING_RESULTS   = "VOTING_RESULTS"
	RESP_TELEPHONE_DRAW   = "TELEPHONE_DRAW"
	RESP_TELEPHONE_GUESS  = "TELEPHONE_GUESS"
	RESP_TELEPHONE_PROMPT = "TELEPHONE_PROMPT"
	RESP_TELEPHONE_REVEAL = "TELEPHONE_REVEAL"
)

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		ErrMsg:   errMsg,
	}
}
