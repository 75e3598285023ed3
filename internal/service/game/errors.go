package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrNotInRoom        = errors.New("not in a room")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotHost          = errors.New("only host can start the game")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start")
	ErrNotDrawer        = errors.New("you are not the drawer")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrWrongPhase       = errors.New("action not allowed in current phase")
	ErrAlreadyVoted     = errors.New("you have already voted")
	ErrSelfVote         = errors.New("you cannot vote for your own drawing")
	ErrUnknownDrawing   = errors.New("no drawing by that player")
	ErrInvalidRequest   = errors.New("invalid request")
)
