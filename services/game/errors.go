package game

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrRoomAlreadyStarted  = errors.New("game already started")
	ErrRoomNotStarted      = errors.New("game has not started")
	ErrInsufficientPlayers = errors.New("not enough players")
	ErrNoWordsAvailable    = errors.New("no words available")
	ErrNotHost             = errors.New("only the host can do that")
	ErrInvalidImposters    = errors.New("imposter count must be at least 1")
)
