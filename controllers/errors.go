package controllers

import (
	"errors"
	"net/http"

	"github.com/salmanshahriar/whos-fake/services/game"
)

// statusForError maps engine failures onto HTTP statuses. Anything
// unrecognized is treated as a store failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, game.ErrRoomNotFound),
		errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrRoomAlreadyStarted),
		errors.Is(err, game.ErrRoomNotStarted):
		return http.StatusConflict
	case errors.Is(err, game.ErrInsufficientPlayers),
		errors.Is(err, game.ErrNoWordsAvailable),
		errors.Is(err, game.ErrInvalidImposters):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrNotHost):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
