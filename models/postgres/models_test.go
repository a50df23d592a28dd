package postgres

import (
	"strings"
	"testing"

	game_constants "github.com/salmanshahriar/whos-fake/constants/game"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRoomCode(t *testing.T) {
	assert.Len(t, game_constants.RoomCodeAlphabet, 32)

	for i := 0; i < 1000; i++ {
		code := GenerateRoomCode()
		assert.Len(t, code, game_constants.RoomCodeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(game_constants.RoomCodeAlphabet, ch),
				"code %q contains %q, which is outside the alphabet", code, ch)
		}
	}
}

func TestGenerateRoomCodeExcludesAmbiguousCharacters(t *testing.T) {
	for _, ch := range "01OIL" {
		assert.NotContains(t, game_constants.RoomCodeAlphabet, string(ch))
	}
}

func TestGenerateRoomCodeCoversAlphabet(t *testing.T) {
	seen := make(map[rune]bool)
	for i := 0; i < 5000; i++ {
		for _, ch := range GenerateRoomCode() {
			seen[ch] = true
		}
	}
	// Every alphabet character should show up over this many draws.
	assert.Len(t, seen, len(game_constants.RoomCodeAlphabet))
}
