package game

import (
	"context"
	"errors"

	"github.com/n0ya6101/hangman-game/pkg/utils"
)

// NewRoomCode generates a private room code, retrying until it finds one not
// already taken in the store.
func NewRoomCode(ctx context.Context, store SessionStore) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := utils.RandomCode(RoomCodeLength, RoomCodeAlphabet)
		_, err := store.GetSession(ctx, code)
		if errors.Is(err, ErrSessionNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
}
