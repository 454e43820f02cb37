/*
Package randx generates the random identifiers used by the relay: short Base62
room codes handed out with invite links, and UUIDs naming websocket sessions.
All randomness comes from crypto/rand.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// RoomCodeLength is the length of a generated room code.
	RoomCodeLength = 6
)

var base62Len = big.NewInt(int64(len(Base62Chars)))

// RoomCode returns a fresh RoomCodeLength-character Base62 room code.
func RoomCode() (string, error) {
	code, err := base62(RoomCodeLength)
	if err != nil {
		return "", fmt.Errorf("generate room code: %w", err)
	}
	return code, nil
}

// ConnectionID generates a UUID v4 string identifying one websocket session.
func ConnectionID() string {
	return uuid.New().String()
}

func base62(n int) (string, error) {
	out := make([]byte, n)
	for i := range out {
		num, err := rand.Int(rand.Reader, base62Len)
		if err != nil {
			return "", err
		}
		out[i] = Base62Chars[num.Int64()]
	}
	return string(out), nil
}
