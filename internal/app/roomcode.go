package app

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	roomCodeLength   = 6
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// newRoomCode returns a short, human-shareable room code. Rejection sampling
// keeps the crypto/rand bytes uniform over the alphabet.
func newRoomCode(n int) (string, error) {
	const max = byte(255 - (256 % len(roomCodeAlphabet)))

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("room code: %w", err)
		}
		for _, b := range buf {
			if b <= max {
				out = append(out, roomCodeAlphabet[int(b)%len(roomCodeAlphabet)])
				if len(out) == n {
					return string(out), nil
				}
			}
		}
	}
	return string(out), nil
}

// NormalizeRoomCode makes lookups case-insensitive; codes are stored and
// advertised in uppercase.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
