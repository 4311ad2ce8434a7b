package app

import (
	"strings"
	"testing"
)

func TestNewRoomCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := newRoomCode(roomCodeLength)
		if err != nil {
			t.Fatalf("new room code: %v", err)
		}
		if len(code) != roomCodeLength {
			t.Fatalf("expected %d chars, got %q", roomCodeLength, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(roomCodeAlphabet, r) {
				t.Fatalf("character %q outside alphabet in %q", r, code)
			}
		}
		seen[code] = true
	}
	// Not a uniqueness proof, but 100 draws from 36^6 should never all collide.
	if len(seen) < 90 {
		t.Fatalf("suspiciously many collisions: %d unique of 100", len(seen))
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	if got := NormalizeRoomCode("  ab12cd "); got != "AB12CD" {
		t.Fatalf("expected AB12CD, got %q", got)
	}
}
