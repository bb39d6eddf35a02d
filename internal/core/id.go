package core

import (
	"math/rand"
	"strings"
)

const keyCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// KeyLength is the length of participant and slot keys.
const KeyLength = 20

// KeySet tracks keys already handed out so new ones stay unique across
// participants and slots.
type KeySet map[string]struct{}

// NewKeySet builds a set from existing keys.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is taken.
func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// GenerateKey draws a fresh lowercase alphanumeric key from rng, retrying
// until it is not in taken, and records it there.
func GenerateKey(rng *rand.Rand, taken KeySet) string {
	for {
		var b strings.Builder
		b.Grow(KeyLength)
		for i := 0; i < KeyLength; i++ {
			b.WriteByte(keyCharset[rng.Intn(len(keyCharset))])
		}
		key := b.String()
		if !taken.Has(key) {
			taken[key] = struct{}{}
			return key
		}
	}
}

// ChatRoom derives a short chat room code for conversation games.
func ChatRoom(rng *rand.Rand, taken KeySet) string {
	for {
		b := make([]byte, 6)
		for i := range b {
			b[i] = keyCharset[rng.Intn(len(keyCharset))]
		}
		room := "room-" + string(b)
		if !taken.Has(room) {
			taken[room] = struct{}{}
			return room
		}
	}
}
