package core

import (
	"math/rand"
	"strings"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	taken := NewKeySet()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		key := GenerateKey(rng, taken)
		if len(key) != KeyLength {
			t.Fatalf("expected length %d, got %d", KeyLength, len(key))
		}
		if strings.Trim(key, keyCharset) != "" {
			t.Fatalf("key %q has characters outside the charset", key)
		}
		if seen[key] {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = true
	}
	if len(taken) != 200 {
		t.Errorf("expected 200 recorded keys, got %d", len(taken))
	}
}

func TestGenerateKeySkipsTaken(t *testing.T) {
	first := GenerateKey(rand.New(rand.NewSource(7)), NewKeySet())

	// Same seed, but the first draw is already taken.
	got := GenerateKey(rand.New(rand.NewSource(7)), NewKeySet(first))
	if got == first {
		t.Errorf("expected a different key than %q", first)
	}
}

func TestTurnOther(t *testing.T) {
	if TurnCritic.Other() != TurnAdvocate || TurnAdvocate.Other() != TurnCritic {
		t.Error("player turns should swap")
	}
	if TurnModerated.Other() != TurnModerated {
		t.Error("non-player turns should be unchanged")
	}
}
