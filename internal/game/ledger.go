package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/alienxp03/warrant/internal/core"
)

// Ledger is the ordered set of fact pairs of one game. It remembers which
// entries a transition touched so only those are written back.
type Ledger struct {
	gameID  string
	facts   []core.FactPair
	changed map[string]bool
}

// NewLedger wraps the current facts of a game.
func NewLedger(gameID string, facts []core.FactPair) *Ledger {
	cp := make([]core.FactPair, len(facts))
	copy(cp, facts)
	return &Ledger{gameID: gameID, facts: cp, changed: make(map[string]bool)}
}

// Facts returns a copy of the ledger in order.
func (l *Ledger) Facts() []core.FactPair {
	cp := make([]core.FactPair, len(l.facts))
	copy(cp, l.facts)
	return cp
}

// Len returns the number of fact pairs.
func (l *Ledger) Len() int {
	return len(l.facts)
}

// Get looks up a fact pair by id.
func (l *Ledger) Get(id string) (core.FactPair, bool) {
	for _, f := range l.facts {
		if f.ID == id {
			return f, true
		}
	}
	return core.FactPair{}, false
}

// Contains reports whether the exact pair is already in the ledger.
func (l *Ledger) Contains(source, target string) bool {
	for _, f := range l.facts {
		if f.Source == source && f.Target == target {
			return true
		}
	}
	return false
}

// Replace overwrites the pair with the given id.
func (l *Ledger) Replace(id, source, target string) (core.FactPair, error) {
	for i := range l.facts {
		if l.facts[i].ID == id {
			l.facts[i].Source = source
			l.facts[i].Target = target
			l.changed[id] = true
			return l.facts[i], nil
		}
	}
	return core.FactPair{}, fmt.Errorf("fact %s: %w", id, core.ErrNotFound)
}

// Append adds a new pair at the end of the ledger.
func (l *Ledger) Append(source, target string) core.FactPair {
	f := core.FactPair{ID: uuid.New().String(), GameID: l.gameID, Source: source, Target: target}
	l.facts = append(l.facts, f)
	l.changed[f.ID] = true
	return f
}

// Changed returns the pairs modified or added since the ledger was built.
func (l *Ledger) Changed() []core.FactPair {
	var out []core.FactPair
	for _, f := range l.facts {
		if l.changed[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

// CloneFacts copies scenario seed facts into a new game.
func CloneFacts(gameID string, seed []core.FactPair) []core.FactPair {
	out := make([]core.FactPair, len(seed))
	for i, f := range seed {
		out[i] = core.FactPair{ID: uuid.New().String(), GameID: gameID, Source: f.Source, Target: f.Target}
	}
	return out
}

func describe(source, target string) string {
	return source + " | " + target
}
