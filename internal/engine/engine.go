// Package engine orchestrates sessions: it serializes moves per game, commits
// each transition atomically and notifies the affected clients.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alienxp03/warrant/internal/core"
	"github.com/alienxp03/warrant/internal/game"
	"github.com/alienxp03/warrant/internal/notify"
	"github.com/alienxp03/warrant/internal/random"
	"github.com/alienxp03/warrant/internal/scheduler"
	"github.com/alienxp03/warrant/internal/storage"
)

// Options configures an Engine.
type Options struct {
	Rules     game.Rules
	Scheduler scheduler.Options
	Seed      int64 // zero draws a random seed
	Timezone  *time.Location
}

// DefaultOptions returns the options used in the study.
func DefaultOptions() Options {
	return Options{
		Rules:     game.DefaultRules(),
		Scheduler: scheduler.Options{MaxAttempts: scheduler.DefaultMaxAttempts, Exhaustion: scheduler.PolicyFail},
		Timezone:  time.UTC,
	}
}

// Engine orchestrates game sessions.
type Engine struct {
	storage storage.Storage
	bus     notify.Publisher
	machine *game.Machine
	tz      *time.Location

	// schedMu guards the scheduler, whose PRNG is not safe for concurrent use.
	schedMu   sync.Mutex
	scheduler *scheduler.Scheduler

	locks *lockTable
	now   func() time.Time
}

// New creates a new engine.
func New(store storage.Storage, bus notify.Publisher, opts Options) (*Engine, error) {
	rng, err := random.New(opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to seed scheduler: %w", err)
	}
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	return &Engine{
		storage:   store,
		bus:       bus,
		machine:   game.NewMachine(opts.Rules),
		tz:        opts.Timezone,
		scheduler: scheduler.New(rng, opts.Scheduler),
		locks:     newLockTable(),
		now:       time.Now,
	}, nil
}

// lockTable hands out one mutex per game and one RW mutex per session.
// Moves hold the session read lock and their game's lock; scheduler runs
// hold the session write lock.
type lockTable struct {
	mu       sync.Mutex
	sessions map[string]*sync.RWMutex
	games    map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{
		sessions: make(map[string]*sync.RWMutex),
		games:    make(map[string]*sync.Mutex),
	}
}

func (l *lockTable) session(id string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.sessions[id]
	if !ok {
		m = &sync.RWMutex{}
		l.sessions[id] = m
	}
	return m
}

func (l *lockTable) game(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.games[id]
	if !ok {
		m = &sync.Mutex{}
		l.games[id] = m
	}
	return m
}

// lockGame takes the session read lock and the game lock, in that order.
func (e *Engine) lockGame(sessionID, gameID string) func() {
	s := e.locks.session(sessionID)
	g := e.locks.game(gameID)
	s.RLock()
	g.Lock()
	return func() {
		g.Unlock()
		s.RUnlock()
	}
}

// lockSession takes the session write lock.
func (e *Engine) lockSession(sessionID string) func() {
	s := e.locks.session(sessionID)
	s.Lock()
	return s.Unlock
}

// board loads a game with its facts and moves.
func (e *Engine) board(gameID string) (*game.Board, error) {
	g, err := e.storage.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("game %s: %w", gameID, core.ErrNotFound)
	}
	facts, err := e.storage.GetFacts(gameID)
	if err != nil {
		return nil, err
	}
	moves, err := e.storage.GetMoves(gameID)
	if err != nil {
		return nil, err
	}
	return game.NewBoard(g, facts, moves), nil
}

// notifyGame tells both seats of g and their participants to refresh.
func (e *Engine) notifyGame(ctx context.Context, g *core.Game) {
	for _, key := range []string{g.AdvocateSlot, g.CriticSlot} {
		if key == "" {
			continue
		}
		e.bus.Publish(notify.SlotChannel(key), notify.Event{Kind: notify.KindInterface, GameID: g.ID})
		e.notifySlotOwner(ctx, key)
	}
}

func (e *Engine) notifySlotOwner(ctx context.Context, slotKey string) {
	slot, err := e.storage.GetSlot(slotKey)
	if err != nil || slot == nil {
		slog.WarnContext(ctx, "Skipping navigation update", "slot", slotKey, "error", err)
		return
	}
	p, err := e.storage.GetParticipantByID(slot.ParticipantID)
	if err != nil || p == nil {
		slog.WarnContext(ctx, "Skipping navigation update", "participant_id", slot.ParticipantID, "error", err)
		return
	}
	e.bus.Publish(notify.ParticipantChannel(p.Key), notify.Event{Kind: notify.KindNavigation})
}
