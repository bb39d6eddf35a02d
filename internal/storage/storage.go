// Package storage provides persistence for sessions, games and their history.
package storage

import (
	"github.com/alienxp03/warrant/internal/core"
)

// Storage defines the interface for game persistence. Getters return
// nil, nil when nothing matches.
type Storage interface {
	// Initialize sets up the storage (creates tables, etc.)
	Initialize() error

	// Close closes the storage connection.
	Close() error

	// Scenario operations
	CreateScenario(sc *core.Scenario) error
	GetScenario(id string) (*core.Scenario, error)
	GetScenarioByName(name string) (*core.Scenario, error)
	ListScenarios() ([]*core.Scenario, error)

	// Session operations
	CreateSession(sess *core.Session) error
	GetSession(id string) (*core.Session, error)
	GetSessionByName(name string) (*core.Session, error)
	ListSessions() ([]*core.SessionSummary, error)

	// Participant operations
	GetParticipant(key string) (*core.Participant, error)
	GetParticipantByID(id string) (*core.Participant, error)
	ListParticipants(sessionID string) ([]*core.Participant, error)
	UpdateParticipant(p *core.Participant) error

	// Slot operations
	GetSlot(key string) (*core.Slot, error)
	ListSlots(sessionID string) ([]*core.Slot, error)
	ListParticipantSlots(participantID string) ([]*core.Slot, error)
	AddSlotTime(key string, seconds float64) error
	ListKeys() ([]string, error)

	// Game operations
	GetGame(id string) (*core.Game, error)
	GetGameBySlot(key string) (*core.Game, error)
	ListGames(sessionID string) ([]*core.Game, error)
	GetFacts(gameID string) ([]core.FactPair, error)
	GetMoves(gameID string) ([]*core.Move, error)

	// Report operations
	GetReport(id string) (*core.Report, error)
	ListReports(unresolvedOnly bool) ([]*core.Report, error)
	ListGameReports(gameID string) ([]*core.Report, error)

	// Message operations
	AddMessage(msg *core.Message) error
	ListSessionMessages(sessionID string) ([]*core.Message, error)
	ListSlotMessages(key string) ([]*core.Message, error)

	// CommitGameUpdate writes one transition atomically.
	CommitGameUpdate(u *core.GameUpdate) error

	// CommitSchedule writes one scheduler run atomically.
	CommitSchedule(b *core.ScheduleBatch) error
}
