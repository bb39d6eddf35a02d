package storage

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alienxp03/warrant/internal/core"
)

//go:embed schema.sql
var schema string

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStorage{
		db:   db,
		path: dbPath,
	}, nil
}

// Initialize creates the database schema.
func (s *SQLiteStorage) Initialize() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "warrant.db"
	}
	return filepath.Join(home, ".warrant", "warrant.db")
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStorage) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Scenario operations

// CreateScenario stores a scenario with its seed facts.
func (s *SQLiteStorage) CreateScenario(sc *core.Scenario) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
		INSERT INTO scenarios (id, name, source_conclusion, target_conclusion, created_at)
		VALUES (?, ?, ?, ?, ?)`,
			sc.ID, sc.Name, sc.SourceConclusion, sc.TargetConclusion, time.Now())
		if err != nil {
			return fmt.Errorf("failed to insert scenario: %w", err)
		}
		for i, f := range sc.Facts {
			_, err := tx.Exec(`
			INSERT INTO scenario_facts (id, scenario_id, position, source, target)
			VALUES (?, ?, ?, ?, ?)`,
				f.ID, sc.ID, i, f.Source, f.Target)
			if err != nil {
				return fmt.Errorf("failed to insert scenario fact: %w", err)
			}
		}
		return nil
	})
}

// GetScenario retrieves a scenario by ID.
func (s *SQLiteStorage) GetScenario(id string) (*core.Scenario, error) {
	return s.getScenario(`SELECT id, name, source_conclusion, target_conclusion FROM scenarios WHERE id = ?`, id)
}

// GetScenarioByName retrieves a scenario by its unique name.
func (s *SQLiteStorage) GetScenarioByName(name string) (*core.Scenario, error) {
	return s.getScenario(`SELECT id, name, source_conclusion, target_conclusion FROM scenarios WHERE name = ?`, name)
}

func (s *SQLiteStorage) getScenario(query, arg string) (*core.Scenario, error) {
	var sc core.Scenario
	err := s.db.QueryRow(query, arg).Scan(&sc.ID, &sc.Name, &sc.SourceConclusion, &sc.TargetConclusion)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}

	facts, err := s.scenarioFacts(sc.ID)
	if err != nil {
		return nil, err
	}
	sc.Facts = facts
	return &sc, nil
}

func (s *SQLiteStorage) scenarioFacts(scenarioID string) ([]core.FactPair, error) {
	rows, err := s.db.Query(`
	SELECT id, source, target FROM scenario_facts
	WHERE scenario_id = ?
	ORDER BY position`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario facts: %w", err)
	}
	defer rows.Close()

	var facts []core.FactPair
	for rows.Next() {
		var f core.FactPair
		if err := rows.Scan(&f.ID, &f.Source, &f.Target); err != nil {
			return nil, fmt.Errorf("failed to scan scenario fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// ListScenarios returns every scenario ordered by name.
func (s *SQLiteStorage) ListScenarios() ([]*core.Scenario, error) {
	rows, err := s.db.Query(`SELECT id FROM scenarios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []*core.Scenario
	for _, id := range ids {
		sc, err := s.GetScenario(id)
		if err != nil {
			return nil, err
		}
		if sc != nil {
			out = append(out, sc)
		}
	}
	return out, nil
}

// Session operations

// CreateSession creates a new session.
func (s *SQLiteStorage) CreateSession(sess *core.Session) error {
	return insertSession(s.db, sess)
}

func insertSession(x execer, sess *core.Session) error {
	scenariosJSON, err := json.Marshal(sess.Scenarios)
	if err != nil {
		return fmt.Errorf("failed to marshal scenarios: %w", err)
	}

	_, err = x.Exec(`
	INSERT INTO sessions (id, name, case_kind, start, num_users, num_games, scenarios_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.Case, sess.Start, sess.NumUsers, sess.NumGames, string(scenariosJSON), sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func updateSession(x execer, sess *core.Session) error {
	_, err := x.Exec(`UPDATE sessions SET num_users = ?, num_games = ? WHERE id = ?`,
		sess.NumUsers, sess.NumGames, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

const sessionColumns = `id, name, case_kind, start, num_users, num_games, scenarios_json, created_at`

// GetSession retrieves a session by ID.
func (s *SQLiteStorage) GetSession(id string) (*core.Session, error) {
	return scanSession(s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
}

// GetSessionByName retrieves a session by its unique name.
func (s *SQLiteStorage) GetSessionByName(name string) (*core.Session, error) {
	return scanSession(s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE name = ?`, name))
}

func scanSession(row scanner) (*core.Session, error) {
	var sess core.Session
	var scenariosJSON string
	err := row.Scan(&sess.ID, &sess.Name, &sess.Case, &sess.Start, &sess.NumUsers, &sess.NumGames, &scenariosJSON, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if err := json.Unmarshal([]byte(scenariosJSON), &sess.Scenarios); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenarios: %w", err)
	}
	return &sess, nil
}

// ListSessions returns summaries of all sessions, newest first.
func (s *SQLiteStorage) ListSessions() ([]*core.SessionSummary, error) {
	rows, err := s.db.Query(`
	SELECT s.id, s.name, s.case_kind, s.num_users, s.num_games, s.created_at,
		(SELECT COUNT(*) FROM games g WHERE g.session_id = s.id) AS game_count
	FROM sessions s
	ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []*core.SessionSummary
	for rows.Next() {
		var sum core.SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Case, &sum.NumUsers, &sum.NumGames, &sum.CreatedAt, &sum.GameCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, &sum)
	}
	return out, rows.Err()
}

// Participant operations

const participantColumns = `id, session_id, name, key, logged_in_at, assigned, approved`

// GetParticipant retrieves a participant by login key.
func (s *SQLiteStorage) GetParticipant(key string) (*core.Participant, error) {
	return scanParticipant(s.db.QueryRow(`SELECT `+participantColumns+` FROM participants WHERE key = ?`, key))
}

// GetParticipantByID retrieves a participant by ID.
func (s *SQLiteStorage) GetParticipantByID(id string) (*core.Participant, error) {
	return scanParticipant(s.db.QueryRow(`SELECT `+participantColumns+` FROM participants WHERE id = ?`, id))
}

func scanParticipant(row scanner) (*core.Participant, error) {
	var p core.Participant
	var loggedIn sql.NullTime
	err := row.Scan(&p.ID, &p.SessionID, &p.Name, &p.Key, &loggedIn, &p.Assigned, &p.Approved)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if loggedIn.Valid {
		p.LoggedInAt = &loggedIn.Time
	}
	return &p, nil
}

// ListParticipants returns a session's participants in roster order.
func (s *SQLiteStorage) ListParticipants(sessionID string) ([]*core.Participant, error) {
	rows, err := s.db.Query(`SELECT `+participantColumns+` FROM participants WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var out []*core.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateParticipant saves the onboarding flags of a participant.
func (s *SQLiteStorage) UpdateParticipant(p *core.Participant) error {
	_, err := s.db.Exec(`UPDATE participants SET logged_in_at = ?, assigned = ?, approved = ? WHERE id = ?`,
		p.LoggedInAt, p.Assigned, p.Approved, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return nil
}

// Slot operations

// GetSlot retrieves a slot by key.
func (s *SQLiteStorage) GetSlot(key string) (*core.Slot, error) {
	var sl core.Slot
	err := s.db.QueryRow(`SELECT key, participant_id, role, seconds FROM slots WHERE key = ?`, key).
		Scan(&sl.Key, &sl.ParticipantID, &sl.Role, &sl.Seconds)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &sl, nil
}

// ListSlots returns every slot of a session.
func (s *SQLiteStorage) ListSlots(sessionID string) ([]*core.Slot, error) {
	return s.listSlots(`
	SELECT sl.key, sl.participant_id, sl.role, sl.seconds
	FROM slots sl JOIN participants p ON p.id = sl.participant_id
	WHERE p.session_id = ?
	ORDER BY p.position, sl.rowid`, sessionID)
}

// ListParticipantSlots returns a participant's slots in creation order.
func (s *SQLiteStorage) ListParticipantSlots(participantID string) ([]*core.Slot, error) {
	return s.listSlots(`SELECT key, participant_id, role, seconds FROM slots WHERE participant_id = ? ORDER BY rowid`, participantID)
}

func (s *SQLiteStorage) listSlots(query, arg string) ([]*core.Slot, error) {
	rows, err := s.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var out []*core.Slot
	for rows.Next() {
		var sl core.Slot
		if err := rows.Scan(&sl.Key, &sl.ParticipantID, &sl.Role, &sl.Seconds); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		out = append(out, &sl)
	}
	return out, rows.Err()
}

// AddSlotTime adds seconds to a slot's time-on-task.
func (s *SQLiteStorage) AddSlotTime(key string, seconds float64) error {
	res, err := s.db.Exec(`UPDATE slots SET seconds = seconds + ? WHERE key = ?`, seconds, key)
	if err != nil {
		return fmt.Errorf("failed to add slot time: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("slot %s: %w", key, core.ErrNotFound)
	}
	return nil
}

// ListKeys returns every participant key, slot key and chat room in use.
func (s *SQLiteStorage) ListKeys() ([]string, error) {
	rows, err := s.db.Query(`
	SELECT key FROM participants
	UNION SELECT key FROM slots
	UNION SELECT chat FROM games WHERE chat != ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
