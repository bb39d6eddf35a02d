package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/alienxp03/warrant/internal/core"
)

const gameColumns = `id, session_id, scenario_id, chat, advocate_slot, critic_slot, rule_antecedent, rule_consequent,
	context, turn, pending_json, created_at, updated_at`

// GetGame retrieves a game by ID.
func (s *SQLiteStorage) GetGame(id string) (*core.Game, error) {
	return scanGame(s.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
}

// GetGameBySlot retrieves the game a slot is seated in.
func (s *SQLiteStorage) GetGameBySlot(key string) (*core.Game, error) {
	if key == "" {
		return nil, nil
	}
	return scanGame(s.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE advocate_slot = ? OR critic_slot = ?`, key, key))
}

// ListGames returns a session's games in creation order.
func (s *SQLiteStorage) ListGames(sessionID string) ([]*core.Game, error) {
	rows, err := s.db.Query(`SELECT `+gameColumns+` FROM games WHERE session_id = ? ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var out []*core.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGame(row scanner) (*core.Game, error) {
	var g core.Game
	var pendingJSON string
	err := row.Scan(&g.ID, &g.SessionID, &g.ScenarioID, &g.Chat, &g.AdvocateSlot, &g.CriticSlot,
		&g.RuleAntecedent, &g.RuleConsequent, &g.Context, &g.Turn, &pendingJSON, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	var fields []string
	if err := json.Unmarshal([]byte(pendingJSON), &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending data: %w", err)
	}
	pending, err := core.ParsePending(g.Context, fields)
	if err != nil {
		// Left empty; the state machine escalates the game on its next move.
		slog.Warn("Discarding unreadable pending data", "game_id", g.ID, "error", err)
	}
	g.Pending = pending
	return &g, nil
}

func insertGame(x execer, g *core.Game) error {
	pendingJSON, err := json.Marshal(g.Pending.Fields())
	if err != nil {
		return fmt.Errorf("failed to marshal pending data: %w", err)
	}
	_, err = x.Exec(`
	INSERT INTO games (`+gameColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.SessionID, g.ScenarioID, g.Chat, g.AdvocateSlot, g.CriticSlot, g.RuleAntecedent, g.RuleConsequent,
		g.Context, g.Turn, string(pendingJSON), g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return nil
}

func updateGame(x execer, g *core.Game) error {
	pendingJSON, err := json.Marshal(g.Pending.Fields())
	if err != nil {
		return fmt.Errorf("failed to marshal pending data: %w", err)
	}
	res, err := x.Exec(`
	UPDATE games SET advocate_slot = ?, critic_slot = ?, rule_antecedent = ?, rule_consequent = ?,
		context = ?, turn = ?, pending_json = ?, updated_at = ?
	WHERE id = ?`,
		g.AdvocateSlot, g.CriticSlot, g.RuleAntecedent, g.RuleConsequent,
		g.Context, g.Turn, string(pendingJSON), g.UpdatedAt, g.ID)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("game %s: %w", g.ID, core.ErrNotFound)
	}
	return nil
}

// GetFacts returns a game's fact pairs in ledger order.
func (s *SQLiteStorage) GetFacts(gameID string) ([]core.FactPair, error) {
	rows, err := s.db.Query(`SELECT id, game_id, source, target FROM facts WHERE game_id = ? ORDER BY position`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get facts: %w", err)
	}
	defer rows.Close()

	var facts []core.FactPair
	for rows.Next() {
		var f core.FactPair
		if err := rows.Scan(&f.ID, &f.GameID, &f.Source, &f.Target); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// upsertFact updates a pair in place or appends it at the end of the ledger.
func upsertFact(x execer, f core.FactPair) error {
	_, err := x.Exec(`
	INSERT INTO facts (id, game_id, position, source, target)
	VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM facts WHERE game_id = ?), ?, ?)
	ON CONFLICT(id) DO UPDATE SET source = excluded.source, target = excluded.target`,
		f.ID, f.GameID, f.GameID, f.Source, f.Target)
	if err != nil {
		return fmt.Errorf("failed to save fact: %w", err)
	}
	return nil
}

// GetMoves returns a game's moves, oldest first.
func (s *SQLiteStorage) GetMoves(gameID string) ([]*core.Move, error) {
	rows, err := s.db.Query(`
	SELECT id, game_id, participant_id, number, code, text, created_at
	FROM moves WHERE game_id = ? ORDER BY number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}
	defer rows.Close()

	var moves []*core.Move
	for rows.Next() {
		var m core.Move
		if err := rows.Scan(&m.ID, &m.GameID, &m.ParticipantID, &m.Number, &m.Code, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		moves = append(moves, &m)
	}
	return moves, rows.Err()
}

func insertMove(x execer, m *core.Move) error {
	_, err := x.Exec(`
	INSERT INTO moves (id, game_id, participant_id, number, code, text, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.GameID, m.ParticipantID, m.Number, m.Code, m.Text, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert move: %w", err)
	}
	return nil
}

// Report operations

const reportColumns = `id, game_id, participant_id, text, note, returned, resolved, created_at`

// GetReport retrieves a report by ID.
func (s *SQLiteStorage) GetReport(id string) (*core.Report, error) {
	var r core.Report
	err := s.db.QueryRow(`SELECT `+reportColumns+` FROM reports WHERE id = ?`, id).
		Scan(&r.ID, &r.GameID, &r.ParticipantID, &r.Text, &r.Note, &r.Returned, &r.Resolved, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &r, nil
}

// ListReports returns reports oldest first, optionally only unresolved ones.
func (s *SQLiteStorage) ListReports(unresolvedOnly bool) ([]*core.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`
	if unresolvedOnly {
		query += ` WHERE resolved = 0`
	}
	return s.listReports(query + ` ORDER BY created_at, rowid`)
}

// ListGameReports returns the reports raised in one game.
func (s *SQLiteStorage) ListGameReports(gameID string) ([]*core.Report, error) {
	return s.listReports(`SELECT `+reportColumns+` FROM reports WHERE game_id = ? ORDER BY created_at, rowid`, gameID)
}

func (s *SQLiteStorage) listReports(query string, args ...any) ([]*core.Report, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []*core.Report
	for rows.Next() {
		var r core.Report
		if err := rows.Scan(&r.ID, &r.GameID, &r.ParticipantID, &r.Text, &r.Note, &r.Returned, &r.Resolved, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Message operations

// AddMessage stores a moderator message.
func (s *SQLiteStorage) AddMessage(msg *core.Message) error {
	_, err := s.db.Exec(`INSERT INTO messages (id, session_id, slot_key, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.SlotKey, msg.Text, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ListSessionMessages returns a session's announcements, oldest first.
func (s *SQLiteStorage) ListSessionMessages(sessionID string) ([]*core.Message, error) {
	return s.listMessages(`session_id = ?`, sessionID)
}

// ListSlotMessages returns a slot's private messages, oldest first.
func (s *SQLiteStorage) ListSlotMessages(key string) ([]*core.Message, error) {
	return s.listMessages(`slot_key = ?`, key)
}

func (s *SQLiteStorage) listMessages(where, arg string) ([]*core.Message, error) {
	rows, err := s.db.Query(`SELECT id, session_id, slot_key, text, created_at FROM messages WHERE `+where+` ORDER BY created_at, rowid`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []*core.Message
	for rows.Next() {
		var m core.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.SlotKey, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Atomic commits

// CommitGameUpdate writes one transition atomically.
func (s *SQLiteStorage) CommitGameUpdate(u *core.GameUpdate) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := updateGame(tx, u.Game); err != nil {
			return err
		}
		for _, f := range u.Facts {
			if err := upsertFact(tx, f); err != nil {
				return err
			}
		}
		for _, m := range u.Moves {
			if err := insertMove(tx, m); err != nil {
				return err
			}
		}
		if r := u.Report; r != nil {
			_, err := tx.Exec(`INSERT INTO reports (`+reportColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.GameID, r.ParticipantID, r.Text, r.Note, r.Returned, r.Resolved, r.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert report: %w", err)
			}
		}
		if r := u.Resolved; r != nil {
			// A report is resolved at most once.
			res, err := tx.Exec(`UPDATE reports SET note = ?, returned = ?, resolved = 1 WHERE id = ? AND resolved = 0`,
				r.Note, r.Returned, r.ID)
			if err != nil {
				return fmt.Errorf("failed to resolve report: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return core.ErrReportResolved
			}
		}
		return nil
	})
}

// CommitSchedule writes one scheduler run atomically.
func (s *SQLiteStorage) CommitSchedule(b *core.ScheduleBatch) error {
	return s.withTx(func(tx *sql.Tx) error {
		if b.Session != nil {
			if err := updateSession(tx, b.Session); err != nil {
				return err
			}
		}

		var base int
		if len(b.Participants) > 0 {
			if err := tx.QueryRow(`SELECT COUNT(*) FROM participants WHERE session_id = ?`, b.Participants[0].SessionID).Scan(&base); err != nil {
				return fmt.Errorf("failed to count participants: %w", err)
			}
		}
		for i, p := range b.Participants {
			_, err := tx.Exec(`
			INSERT INTO participants (id, session_id, name, key, logged_in_at, assigned, approved, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, p.SessionID, p.Name, p.Key, p.LoggedInAt, p.Assigned, p.Approved, base+i)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}

		for _, sl := range b.Slots {
			_, err := tx.Exec(`INSERT INTO slots (key, participant_id, role, seconds) VALUES (?, ?, ?, ?)`,
				sl.Key, sl.ParticipantID, sl.Role, sl.Seconds)
			if err != nil {
				return fmt.Errorf("failed to insert slot: %w", err)
			}
		}

		// Detach first so reused slots are free before new games claim them.
		for _, g := range b.Closed {
			if err := updateGame(tx, g); err != nil {
				return err
			}
		}
		for _, g := range b.Games {
			if err := insertGame(tx, g); err != nil {
				return err
			}
		}
		for _, f := range b.Facts {
			if err := upsertFact(tx, f); err != nil {
				return err
			}
		}
		return nil
	})
}
