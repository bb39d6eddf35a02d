package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alienxp03/warrant/internal/core"
	"github.com/alienxp03/warrant/internal/scenario"
	"github.com/alienxp03/warrant/internal/scheduler"
)

// SessionConfig describes a session to create.
type SessionConfig struct {
	Name      string
	Case      core.Case
	Start     time.Time
	NumUsers  int
	NumGames  int      // games per participant
	Scenarios []string // names or IDs
}

// CreateSession validates cfg and stores a new, empty session.
func (e *Engine) CreateSession(ctx context.Context, cfg SessionConfig) (*core.Session, error) {
	name := strings.ReplaceAll(cfg.Name, " ", "")
	if name == "" {
		return nil, core.Invalid("name", core.CodeRequired, "session name is required")
	}
	existing, err := e.storage.GetSessionByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, core.Invalid("name", core.CodeDuplicate, "a session with this name already exists")
	}
	if !cfg.Case.Valid() {
		return nil, core.Invalid("case", core.CodeInvalid, fmt.Sprintf("unknown case %q", cfg.Case))
	}
	if cfg.NumUsers < 2 {
		return nil, core.Invalid("num_users", core.CodeInvalid, "a session needs at least two participants")
	}
	if cfg.NumGames < 1 {
		return nil, core.Invalid("num_games", core.CodeInvalid, "each participant needs at least one game")
	}
	if cfg.NumUsers*cfg.NumGames%2 != 0 {
		return nil, core.Invalid("num_games", core.CodeInvalid, "participants times games must be even")
	}
	if len(cfg.Scenarios) < 2*cfg.NumGames-1 {
		return nil, core.Invalid("scenarios", core.CodeInvalid,
			fmt.Sprintf("need at least %d scenarios for %d games each", 2*cfg.NumGames-1, cfg.NumGames))
	}

	ids := make([]string, 0, len(cfg.Scenarios))
	seen := make(map[string]bool)
	for _, ref := range cfg.Scenarios {
		sc, err := e.findScenario(ref)
		if err != nil {
			return nil, err
		}
		if sc == nil {
			return nil, core.Invalid("scenarios", core.CodeUnknown, fmt.Sprintf("unknown scenario %q", ref))
		}
		if seen[sc.ID] {
			return nil, core.Invalid("scenarios", core.CodeDuplicate, fmt.Sprintf("scenario %q listed twice", sc.Name))
		}
		seen[sc.ID] = true
		ids = append(ids, sc.ID)
	}

	start := cfg.Start
	if start.IsZero() {
		start = e.now()
	}
	sess := &core.Session{
		ID:        uuid.New().String(),
		Name:      name,
		Case:      cfg.Case,
		Start:     start,
		NumUsers:  cfg.NumUsers,
		NumGames:  cfg.NumGames,
		Scenarios: ids,
		CreatedAt: e.now(),
	}
	if err := e.storage.CreateSession(sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	slog.InfoContext(ctx, "Created session", "session", sess.Name, "case", sess.Case, "users", sess.NumUsers, "games", sess.NumGames)
	return sess, nil
}

func (e *Engine) findScenario(ref string) (*core.Scenario, error) {
	sc, err := e.storage.GetScenarioByName(ref)
	if err != nil || sc != nil {
		return sc, err
	}
	return e.storage.GetScenario(ref)
}

// GetSession looks a session up by name.
func (e *Engine) GetSession(ctx context.Context, name string) (*core.Session, error) {
	sess, err := e.storage.GetSessionByName(name)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s: %w", name, core.ErrNotFound)
	}
	return sess, nil
}

// ListSessions returns summaries of all sessions.
func (e *Engine) ListSessions(ctx context.Context) ([]*core.SessionSummary, error) {
	return e.storage.ListSessions()
}

// ListParticipants returns a session's participants in roster order.
func (e *Engine) ListParticipants(ctx context.Context, sessionName string) ([]*core.Participant, error) {
	sess, err := e.GetSession(ctx, sessionName)
	if err != nil {
		return nil, err
	}
	return e.storage.ListParticipants(sess.ID)
}

// ImportScenarios stores catalog entries, skipping names that already exist.
func (e *Engine) ImportScenarios(ctx context.Context, entries []scenario.Entry) ([]*core.Scenario, error) {
	var created []*core.Scenario
	for _, entry := range entries {
		existing, err := e.storage.GetScenarioByName(strings.TrimSpace(entry.Name))
		if err != nil {
			return created, err
		}
		if existing != nil {
			slog.DebugContext(ctx, "Skipping existing scenario", "name", existing.Name)
			continue
		}
		sc := entry.ToCore(uuid.New().String())
		for i := range sc.Facts {
			sc.Facts[i].ID = uuid.New().String()
		}
		if err := e.storage.CreateScenario(sc); err != nil {
			return created, fmt.Errorf("failed to import scenario %q: %w", sc.Name, err)
		}
		created = append(created, sc)
	}
	slog.InfoContext(ctx, "Imported scenarios", "created", len(created), "skipped", len(entries)-len(created))
	return created, nil
}

// ListScenarios returns every stored scenario.
func (e *Engine) ListScenarios(ctx context.Context) ([]*core.Scenario, error) {
	return e.storage.ListScenarios()
}

// state loads the scheduler's view of a session. Callers hold the session
// lock, so the session row is re-read here.
func (e *Engine) state(sess *core.Session) (*scheduler.State, error) {
	sess, err := e.storage.GetSession(sess.ID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, core.ErrNotFound
	}
	people, err := e.storage.ListParticipants(sess.ID)
	if err != nil {
		return nil, err
	}
	slots, err := e.storage.ListSlots(sess.ID)
	if err != nil {
		return nil, err
	}
	games, err := e.storage.ListGames(sess.ID)
	if err != nil {
		return nil, err
	}
	keys, err := e.storage.ListKeys()
	if err != nil {
		return nil, err
	}

	st := &scheduler.State{
		Session:      sess,
		Participants: people,
		Slots:        make(map[string]*core.Slot, len(slots)),
		Games:        games,
		Keys:         core.NewKeySet(keys...),
	}
	for _, sl := range slots {
		st.Slots[sl.Key] = sl
	}
	for _, id := range sess.Scenarios {
		sc, err := e.storage.GetScenario(id)
		if err != nil {
			return nil, err
		}
		if sc == nil {
			slog.Warn("Session references a missing scenario", "session", sess.Name, "scenario_id", id)
			continue
		}
		st.Scenarios = append(st.Scenarios, sc)
	}
	return st, nil
}

// commitSchedule writes a scheduler batch and notifies every touched seat.
// Closed games are announced to the slots they held before detaching.
func (e *Engine) commitSchedule(ctx context.Context, st *scheduler.State, batch *core.ScheduleBatch) error {
	if err := e.storage.CommitSchedule(batch); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	byID := make(map[string]*core.Game, len(st.Games))
	for _, g := range st.Games {
		byID[g.ID] = g
	}
	for _, g := range batch.Closed {
		if before := byID[g.ID]; before != nil {
			e.notifyGame(ctx, before)
		}
	}
	for _, g := range batch.Games {
		e.notifyGame(ctx, g)
	}
	return nil
}

// GenerateGames creates the session's participants from roster and seats
// them. It returns the new participants for the credentials file.
func (e *Engine) GenerateGames(ctx context.Context, sessionName string, roster []string) ([]*core.Participant, error) {
	sess, err := e.GetSession(ctx, sessionName)
	if err != nil {
		return nil, err
	}
	if len(roster) != sess.NumUsers {
		return nil, core.Invalid("roster", core.CodeInvalid,
			fmt.Sprintf("roster has %d names, session expects %d", len(roster), sess.NumUsers))
	}

	unlock := e.lockSession(sess.ID)
	defer unlock()

	st, err := e.state(sess)
	if err != nil {
		return nil, err
	}
	if len(st.Participants) > 0 {
		return nil, fmt.Errorf("session %s already has participants: %w", sess.Name, core.ErrMoveNotAllowed)
	}

	e.schedMu.Lock()
	batch, err := e.scheduler.GenerateGames(st, roster)
	e.schedMu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := e.commitSchedule(ctx, st, batch); err != nil {
		return nil, err
	}
	return batch.Participants, nil
}

// Shuffle starts a new wave of conversations in a control session.
func (e *Engine) Shuffle(ctx context.Context, sessionName string) ([]*core.Game, error) {
	sess, err := e.GetSession(ctx, sessionName)
	if err != nil {
		return nil, err
	}

	unlock := e.lockSession(sess.ID)
	defer unlock()

	st, err := e.state(sess)
	if err != nil {
		return nil, err
	}

	e.schedMu.Lock()
	batch, err := e.scheduler.Shuffle(st)
	e.schedMu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := e.commitSchedule(ctx, st, batch); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Shuffled session", "session", sess.Name, "closed", len(batch.Closed), "games", len(batch.Games))
	return batch.Games, nil
}

// AddGameRequest names the seats of a game added by a moderator.
type AddGameRequest struct {
	Scenario    string // name or ID
	AdvocateKey string // participant keys
	CriticKey   string
}

func (e *Engine) resolveAddGame(sess *core.Session, req AddGameRequest) (*core.Scenario, *core.Participant, *core.Participant, error) {
	sc, err := e.findScenario(req.Scenario)
	if err != nil {
		return nil, nil, nil, err
	}
	if sc == nil {
		return nil, nil, nil, core.Invalid("scenario", core.CodeUnknown, fmt.Sprintf("unknown scenario %q", req.Scenario))
	}
	lookup := func(field, key string) (*core.Participant, error) {
		p, err := e.storage.GetParticipant(key)
		if err != nil {
			return nil, err
		}
		if p == nil || p.SessionID != sess.ID {
			return nil, core.Invalid(field, core.CodeUnknown, "no such participant in this session")
		}
		return p, nil
	}
	adv, err := lookup("advocate", req.AdvocateKey)
	if err != nil {
		return nil, nil, nil, err
	}
	crt, err := lookup("critic", req.CriticKey)
	if err != nil {
		return nil, nil, nil, err
	}
	return sc, adv, crt, nil
}

// CheckAddGame returns advisory warnings for a planned AddGame.
func (e *Engine) CheckAddGame(ctx context.Context, sessionName string, req AddGameRequest) ([]string, error) {
	sess, err := e.GetSession(ctx, sessionName)
	if err != nil {
		return nil, err
	}
	sc, adv, crt, err := e.resolveAddGame(sess, req)
	if err != nil {
		return nil, err
	}
	st, err := e.state(sess)
	if err != nil {
		return nil, err
	}
	return scheduler.CheckAddGame(st, sc.ID, adv, crt), nil
}

// AddGame seats two participants of a session in a new game.
func (e *Engine) AddGame(ctx context.Context, sessionName string, req AddGameRequest) (*core.Game, error) {
	sess, err := e.GetSession(ctx, sessionName)
	if err != nil {
		return nil, err
	}
	sc, adv, crt, err := e.resolveAddGame(sess, req)
	if err != nil {
		return nil, err
	}

	unlock := e.lockSession(sess.ID)
	defer unlock()

	st, err := e.state(sess)
	if err != nil {
		return nil, err
	}

	e.schedMu.Lock()
	batch, err := e.scheduler.AddGame(st, sc, adv, crt)
	e.schedMu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := e.commitSchedule(ctx, st, batch); err != nil {
		return nil, err
	}
	g := batch.Games[0]
	slog.InfoContext(ctx, "Added game", "session", sess.Name, "game_id", g.ID, "advocate", adv.Name, "critic", crt.Name)
	return g, nil
}
