// Package scheduler seats participants into games: the initial round-robin
// for a session, control-case reshuffles and ad hoc additions.
//
// The scheduler only plans. Every run returns a core.ScheduleBatch that the
// caller commits in one transaction; nothing is written on failure.
package scheduler

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/alienxp03/warrant/internal/core"
	"github.com/alienxp03/warrant/internal/game"
)

// Policy says what to do when a pair has no unplayed scenario left.
type Policy string

const (
	// PolicyFail aborts the whole batch.
	PolicyFail Policy = "fail"
	// PolicyRelax allows a repeat for the affected pair.
	PolicyRelax Policy = "relax"
)

// DefaultMaxAttempts bounds the shuffle-until-derangement loop.
const DefaultMaxAttempts = 10000

// Options tunes the scheduler.
type Options struct {
	MaxAttempts int
	Exhaustion  Policy
}

// Scheduler plans game assignments with a seedable PRNG.
type Scheduler struct {
	rng  *rand.Rand
	opts Options
	now  func() time.Time
}

// New creates a scheduler drawing from rng.
func New(rng *rand.Rand, opts Options) *Scheduler {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Exhaustion == "" {
		opts.Exhaustion = PolicyFail
	}
	return &Scheduler{rng: rng, opts: opts, now: time.Now}
}

// State is a snapshot of one session, as much as the scheduler needs.
type State struct {
	Session      *core.Session
	Participants []*core.Participant
	Slots        map[string]*core.Slot // by key
	Games        []*core.Game
	Scenarios    []*core.Scenario // the session's eligible scenarios
	Keys         core.KeySet      // every key in use
}

func (st *State) scenario(id string) *core.Scenario {
	for _, sc := range st.Scenarios {
		if sc.ID == id {
			return sc
		}
	}
	return nil
}

// Played maps participant IDs to the scenarios they have been seated on.
func (st *State) Played() map[string]map[string]bool {
	played := make(map[string]map[string]bool)
	for _, g := range st.Games {
		for _, key := range []string{g.AdvocateSlot, g.CriticSlot} {
			slot := st.Slots[key]
			if key == "" || slot == nil {
				continue
			}
			if played[slot.ParticipantID] == nil {
				played[slot.ParticipantID] = make(map[string]bool)
			}
			played[slot.ParticipantID][g.ScenarioID] = true
		}
	}
	return played
}

// GenerateGames creates the participants named in roster and seats each of
// them in NumGames games, half as advocate and half as critic where the
// count allows. Non-control pairs get a scenario neither player has seen;
// control sessions share one scenario across the batch.
func (s *Scheduler) GenerateGames(st *State, roster []string) (*core.ScheduleBatch, error) {
	sess := st.Session
	if len(roster) != sess.NumUsers {
		return nil, fmt.Errorf("roster has %d names, session expects %d", len(roster), sess.NumUsers)
	}
	if len(st.Scenarios) == 0 {
		return nil, fmt.Errorf("session has no scenarios: %w", core.ErrScenariosExhausted)
	}

	pairs, err := s.Pair(sess.NumUsers, sess.NumGames)
	if err != nil {
		return nil, err
	}

	batch := &core.ScheduleBatch{Session: sess}
	people := make([]*core.Participant, len(roster))
	for i, name := range roster {
		people[i] = &core.Participant{
			ID:        uuid.New().String(),
			SessionID: sess.ID,
			Name:      name,
			Key:       core.GenerateKey(s.rng, st.Keys),
		}
	}
	batch.Participants = people

	var shared *core.Scenario
	if sess.Case == core.CaseControl {
		shared = st.Scenarios[s.rng.Intn(len(st.Scenarios))]
	}

	played := make(map[int]map[string]bool)
	for _, p := range pairs {
		sc := shared
		if sc == nil {
			sc, err = s.pickScenario(st.Scenarios, played[p[0]], played[p[1]])
			if err != nil {
				return nil, fmt.Errorf("pairing %s and %s: %w", people[p[0]].Name, people[p[1]].Name, err)
			}
		}
		for _, i := range p {
			if played[i] == nil {
				played[i] = make(map[string]bool)
			}
			played[i][sc.ID] = true
		}
		s.seat(st, batch, sc, people[p[0]].ID, people[p[1]].ID, "", "")
	}

	updated := *sess
	updated.NumGames = len(pairs)
	batch.Session = &updated

	slog.Info("Generated games", "session", sess.Name, "participants", len(people), "games", len(batch.Games))
	return batch, nil
}

// AddGame seats advocate and critic in one new game on scenario. The only
// check is that the two are different participants.
func (s *Scheduler) AddGame(st *State, scenario *core.Scenario, advocate, critic *core.Participant) (*core.ScheduleBatch, error) {
	if advocate.ID == critic.ID {
		return nil, core.ErrSelfPairing
	}

	batch := &core.ScheduleBatch{}
	s.seat(st, batch, scenario, advocate.ID, critic.ID, "", "")

	updated := *st.Session
	updated.NumGames++
	batch.Session = &updated
	return batch, nil
}

// CheckAddGame returns advisory warnings for a planned AddGame. It never blocks.
func CheckAddGame(st *State, scenarioID string, advocate, critic *core.Participant) []string {
	var warnings []string
	played := st.Played()
	for _, p := range []*core.Participant{advocate, critic} {
		if p != nil && played[p.ID][scenarioID] {
			warnings = append(warnings, fmt.Sprintf("%s has already played this scenario", p.Name))
		}
	}
	if advocate != nil && critic != nil && advocate.ID == critic.ID {
		warnings = append(warnings, "player cannot play both roles")
	}
	return warnings
}

// pickScenario chooses uniformly among scenarios neither side has played.
func (s *Scheduler) pickScenario(all []*core.Scenario, a, b map[string]bool) (*core.Scenario, error) {
	var eligible []*core.Scenario
	for _, sc := range all {
		if !a[sc.ID] && !b[sc.ID] {
			eligible = append(eligible, sc)
		}
	}
	if len(eligible) == 0 {
		if s.opts.Exhaustion != PolicyRelax {
			return nil, core.ErrScenariosExhausted
		}
		slog.Warn("No unplayed scenario left, allowing a repeat")
		eligible = all
	}
	return eligible[s.rng.Intn(len(eligible))], nil
}

// seat appends one game to batch. Empty slot keys are replaced by new slots.
func (s *Scheduler) seat(st *State, batch *core.ScheduleBatch, sc *core.Scenario, advID, crtID, advSlot, crtSlot string) {
	control := st.Session.Case == core.CaseControl
	advRole, crtRole := core.RoleAdvocate, core.RoleCritic
	if control {
		advRole, crtRole = core.RoleInterlocutor, core.RoleInterlocutor
	}

	if advSlot == "" {
		advSlot = s.newSlot(st, batch, advID, advRole)
	}
	if crtSlot == "" {
		crtSlot = s.newSlot(st, batch, crtID, crtRole)
	}

	now := s.now()
	g := &core.Game{
		ID:             uuid.New().String(),
		SessionID:      st.Session.ID,
		ScenarioID:     sc.ID,
		AdvocateSlot:   advSlot,
		CriticSlot:     crtSlot,
		RuleAntecedent: core.DefaultRulePart,
		RuleConsequent: core.DefaultRulePart,
		Context:        core.ContextCreateRule,
		Turn:           core.TurnAdvocate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if control {
		g.RuleAntecedent, g.RuleConsequent = core.ControlRule, core.ControlRule
		g.Context, g.Turn = core.ContextConversation, core.TurnConversation
		g.Chat = core.ChatRoom(s.rng, st.Keys)
	}

	batch.Games = append(batch.Games, g)
	batch.Facts = append(batch.Facts, game.CloneFacts(g.ID, sc.Facts)...)
}

func (s *Scheduler) newSlot(st *State, batch *core.ScheduleBatch, participantID string, role core.Role) string {
	slot := &core.Slot{
		Key:           core.GenerateKey(s.rng, st.Keys),
		ParticipantID: participantID,
		Role:          role,
	}
	batch.Slots = append(batch.Slots, slot)
	return slot.Key
}
