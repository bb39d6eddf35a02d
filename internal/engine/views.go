package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/alienxp03/warrant/internal/core"
	"github.com/alienxp03/warrant/internal/export"
	"github.com/alienxp03/warrant/internal/game"
)

// SlotView is everything a player sees on one game screen.
type SlotView struct {
	Slot        *core.Slot        `json:"slot"`
	Participant *core.Participant `json:"participant"`
	Game        *core.Game        `json:"game"`
	Scenario    *core.Scenario    `json:"scenario"`
	Facts       []core.FactPair   `json:"facts"`
	Moves       []*core.Move      `json:"moves"`
	Messages    []*core.Message   `json:"messages"`
	IsTurn      bool              `json:"is_turn"`
	Options     []game.Kind       `json:"options"`
}

// NavigationEntry is one game in a participant's list.
type NavigationEntry struct {
	SlotKey  string       `json:"slot_key"`
	Role     core.Role    `json:"role"`
	GameID   string       `json:"game_id,omitempty"`
	Scenario string       `json:"scenario,omitempty"`
	Context  core.Context `json:"context,omitempty"`
	Turn     core.Turn    `json:"turn"`
	IsTurn   bool         `json:"is_turn"`
	Detached bool         `json:"detached"`
}

// NavigationView lists all games of a participant.
type NavigationView struct {
	Participant *core.Participant  `json:"participant"`
	Games       []*NavigationEntry `json:"games"`
}

// isTurn reports whether role may act in g right now.
func isTurn(g *core.Game, role core.Role) bool {
	t, ok := core.TurnFor(role)
	return ok && g.Turn == t
}

// SlotView assembles the game screen for a slot.
func (e *Engine) SlotView(ctx context.Context, slotKey string) (*SlotView, error) {
	slot, p, err := e.seat(slotKey)
	if err != nil {
		return nil, err
	}
	g, unlock, err := e.lockSeat(p.SessionID, slotKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, err := e.board(g.ID)
	if err != nil {
		return nil, err
	}
	sc, err := e.storage.GetScenario(g.ScenarioID)
	if err != nil {
		return nil, err
	}
	msgs, err := e.messagesFor(p.SessionID, slotKey)
	if err != nil {
		return nil, err
	}

	return &SlotView{
		Slot:        slot,
		Participant: p,
		Game:        b.Game,
		Scenario:    sc,
		Facts:       b.Ledger.Facts(),
		Moves:       b.Log.Moves(),
		Messages:    msgs,
		IsTurn:      isTurn(b.Game, slot.Role),
		Options:     e.machine.Options(b, slot.Role),
	}, nil
}

// messagesFor merges session announcements with a slot's private messages, oldest first.
func (e *Engine) messagesFor(sessionID, slotKey string) ([]*core.Message, error) {
	ann, err := e.storage.ListSessionMessages(sessionID)
	if err != nil {
		return nil, err
	}
	priv, err := e.storage.ListSlotMessages(slotKey)
	if err != nil {
		return nil, err
	}
	all := append(ann, priv...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return all, nil
}

// Navigation lists a participant's games by participant key.
func (e *Engine) Navigation(ctx context.Context, participantKey string) (*NavigationView, error) {
	p, err := e.storage.GetParticipant(participantKey)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("participant %s: %w", participantKey, core.ErrNotFound)
	}
	slots, err := e.storage.ListParticipantSlots(p.ID)
	if err != nil {
		return nil, err
	}

	view := &NavigationView{Participant: p, Games: []*NavigationEntry{}}
	names := make(map[string]string)
	for _, sl := range slots {
		entry := &NavigationEntry{SlotKey: sl.Key, Role: sl.Role}
		g, err := e.storage.GetGameBySlot(sl.Key)
		if err != nil {
			return nil, err
		}
		if g == nil {
			entry.Detached = true
			view.Games = append(view.Games, entry)
			continue
		}
		if _, ok := names[g.ScenarioID]; !ok {
			sc, err := e.storage.GetScenario(g.ScenarioID)
			if err != nil {
				return nil, err
			}
			if sc != nil {
				names[g.ScenarioID] = sc.Name
			}
		}
		entry.GameID = g.ID
		entry.Scenario = names[g.ScenarioID]
		entry.Context = g.Context
		entry.Turn = g.Turn
		entry.IsTurn = isTurn(g, sl.Role)
		view.Games = append(view.Games, entry)
	}
	return view, nil
}

// BuildBundle gathers a session for export.
func (e *Engine) BuildBundle(ctx context.Context, sessionName string) (*export.Bundle, error) {
	sess, err := e.GetSession(ctx, sessionName)
	if err != nil {
		return nil, err
	}

	// Exports read a consistent snapshot: no scheduler run may interleave.
	s := e.locks.session(sess.ID)
	s.RLock()
	defer s.RUnlock()

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
	ann, err := e.storage.ListSessionMessages(sess.ID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*core.Participant, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}
	bySlot := make(map[string]*core.Slot, len(slots))
	for _, sl := range slots {
		bySlot[sl.Key] = sl
	}
	scenarios := make(map[string]*core.Scenario)

	bundle := &export.Bundle{
		Session:       sess,
		Timezone:      e.tz,
		Announcements: ann,
		Participants:  people,
	}
	for _, g := range games {
		sc, ok := scenarios[g.ScenarioID]
		if !ok {
			if sc, err = e.storage.GetScenario(g.ScenarioID); err != nil {
				return nil, err
			}
			scenarios[g.ScenarioID] = sc
		}
		facts, err := e.storage.GetFacts(g.ID)
		if err != nil {
			return nil, err
		}
		moves, err := e.storage.GetMoves(g.ID)
		if err != nil {
			return nil, err
		}
		reports, err := e.storage.ListGameReports(g.ID)
		if err != nil {
			return nil, err
		}

		rec := &export.GameRecord{Game: g, Scenario: sc, Facts: facts, Moves: moves, Reports: reports}
		if rec.Advocate, err = e.exportSeat(sess.ID, bySlot[g.AdvocateSlot], byID); err != nil {
			return nil, err
		}
		if rec.Critic, err = e.exportSeat(sess.ID, bySlot[g.CriticSlot], byID); err != nil {
			return nil, err
		}
		bundle.Games = append(bundle.Games, rec)
	}
	return bundle, nil
}

func (e *Engine) exportSeat(sessionID string, slot *core.Slot, people map[string]*core.Participant) (*export.Seat, error) {
	if slot == nil {
		return nil, nil
	}
	msgs, err := e.messagesFor(sessionID, slot.Key)
	if err != nil {
		return nil, err
	}
	return &export.Seat{Participant: people[slot.ParticipantID], Slot: slot, Messages: msgs}, nil
}
