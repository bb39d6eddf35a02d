package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/alienxp03/warrant/internal/core"
)

// Shuffle starts a new wave of control-case conversations. Every open game
// is completed and its slots detached; participants are then re-paired onto
// one scenario no game in the session has used yet, reusing the freed slots.
func (s *Scheduler) Shuffle(st *State) (*core.ScheduleBatch, error) {
	sess := st.Session
	if sess.Case != core.CaseControl {
		return nil, fmt.Errorf("shuffle is only available for control sessions")
	}
	if len(st.Participants) < 2 {
		return nil, core.ErrInfeasiblePairing
	}

	batch := &core.ScheduleBatch{}
	freed := make(map[string][]string) // participant ID -> slot keys
	used := make(map[string]bool)
	for _, g := range st.Games {
		used[g.ScenarioID] = true
		if !g.IsOpen() {
			continue
		}
		closed := *g
		closed.Context = core.ContextCompleted
		closed.Turn = core.TurnCompleted
		closed.Pending = core.Pending{}
		closed.AdvocateSlot, closed.CriticSlot = "", ""
		closed.UpdatedAt = s.now()
		batch.Closed = append(batch.Closed, &closed)

		for _, key := range []string{g.AdvocateSlot, g.CriticSlot} {
			if slot := st.Slots[key]; slot != nil {
				freed[slot.ParticipantID] = append(freed[slot.ParticipantID], key)
			}
		}
	}

	order := s.order(st.Participants)
	per := sess.NumGames * 2 / len(order)
	if per == 0 {
		per = 1
	}
	if len(order)*per%2 != 0 {
		return nil, fmt.Errorf("%d participants with %d games each cannot be paired evenly", len(order), per)
	}

	adv, crt := alternate(len(order), per)
	pairs := zip(adv, crt)
	if !selfFree(adv, crt) {
		var err error
		if pairs, err = s.derange(adv, crt); err != nil {
			return nil, err
		}
	}

	var fresh []*core.Scenario
	for _, sc := range st.Scenarios {
		if !used[sc.ID] {
			fresh = append(fresh, sc)
		}
	}
	if len(fresh) == 0 {
		if s.opts.Exhaustion != PolicyRelax || len(st.Scenarios) == 0 {
			return nil, fmt.Errorf("shuffle: %w", core.ErrScenariosExhausted)
		}
		slog.Warn("Every scenario has been used, repeating one", "session", sess.Name)
		fresh = st.Scenarios
	}
	sc := fresh[s.rng.Intn(len(fresh))]

	for _, p := range pairs {
		a, c := order[p[0]], order[p[1]]
		s.seat(st, batch, sc, a.ID, c.ID, takeSlot(freed, a.ID), takeSlot(freed, c.ID))
	}

	updated := *sess
	updated.NumGames = len(pairs)
	batch.Session = &updated

	slog.Info("Shuffled session", "session", sess.Name, "closed", len(batch.Closed), "games", len(batch.Games), "scenario", sc.Name)
	return batch, nil
}

// order puts participants who never logged in first, keeping their roster
// order, followed by the rest in random order.
func (s *Scheduler) order(people []*core.Participant) []*core.Participant {
	var idle, active []*core.Participant
	for _, p := range people {
		if p.Assigned {
			active = append(active, p)
		} else {
			idle = append(idle, p)
		}
	}
	s.rng.Shuffle(len(active), func(i, j int) { active[i], active[j] = active[j], active[i] })
	return append(idle, active...)
}

func takeSlot(freed map[string][]string, participantID string) string {
	keys := freed[participantID]
	if len(keys) == 0 {
		return ""
	}
	freed[participantID] = keys[1:]
	return keys[0]
}
