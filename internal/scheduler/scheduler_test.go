package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/alienxp03/warrant/internal/core"
)

func newTestScheduler(seed int64, opts Options) *Scheduler {
	return New(rand.New(rand.NewSource(seed)), opts)
}

func scenarios(n int) []*core.Scenario {
	out := make([]*core.Scenario, n)
	for i := range out {
		out[i] = &core.Scenario{
			ID:    fmt.Sprintf("sc%d", i),
			Name:  fmt.Sprintf("Scenario %d", i),
			Facts: []core.FactPair{{ID: "seed", Source: "s", Target: "t"}},
		}
	}
	return out
}

func roster(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("user%d", i)
	}
	return out
}

func TestPair(t *testing.T) {
	t.Run("NeverSelfPairs", func(t *testing.T) {
		cases := []struct{ users, games int }{{2, 1}, {2, 2}, {2, 3}, {3, 2}, {4, 1}, {4, 3}, {5, 2}, {7, 4}, {10, 5}}
		for _, c := range cases {
			for seed := int64(1); seed <= 20; seed++ {
				s := newTestScheduler(seed, Options{})
				pairs, err := s.Pair(c.users, c.games)
				if err != nil {
					t.Fatalf("Pair(%d, %d) failed: %v", c.users, c.games, err)
				}
				if len(pairs) != c.users*c.games/2 {
					t.Fatalf("Pair(%d, %d): expected %d pairs, got %d", c.users, c.games, c.users*c.games/2, len(pairs))
				}
				counts := make(map[int]int)
				for _, p := range pairs {
					if p[0] == p[1] {
						t.Fatalf("Pair(%d, %d) seed %d self-paired %d", c.users, c.games, seed, p[0])
					}
					counts[p[0]]++
					counts[p[1]]++
				}
				for i := 0; i < c.users; i++ {
					if counts[i] != c.games {
						t.Fatalf("Pair(%d, %d): index %d plays %d games", c.users, c.games, i, counts[i])
					}
				}
			}
		}
	})

	t.Run("OddProduct", func(t *testing.T) {
		if _, err := newTestScheduler(1, Options{}).Pair(3, 1); err == nil {
			t.Error("expected error for odd product")
		}
	})

	t.Run("SingleUserInfeasible", func(t *testing.T) {
		_, err := newTestScheduler(1, Options{}).Pair(1, 2)
		if !errors.Is(err, core.ErrInfeasiblePairing) {
			t.Errorf("expected ErrInfeasiblePairing, got %v", err)
		}
	})

	t.Run("BoundedAttempts", func(t *testing.T) {
		s := newTestScheduler(1, Options{MaxAttempts: 1})
		// A single derangement attempt often fails; the bound must surface
		// as ErrInfeasiblePairing, never a hang.
		for i := 0; i < 50; i++ {
			if _, err := s.Pair(4, 4); err != nil && !errors.Is(err, core.ErrInfeasiblePairing) {
				t.Fatalf("unexpected error %v", err)
			}
		}
	})

	t.Run("SeedIsDeterministic", func(t *testing.T) {
		a, _ := newTestScheduler(99, Options{}).Pair(6, 2)
		b, _ := newTestScheduler(99, Options{}).Pair(6, 2)
		if fmt.Sprint(a) != fmt.Sprint(b) {
			t.Errorf("same seed gave %v and %v", a, b)
		}
	})
}

func TestGenerateGames(t *testing.T) {
	t.Run("TwoParticipantsOneGame", func(t *testing.T) {
		st := &State{
			Session:   &core.Session{ID: "s1", Name: "pilot", Case: core.CaseNonControl, NumUsers: 2, NumGames: 1},
			Scenarios: scenarios(1),
			Keys:      core.NewKeySet(),
		}
		batch, err := newTestScheduler(1, Options{}).GenerateGames(st, roster(2))
		if err != nil {
			t.Fatalf("GenerateGames failed: %v", err)
		}
		if len(batch.Games) != 1 || len(batch.Participants) != 2 || len(batch.Slots) != 2 {
			t.Fatalf("unexpected batch: %d games, %d participants, %d slots",
				len(batch.Games), len(batch.Participants), len(batch.Slots))
		}
		g := batch.Games[0]
		if g.Context != core.ContextCreateRule || g.Turn != core.TurnAdvocate {
			t.Errorf("expected (Create Rule, Advocate), got (%s, %s)", g.Context, g.Turn)
		}
		slots := map[string]*core.Slot{}
		for _, sl := range batch.Slots {
			slots[sl.Key] = sl
		}
		adv, crt := slots[g.AdvocateSlot], slots[g.CriticSlot]
		if adv == nil || crt == nil || adv.ParticipantID == crt.ParticipantID {
			t.Fatalf("expected two distinct seated participants")
		}
		if adv.Role != core.RoleAdvocate || crt.Role != core.RoleCritic {
			t.Errorf("unexpected roles %s / %s", adv.Role, crt.Role)
		}
		if len(batch.Facts) != 1 || batch.Facts[0].GameID != g.ID || batch.Facts[0].ID == "seed" {
			t.Errorf("expected seed facts cloned into the game, got %+v", batch.Facts)
		}
		if batch.Session.NumGames != 1 {
			t.Errorf("expected realized game count 1, got %d", batch.Session.NumGames)
		}
	})

	t.Run("NoScenarioRepeatsPerParticipant", func(t *testing.T) {
		for seed := int64(1); seed <= 10; seed++ {
			st := &State{
				Session:   &core.Session{ID: "s1", Case: core.CaseNonControl, NumUsers: 6, NumGames: 3},
				Scenarios: scenarios(12),
				Keys:      core.NewKeySet(),
			}
			batch, err := newTestScheduler(seed, Options{}).GenerateGames(st, roster(6))
			if err != nil {
				t.Fatalf("seed %d: GenerateGames failed: %v", seed, err)
			}
			owner := map[string]string{}
			for _, sl := range batch.Slots {
				owner[sl.Key] = sl.ParticipantID
			}
			seen := map[string]bool{}
			for _, g := range batch.Games {
				for _, key := range []string{g.AdvocateSlot, g.CriticSlot} {
					k := owner[key] + "/" + g.ScenarioID
					if seen[k] {
						t.Fatalf("seed %d: participant %s repeats scenario %s", seed, owner[key], g.ScenarioID)
					}
					seen[k] = true
				}
			}
		}
	})

	t.Run("KeysUnique", func(t *testing.T) {
		st := &State{
			Session:   &core.Session{ID: "s1", Case: core.CaseNonControl, NumUsers: 4, NumGames: 2},
			Scenarios: scenarios(8),
			Keys:      core.NewKeySet("taken"),
		}
		batch, err := newTestScheduler(3, Options{}).GenerateGames(st, roster(4))
		if err != nil {
			t.Fatalf("GenerateGames failed: %v", err)
		}
		seen := map[string]bool{"taken": true}
		for _, p := range batch.Participants {
			if seen[p.Key] || len(p.Key) != core.KeyLength {
				t.Fatalf("bad participant key %q", p.Key)
			}
			seen[p.Key] = true
		}
		for _, sl := range batch.Slots {
			if seen[sl.Key] {
				t.Fatalf("slot key %q collides", sl.Key)
			}
			seen[sl.Key] = true
		}
	})

	t.Run("ExhaustionFails", func(t *testing.T) {
		st := &State{
			Session:   &core.Session{ID: "s1", Case: core.CaseNonControl, NumUsers: 4, NumGames: 3},
			Scenarios: scenarios(1),
			Keys:      core.NewKeySet(),
		}
		_, err := newTestScheduler(1, Options{}).GenerateGames(st, roster(4))
		if !errors.Is(err, core.ErrScenariosExhausted) {
			t.Errorf("expected ErrScenariosExhausted, got %v", err)
		}
	})

	t.Run("ExhaustionRelaxed", func(t *testing.T) {
		st := &State{
			Session:   &core.Session{ID: "s1", Case: core.CaseNonControl, NumUsers: 4, NumGames: 3},
			Scenarios: scenarios(1),
			Keys:      core.NewKeySet(),
		}
		batch, err := newTestScheduler(1, Options{Exhaustion: PolicyRelax}).GenerateGames(st, roster(4))
		if err != nil {
			t.Fatalf("GenerateGames failed: %v", err)
		}
		if len(batch.Games) != 6 {
			t.Errorf("expected 6 games, got %d", len(batch.Games))
		}
	})

	t.Run("RosterMismatch", func(t *testing.T) {
		st := &State{
			Session:   &core.Session{ID: "s1", NumUsers: 4, NumGames: 1},
			Scenarios: scenarios(2),
			Keys:      core.NewKeySet(),
		}
		if _, err := newTestScheduler(1, Options{}).GenerateGames(st, roster(3)); err == nil {
			t.Error("expected roster size error")
		}
	})

	t.Run("ControlSharesScenario", func(t *testing.T) {
		st := &State{
			Session:   &core.Session{ID: "s1", Case: core.CaseControl, NumUsers: 4, NumGames: 1},
			Scenarios: scenarios(3),
			Keys:      core.NewKeySet(),
		}
		batch, err := newTestScheduler(5, Options{}).GenerateGames(st, roster(4))
		if err != nil {
			t.Fatalf("GenerateGames failed: %v", err)
		}
		chats := map[string]bool{}
		for _, g := range batch.Games {
			if g.ScenarioID != batch.Games[0].ScenarioID {
				t.Error("control games must share one scenario")
			}
			if g.Context != core.ContextConversation || g.Turn != core.TurnConversation || g.RuleAntecedent != core.ControlRule {
				t.Errorf("unexpected control game %+v", g)
			}
			if g.Chat == "" || chats[g.Chat] {
				t.Errorf("expected unique chat room, got %q", g.Chat)
			}
			chats[g.Chat] = true
		}
		for _, sl := range batch.Slots {
			if sl.Role != core.RoleInterlocutor {
				t.Errorf("expected Interlocutor role, got %s", sl.Role)
			}
		}
	})
}

func TestAddGame(t *testing.T) {
	st := &State{
		Session: &core.Session{ID: "s1", Case: core.CaseNonControl, NumUsers: 2, NumGames: 1},
		Keys:    core.NewKeySet(),
	}
	sc := scenarios(1)[0]
	a := &core.Participant{ID: "a", Name: "alpha"}
	b := &core.Participant{ID: "b", Name: "bravo"}

	t.Run("SelfPairingRejected", func(t *testing.T) {
		_, err := newTestScheduler(1, Options{}).AddGame(st, sc, a, a)
		if !errors.Is(err, core.ErrSelfPairing) {
			t.Errorf("expected ErrSelfPairing, got %v", err)
		}
	})

	t.Run("Adds", func(t *testing.T) {
		batch, err := newTestScheduler(1, Options{}).AddGame(st, sc, a, b)
		if err != nil {
			t.Fatalf("AddGame failed: %v", err)
		}
		if len(batch.Games) != 1 || len(batch.Slots) != 2 {
			t.Fatalf("expected one game and two slots")
		}
		if batch.Session.NumGames != 2 {
			t.Errorf("expected NumGames 2, got %d", batch.Session.NumGames)
		}
		if st.Session.NumGames != 1 {
			t.Error("input session must not be mutated")
		}
	})

	t.Run("CheckWarnsOnRepeat", func(t *testing.T) {
		st := &State{
			Session: &core.Session{ID: "s1"},
			Slots: map[string]*core.Slot{
				"k1": {Key: "k1", ParticipantID: "a"},
				"k2": {Key: "k2", ParticipantID: "c"},
			},
			Games: []*core.Game{{ScenarioID: sc.ID, AdvocateSlot: "k1", CriticSlot: "k2"}},
		}
		warnings := CheckAddGame(st, sc.ID, a, b)
		if len(warnings) != 1 {
			t.Errorf("expected one warning, got %v", warnings)
		}
		if w := CheckAddGame(st, "other", a, b); len(w) != 0 {
			t.Errorf("expected no warnings, got %v", w)
		}
	})
}
