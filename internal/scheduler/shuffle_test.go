package scheduler

import (
	"errors"
	"testing"

	"github.com/alienxp03/warrant/internal/core"
)

func controlState() *State {
	people := []*core.Participant{
		{ID: "p0", Name: "alpha"},
		{ID: "p1", Name: "bravo", Assigned: true},
		{ID: "p2", Name: "charlie"},
		{ID: "p3", Name: "delta", Assigned: true},
	}
	slots := map[string]*core.Slot{}
	for i, p := range people {
		key := "slot" + string(rune('a'+i))
		slots[key] = &core.Slot{Key: key, ParticipantID: p.ID, Role: core.RoleInterlocutor}
	}
	return &State{
		Session:      &core.Session{ID: "s1", Name: "control", Case: core.CaseControl, NumUsers: 4, NumGames: 2},
		Participants: people,
		Slots:        slots,
		Games: []*core.Game{
			{ID: "g1", ScenarioID: "sc0", AdvocateSlot: "slota", CriticSlot: "slotb", Context: core.ContextConversation, Turn: core.TurnConversation},
			{ID: "g2", ScenarioID: "sc0", AdvocateSlot: "slotc", CriticSlot: "slotd", Context: core.ContextConversation, Turn: core.TurnConversation},
		},
		Scenarios: scenarios(3),
		Keys:      core.NewKeySet("slota", "slotb", "slotc", "slotd"),
	}
}

func TestShuffle(t *testing.T) {
	t.Run("ClosesAndReseats", func(t *testing.T) {
		st := controlState()
		batch, err := newTestScheduler(11, Options{}).Shuffle(st)
		if err != nil {
			t.Fatalf("Shuffle failed: %v", err)
		}

		if len(batch.Closed) != 2 {
			t.Fatalf("expected 2 closed games, got %d", len(batch.Closed))
		}
		for _, g := range batch.Closed {
			if g.Context != core.ContextCompleted || g.Turn != core.TurnCompleted {
				t.Errorf("closed game %s in (%s, %s)", g.ID, g.Context, g.Turn)
			}
			if g.AdvocateSlot != "" || g.CriticSlot != "" {
				t.Errorf("closed game %s still holds slots", g.ID)
			}
		}
		if st.Games[0].AdvocateSlot != "slota" {
			t.Error("input games must not be mutated")
		}

		if len(batch.Games) != 2 {
			t.Fatalf("expected 2 new games, got %d", len(batch.Games))
		}
		if len(batch.Slots) != 0 {
			t.Errorf("expected freed slots reused, got %d new slots", len(batch.Slots))
		}
		scenario := batch.Games[0].ScenarioID
		if scenario == "sc0" {
			t.Error("shuffle must pick a scenario no game has used")
		}
		seated := map[string]bool{}
		for _, g := range batch.Games {
			if g.ScenarioID != scenario {
				t.Error("all games of a wave share a scenario")
			}
			adv, crt := st.Slots[g.AdvocateSlot], st.Slots[g.CriticSlot]
			if adv.ParticipantID == crt.ParticipantID {
				t.Errorf("participant %s paired with itself", adv.ParticipantID)
			}
			seated[g.AdvocateSlot] = true
			seated[g.CriticSlot] = true
			if g.Context != core.ContextConversation {
				t.Errorf("expected Conversation, got %s", g.Context)
			}
		}
		if len(seated) != 4 {
			t.Errorf("expected every slot reused once, got %v", seated)
		}
	})

	t.Run("UnassignedPairedFirst", func(t *testing.T) {
		batch, err := newTestScheduler(2, Options{}).Shuffle(controlState())
		if err != nil {
			t.Fatalf("Shuffle failed: %v", err)
		}
		first := batch.Games[0]
		if first.AdvocateSlot != "slota" || first.CriticSlot != "slotc" {
			t.Errorf("expected the two idle participants together, got %s vs %s", first.AdvocateSlot, first.CriticSlot)
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		st := controlState()
		st.Scenarios = st.Scenarios[:1]
		_, err := newTestScheduler(1, Options{}).Shuffle(st)
		if !errors.Is(err, core.ErrScenariosExhausted) {
			t.Errorf("expected ErrScenariosExhausted, got %v", err)
		}
	})

	t.Run("NonControlRejected", func(t *testing.T) {
		st := controlState()
		st.Session.Case = core.CaseNonControl
		if _, err := newTestScheduler(1, Options{}).Shuffle(st); err == nil {
			t.Error("expected error for non-control session")
		}
	})
}
