package game

import (
	"reflect"
	"testing"

	"github.com/alienxp03/warrant/internal/core"
)

func TestProposedEdit(t *testing.T) {
	m := NewMachine(DefaultRules())

	propose := func(t *testing.T) *Board {
		t.Helper()
		b := testBoard(core.ContextIdle, core.TurnCritic, 2)
		if err := m.Apply(b, critic, UpdateFacts{FactID: "f2", Source: "c2", Target: "d2"}); err != nil {
			t.Fatalf("propose failed: %v", err)
		}
		return b
	}

	t.Run("ProposalShape", func(t *testing.T) {
		b := propose(t)
		if b.Game.Context != core.ContextProposedEdit || b.Game.Turn != core.TurnAdvocate {
			t.Fatalf("expected (Proposed Edit, Advocate), got (%s, %s)", b.Game.Context, b.Game.Turn)
		}
		want := []string{"c", "d", "c2", "d2", "f2", ""}
		if got := b.Game.Pending.Fields(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("AcceptChangesOnlyTargetFact", func(t *testing.T) {
		b := propose(t)
		if err := m.Apply(b, advocate, EditResponse{Response: Accept}); err != nil {
			t.Fatalf("accept failed: %v", err)
		}
		facts := b.Ledger.Facts()
		if facts[0] != (core.FactPair{ID: "f1", GameID: "g1", Source: "a", Target: "b"}) {
			t.Errorf("unrelated fact changed: %+v", facts[0])
		}
		if facts[1].Source != "c2" || facts[1].Target != "d2" {
			t.Errorf("expected edited fact, got %+v", facts[1])
		}
		if changed := b.Ledger.Changed(); len(changed) != 1 || changed[0].ID != "f2" {
			t.Errorf("expected only f2 changed, got %+v", changed)
		}
		if b.Game.Context != core.ContextIdle || b.Game.Turn != core.TurnAdvocate {
			t.Errorf("acceptor keeps the turn, got (%s, %s)", b.Game.Context, b.Game.Turn)
		}
	})

	t.Run("RejectReturnsToProposer", func(t *testing.T) {
		b := propose(t)
		if err := m.Apply(b, advocate, EditResponse{Response: Reject, Explanation: "no"}); err != nil {
			t.Fatalf("reject failed: %v", err)
		}
		if b.Game.Turn != core.TurnCritic {
			t.Errorf("expected Critic turn, got %s", b.Game.Turn)
		}
		if len(b.Ledger.Changed()) != 0 {
			t.Error("reject must not change facts")
		}
	})

	t.Run("ModifyKeepsOriginalAndId", func(t *testing.T) {
		b := propose(t)
		if err := m.Apply(b, advocate, EditResponse{Response: Modify, Source: "c3", Target: "d3", Explanation: "closer"}); err != nil {
			t.Fatalf("modify failed: %v", err)
		}
		want := []string{"c", "d", "c3", "d3", "f2", "closer"}
		if got := b.Game.Pending.Fields(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if b.Game.Context != core.ContextProposedEdit || b.Game.Turn != core.TurnCritic {
			t.Errorf("expected (Proposed Edit, Critic), got (%s, %s)", b.Game.Context, b.Game.Turn)
		}

		if err := m.Apply(b, critic, EditResponse{Response: Accept}); err != nil {
			t.Fatalf("accept after modify failed: %v", err)
		}
		f, _ := b.Ledger.Get("f2")
		if f.Source != "c3" || f.Target != "d3" {
			t.Errorf("expected modified values committed, got %+v", f)
		}
		if b.Game.Turn != core.TurnCritic {
			t.Errorf("acceptor keeps the turn, got %s", b.Game.Turn)
		}
	})

	t.Run("DuplicateRejected", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnCritic, 2)
		if err := m.Apply(b, critic, UpdateFacts{FactID: "f2", Source: "a", Target: "b"}); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("UnknownFact", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnCritic, 2)
		if err := m.Apply(b, critic, UpdateFacts{FactID: "nope", Source: "x", Target: "y"}); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestProposedAdd(t *testing.T) {
	m := NewMachine(DefaultRules())

	propose := func(t *testing.T) *Board {
		t.Helper()
		b := testBoard(core.ContextIdle, core.TurnCritic, 2)
		if err := m.Apply(b, critic, AddFacts{Source: "e", Target: "f", Explanation: "missing"}); err != nil {
			t.Fatalf("propose failed: %v", err)
		}
		return b
	}

	t.Run("RejectByAdvocate", func(t *testing.T) {
		b := propose(t)
		if err := m.Apply(b, advocate, AddResponse{Response: Reject, Explanation: "no"}); err != nil {
			t.Fatalf("reject failed: %v", err)
		}
		if b.Game.Context != core.ContextIdle || b.Game.Turn != core.TurnCritic {
			t.Errorf("expected (Idle, Critic), got (%s, %s)", b.Game.Context, b.Game.Turn)
		}
		if len(b.Game.Pending.Fields()) != 0 {
			t.Errorf("expected empty pending, got %v", b.Game.Pending.Fields())
		}
		moves := b.Log.New()
		if last := moves[len(moves)-1]; last.Code != core.CodeRejectedAdd {
			t.Errorf("expected Rejected Add, got %s", last.Code)
		}
	})

	t.Run("AcceptAppends", func(t *testing.T) {
		b := propose(t)
		if err := m.Apply(b, advocate, AddResponse{Response: Accept}); err != nil {
			t.Fatalf("accept failed: %v", err)
		}
		if b.Ledger.Len() != 3 || !b.Ledger.Contains("e", "f") {
			t.Errorf("expected new pair appended, got %+v", b.Ledger.Facts())
		}
		if b.Game.Turn != core.TurnAdvocate {
			t.Errorf("acceptor keeps the turn, got %s", b.Game.Turn)
		}
	})

	t.Run("ModifyReplacesProposal", func(t *testing.T) {
		b := propose(t)
		if err := m.Apply(b, advocate, AddResponse{Response: Modify, Source: "e2", Target: "f2", Explanation: "tighter"}); err != nil {
			t.Fatalf("modify failed: %v", err)
		}
		if got := b.Game.Pending.Fields(); !reflect.DeepEqual(got, []string{"e2", "f2", "tighter"}) {
			t.Errorf("unexpected pending %v", got)
		}
		if b.Game.Turn != core.TurnCritic {
			t.Errorf("expected Critic turn, got %s", b.Game.Turn)
		}
	})

	t.Run("ModifyDuplicateRejected", func(t *testing.T) {
		b := propose(t)
		if err := m.Apply(b, advocate, AddResponse{Response: Modify, Source: "c", Target: "d"}); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
		if b.Game.Turn != core.TurnAdvocate {
			t.Error("rejected modify must not change the turn")
		}
	})
}
