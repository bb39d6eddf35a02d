package game

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alienxp03/warrant/internal/core"
)

var (
	advocate = Actor{ParticipantID: "p-adv", Role: core.RoleAdvocate}
	critic   = Actor{ParticipantID: "p-crt", Role: core.RoleCritic}
)

func containsKind(kinds []Kind, k Kind) bool {
	for _, got := range kinds {
		if got == k {
			return true
		}
	}
	return false
}

func testBoard(ctx core.Context, turn core.Turn, moves int) *Board {
	g := &core.Game{
		ID:             "g1",
		RuleAntecedent: "prices fall",
		RuleConsequent: "demand rises",
		Context:        ctx,
		Turn:           turn,
		CreatedAt:      time.Now(),
	}
	facts := []core.FactPair{
		{ID: "f1", GameID: "g1", Source: "a", Target: "b"},
		{ID: "f2", GameID: "g1", Source: "c", Target: "d"},
	}
	var log []*core.Move
	for i := 0; i < moves; i++ {
		log = append(log, &core.Move{ID: fmt.Sprintf("m%d", i), GameID: "g1", Number: i + 1, Code: core.CodeUpdateRule})
	}
	return NewBoard(g, facts, log)
}

func TestCreateRule(t *testing.T) {
	m := NewMachine(DefaultRules())

	t.Run("StripsKeywords", func(t *testing.T) {
		b := testBoard(core.ContextCreateRule, core.TurnAdvocate, 0)
		err := m.Apply(b, advocate, CreateRule{Antecedent: "  If it rains ", Consequent: "THEN the ground is wet"})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if b.Game.RuleAntecedent != "it rains" || b.Game.RuleConsequent != "the ground is wet" {
			t.Errorf("unexpected rule %q / %q", b.Game.RuleAntecedent, b.Game.RuleConsequent)
		}
		if b.Game.Context != core.ContextIdle || b.Game.Turn != core.TurnCritic {
			t.Errorf("expected (Idle, Critic), got (%s, %s)", b.Game.Context, b.Game.Turn)
		}
		if moves := b.Log.New(); len(moves) != 1 || moves[0].Code != core.CodeCreateRule {
			t.Errorf("expected one Create Rule move, got %v", moves)
		}
	})

	t.Run("KeywordOnlyIsRejected", func(t *testing.T) {
		b := testBoard(core.ContextCreateRule, core.TurnAdvocate, 0)
		err := m.Apply(b, advocate, CreateRule{Antecedent: "if", Consequent: "x"})
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Field != "antecedent" {
			t.Fatalf("expected antecedent validation error, got %v", err)
		}
		if b.Game.Context != core.ContextCreateRule || b.Log.Len() != 0 {
			t.Error("rejected move must not change the game")
		}
	})

	t.Run("CriticCannotCreate", func(t *testing.T) {
		b := testBoard(core.ContextCreateRule, core.TurnAdvocate, 0)
		err := m.Apply(b, critic, CreateRule{Antecedent: "a", Consequent: "b"})
		if !errors.Is(err, core.ErrMoveNotAllowed) {
			t.Errorf("expected ErrMoveNotAllowed, got %v", err)
		}
	})
}

func TestUpdateRule(t *testing.T) {
	m := NewMachine(DefaultRules())

	t.Run("SameRuleRejected", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnAdvocate, 1)
		err := m.Apply(b, advocate, UpdateRule{Antecedent: "if prices fall", Consequent: "demand rises"})
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Code != core.CodeUnchanged {
			t.Fatalf("expected unchanged validation error, got %v", err)
		}
	})

	t.Run("NewRuleHandsTurnToCritic", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnAdvocate, 1)
		if err := m.Apply(b, advocate, UpdateRule{Antecedent: "prices fall", Consequent: "sales rise"}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if b.Game.Turn != core.TurnCritic || b.Game.RuleConsequent != "sales rise" {
			t.Errorf("unexpected state %+v", b.Game)
		}
	})
}

func TestAttack(t *testing.T) {
	m := NewMachine(DefaultRules())

	t.Run("SentAttack", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnCritic, 2)
		if err := m.Apply(b, critic, Attack{Link: "L2", Explanation: "weak"}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if b.Game.Context != core.ContextAttackResponse || b.Game.Turn != core.TurnAdvocate {
			t.Errorf("expected (Attack Response, Advocate), got (%s, %s)", b.Game.Context, b.Game.Turn)
		}
		if got := b.Game.Pending.Fields(); !reflect.DeepEqual(got, []string{"L2", "weak"}) {
			t.Errorf("unexpected pending %v", got)
		}
		moves := b.Log.New()
		if len(moves) != 1 || moves[0].Code != core.CodeSentAttack {
			t.Errorf("expected one Sent Attack move, got %v", moves)
		}
	})

	t.Run("UnknownLink", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnCritic, 2)
		if err := m.Apply(b, critic, Attack{Link: "L9"}); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("AdvocateCannotAttack", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnAdvocate, 2)
		if err := m.Apply(b, advocate, Attack{Link: "L1"}); !errors.Is(err, core.ErrMoveNotAllowed) {
			t.Errorf("expected ErrMoveNotAllowed, got %v", err)
		}
	})

	t.Run("AcceptKeepsTurn", func(t *testing.T) {
		b := testBoard(core.ContextAttackResponse, core.TurnAdvocate, 3)
		b.Game.Pending = core.AttackPending("L1", "x")
		if err := m.Apply(b, advocate, AttackResponse{Response: Accept}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if b.Game.Context != core.ContextIdle || b.Game.Turn != core.TurnAdvocate {
			t.Errorf("expected (Idle, Advocate), got (%s, %s)", b.Game.Context, b.Game.Turn)
		}
		if !b.Game.Pending.IsEmpty() {
			t.Errorf("pending must be cleared, got %v", b.Game.Pending.Fields())
		}
	})

	t.Run("RejectPassesTurn", func(t *testing.T) {
		b := testBoard(core.ContextAttackResponse, core.TurnAdvocate, 3)
		b.Game.Pending = core.AttackPending("L1", "x")
		if err := m.Apply(b, advocate, AttackResponse{Response: Reject, Explanation: "no"}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if b.Game.Turn != core.TurnCritic {
			t.Errorf("expected Critic turn, got %s", b.Game.Turn)
		}
		if b.Ledger.Len() != 2 || len(b.Ledger.Changed()) != 0 {
			t.Error("attacks must not touch facts")
		}
	})

	t.Run("ModifyNotAllowed", func(t *testing.T) {
		b := testBoard(core.ContextAttackResponse, core.TurnAdvocate, 3)
		b.Game.Pending = core.AttackPending("L1", "x")
		if err := m.Apply(b, advocate, AttackResponse{Response: Modify}); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestPass(t *testing.T) {
	m := NewMachine(DefaultRules())

	t.Run("CriticTooEarly", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnCritic, 5)
		err := m.Apply(b, critic, Pass{})
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Code != core.CodeTooEarly {
			t.Fatalf("expected too_early, got %v", err)
		}
		if b.Game.Context != core.ContextIdle || b.Game.Turn != core.TurnCritic || len(b.Log.New()) != 0 {
			t.Error("rejected pass must not change the game")
		}
	})

	t.Run("CriticAtFloor", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnCritic, DefaultCriticPassFloor)
		err := m.Apply(b, critic, Pass{})
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Code != core.CodeTooEarly {
			t.Fatalf("expected too_early at exactly the floor, got %v", err)
		}
		if opts := m.Options(b, core.RoleCritic); containsKind(opts, KindPass) {
			t.Errorf("pass offered at the floor: %v", opts)
		}
	})

	t.Run("CriticOneAboveFloor", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnCritic, DefaultCriticPassFloor+1)
		if opts := m.Options(b, core.RoleCritic); !containsKind(opts, KindPass) {
			t.Errorf("expected pass to be offered, got %v", opts)
		}
		if err := m.Apply(b, critic, Pass{}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
	})

	t.Run("CriticAfterFloor", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnCritic, 9)
		if err := m.Apply(b, critic, Pass{}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if b.Game.Turn != core.TurnAdvocate {
			t.Errorf("expected Advocate turn, got %s", b.Game.Turn)
		}
	})

	t.Run("AdvocateAnytime", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnAdvocate, 1)
		if err := m.Apply(b, advocate, Pass{}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if b.Game.Context != core.ContextIdle {
			t.Errorf("single pass must not complete the game, got %s", b.Game.Context)
		}
	})

	t.Run("TwoConsecutivePassesComplete", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnAdvocate, 9)
		if err := m.Apply(b, advocate, Pass{}); err != nil {
			t.Fatalf("first pass failed: %v", err)
		}
		if err := m.Apply(b, critic, Pass{}); err != nil {
			t.Fatalf("second pass failed: %v", err)
		}
		if b.Game.Context != core.ContextCompleted || b.Game.Turn != core.TurnCompleted {
			t.Errorf("expected (Completed, Completed), got (%s, %s)", b.Game.Context, b.Game.Turn)
		}
		moves := b.Log.New()
		codes := []core.MoveCode{moves[0].Code, moves[1].Code, moves[2].Code}
		want := []core.MoveCode{core.CodePass, core.CodePass, core.CodeCompleted}
		if !reflect.DeepEqual(codes, want) {
			t.Errorf("expected %v, got %v", want, codes)
		}
	})

	t.Run("InterleavedPassesDoNotComplete", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnAdvocate, 9)
		_ = m.Apply(b, advocate, Pass{})
		if err := m.Apply(b, critic, Attack{Link: "L3"}); err != nil {
			t.Fatalf("attack failed: %v", err)
		}
		_ = m.Apply(b, advocate, AttackResponse{Response: Reject})
		if err := m.Apply(b, critic, Pass{}); err != nil {
			t.Fatalf("pass failed: %v", err)
		}
		if b.Game.Context == core.ContextCompleted {
			t.Error("non-consecutive passes must not complete the game")
		}
	})
}

func TestTurnAndContextGuards(t *testing.T) {
	m := NewMachine(DefaultRules())

	t.Run("NotYourTurn", func(t *testing.T) {
		b := testBoard(core.ContextIdle, core.TurnCritic, 2)
		if err := m.Apply(b, advocate, AddFacts{Source: "x", Target: "y"}); !errors.Is(err, core.ErrNotYourTurn) {
			t.Errorf("expected ErrNotYourTurn, got %v", err)
		}
	})

	t.Run("CompletedGameIsFrozen", func(t *testing.T) {
		b := testBoard(core.ContextCompleted, core.TurnCompleted, 12)
		if err := m.Apply(b, advocate, Pass{}); !errors.Is(err, core.ErrMoveNotAllowed) {
			t.Errorf("expected ErrMoveNotAllowed, got %v", err)
		}
	})

	t.Run("SuspendedGameIsFrozen", func(t *testing.T) {
		b := testBoard(core.ContextSuspended, core.TurnModerated, 4)
		if err := m.Apply(b, critic, Report{Text: "again"}); !errors.Is(err, core.ErrMoveNotAllowed) {
			t.Errorf("expected ErrMoveNotAllowed, got %v", err)
		}
	})

	t.Run("ConversationRejectsStructuredMoves", func(t *testing.T) {
		b := testBoard(core.ContextConversation, core.TurnConversation, 0)
		actor := Actor{ParticipantID: "p", Role: core.RoleInterlocutor}
		if err := m.Apply(b, actor, Pass{}); !errors.Is(err, core.ErrMoveNotAllowed) {
			t.Errorf("expected ErrMoveNotAllowed, got %v", err)
		}
	})

	t.Run("ConversationIgnoresTurn", func(t *testing.T) {
		b := testBoard(core.ContextConversation, core.TurnAdvocate, 0)
		if opts := m.Options(b, core.RoleAdvocate); len(opts) != 0 {
			t.Errorf("expected no options in a conversation game, got %v", opts)
		}
		if err := m.Apply(b, advocate, Report{Text: "stuck"}); !errors.Is(err, core.ErrMoveNotAllowed) {
			t.Errorf("expected ErrMoveNotAllowed, got %v", err)
		}
		if len(b.Log.New()) != 0 {
			t.Error("rejected move must not be logged")
		}
	})

	t.Run("UnknownContextEscalates", func(t *testing.T) {
		b := testBoard(core.Context("Bogus"), core.TurnCritic, 2)
		err := m.Apply(b, critic, Pass{})
		if !errors.Is(err, core.ErrProtocol) {
			t.Fatalf("expected ErrProtocol, got %v", err)
		}
		if b.Game.Context != core.ContextSuspended || b.Game.Turn != core.TurnModerated {
			t.Errorf("expected suspension, got (%s, %s)", b.Game.Context, b.Game.Turn)
		}
		u := b.Update()
		if u.Report == nil || u.Report.ParticipantID != "" {
			t.Fatalf("expected a system report, got %+v", u.Report)
		}
		if u.Report.Text != core.ErrorReportPrefix+"invalid context - Bogus" {
			t.Errorf("unexpected report text %q", u.Report.Text)
		}
	})

	t.Run("MissingPendingEscalates", func(t *testing.T) {
		b := testBoard(core.ContextProposedAdd, core.TurnAdvocate, 2)
		if err := m.Apply(b, advocate, AddResponse{Response: Accept}); !errors.Is(err, core.ErrProtocol) {
			t.Errorf("expected ErrProtocol, got %v", err)
		}
	})
}

func TestOptions(t *testing.T) {
	m := NewMachine(DefaultRules())

	b := testBoard(core.ContextIdle, core.TurnCritic, 3)
	got := m.Options(b, core.RoleCritic)
	want := []Kind{KindAttack, KindUpdateFacts, KindAddFacts, KindReport}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if opts := m.Options(b, core.RoleAdvocate); opts != nil {
		t.Errorf("off-turn player has no options, got %v", opts)
	}

	b = testBoard(core.ContextIdle, core.TurnAdvocate, 0)
	got = m.Options(b, core.RoleAdvocate)
	want = []Kind{KindUpdateRule, KindUpdateFacts, KindAddFacts, KindPass, KindReport}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPendingOnlyInProposalContexts(t *testing.T) {
	m := NewMachine(DefaultRules())
	b := testBoard(core.ContextCreateRule, core.TurnAdvocate, 0)

	steps := []struct {
		actor Actor
		req   Request
	}{
		{advocate, CreateRule{Antecedent: "a", Consequent: "b"}},
		{critic, Attack{Link: "L4", Explanation: "e"}},
		{advocate, AttackResponse{Response: Accept}},
		{advocate, AddFacts{Source: "s", Target: "t"}},
		{critic, AddResponse{Response: Modify, Source: "s2", Target: "t2", Explanation: "better"}},
		{advocate, AddResponse{Response: Accept}},
		{advocate, UpdateFacts{FactID: "f1", Source: "a2", Target: "b2"}},
		{critic, EditResponse{Response: Reject, Explanation: "no"}},
		{advocate, Report{Text: "stuck"}},
	}

	for i, s := range steps {
		if err := m.Apply(b, s.actor, s.req); err != nil {
			t.Fatalf("step %d (%s) failed: %v", i, s.req.Kind(), err)
		}
		if b.Game.Context.HasPending() == b.Game.Pending.IsEmpty() {
			t.Fatalf("step %d: context %s with pending %v", i, b.Game.Context, b.Game.Pending.Fields())
		}
	}

	if b.Game.Context != core.ContextSuspended {
		t.Errorf("expected Suspended, got %s", b.Game.Context)
	}
	for i, mv := range b.Log.Moves() {
		if mv.Number != i+1 {
			t.Errorf("move %d numbered %d", i, mv.Number)
		}
	}
}
