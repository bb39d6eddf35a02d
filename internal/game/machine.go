package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alienxp03/warrant/internal/core"
)

// DefaultCriticPassFloor is the number of moves that must be logged before
// the critic may pass.
const DefaultCriticPassFloor = 8

// Board is a working copy of one game. Apply mutates it; Update collects
// what must be written back.
type Board struct {
	Game   *core.Game
	Ledger *Ledger
	Log    *MoveLog

	report   *core.Report
	resolved *core.Report
	now      func() time.Time
}

// NewBoard copies g and wraps its facts and moves.
func NewBoard(g *core.Game, facts []core.FactPair, moves []*core.Move) *Board {
	cp := *g
	return &Board{
		Game:   &cp,
		Ledger: NewLedger(g.ID, facts),
		Log:    NewMoveLog(g.ID, moves),
		now:    time.Now,
	}
}

// Update returns the writes produced by the transitions applied so far.
func (b *Board) Update() *core.GameUpdate {
	return &core.GameUpdate{
		Game:     b.Game,
		Facts:    b.Ledger.Changed(),
		Moves:    b.Log.New(),
		Report:   b.report,
		Resolved: b.resolved,
	}
}

// Actor identifies who submits a request and through which seat.
type Actor struct {
	ParticipantID string
	Role          core.Role
}

// Rules holds the tunable parts of the game.
type Rules struct {
	CriticPassFloor int
}

// DefaultRules returns the rules used in the study.
func DefaultRules() Rules {
	return Rules{CriticPassFloor: DefaultCriticPassFloor}
}

// Machine validates requests against a game's context and turn and applies
// the resulting transition.
type Machine struct {
	rules Rules
}

// NewMachine creates a state machine.
func NewMachine(rules Rules) *Machine {
	if rules.CriticPassFloor < 0 {
		rules.CriticPassFloor = 0
	}
	return &Machine{rules: rules}
}

// admission lists where a request kind is accepted and by whom. An empty
// role means either player.
var admission = map[Kind]struct {
	context core.Context
	role    core.Role
}{
	KindCreateRule:     {core.ContextCreateRule, core.RoleAdvocate},
	KindUpdateRule:     {core.ContextIdle, core.RoleAdvocate},
	KindAttack:         {core.ContextIdle, core.RoleCritic},
	KindAttackResponse: {core.ContextAttackResponse, core.RoleAdvocate},
	KindUpdateFacts:    {core.ContextIdle, ""},
	KindEditResponse:   {core.ContextProposedEdit, ""},
	KindAddFacts:       {core.ContextIdle, ""},
	KindAddResponse:    {core.ContextProposedAdd, ""},
	KindPass:           {core.ContextIdle, ""},
	KindReport:         {core.ContextIdle, ""},
}

// Apply validates req and, when it is admissible, applies exactly one
// transition to b. On a rejection b is left untouched. A board in an
// uninterpretable state is suspended with a system report and ErrProtocol
// is returned; the caller must still persist b in that case.
func (m *Machine) Apply(b *Board, actor Actor, req Request) error {
	g := b.Game

	if !g.Context.Known() {
		return m.protocolError(b, fmt.Sprintf("invalid context - %s", g.Context))
	}
	if g.Context.HasPending() && b.Game.Pending.Context != g.Context {
		return m.protocolError(b, fmt.Sprintf("missing proposal data for context %s", g.Context))
	}

	if g.IsControl() {
		return fmt.Errorf("%s in a conversation game: %w", req.Kind(), core.ErrMoveNotAllowed)
	}
	if err := m.admit(b, actor, req); err != nil {
		return err
	}

	var err error
	switch r := req.(type) {
	case CreateRule:
		err = m.createRule(b, actor, r)
	case UpdateRule:
		err = m.updateRule(b, actor, r)
	case Attack:
		err = proposeAttack(b, actor, r)
	case AttackResponse:
		err = respondAttack(b, actor, r)
	case UpdateFacts:
		err = proposeEdit(b, actor, r)
	case EditResponse:
		err = respondEdit(b, actor, r)
	case AddFacts:
		err = proposeAdd(b, actor, r)
	case AddResponse:
		err = respondAdd(b, actor, r)
	case Pass:
		err = m.pass(b, actor)
	case Report:
		err = suspendByPlayer(b, actor, r.Text)
	default:
		err = fmt.Errorf("unsupported move %T: %w", req, core.ErrMoveNotAllowed)
	}
	if err != nil {
		return err
	}

	if !b.Game.Context.HasPending() {
		b.Game.Pending = core.Pending{}
	}
	b.Game.UpdatedAt = b.now()

	slog.Debug("Applied move", "game_id", g.ID, "kind", req.Kind(), "context", b.Game.Context, "turn", b.Game.Turn)
	return nil
}

func (m *Machine) admit(b *Board, actor Actor, req Request) error {
	g := b.Game
	rule, ok := admission[req.Kind()]
	if !ok || g.Context != rule.context {
		return fmt.Errorf("%s in %s: %w", req.Kind(), g.Context, core.ErrMoveNotAllowed)
	}
	side, ok := core.TurnFor(actor.Role)
	if !ok {
		return fmt.Errorf("role %s cannot move: %w", actor.Role, core.ErrMoveNotAllowed)
	}
	if rule.role != "" && rule.role != actor.Role {
		return fmt.Errorf("%s by %s: %w", req.Kind(), actor.Role, core.ErrMoveNotAllowed)
	}
	if g.Turn != side {
		return core.ErrNotYourTurn
	}
	return nil
}

// Options lists the request kinds role may submit right now.
func (m *Machine) Options(b *Board, role core.Role) []Kind {
	side, ok := core.TurnFor(role)
	if !ok || b.Game.Turn != side || b.Game.IsControl() {
		return nil
	}

	var out []Kind
	for _, k := range []Kind{
		KindCreateRule, KindUpdateRule, KindAttack, KindAttackResponse, KindUpdateFacts,
		KindEditResponse, KindAddFacts, KindAddResponse, KindPass, KindReport,
	} {
		rule := admission[k]
		if rule.context != b.Game.Context || (rule.role != "" && rule.role != role) {
			continue
		}
		if k == KindPass && !m.canPass(b, role) {
			continue
		}
		out = append(out, k)
	}
	return out
}

func (m *Machine) createRule(b *Board, actor Actor, r CreateRule) error {
	a, c, err := normalizeRule(r.Antecedent, r.Consequent)
	if err != nil {
		return err
	}

	b.Game.RuleAntecedent, b.Game.RuleConsequent = a, c
	b.Game.Context = core.ContextIdle
	b.Game.Turn = core.TurnCritic
	b.Log.Append(actor.ParticipantID, core.CodeCreateRule, fmt.Sprintf("Created the rule: IF %s, THEN %s", a, c))
	return nil
}

func (m *Machine) updateRule(b *Board, actor Actor, r UpdateRule) error {
	a, c, err := normalizeRule(r.Antecedent, r.Consequent)
	if err != nil {
		return err
	}
	if a == b.Game.RuleAntecedent && c == b.Game.RuleConsequent {
		return core.Invalid("antecedent", core.CodeUnchanged, "rule already exists")
	}

	b.Game.RuleAntecedent, b.Game.RuleConsequent = a, c
	b.Game.Context = core.ContextIdle
	b.Game.Turn = core.TurnCritic
	b.Log.Append(actor.ParticipantID, core.CodeUpdateRule, fmt.Sprintf("Updated the current rule to: IF %s, THEN %s", a, c))
	return nil
}

func normalizeRule(antecedent, consequent string) (string, string, error) {
	if err := checkLengths(map[string]string{"antecedent": antecedent, "consequent": consequent}); err != nil {
		return "", "", err
	}
	a, err := NormalizeRulePart("antecedent", antecedent, "if")
	if err != nil {
		return "", "", err
	}
	c, err := NormalizeRulePart("consequent", consequent, "then")
	if err != nil {
		return "", "", err
	}
	return a, c, nil
}

func (m *Machine) canPass(b *Board, role core.Role) bool {
	return role != core.RoleCritic || b.Log.Len() > m.rules.CriticPassFloor
}

func (m *Machine) pass(b *Board, actor Actor) error {
	if !m.canPass(b, actor.Role) {
		return core.Invalid("", core.CodeTooEarly, "the critic cannot pass this early in the game")
	}

	side, _ := core.TurnFor(actor.Role)
	b.Game.Context = core.ContextIdle
	b.Game.Turn = side.Other()
	b.Log.Append(actor.ParticipantID, core.CodePass, "Passed")

	if b.Log.LastTwoArePasses() {
		b.Game.Context = core.ContextCompleted
		b.Game.Turn = core.TurnCompleted
		b.Log.Append(actor.ParticipantID, core.CodeCompleted, "Registered two consecutive passes, ending the game")
	}
	return nil
}
