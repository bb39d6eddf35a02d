package game

import (
	"fmt"

	"github.com/alienxp03/warrant/internal/core"
)

// The negotiator drives the propose -> accept | reject | modify handshake.
// Proposals hand the turn to the counterpart. Accept keeps the turn with the
// acceptor; reject and modify hand it back to the other side.

func sideOf(actor Actor) core.Turn {
	t, _ := core.TurnFor(actor.Role)
	return t
}

func proposeAttack(b *Board, actor Actor, r Attack) error {
	if !validLink(r.Link) {
		return core.Invalid("link", core.CodeInvalid, "choose one of L1, L2, L3, L4, L5")
	}
	if err := checkLength("explanation", r.Explanation); err != nil {
		return err
	}

	b.Game.Context = core.ContextAttackResponse
	b.Game.Turn = sideOf(actor).Other()
	b.Game.Pending = core.AttackPending(r.Link, r.Explanation)
	b.Log.Append(actor.ParticipantID, core.CodeSentAttack,
		fmt.Sprintf("Attacked link %s with explanation: %s", r.Link, r.Explanation))
	return nil
}

func respondAttack(b *Board, actor Actor, r AttackResponse) error {
	if err := checkLength("explanation", r.Explanation); err != nil {
		return err
	}

	switch r.Response {
	case Accept:
		b.Game.Context = core.ContextIdle
		b.Game.Turn = sideOf(actor)
		b.Log.Append(actor.ParticipantID, core.CodeAcceptedAttack, "Accepted attack as valid")
	case Reject:
		b.Game.Context = core.ContextIdle
		b.Game.Turn = sideOf(actor).Other()
		b.Log.Append(actor.ParticipantID, core.CodeRejectedAttack, "Rejected the attack: "+r.Explanation)
	default:
		return core.Invalid("response", core.CodeInvalid, "attacks can only be accepted or rejected")
	}
	return nil
}

func proposeEdit(b *Board, actor Actor, r UpdateFacts) error {
	old, ok := b.Ledger.Get(r.FactID)
	if !ok {
		return core.Invalid("fact_id", core.CodeUnknown, "no such fact pair in this game")
	}
	if err := checkPair(b, r.Source, r.Target); err != nil {
		return err
	}

	b.Game.Context = core.ContextProposedEdit
	b.Game.Turn = sideOf(actor).Other()
	b.Game.Pending = core.EditPending(old, r.Source, r.Target, "")
	b.Log.Append(actor.ParticipantID, core.CodeProposedEdit, fmt.Sprintf("Proposed modifying facts: [Original] %s >> [Proposed] %s",
		describe(old.Source, old.Target), describe(r.Source, r.Target)))
	return nil
}

func respondEdit(b *Board, actor Actor, r EditResponse) error {
	p := b.Game.Pending
	if err := checkLength("explanation", r.Explanation); err != nil {
		return err
	}

	switch r.Response {
	case Accept:
		if _, err := b.Ledger.Replace(p.FactID, p.NewSource, p.NewTarget); err != nil {
			return core.Invalid("fact_id", core.CodeUnknown, "the fact pair under edit no longer exists")
		}
		b.Game.Context = core.ContextIdle
		b.Game.Turn = sideOf(actor)
		b.Log.Append(actor.ParticipantID, core.CodeAcceptedEdit, "Accepted the proposed edit")
	case Reject:
		b.Game.Context = core.ContextIdle
		b.Game.Turn = sideOf(actor).Other()
		b.Log.Append(actor.ParticipantID, core.CodeRejectedEdit, "Rejected proposed edit: "+r.Explanation)
	case Modify:
		if err := checkPair(b, r.Source, r.Target); err != nil {
			return err
		}
		old := core.FactPair{ID: p.FactID, Source: p.OldSource, Target: p.OldTarget}
		b.Game.Context = core.ContextProposedEdit
		b.Game.Turn = sideOf(actor).Other()
		b.Game.Pending = core.EditPending(old, r.Source, r.Target, r.Explanation)
		b.Log.Append(actor.ParticipantID, core.CodeModifiedEdit,
			fmt.Sprintf("Proposed alternative: %s: %s", describe(r.Source, r.Target), r.Explanation))
	default:
		return core.Invalid("response", core.CodeInvalid, "respond with accept, reject or modify")
	}
	return nil
}

func proposeAdd(b *Board, actor Actor, r AddFacts) error {
	if err := checkPair(b, r.Source, r.Target); err != nil {
		return err
	}
	if err := checkLength("explanation", r.Explanation); err != nil {
		return err
	}

	b.Game.Context = core.ContextProposedAdd
	b.Game.Turn = sideOf(actor).Other()
	b.Game.Pending = core.AddPending(r.Source, r.Target, r.Explanation)
	b.Log.Append(actor.ParticipantID, core.CodeProposedAdd, "Proposed adding facts: "+describe(r.Source, r.Target))
	return nil
}

func respondAdd(b *Board, actor Actor, r AddResponse) error {
	p := b.Game.Pending
	if err := checkLength("explanation", r.Explanation); err != nil {
		return err
	}

	switch r.Response {
	case Accept:
		b.Ledger.Append(p.NewSource, p.NewTarget)
		b.Game.Context = core.ContextIdle
		b.Game.Turn = sideOf(actor)
		b.Log.Append(actor.ParticipantID, core.CodeAcceptedAdd, "Accepted proposed addition")
	case Reject:
		b.Game.Context = core.ContextIdle
		b.Game.Turn = sideOf(actor).Other()
		b.Log.Append(actor.ParticipantID, core.CodeRejectedAdd, "Rejected proposed addition: "+r.Explanation)
	case Modify:
		if err := checkPair(b, r.Source, r.Target); err != nil {
			return err
		}
		b.Game.Context = core.ContextProposedAdd
		b.Game.Turn = sideOf(actor).Other()
		b.Game.Pending = core.AddPending(r.Source, r.Target, r.Explanation)
		b.Log.Append(actor.ParticipantID, core.CodeModifiedAdd,
			fmt.Sprintf("Proposed alternative: %s: %s", describe(r.Source, r.Target), r.Explanation))
	default:
		return core.Invalid("response", core.CodeInvalid, "respond with accept, reject or modify")
	}
	return nil
}

// checkPair rejects a proposed pair that is too long or already in the ledger.
func checkPair(b *Board, source, target string) error {
	if err := checkLength("source", source); err != nil {
		return err
	}
	if err := checkLength("target", target); err != nil {
		return err
	}
	if b.Ledger.Contains(source, target) {
		return core.Invalid("source", core.CodeDuplicate, "facts already exist")
	}
	return nil
}
