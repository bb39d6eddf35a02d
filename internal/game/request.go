// Package game implements the per-game state machine: move validation,
// proposal negotiation over the fact ledger, the move log and report
// escalation.
package game

import (
	"encoding/json"
	"fmt"
)

// Kind names a request type on the wire.
type Kind string

const (
	KindCreateRule     Kind = "create_rule"
	KindUpdateRule     Kind = "update_rule"
	KindAttack         Kind = "attack"
	KindAttackResponse Kind = "attack_response"
	KindUpdateFacts    Kind = "update_facts"
	KindEditResponse   Kind = "edit_response"
	KindAddFacts       Kind = "add_facts"
	KindAddResponse    Kind = "add_response"
	KindPass           Kind = "pass"
	KindReport         Kind = "report"
)

// Response is a counterpart's answer to a proposal.
type Response string

const (
	Accept Response = "accept"
	Reject Response = "reject"
	Modify Response = "modify"
)

// Request is a move a player submits. The set of implementations is closed.
type Request interface {
	Kind() Kind
}

// CreateRule writes the initial warrant.
type CreateRule struct {
	Antecedent string
	Consequent string
}

// UpdateRule replaces the warrant.
type UpdateRule struct {
	Antecedent string
	Consequent string
}

// Attack challenges one link of the argument.
type Attack struct {
	Link        string
	Explanation string
}

// AttackResponse accepts or rejects a pending attack. Modify is not allowed.
type AttackResponse struct {
	Response    Response
	Explanation string
}

// UpdateFacts proposes replacing an existing fact pair.
type UpdateFacts struct {
	FactID string
	Source string
	Target string
}

// EditResponse answers a proposed edit. Source and Target are the
// alternative when Response is Modify.
type EditResponse struct {
	Response    Response
	Explanation string
	Source      string
	Target      string
}

// AddFacts proposes a new fact pair.
type AddFacts struct {
	Source      string
	Target      string
	Explanation string
}

// AddResponse answers a proposed addition.
type AddResponse struct {
	Response    Response
	Explanation string
	Source      string
	Target      string
}

// Pass yields the turn.
type Pass struct{}

// Report suspends the game for moderator review.
type Report struct {
	Text string
}

func (CreateRule) Kind() Kind     { return KindCreateRule }
func (UpdateRule) Kind() Kind     { return KindUpdateRule }
func (Attack) Kind() Kind         { return KindAttack }
func (AttackResponse) Kind() Kind { return KindAttackResponse }
func (UpdateFacts) Kind() Kind    { return KindUpdateFacts }
func (EditResponse) Kind() Kind   { return KindEditResponse }
func (AddFacts) Kind() Kind       { return KindAddFacts }
func (AddResponse) Kind() Kind    { return KindAddResponse }
func (Pass) Kind() Kind           { return KindPass }
func (Report) Kind() Kind         { return KindReport }

// envelope is the JSON form of any request.
type envelope struct {
	Type        Kind     `json:"type"`
	Antecedent  string   `json:"antecedent"`
	Consequent  string   `json:"consequent"`
	Link        string   `json:"link"`
	Explanation string   `json:"explanation"`
	Response    Response `json:"response"`
	FactID      string   `json:"fact_id"`
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Text        string   `json:"text"`
}

// Decode parses a JSON request body of the form {"type": "...", ...}.
func Decode(data []byte) (Request, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode move: %w", err)
	}

	switch e.Type {
	case KindCreateRule:
		return CreateRule{Antecedent: e.Antecedent, Consequent: e.Consequent}, nil
	case KindUpdateRule:
		return UpdateRule{Antecedent: e.Antecedent, Consequent: e.Consequent}, nil
	case KindAttack:
		return Attack{Link: e.Link, Explanation: e.Explanation}, nil
	case KindAttackResponse:
		return AttackResponse{Response: e.Response, Explanation: e.Explanation}, nil
	case KindUpdateFacts:
		return UpdateFacts{FactID: e.FactID, Source: e.Source, Target: e.Target}, nil
	case KindEditResponse:
		return EditResponse{Response: e.Response, Explanation: e.Explanation, Source: e.Source, Target: e.Target}, nil
	case KindAddFacts:
		return AddFacts{Source: e.Source, Target: e.Target, Explanation: e.Explanation}, nil
	case KindAddResponse:
		return AddResponse{Response: e.Response, Explanation: e.Explanation, Source: e.Source, Target: e.Target}, nil
	case KindPass:
		return Pass{}, nil
	case KindReport:
		return Report{Text: e.Text}, nil
	}
	return nil, fmt.Errorf("unknown move type %q", e.Type)
}
