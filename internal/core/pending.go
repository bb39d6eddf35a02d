package core

import (
	"encoding/json"
	"fmt"
)

// Pending is the proposal awaiting a response. Its Context tag selects which
// fields are meaningful; the zero value is the empty proposal.
type Pending struct {
	Context Context

	// AttackResponse
	Link        string
	Explanation string // also the explanation of a proposed add

	// ProposedEdit
	OldSource string
	OldTarget string
	FactID    string

	// ProposedEdit and ProposedAdd
	NewSource string
	NewTarget string

	// ProposedEdit; set when the counterpart modifies the proposal
	RejectExplanation string
}

// IsEmpty reports whether no proposal is pending.
func (p Pending) IsEmpty() bool {
	return p.Context == ""
}

// AttackPending builds the data for an attack awaiting response.
func AttackPending(link, explanation string) Pending {
	return Pending{Context: ContextAttackResponse, Link: link, Explanation: explanation}
}

// EditPending builds the data for a fact edit awaiting response.
func EditPending(old FactPair, newSource, newTarget, rejectExplanation string) Pending {
	return Pending{
		Context:           ContextProposedEdit,
		OldSource:         old.Source,
		OldTarget:         old.Target,
		NewSource:         newSource,
		NewTarget:         newTarget,
		FactID:            old.ID,
		RejectExplanation: rejectExplanation,
	}
}

// AddPending builds the data for a fact addition awaiting response.
func AddPending(source, target, explanation string) Pending {
	return Pending{Context: ContextProposedAdd, NewSource: source, NewTarget: target, Explanation: explanation}
}

// Fields returns the ordered wire form:
//
//	Attack Response: [link, explanation]
//	Proposed Edit:   [oldSource, oldTarget, newSource, newTarget, factId, rejectionExplanation]
//	Proposed Add:    [newSource, newTarget, explanation]
func (p Pending) Fields() []string {
	switch p.Context {
	case ContextAttackResponse:
		return []string{p.Link, p.Explanation}
	case ContextProposedEdit:
		return []string{p.OldSource, p.OldTarget, p.NewSource, p.NewTarget, p.FactID, p.RejectExplanation}
	case ContextProposedAdd:
		return []string{p.NewSource, p.NewTarget, p.Explanation}
	}
	return []string{}
}

// ParsePending reads the ordered wire form for a game in context ctx.
// An empty field list always yields the empty proposal.
func ParsePending(ctx Context, fields []string) (Pending, error) {
	if len(fields) == 0 {
		return Pending{}, nil
	}
	want := map[Context]int{ContextAttackResponse: 2, ContextProposedEdit: 6, ContextProposedAdd: 3}[ctx]
	if want == 0 {
		return Pending{}, fmt.Errorf("context %q carries no proposal data", ctx)
	}
	if len(fields) != want {
		return Pending{}, fmt.Errorf("context %q expects %d proposal fields, got %d", ctx, want, len(fields))
	}

	switch ctx {
	case ContextAttackResponse:
		return AttackPending(fields[0], fields[1]), nil
	case ContextProposedEdit:
		return Pending{
			Context:           ctx,
			OldSource:         fields[0],
			OldTarget:         fields[1],
			NewSource:         fields[2],
			NewTarget:         fields[3],
			FactID:            fields[4],
			RejectExplanation: fields[5],
		}, nil
	default:
		return AddPending(fields[0], fields[1], fields[2]), nil
	}
}

// MarshalJSON encodes the ordered field list.
func (p Pending) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Fields())
}

// UnmarshalJSON decodes only the raw fields; callers that know the game's
// context re-parse through ParsePending.
func (p *Pending) UnmarshalJSON(data []byte) error {
	var fields []string
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	switch len(fields) {
	case 0:
		*p = Pending{}
		return nil
	case 2:
		return p.assign(ContextAttackResponse, fields)
	case 3:
		return p.assign(ContextProposedAdd, fields)
	case 6:
		return p.assign(ContextProposedEdit, fields)
	}
	return fmt.Errorf("unexpected proposal field count %d", len(fields))
}

func (p *Pending) assign(ctx Context, fields []string) error {
	parsed, err := ParsePending(ctx, fields)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
