package core

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPendingFields(t *testing.T) {
	t.Run("Attack", func(t *testing.T) {
		got := AttackPending("L2", "weak").Fields()
		if !reflect.DeepEqual(got, []string{"L2", "weak"}) {
			t.Errorf("unexpected fields: %v", got)
		}
	})

	t.Run("Edit", func(t *testing.T) {
		old := FactPair{ID: "f1", Source: "a", Target: "b"}
		got := EditPending(old, "c", "d", "").Fields()
		want := []string{"a", "b", "c", "d", "f1", ""}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("Add", func(t *testing.T) {
		got := AddPending("s", "t", "why").Fields()
		if !reflect.DeepEqual(got, []string{"s", "t", "why"}) {
			t.Errorf("unexpected fields: %v", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := (Pending{}).Fields(); len(got) != 0 {
			t.Errorf("expected no fields, got %v", got)
		}
	})
}

func TestParsePending(t *testing.T) {
	t.Run("RoundTripsEdit", func(t *testing.T) {
		p := EditPending(FactPair{ID: "f1", Source: "a", Target: "b"}, "c", "d", "nope")
		parsed, err := ParsePending(ContextProposedEdit, p.Fields())
		if err != nil {
			t.Fatalf("ParsePending failed: %v", err)
		}
		if parsed != p {
			t.Errorf("expected %+v, got %+v", p, parsed)
		}
	})

	t.Run("WrongArity", func(t *testing.T) {
		if _, err := ParsePending(ContextAttackResponse, []string{"L1"}); err == nil {
			t.Error("expected error for short attack data")
		}
	})

	t.Run("DataOutsideProposalContext", func(t *testing.T) {
		if _, err := ParsePending(ContextIdle, []string{"x", "y"}); err == nil {
			t.Error("expected error for data in Idle")
		}
	})

	t.Run("EmptyAlwaysValid", func(t *testing.T) {
		p, err := ParsePending(ContextIdle, nil)
		if err != nil || !p.IsEmpty() {
			t.Errorf("expected empty proposal, got %+v, %v", p, err)
		}
	})
}

func TestPendingJSON(t *testing.T) {
	data, err := json.Marshal(AddPending("s", "t", "e"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `["s","t","e"]` {
		t.Errorf("unexpected wire form %s", data)
	}

	var empty Pending
	data, _ = json.Marshal(empty)
	if string(data) != `[]` {
		t.Errorf("expected [] for empty proposal, got %s", data)
	}
}
