package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/alienxp03/warrant/internal/core"
)

func TestJSONReports(t *testing.T) {
	b := testBundle()
	at := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	b.Games[0].Reports = append(b.Games[0].Reports, &core.Report{
		ID: "r2", ParticipantID: "p2", Text: "rude partner", Note: "spoke to them",
		Returned: core.TurnAdvocate, Resolved: true, CreatedAt: at,
	})

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(b, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var doc struct {
		Games []struct {
			Reports []map[string]any `json:"reports"`
		} `json:"games"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	reports := doc.Games[0].Reports
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}

	t.Run("Unresolved", func(t *testing.T) {
		open := reports[0]
		for _, key := range []string{"administrator comment", "returned"} {
			v, ok := open[key]
			if !ok || v != nil {
				t.Errorf("expected %q to be null, got %v (present=%v)", key, v, ok)
			}
		}
	})

	t.Run("Resolved", func(t *testing.T) {
		done := reports[1]
		if done["administrator comment"] != "spoke to them" {
			t.Errorf("unexpected comment %v", done["administrator comment"])
		}
		if done["returned"] != float64(core.TurnAdvocate) {
			t.Errorf("expected returned %d, got %v", core.TurnAdvocate, done["returned"])
		}
		if done["user"] != "bravo" {
			t.Errorf("expected reporter name, got %v", done["user"])
		}
	})
}
