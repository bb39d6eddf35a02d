// Package export handles exporting sessions to various formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alienxp03/warrant/internal/core"
)

// Format represents an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// Seat is one side of a game as seen in an export. A detached side is nil.
type Seat struct {
	Participant *core.Participant
	Slot        *core.Slot
	Messages    []*core.Message // announcements and private messages, oldest first
}

// GameRecord is one game with everything recorded about it.
type GameRecord struct {
	Game     *core.Game
	Scenario *core.Scenario
	Advocate *Seat
	Critic   *Seat
	Facts    []core.FactPair
	Moves    []*core.Move
	Reports  []*core.Report
}

// Name describes the game by its players and scenario.
func (r *GameRecord) Name() string {
	return fmt.Sprintf("Game between %s and %s on %q", seatName(r.Advocate), seatName(r.Critic), scenarioName(r.Scenario))
}

func seatName(s *Seat) string {
	if s == nil || s.Participant == nil {
		return "(detached)"
	}
	return s.Participant.Name
}

func scenarioName(sc *core.Scenario) string {
	if sc == nil {
		return "(unknown scenario)"
	}
	return sc.Name
}

// Bundle is a whole session ready for export.
type Bundle struct {
	Session       *core.Session
	Timezone      *time.Location
	Announcements []*core.Message
	Games         []*GameRecord
	Participants  []*core.Participant // roster order
}

// participantName returns the code name behind id, or "" for system entries.
func (b *Bundle) participantName(id string) string {
	if id == "" {
		return ""
	}
	for _, p := range b.Participants {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

func (b *Bundle) local(t time.Time) time.Time {
	if b.Timezone == nil {
		return t
	}
	return t.In(b.Timezone)
}

// Exporter defines the interface for exporting sessions.
type Exporter interface {
	Export(b *Bundle, w io.Writer) error
	FileExtension() string
}

// GetExporter returns an exporter for the given format.
func GetExporter(format Format) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatPDF:
		return &PDFExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	case FormatCSV:
		return &CSVExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// GenerateFilename creates a filename for the export.
func GenerateFilename(sess *core.Session, ext string) string {
	name := sess.Name
	if len(name) > 50 {
		name = name[:50]
	}

	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	name = replacer.Replace(name)

	return fmt.Sprintf("session_%s_%s.%s", sess.CreatedAt.Format("20060102"), name, ext)
}

// formatDuration renders accumulated time-on-task.
func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	return fmt.Sprintf("%.1f hours", d.Hours())
}

// ruleName renders the rule as it appears in exports.
func ruleName(g *core.Game) string {
	return "IF " + g.RuleAntecedent + ", THEN " + g.RuleConsequent
}
