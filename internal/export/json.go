package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/alienxp03/warrant/internal/core"
)

// timeLayout is the clock part of exported moves and messages.
const timeLayout = "15:04:05"

// JSONExporter exports sessions to the canonical JSON format.
type JSONExporter struct{}

// ExportData represents the full export structure.
type ExportData struct {
	Session       string             `json:"session"`
	Created       string             `json:"created"`
	Timezone      string             `json:"timezone"`
	Announcements []AnnouncementJSON `json:"announcements"`
	Games         []GameJSON         `json:"games"`
}

// AnnouncementJSON is a session-wide message.
type AnnouncementJSON struct {
	Text string `json:"text"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// GameJSON is one game with its seats, rule, facts, moves and reports.
type GameJSON struct {
	Name     string       `json:"name"`
	Scenario ScenarioJSON `json:"scenario"`
	Advocate *SeatJSON    `json:"advocate"`
	Critic   *SeatJSON    `json:"critic"`
	Rule     RuleJSON     `json:"rule"`
	Turn     core.Turn    `json:"turn"`
	Context  core.Context `json:"context"`
	Facts    []FactJSON   `json:"facts"`
	Moves    []MoveJSON   `json:"moves"`
	Reports  []ReportJSON `json:"reports"`
}

// ScenarioJSON names the scenario a game is played over.
type ScenarioJSON struct {
	Name             string `json:"name"`
	SourceConclusion string `json:"source conclusion"`
	TargetConclusion string `json:"target conclusion"`
}

// SeatJSON is one side of a game; detached seats export as null.
type SeatJSON struct {
	Name     string   `json:"name"`
	UserKey  string   `json:"user key"`
	Assigned bool     `json:"assigned"`
	Approved bool     `json:"approved"`
	GameKey  string   `json:"game key"`
	Time     float64  `json:"time"`
	Messages []string `json:"messages"`
}

// RuleJSON is the warrant under debate.
type RuleJSON struct {
	Name       string `json:"name"`
	Antecedent string `json:"antecedent"`
	Consequent string `json:"consequent"`
}

// FactJSON is one source/target fact pair.
type FactJSON struct {
	SourceFact string `json:"source fact"`
	TargetFact string `json:"target fact"`
}

// MoveJSON is one logged move; User is null for system moves.
type MoveJSON struct {
	User *string       `json:"user"`
	Date string        `json:"date"`
	Time string        `json:"time"`
	Code core.MoveCode `json:"code"`
	Text string        `json:"text"`
}

// ReportJSON is a report; Comment and Returned stay null until it is resolved.
type ReportJSON struct {
	User        *string    `json:"user"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Game        string     `json:"game"`
	Description string     `json:"report description"`
	Comment     *string    `json:"administrator comment"`
	Returned    *core.Turn `json:"returned"`
}

// Build converts a bundle into the export structure.
func Build(b *Bundle) ExportData {
	stamp := func(t time.Time) (string, string) {
		t = b.local(t)
		return core.FormatStamp(t), t.Format(timeLayout)
	}
	user := func(id string) *string {
		if id == "" {
			return nil
		}
		name := b.participantName(id)
		return &name
	}

	tz := "UTC"
	if b.Timezone != nil {
		tz = b.Timezone.String()
	}
	created, _ := stamp(b.Session.CreatedAt)
	data := ExportData{
		Session:       b.Session.Name,
		Created:       created,
		Timezone:      tz,
		Announcements: []AnnouncementJSON{},
		Games:         []GameJSON{},
	}
	for _, m := range b.Announcements {
		d, t := stamp(m.CreatedAt)
		data.Announcements = append(data.Announcements, AnnouncementJSON{Text: m.Text, Date: d, Time: t})
	}

	for _, r := range b.Games {
		g := GameJSON{
			Name:     r.Name(),
			Advocate: seatJSON(r.Advocate),
			Critic:   seatJSON(r.Critic),
			Rule: RuleJSON{
				Name:       ruleName(r.Game),
				Antecedent: r.Game.RuleAntecedent,
				Consequent: r.Game.RuleConsequent,
			},
			Turn:    r.Game.Turn,
			Context: r.Game.Context,
			Facts:   []FactJSON{},
			Moves:   []MoveJSON{},
			Reports: []ReportJSON{},
		}
		if r.Scenario != nil {
			g.Scenario = ScenarioJSON{
				Name:             r.Scenario.Name,
				SourceConclusion: r.Scenario.SourceConclusion,
				TargetConclusion: r.Scenario.TargetConclusion,
			}
		}
		for _, f := range r.Facts {
			g.Facts = append(g.Facts, FactJSON{SourceFact: f.Source, TargetFact: f.Target})
		}
		for _, m := range r.Moves {
			d, t := stamp(m.CreatedAt)
			g.Moves = append(g.Moves, MoveJSON{User: user(m.ParticipantID), Date: d, Time: t, Code: m.Code, Text: m.Text})
		}
		for _, rep := range r.Reports {
			d, t := stamp(rep.CreatedAt)
			out := ReportJSON{
				User:        user(rep.ParticipantID),
				Date:        d,
				Time:        t,
				Game:        g.Name,
				Description: rep.Text,
			}
			if rep.Resolved {
				note, returned := rep.Note, rep.Returned
				out.Comment = &note
				out.Returned = &returned
			}
			g.Reports = append(g.Reports, out)
		}
		data.Games = append(data.Games, g)
	}
	return data
}

func seatJSON(s *Seat) *SeatJSON {
	if s == nil || s.Participant == nil || s.Slot == nil {
		return nil
	}
	out := &SeatJSON{
		Name:     s.Participant.Name,
		UserKey:  s.Participant.Key,
		Assigned: s.Participant.Assigned,
		Approved: s.Participant.Approved,
		GameKey:  s.Slot.Key,
		Time:     s.Slot.Seconds,
		Messages: []string{},
	}
	for _, m := range s.Messages {
		out.Messages = append(out.Messages, m.Text)
	}
	return out
}

// Export writes the session as JSON.
func (e *JSONExporter) Export(b *Bundle, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	return encoder.Encode(Build(b))
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return "json"
}
