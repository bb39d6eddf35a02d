package export

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter exports sessions to Markdown format.
type MarkdownExporter struct{}

// Export writes the session as Markdown.
func (e *MarkdownExporter) Export(b *Bundle, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Session %s\n\n", b.Session.Name))

	sb.WriteString("## Session Information\n\n")
	sb.WriteString(fmt.Sprintf("- **ID:** `%s`\n", b.Session.ID))
	sb.WriteString(fmt.Sprintf("- **Case:** %s\n", b.Session.Case))
	sb.WriteString(fmt.Sprintf("- **Participants:** %d\n", len(b.Participants)))
	sb.WriteString(fmt.Sprintf("- **Games:** %d\n", len(b.Games)))
	sb.WriteString(fmt.Sprintf("- **Created:** %s\n", b.local(b.Session.CreatedAt).Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("\n")

	if len(b.Announcements) > 0 {
		sb.WriteString("## Announcements\n\n")
		for _, m := range b.Announcements {
			sb.WriteString(fmt.Sprintf("- *%s* %s\n", b.local(m.CreatedAt).Format("3:04 PM"), m.Text))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Games\n\n")
	if len(b.Games) == 0 {
		sb.WriteString("*No games scheduled.*\n\n")
	}

	for i, r := range b.Games {
		sb.WriteString(fmt.Sprintf("### %d. %s\n\n", i+1, r.Name()))
		sb.WriteString(fmt.Sprintf("- **State:** %s / %s\n", r.Game.Context, r.Game.Turn))
		sb.WriteString(fmt.Sprintf("- **Rule:** %s\n", ruleName(r.Game)))
		for _, side := range []struct {
			label string
			seat  *Seat
		}{{"Advocate", r.Advocate}, {"Critic", r.Critic}} {
			if side.seat == nil || side.seat.Slot == nil {
				sb.WriteString(fmt.Sprintf("- **%s:** detached\n", side.label))
				continue
			}
			sb.WriteString(fmt.Sprintf("- **%s:** %s (`%s`, %s on task)\n",
				side.label, seatName(side.seat), side.seat.Slot.Key, formatDuration(side.seat.Slot.Seconds)))
		}
		sb.WriteString("\n")

		if len(r.Facts) > 0 {
			sb.WriteString("| Source fact | Target fact |\n")
			sb.WriteString("|---|---|\n")
			for _, f := range r.Facts {
				sb.WriteString(fmt.Sprintf("| %s | %s |\n", escapeCell(f.Source), escapeCell(f.Target)))
			}
			sb.WriteString("\n")
		}

		if len(r.Moves) == 0 {
			sb.WriteString("*No moves recorded.*\n\n")
		} else {
			sb.WriteString("#### Moves\n\n")
			for _, m := range r.Moves {
				who := b.participantName(m.ParticipantID)
				if who == "" {
					who = "System"
				}
				sb.WriteString(fmt.Sprintf("%d. **%s** (%s, %s): %s\n",
					m.Number, m.Code, who, b.local(m.CreatedAt).Format("3:04 PM"), m.Text))
			}
			sb.WriteString("\n")
		}

		if len(r.Reports) > 0 {
			sb.WriteString("#### Reports\n\n")
			for _, rep := range r.Reports {
				status := "open"
				if rep.Resolved {
					status = fmt.Sprintf("returned to %s: %s", rep.Returned, rep.Note)
				}
				sb.WriteString(fmt.Sprintf("- %s (%s)\n", rep.Text, status))
			}
			sb.WriteString("\n")
		}

		sb.WriteString("---\n\n")
	}

	sb.WriteString("*Exported from warrant*\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}
