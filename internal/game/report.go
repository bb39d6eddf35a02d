package game

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alienxp03/warrant/internal/core"
)

// suspendByPlayer handles the Report move.
func suspendByPlayer(b *Board, actor Actor, text string) error {
	if err := checkLength("text", text); err != nil {
		return err
	}
	Suspend(b, actor.ParticipantID, text)
	b.Log.Append(actor.ParticipantID, core.CodeReport, "Submitted a report to the administrators: "+text)
	return nil
}

// Suspend raises a report on the board's game and forces it into moderator
// review regardless of its current state. participantID is empty for
// system-raised reports.
func Suspend(b *Board, participantID, text string) *core.Report {
	r := &core.Report{
		ID:            uuid.New().String(),
		GameID:        b.Game.ID,
		ParticipantID: participantID,
		Text:          text,
		Returned:      core.TurnModerated,
		CreatedAt:     b.now(),
	}
	b.report = r
	b.Game.Context = core.ContextSuspended
	b.Game.Turn = core.TurnModerated
	b.Game.Pending = core.Pending{}
	b.Game.UpdatedAt = r.CreatedAt
	return r
}

func (m *Machine) protocolError(b *Board, detail string) error {
	slog.Error("Game in unknown state, escalating", "game_id", b.Game.ID, "context", b.Game.Context, "detail", detail)
	RaiseProtocolError(b, detail)
	return fmt.Errorf("game %s: %s: %w", b.Game.ID, detail, core.ErrProtocol)
}

// RaiseProtocolError suspends a game whose state could not be interpreted.
func RaiseProtocolError(b *Board, detail string) *core.Report {
	r := Suspend(b, "", core.ErrorReportPrefix+detail)
	b.Log.Append("", core.CodeReport, "The system reported an error to the administrators")
	return r
}

// Resolve records a moderator's review of report and returns the game to
// play, or completes it. It returns core.ErrReportResolved without touching
// the board when the report was already reviewed.
func Resolve(b *Board, report *core.Report, note string, returned core.Turn) error {
	if report.Resolved {
		return core.ErrReportResolved
	}
	if report.GameID != b.Game.ID {
		return fmt.Errorf("report %s belongs to another game", report.ID)
	}
	switch returned {
	case core.TurnCritic, core.TurnAdvocate, core.TurnCompleted:
	default:
		return core.Invalid("returned", core.CodeInvalid, "return the game to the critic, the advocate or complete it")
	}
	if err := checkLength("note", note); err != nil {
		return err
	}

	resolved := *report
	resolved.Note = note
	resolved.Returned = returned
	resolved.Resolved = true
	b.resolved = &resolved

	b.Game.Turn = returned
	if returned == core.TurnCompleted {
		b.Game.Context = core.ContextCompleted
	} else {
		b.Game.Context = core.ContextIdle
	}
	b.Game.Pending = core.Pending{}
	b.Game.UpdatedAt = b.now()
	b.Log.Append("", core.CodeReportReviewed, `The moderator has reviewed the complaint: "`+note+`"`)
	return nil
}
