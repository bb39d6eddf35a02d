package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/alienxp03/warrant/internal/core"
	"github.com/alienxp03/warrant/internal/game"
	"github.com/alienxp03/warrant/internal/notify"
)

// seat resolves a slot key to the slot and its owner.
func (e *Engine) seat(slotKey string) (*core.Slot, *core.Participant, error) {
	slot, err := e.storage.GetSlot(slotKey)
	if err != nil {
		return nil, nil, err
	}
	if slot == nil {
		return nil, nil, fmt.Errorf("slot %s: %w", slotKey, core.ErrNotFound)
	}
	p, err := e.storage.GetParticipantByID(slot.ParticipantID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, fmt.Errorf("participant %s: %w", slot.ParticipantID, core.ErrNotFound)
	}
	return slot, p, nil
}

// lockSeat resolves the game a slot sits in and locks it. The slot binding
// is read under the session read lock, so a concurrent shuffle cannot move
// the slot between the lookup and the game lock.
func (e *Engine) lockSeat(sessionID, slotKey string) (*core.Game, func(), error) {
	s := e.locks.session(sessionID)
	s.RLock()
	g, err := e.storage.GetGameBySlot(slotKey)
	if err != nil {
		s.RUnlock()
		return nil, nil, err
	}
	if g == nil {
		s.RUnlock()
		return nil, nil, fmt.Errorf("no game for slot %s: %w", slotKey, core.ErrNotFound)
	}
	m := e.locks.game(g.ID)
	m.Lock()
	return g, func() {
		m.Unlock()
		s.RUnlock()
	}, nil
}

// ApplyMove validates and applies a move submitted through a slot. On
// success the updated game is returned and both seats are notified. A game
// found in an unknown state is suspended for review and ErrProtocol is
// returned.
func (e *Engine) ApplyMove(ctx context.Context, slotKey string, req game.Request) (*core.Game, error) {
	slot, p, err := e.seat(slotKey)
	if err != nil {
		return nil, err
	}

	g, unlock, err := e.lockSeat(p.SessionID, slotKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, err := e.board(g.ID)
	if err != nil {
		return nil, err
	}

	actor := game.Actor{ParticipantID: p.ID, Role: slot.Role}
	applyErr := e.machine.Apply(b, actor, req)
	if applyErr != nil && !errors.Is(applyErr, core.ErrProtocol) {
		slog.DebugContext(ctx, "Rejected move", "game_id", g.ID, "slot", slotKey, "kind", req.Kind(), "error", applyErr)
		return nil, applyErr
	}

	if err := e.storage.CommitGameUpdate(b.Update()); err != nil {
		return nil, fmt.Errorf("failed to save move: %w", err)
	}
	slog.InfoContext(ctx, "Processed move", "game_id", g.ID, "participant", p.Name, "kind", req.Kind(),
		"context", b.Game.Context, "turn", b.Game.Turn)

	e.notifyGame(ctx, b.Game)
	return b.Game, applyErr
}

// ResolveReport records a moderator's review and returns the game to play
// or completes it. Resolving an already reviewed report does nothing.
func (e *Engine) ResolveReport(ctx context.Context, reportID, note string, returned core.Turn) (*core.Report, error) {
	report, err := e.storage.GetReport(reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("report %s: %w", reportID, core.ErrNotFound)
	}
	if report.Resolved {
		return report, nil
	}

	g, err := e.storage.GetGame(report.GameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("game %s: %w", report.GameID, core.ErrNotFound)
	}

	unlock := e.lockGame(g.SessionID, g.ID)
	defer unlock()

	// Re-read under the lock so a concurrent review wins cleanly.
	report, err = e.storage.GetReport(reportID)
	if err != nil {
		return nil, err
	}
	b, err := e.board(g.ID)
	if err != nil {
		return nil, err
	}

	if err := game.Resolve(b, report, note, returned); err != nil {
		if errors.Is(err, core.ErrReportResolved) {
			return report, nil
		}
		return nil, err
	}

	u := b.Update()
	if err := e.storage.CommitGameUpdate(u); err != nil {
		if errors.Is(err, core.ErrReportResolved) {
			return e.storage.GetReport(reportID)
		}
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	slog.InfoContext(ctx, "Resolved report", "report_id", reportID, "game_id", g.ID, "returned", returned)

	e.notifyGame(ctx, b.Game)
	return u.Resolved, nil
}

// ListReports returns reports, optionally only those awaiting review.
func (e *Engine) ListReports(ctx context.Context, unresolvedOnly bool) ([]*core.Report, error) {
	return e.storage.ListReports(unresolvedOnly)
}

// RecordTime adds time-on-task to a slot.
func (e *Engine) RecordTime(ctx context.Context, slotKey string, seconds float64) error {
	if seconds < 0 {
		return core.Invalid("seconds", core.CodeInvalid, "time cannot be negative")
	}
	return e.storage.AddSlotTime(slotKey, seconds)
}

// MarkAssigned records that a participant logged in.
func (e *Engine) MarkAssigned(ctx context.Context, participantKey string) (*core.Participant, error) {
	return e.updateParticipant(participantKey, func(p *core.Participant) {
		now := e.now()
		p.Assigned = true
		p.LoggedInAt = &now
	})
}

// MarkApproved records that a participant passed onboarding.
func (e *Engine) MarkApproved(ctx context.Context, participantKey string) (*core.Participant, error) {
	return e.updateParticipant(participantKey, func(p *core.Participant) {
		p.Approved = true
	})
}

func (e *Engine) updateParticipant(key string, fn func(p *core.Participant)) (*core.Participant, error) {
	p, err := e.storage.GetParticipant(key)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("participant %s: %w", key, core.ErrNotFound)
	}
	fn(p)
	if err := e.storage.UpdateParticipant(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Announce sends a message to everyone in a session.
func (e *Engine) Announce(ctx context.Context, sessionName, text string) (*core.Message, error) {
	sess, err := e.GetSession(ctx, sessionName)
	if err != nil {
		return nil, err
	}
	msg, err := e.addMessage(text, core.AnnouncementPrefix, func(m *core.Message) { m.SessionID = sess.ID })
	if err != nil {
		return nil, err
	}
	e.bus.Publish(notify.SessionChannel(sess.ID), notify.Event{Kind: notify.KindMessages, Text: msg.Text})
	return msg, nil
}

// SendMessage sends a private message to one slot.
func (e *Engine) SendMessage(ctx context.Context, slotKey, text string) (*core.Message, error) {
	slot, err := e.storage.GetSlot(slotKey)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, fmt.Errorf("slot %s: %w", slotKey, core.ErrNotFound)
	}
	msg, err := e.addMessage(text, core.MessagePrefix, func(m *core.Message) { m.SlotKey = slotKey })
	if err != nil {
		return nil, err
	}
	e.bus.Publish(notify.SlotChannel(slotKey), notify.Event{Kind: notify.KindMessages, Text: msg.Text})
	return msg, nil
}

func (e *Engine) addMessage(text, prefix string, target func(m *core.Message)) (*core.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, core.Invalid("text", core.CodeRequired, "message cannot be empty")
	}
	if len([]rune(text)) > game.MaxTextLength {
		return nil, core.Invalid("text", core.CodeTooLong, "must be at most 1024 characters")
	}
	msg := &core.Message{ID: uuid.New().String(), Text: prefix + text, CreatedAt: e.now()}
	target(msg)
	if err := e.storage.AddMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}
