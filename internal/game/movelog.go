package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/alienxp03/warrant/internal/core"
)

// MoveLog is the append-only history of one game.
type MoveLog struct {
	gameID   string
	moves    []*core.Move
	appended int
	now      func() time.Time
}

// NewMoveLog wraps the existing moves of a game, oldest first.
func NewMoveLog(gameID string, moves []*core.Move) *MoveLog {
	cp := make([]*core.Move, len(moves))
	copy(cp, moves)
	return &MoveLog{gameID: gameID, moves: cp, appended: len(cp), now: time.Now}
}

// Append records a move. An empty participantID marks a system move.
func (l *MoveLog) Append(participantID string, code core.MoveCode, text string) *core.Move {
	m := &core.Move{
		ID:            uuid.New().String(),
		GameID:        l.gameID,
		ParticipantID: participantID,
		Number:        len(l.moves) + 1,
		Code:          code,
		Text:          text,
		CreatedAt:     l.now(),
	}
	l.moves = append(l.moves, m)
	return m
}

// Len returns the number of moves.
func (l *MoveLog) Len() int {
	return len(l.moves)
}

// Moves returns the full history in order.
func (l *MoveLog) Moves() []*core.Move {
	cp := make([]*core.Move, len(l.moves))
	copy(cp, l.moves)
	return cp
}

// LastTwoArePasses reports whether the two newest moves are both passes.
func (l *MoveLog) LastTwoArePasses() bool {
	n := len(l.moves)
	return n >= 2 && l.moves[n-1].Code == core.CodePass && l.moves[n-2].Code == core.CodePass
}

// New returns the moves appended since the log was built.
func (l *MoveLog) New() []*core.Move {
	return l.moves[l.appended:]
}
