// Package core contains the core domain types for warrant.
package core

import (
	"time"
)

// Case distinguishes the study arm a session belongs to.
type Case string

const (
	CaseControl    Case = "Control"
	CaseNonControl Case = "Non-control"
)

// Valid reports whether c is a known case.
func (c Case) Valid() bool {
	return c == CaseControl || c == CaseNonControl
}

// Role is the seat a slot occupies in its game.
type Role string

const (
	RoleAdvocate     Role = "Advocate"
	RoleCritic       Role = "Critic"
	RoleInterlocutor Role = "Interlocutor"
)

// Context is the phase of a game. Values double as display labels.
type Context string

const (
	ContextCreateRule     Context = "Create Rule"
	ContextIdle           Context = "Idle"
	ContextAttackResponse Context = "Attack Response"
	ContextProposedEdit   Context = "Proposed Edit"
	ContextProposedAdd    Context = "Proposed Add"
	ContextSuspended      Context = "Suspended"
	ContextCompleted      Context = "Completed"
	ContextConversation   Context = "Conversation"
)

// Known reports whether c is one of the defined contexts.
func (c Context) Known() bool {
	switch c {
	case ContextCreateRule, ContextIdle, ContextAttackResponse, ContextProposedEdit,
		ContextProposedAdd, ContextSuspended, ContextCompleted, ContextConversation:
		return true
	}
	return false
}

// HasPending reports whether a game in this context carries proposal data.
func (c Context) HasPending() bool {
	return c == ContextAttackResponse || c == ContextProposedEdit || c == ContextProposedAdd
}

// Turn says who may act next. The integer codes are part of the export format.
type Turn int

const (
	TurnCritic       Turn = 0
	TurnAdvocate     Turn = 1
	TurnModerated    Turn = 2
	TurnCompleted    Turn = 3
	TurnConversation Turn = 4
)

func (t Turn) String() string {
	switch t {
	case TurnCritic:
		return "Critic"
	case TurnAdvocate:
		return "Advocate"
	case TurnModerated:
		return "Moderated"
	case TurnCompleted:
		return "Completed"
	case TurnConversation:
		return "Conversation"
	}
	return "Unknown"
}

// ParseTurn parses a turn label as produced by String.
func ParseTurn(s string) (Turn, bool) {
	for _, t := range []Turn{TurnCritic, TurnAdvocate, TurnModerated, TurnCompleted, TurnConversation} {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Other returns the opposing player turn. Non-player turns are returned unchanged.
func (t Turn) Other() Turn {
	switch t {
	case TurnCritic:
		return TurnAdvocate
	case TurnAdvocate:
		return TurnCritic
	}
	return t
}

// TurnFor maps a player role onto its turn value.
func TurnFor(r Role) (Turn, bool) {
	switch r {
	case RoleAdvocate:
		return TurnAdvocate, true
	case RoleCritic:
		return TurnCritic, true
	}
	return 0, false
}

// MoveCode labels a logged move. Values are stable and appear in exports.
type MoveCode string

const (
	CodeCreateRule     MoveCode = "Create Rule"
	CodeUpdateRule     MoveCode = "Update Rule"
	CodeSentAttack     MoveCode = "Sent Attack"
	CodeAcceptedAttack MoveCode = "Accepted Attack"
	CodeRejectedAttack MoveCode = "Rejected Attack"
	CodeProposedEdit   MoveCode = "Proposed Edit"
	CodeAcceptedEdit   MoveCode = "Accepted Edit"
	CodeRejectedEdit   MoveCode = "Rejected Edit"
	CodeModifiedEdit   MoveCode = "Modified Edit"
	CodeProposedAdd    MoveCode = "Proposed Add"
	CodeAcceptedAdd    MoveCode = "Accepted Add"
	CodeRejectedAdd    MoveCode = "Rejected Add"
	CodeModifiedAdd    MoveCode = "Modified Add"
	CodeReport         MoveCode = "Report"
	CodeReportReviewed MoveCode = "Report Reviewed"
	CodePass           MoveCode = "Pass"
	CodeCompleted      MoveCode = "Completed"
)

// DefaultRulePart fills an unwritten antecedent or consequent.
const DefaultRulePart = "__________"

// ControlRule is the rule text of conversation games.
const ControlRule = "n/a"

// Message prefixes.
const (
	AnnouncementPrefix = "[ANNOUNCEMENT] "
	MessagePrefix      = "[MESSAGE] "
	ErrorReportPrefix  = "Error Reported: "
)

// Session is one study sitting: a roster of participants and their games.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Case      Case      `json:"case"`
	Start     time.Time `json:"start"`
	NumUsers  int       `json:"num_users"`
	NumGames  int       `json:"num_games"`
	Scenarios []string  `json:"scenarios"` // eligible scenario IDs
	CreatedAt time.Time `json:"created_at"`
}

// SessionSummary is a lightweight representation for listing sessions.
type SessionSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Case      Case      `json:"case"`
	NumUsers  int       `json:"num_users"`
	NumGames  int       `json:"num_games"`
	GameCount int       `json:"game_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant is a study subject, known by a code name.
type Participant struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"session_id"`
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	LoggedInAt *time.Time `json:"logged_in_at,omitempty"`
	Assigned   bool       `json:"assigned"`
	Approved   bool       `json:"approved"`
}

// Scenario is the argument premise a game is played over.
type Scenario struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SourceConclusion string     `json:"source_conclusion"`
	TargetConclusion string     `json:"target_conclusion"`
	Facts            []FactPair `json:"facts"`
}

// FactPair is a corresponding pair of facts: one from the source case, one from the target case.
type FactPair struct {
	ID     string `json:"id"`
	GameID string `json:"game_id,omitempty"` // empty for scenario seed facts
	Source string `json:"source"`
	Target string `json:"target"`
}

// Slot binds a participant to one seat of one game.
type Slot struct {
	Key           string  `json:"key"`
	ParticipantID string  `json:"participant_id"`
	Role          Role    `json:"role"`
	Seconds       float64 `json:"seconds"`
}

// Game is a single advocate/critic match.
type Game struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	ScenarioID     string    `json:"scenario_id"`
	Chat           string    `json:"chat,omitempty"`
	AdvocateSlot   string    `json:"advocate_slot,omitempty"` // empty once detached
	CriticSlot     string    `json:"critic_slot,omitempty"`
	RuleAntecedent string    `json:"rule_antecedent"`
	RuleConsequent string    `json:"rule_consequent"`
	Context        Context   `json:"context"`
	Turn           Turn      `json:"turn"`
	Pending        Pending   `json:"pending"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsOpen returns true while the game can still change.
func (g *Game) IsOpen() bool {
	return g.Context != ContextCompleted
}

// IsControl returns true for conversation games.
func (g *Game) IsControl() bool {
	return g.Context == ContextConversation
}

// Move is an immutable record of a transition. ParticipantID is empty for system moves.
type Move struct {
	ID            string    `json:"id"`
	GameID        string    `json:"game_id"`
	ParticipantID string    `json:"participant_id,omitempty"`
	Number        int       `json:"number"`
	Code          MoveCode  `json:"code"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

// Report is a complaint or error escalated to a moderator.
type Report struct {
	ID            string    `json:"id"`
	GameID        string    `json:"game_id"`
	ParticipantID string    `json:"participant_id,omitempty"` // empty for system reports
	Text          string    `json:"text"`
	Note          string    `json:"note"`
	Returned      Turn      `json:"returned"`
	Resolved      bool      `json:"resolved"`
	CreatedAt     time.Time `json:"created_at"`
}

// Message is a moderator note: session-wide when SessionID is set, private to a slot otherwise.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	SlotKey   string    `json:"slot_key,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
