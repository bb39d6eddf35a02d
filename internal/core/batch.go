package core

// GameUpdate is everything one transition writes. Storage commits it atomically.
type GameUpdate struct {
	Game     *Game
	Facts    []FactPair // changed or newly added facts
	Moves    []*Move
	Report   *Report // newly raised report
	Resolved *Report // report marked reviewed
}

// ScheduleBatch is everything one scheduler run writes. Storage commits it atomically.
type ScheduleBatch struct {
	Session      *Session
	Participants []*Participant // new participants
	Slots        []*Slot        // new slots
	Games        []*Game        // new games
	Facts        []FactPair     // facts cloned into new games
	Closed       []*Game        // existing games closed and detached
}
