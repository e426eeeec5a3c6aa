package model

// Preference expresses how much a player wants (or wants to avoid) playing
// in a given time block. Positive scores are desired blocks, zero is
// indifferent, negative scores are undesired blocks.
type Preference struct {
	PlayerID    string
	TimeBlockID string
	Score       int
}

// Player represents a tournament participant. Seed is set during grouping;
// everything else is immutable once loaded.
type Player struct {
	ID       string
	Name     string
	Division string
	Ranking  int // lower is better
	Seed     bool

	Preferences []Preference

	// prefScores maps time block id to the player's total score for that
	// block. Built once via IndexPreferences; duplicate rows sum.
	prefScores map[string]int
}

// IndexPreferences builds the per-block score lookup from the preference
// list. Must be called after the preference list is complete.
func (p *Player) IndexPreferences() {
	p.prefScores = make(map[string]int, len(p.Preferences))
	for _, pref := range p.Preferences {
		p.prefScores[pref.TimeBlockID] += pref.Score
	}
}

// PreferenceFor returns the player's score for a time block, or 0 if the
// player declared no preference for it.
func (p *Player) PreferenceFor(timeBlockID string) int {
	return p.prefScores[timeBlockID]
}

// Slot is a (court, time block) pairing that can host one match. A dummy
// slot is a capacity-absorbing placeholder, not a real court and time.
type Slot struct {
	CourtID     string
	TimeBlockID string
	IsDummy     bool
}

// Name returns the slot's identity string, used in variable and constraint
// names.
func (s *Slot) Name() string {
	return s.CourtID + "-" + s.TimeBlockID
}

// Match is one unordered player pair within a group.
type Match struct {
	ID       string
	Player1  *Player
	Player2  *Player
	GroupID  string
	Division string
}

// Group is a subset of one division's players from which all round-robin
// matches are generated. Immutable once matches are generated.
type Group struct {
	ID       string
	Division string
	Players  []*Player

	Matches         []*Match
	MatchesByPlayer map[string][]*Match
}

// Assignment maps one match to one slot in a solved schedule.
type Assignment struct {
	Match *Match
	Slot  *Slot
}

// Tournament is the fully parsed input for one scheduling run.
type Tournament struct {
	PlayersByID       map[string]*Player
	PlayersByDivision map[string][]*Player

	Slots            []*Slot
	SlotsByTimeBlock map[string][]*Slot

	// DivisionAvailability maps division id to the time blocks that
	// division's matches may use.
	DivisionAvailability map[string][]string

	// TimeBlockRanking orders time blocks chronologically; consecutive
	// integers mean adjacent blocks.
	TimeBlockRanking map[string]int

	// DemandsByPlayer restricts a player to a subset of time blocks.
	// A missing entry means the player is unrestricted.
	DemandsByPlayer map[string][]string

	// RawPreferences holds unparsed form-response rows, only populated in
	// preference-parsing mode.
	RawPreferences []map[string]string
}
