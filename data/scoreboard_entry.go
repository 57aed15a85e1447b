package data

import "fmt"

// ScoreboardEntry identifies one target register: a scoreboard namespace
// plus a player (register) name within it.
type ScoreboardEntry struct {
	Scoreboard ResourceLocation
	Player     string
}

// NewScoreboardEntry builds an entry for player inside scoreboard.
func NewScoreboardEntry(scoreboard ResourceLocation, player string) ScoreboardEntry {
	return ScoreboardEntry{Scoreboard: scoreboard, Player: player}
}

// String renders "<player> <scoreboard-as-dotted>", the form every
// rendered command uses to reference a register.
func (e ScoreboardEntry) String() string {
	return fmt.Sprintf("%s %s", e.Player, e.Scoreboard.Dotted())
}

// Equal reports whether two entries name the same register.
func (e ScoreboardEntry) Equal(other ScoreboardEntry) bool {
	return e.Player == other.Player && e.Scoreboard.Equal(other.Scoreboard)
}
