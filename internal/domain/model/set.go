// Package model contains domain models passed between layers.
package model

// Tier is a coarse skill classification attached to a player.
type Tier string

// Tiers in descending order of skill.
const (
	TierAAA     Tier = "AAA"
	TierAA      Tier = "AA"
	TierA       Tier = "A"
	TierB       Tier = "B"
	TierNovice  Tier = "Novice"
	TierUnrated Tier = "Unrated"
)

// AllTiers returns every tier in descending order of skill.
func AllTiers() []Tier {
	return []Tier{TierAAA, TierAA, TierA, TierB, TierNovice, TierUnrated}
}

// Set is one unit of play with a final score between two teams of two
// players. It is the atomic unit of rating update. The slice a Set arrives
// in is assumed to be chronologically ordered by the ordering provider
// (tournament date, pool before playoff, match number, set number).
type Set struct {
	ID string // unique set identifier

	Team1Player1 string
	Team1Player2 string
	Team2Player1 string
	Team2Player2 string

	Team1Score int
	Team2Score int

	// Tournament calendar position, used by the train/test splitter.
	Month int // 1-12
	Year  int

	// Tier tags for the four participants, in the same order as the
	// player fields. Zero values mean the tag is unknown.
	Team1Player1Tier Tier
	Team1Player2Tier Tier
	Team2Player1Tier Tier
	Team2Player2Tier Tier
}

// Players returns the four participant identifiers in field order.
func (s Set) Players() [4]string {
	return [4]string{s.Team1Player1, s.Team1Player2, s.Team2Player1, s.Team2Player2}
}

// TierTags returns the four participants' tier tags in field order.
func (s Set) TierTags() [4]Tier {
	return [4]Tier{s.Team1Player1Tier, s.Team1Player2Tier, s.Team2Player1Tier, s.Team2Player2Tier}
}

// Team1Won reports whether team 1 scored strictly more points. It is only
// meaningful for well-formed sets (Team1Score != Team2Score).
func (s Set) Team1Won() bool {
	return s.Team1Score > s.Team2Score
}

// HistoryEntry records one player's rating before and after a set. Entries
// are append-only and consumed by persistence/display collaborators; the
// engine never reads them back.
type HistoryEntry struct {
	PlayerID string
	Before   float64
	After    float64
	SetID    string
}
