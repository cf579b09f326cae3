// Package rating implements the chronological per-set ELO updater.
//
// Ratings are per player; a team's rating is the arithmetic mean of its two
// players' ratings at the moment the set is processed. Both players of a
// team receive the identical delta, derived from the team expected score.
package rating

import "math"

// ELO constants.
const (
	// DefaultRating is the rating assigned to a player with no processed sets.
	DefaultRating = 1500.0

	// DefaultKFactor controls the magnitude of rating change per set.
	DefaultKFactor = 32.0
)

// Map holds one scalar rating per player. It lives for the duration of a
// single computation run; persistence is a collaborator concern.
type Map map[string]float64

// Get returns the player's rating, or DefaultRating if the player has no
// processed sets. Absent players never raise; default substitution is part
// of the contract.
func (m Map) Get(id string) float64 {
	if r, ok := m[id]; ok {
		return r
	}
	return DefaultRating
}

// Expected returns the expected score of a team against an opponent using
// the standard ELO formula. The result is bounded in (0, 1) and
// Expected(a, b) + Expected(b, a) == 1 by construction.
func Expected(team, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-team)/400.0))
}

// Update returns the new rating after a result. actual is 1 for a win and
// 0 for a loss; expected is the team expected score in (0, 1).
func Update(current, expected, actual, k float64) float64 {
	return current + k*(actual-expected)
}
