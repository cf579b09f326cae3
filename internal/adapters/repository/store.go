// Package repository defines the standings store interface and errors.
package repository

import "context"

// Entry represents a standings row.
type Entry struct {
	Rank     int
	PlayerID string
	Rating   float64
	Games    int
}

// Store provides read/write access to the ranked standings state.
type Store interface {
	// SetRating replaces the player's rating. Unlike a best-score board,
	// a recompute may move a player down, so the newest value always wins.
	SetRating(ctx context.Context, playerID string, rating float64, games int) error

	// Rank returns the current rank and rating for a player.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, playerID string) (Entry, error)

	// TopN returns the top-N entries ordered by rating desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of players tracked in the standings.
	Count(ctx context.Context) int
}
