package rating

import (
	"context"
	"fmt"

	"github.com/okian/sideout/internal/domain/dedupe"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/pkg/metrics"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithKFactor sets the K-factor used for every update.
func WithKFactor(k float64) Option {
	return func(e *Engine) {
		if k > 0 {
			e.k = k
		}
	}
}

// WithDefaultRating sets the rating assigned to players with no processed sets.
func WithDefaultRating(r float64) Option {
	return func(e *Engine) {
		if r > 0 {
			e.defaultRating = r
		}
	}
}

// WithHistory enables recording one history entry per player per set.
func WithHistory() Option {
	return func(e *Engine) {
		e.recordHistory = true
	}
}

// WithTracker replaces the processed-set tracker. The tracker makes a
// replay idempotent when the same set ID is fed twice.
func WithTracker(t dedupe.Tracker) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracker = t
		}
	}
}

// Engine replays an ordered set stream, mutating a rating map one set at a
// time. It is single-threaded by design: one pass owns the map it mutates.
type Engine struct {
	k             float64
	defaultRating float64
	recordHistory bool
	tracker       dedupe.Tracker
}

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		k:             DefaultKFactor,
		defaultRating: DefaultRating,
		tracker:       dedupe.NewInMemoryTracker(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Replay processes each set exactly once in stream order, mutating ratings.
// A nil ratings map starts a fresh run. The returned history is non-empty
// only when the engine was built WithHistory.
//
// A set whose two raw scores are equal is rejected with ErrMalformedSet;
// sets always have a winner and the ordering provider must never produce a
// tie. A set ID seen before is skipped, keeping double invocation harmless.
func (e *Engine) Replay(ctx context.Context, ratings Map, sets []model.Set) (Map, []model.HistoryEntry, error) {
	if ratings == nil {
		ratings = make(Map)
	}

	var history []model.HistoryEntry

	for _, s := range sets {
		if s.Team1Score == s.Team2Score {
			metrics.RecordMalformedSet()
			return nil, nil, fmt.Errorf("set %q: score %d-%d: %w", s.ID, s.Team1Score, s.Team2Score, ErrMalformedSet)
		}

		if e.tracker.SeenAndRecord(ctx, s.ID) {
			metrics.RecordDuplicateSet()
			continue
		}

		history = e.applySet(ratings, s, history)
		metrics.RecordSetProcessed()
	}

	return ratings, history, nil
}

// get returns the player's rating honoring the engine's configured default.
func (e *Engine) get(m Map, id string) float64 {
	if r, ok := m[id]; ok {
		return r
	}
	return e.defaultRating
}

// applySet updates all four players from one set result. Team ratings are
// evaluated before any update from this set.
func (e *Engine) applySet(m Map, s model.Set, history []model.HistoryEntry) []model.HistoryEntry {
	team1 := [2]string{s.Team1Player1, s.Team1Player2}
	team2 := [2]string{s.Team2Player1, s.Team2Player2}

	rating1 := (e.get(m, team1[0]) + e.get(m, team1[1])) / 2
	rating2 := (e.get(m, team2[0]) + e.get(m, team2[1])) / 2

	expected1 := Expected(rating1, rating2)
	expected2 := Expected(rating2, rating1)

	actual1, actual2 := 0.0, 1.0
	if s.Team1Won() {
		actual1, actual2 = 1.0, 0.0
	}

	for _, p := range team1 {
		history = e.updatePlayer(m, p, expected1, actual1, s.ID, history)
	}
	for _, p := range team2 {
		history = e.updatePlayer(m, p, expected2, actual2, s.ID, history)
	}
	return history
}

func (e *Engine) updatePlayer(m Map, id string, expected, actual float64, setID string, history []model.HistoryEntry) []model.HistoryEntry {
	before := e.get(m, id)
	after := Update(before, expected, actual, e.k)
	m[id] = after

	if e.recordHistory {
		history = append(history, model.HistoryEntry{
			PlayerID: id,
			Before:   before,
			After:    after,
			SetID:    setID,
		})
	}
	return history
}
