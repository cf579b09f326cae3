// Package repository defines the standings store interface and errors.
package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/okian/sideout/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: rating DESC, then playerID ASC (deterministic).
// We implement a BST comparator where "less" means ranks earlier
// (i.e., higher rating ranks earlier). This makes in-order traversal
// produce the standings from best to worst.

// ratingScale controls fixed-point scaling from float64.
const ratingScale = 1_000_000_000_000 // 12 decimal places for better precision

type ratingFP int64

func toFixedPoint(x float64) ratingFP {
	// Handle special cases
	if math.IsNaN(x) {
		return 0
	}
	if math.IsInf(x, 1) {
		return ratingFP(math.MaxInt64)
	}
	if math.IsInf(x, -1) {
		return ratingFP(math.MinInt64)
	}

	scaled := x * ratingScale
	if scaled > float64(math.MaxInt64) {
		return ratingFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return ratingFP(math.MinInt64)
	}
	return ratingFP(math.Round(scaled))
}

func toFloat(x ratingFP) float64 {
	return float64(x) / ratingScale
}

// record stores the fixed-point rating plus metadata for a player.
type record struct {
	rating ratingFP
	games  int
}

// treap node
type node struct {
	id     string
	rating ratingFP
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aRating, aID) should appear before (bRating, bID)
// in the standings (higher ranks first).
func less(aRating ratingFP, aID string, bRating ratingFP, bID string) bool {
	if aRating != bRating {
		return aRating > bRating // higher rating ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// ratingToPriority converts a rating to a priority value.
// Higher ratings get higher priorities to keep them higher in the treap.
func ratingToPriority(rating ratingFP) uint64 {
	// Offset shifts negative ratings into the positive range.
	const offset = uint64(1) << 63
	return uint64(rating) + offset
}

func insert(n *node, id string, rating ratingFP) *node {
	if n == nil {
		return &node{id: id, rating: rating, prio: ratingToPriority(rating), size: 1}
	}
	if less(rating, id, n.rating, n.id) {
		n.left = insert(n.left, id, rating)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, rating)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, rating ratingFP) *node {
	if n == nil {
		return nil
	}
	if rating == n.rating && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, rating)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, rating)
		}
	} else if less(rating, id, n.rating, n.id) {
		n.left = deleteNode(n.left, id, rating)
	} else {
		n.right = deleteNode(n.right, id, rating)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order (highest ratings first).
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}

	// In-order traversal follows the less() ordering, so ties resolve to
	// player ID ASC deterministically.
	collectTopN(n.left, limit, records, out)

	if len(*out) < limit {
		if rec, exists := records[n.id]; exists {
			*out = append(*out, Entry{PlayerID: n.id, Rating: toFloat(rec.rating), Games: rec.games})
		}
	}

	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

type TreapStore struct {
	mu           sync.RWMutex
	root         *node
	byID         map[string]record
	capacityHint int
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{}

	for _, opt := range opts {
		opt(s)
	}

	s.byID = make(map[string]record, s.capacityHint)

	return s
}

// SetRating implements Store.SetRating with O(log n) expected time. The new
// rating always replaces the old one; a recompute may rank a player lower.
func (s *TreapStore) SetRating(ctx context.Context, playerID string, rating float64, games int) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordStandingsUpdateLatency(float64(latency))
	}()

	nr := toFixedPoint(rating)

	s.mu.Lock()
	if old, ok := s.byID[playerID]; ok {
		s.root = deleteNode(s.root, playerID, old.rating)
	}
	s.byID[playerID] = record{rating: nr, games: games}
	s.root = insert(s.root, playerID, nr)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStandingsRecords(count)
	return nil
}

// Rank returns the current rank and rating for a player.
func (s *TreapStore) Rank(ctx context.Context, playerID string) (Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordStandingsQueryLatency(float64(latency))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[playerID]; !ok {
		metrics.RecordErrorByComponent("standings", "not_found")
		return Entry{}, ErrNotFound
	}

	allEntries := make([]Entry, 0, len(s.byID))
	collectAll(s.root, s.byID, &allEntries)

	sortEntries(allEntries)
	assignRanksWithTies(allEntries)

	for _, entry := range allEntries {
		if entry.PlayerID == playerID {
			return entry, nil
		}
	}

	return Entry{}, ErrNotFound
}

// TopN returns the top N entries ordered by rating desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordStandingsQueryLatency(float64(latency))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("standings", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byID, &out)

	assignRanksWithTies(out)
	return out, nil
}

// Count returns the total number of players.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// collectAll appends all entries in rank order (highest ratings first).
func collectAll(n *node, byID map[string]record, out *[]Entry) {
	if n == nil {
		return
	}
	collectAll(n.left, byID, out)
	if rec, ok := byID[n.id]; ok {
		*out = append(*out, Entry{
			PlayerID: n.id,
			Rating:   toFloat(rec.rating),
			Games:    rec.games,
		})
	}
	collectAll(n.right, byID, out)
}

// sortEntries sorts entries by rating (descending) and playerID (ascending)
// to match TopN logic.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
}

// assignRanksWithTies assigns ranks with proper tie handling.
// Players with the same rating get the same rank, and the next distinct
// rating takes the following consecutive rank.
func assignRanksWithTies(entries []Entry) {
	if len(entries) == 0 {
		return
	}

	currentRank := 1
	for i := 0; i < len(entries); i++ {
		entries[i].Rank = currentRank

		sameRatingCount := 1
		for j := i + 1; j < len(entries) && entries[j].Rating == entries[i].Rating; j++ {
			entries[j].Rank = currentRank
			sameRatingCount++
		}

		currentRank++
		i += sameRatingCount - 1
	}
}
