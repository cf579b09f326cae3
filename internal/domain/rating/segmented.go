package rating

import (
	"context"
	"sort"

	"github.com/okian/sideout/internal/domain/dedupe"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/pkg/metrics"
)

// TierResult holds the outcome of one tier-segmented replay.
type TierResult struct {
	Tier        model.Tier
	Ratings     Map
	GamesPlayed map[string]int // sets the player appeared in, win or lose
	Sets        int            // sets matching the tier filter
}

// FilterByTier returns the sets where at least one participant carries the
// target tier tag. All four participants are checked, not only the true
// opponents, so a player's own tier also satisfies the filter; this mirrors
// the established "at least one opponent has the rating" policy and is kept
// as-is.
func FilterByTier(sets []model.Set, tier model.Tier) []model.Set {
	var filtered []model.Set
	for _, s := range sets {
		for _, tag := range s.TierTags() {
			if tag == tier {
				filtered = append(filtered, s)
				break
			}
		}
	}
	return filtered
}

// ReplayTier runs an independent replay over the sets matching the target
// tier. Every tier starts from the default rating; nothing is shared with
// the engine's own tracker or with other tiers.
func (e *Engine) ReplayTier(ctx context.Context, sets []model.Set, tier model.Tier) (TierResult, error) {
	filtered := FilterByTier(sets, tier)

	sub := &Engine{
		k:             e.k,
		defaultRating: e.defaultRating,
		tracker:       dedupe.NewInMemoryTracker(),
	}

	ratings, _, err := sub.Replay(ctx, nil, filtered)
	if err != nil {
		return TierResult{}, err
	}

	games := make(map[string]int)
	for _, s := range filtered {
		for _, p := range s.Players() {
			games[p]++
		}
	}

	metrics.UpdateTierSets(string(tier), len(filtered))

	return TierResult{
		Tier:        tier,
		Ratings:     ratings,
		GamesPlayed: games,
		Sets:        len(filtered),
	}, nil
}

// RankedPlayer is one row of a tier leaderboard.
type RankedPlayer struct {
	PlayerID string
	Rating   float64
	Games    int
}

// TopQualified returns the highest-rated players of the tier, at most n, who
// appeared in at least minGames sets. Ties break on player ID ascending so
// the output is stable.
func (r TierResult) TopQualified(n, minGames int) []RankedPlayer {
	qualified := make([]RankedPlayer, 0, len(r.Ratings))
	for id, rat := range r.Ratings {
		if r.GamesPlayed[id] >= minGames {
			qualified = append(qualified, RankedPlayer{PlayerID: id, Rating: rat, Games: r.GamesPlayed[id]})
		}
	}

	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].Rating != qualified[j].Rating {
			return qualified[i].Rating > qualified[j].Rating
		}
		return qualified[i].PlayerID < qualified[j].PlayerID
	})

	if n > 0 && len(qualified) > n {
		qualified = qualified[:n]
	}
	return qualified
}

// ReplayTiers runs ReplayTier for each tier over the same full stream.
func (e *Engine) ReplayTiers(ctx context.Context, sets []model.Set, tiers []model.Tier) ([]TierResult, error) {
	results := make([]TierResult, 0, len(tiers))
	for _, tier := range tiers {
		res, err := e.ReplayTier(ctx, sets, tier)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
