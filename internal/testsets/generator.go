// Package testsets generates synthetic beach volleyball seasons for local
// runs and tests. Hidden player strengths drive the results, so rating
// models fitted on the output have real structure to find.
package testsets

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/sideout/internal/domain/model"
)

// Score generation bounds. Sets play to 21; the loser lands between 5 and
// 19 so no generated set can tie.
const (
	winningScore  = 21
	loserScoreMin = 5
	loserScoreMax = 19
)

// player is a synthetic participant with a hidden strength.
type player struct {
	id       string
	strength float64
	tier     model.Tier
}

// Generator produces a reproducible stream of sets from a seeded RNG.
// Player strengths are fixed at construction; set outcomes follow a
// logistic win probability on team strength difference.
type Generator struct {
	cfg     Config
	rng     *rand.Rand
	players []player
}

// New builds a generator. The same config always yields the same season.
func New(cfg Config) *Generator {
	if cfg.NumPlayers < 4 {
		cfg.NumPlayers = 4
	}
	if cfg.SetsPerMonth <= 0 {
		cfg.SetsPerMonth = defaultSetsPerMonth
	}
	if len(cfg.Months) == 0 {
		cfg.Months = DefaultConfig().Months
	}
	if cfg.Year == 0 {
		cfg.Year = defaultYear
	}

	g := &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
	g.players = g.makePlayers()
	return g
}

// makePlayers assigns each player a strength from a normal distribution and
// a tier from strength quantiles, strongest tiers first.
func (g *Generator) makePlayers() []player {
	players := make([]player, g.cfg.NumPlayers)
	for i := range players {
		players[i] = player{
			id:       fmt.Sprintf("player-%03d", i),
			strength: g.rng.NormFloat64() * 2.0,
		}
	}

	for i := range players {
		players[i].tier = tierForStrength(players[i].strength)
	}
	return players
}

func tierForStrength(s float64) model.Tier {
	switch {
	case s > 3.0:
		return model.TierAAA
	case s > 1.5:
		return model.TierAA
	case s > 0:
		return model.TierA
	case s > -1.5:
		return model.TierB
	case s > -3.0:
		return model.TierNovice
	default:
		return model.TierUnrated
	}
}

// Season generates every month's sets in chronological order.
func (g *Generator) Season() []model.Set {
	sets := make([]model.Set, 0, len(g.cfg.Months)*g.cfg.SetsPerMonth)
	for _, month := range g.cfg.Months {
		for i := 0; i < g.cfg.SetsPerMonth; i++ {
			sets = append(sets, g.generateSet(month))
		}
	}
	return sets
}

// Players lists the generated player IDs.
func (g *Generator) Players() []string {
	ids := make([]string, len(g.players))
	for i, p := range g.players {
		ids[i] = p.id
	}
	return ids
}

// generateSet picks four distinct players and resolves the result from
// their hidden strengths.
func (g *Generator) generateSet(month int) model.Set {
	picked := g.pickFour()
	t1p1, t1p2, t2p1, t2p2 := picked[0], picked[1], picked[2], picked[3]

	t1 := t1p1.strength + t1p2.strength
	t2 := t2p1.strength + t2p2.strength

	// Logistic win probability on the strength gap.
	probT1 := 1.0 / (1.0 + math.Exp(-(t1-t2)/2.0))
	team1Won := g.rng.Float64() < probT1

	gap := math.Abs(t1 - t2)
	loserScore := loserScoreMax - int(math.Round(gap*1.5)) + g.rng.Intn(5) - 2
	if loserScore > loserScoreMax {
		loserScore = loserScoreMax
	}
	if loserScore < loserScoreMin {
		loserScore = loserScoreMin
	}

	s := model.Set{
		ID:               uuid.New().String(),
		Team1Player1:     t1p1.id,
		Team1Player2:     t1p2.id,
		Team2Player1:     t2p1.id,
		Team2Player2:     t2p2.id,
		Month:            month,
		Year:             g.cfg.Year,
		Team1Player1Tier: t1p1.tier,
		Team1Player2Tier: t1p2.tier,
		Team2Player1Tier: t2p1.tier,
		Team2Player2Tier: t2p2.tier,
	}

	if team1Won {
		s.Team1Score, s.Team2Score = winningScore, loserScore
	} else {
		s.Team1Score, s.Team2Score = loserScore, winningScore
	}
	return s
}

// pickFour selects four distinct players uniformly.
func (g *Generator) pickFour() [4]player {
	var picked [4]player
	seen := make(map[int]struct{}, 4)
	for i := 0; i < 4; {
		idx := g.rng.Intn(len(g.players))
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		picked[i] = g.players[idx]
		i++
	}
	return picked
}
