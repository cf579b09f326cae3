package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	service "github.com/okian/sideout/internal/app"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/internal/domain/split"
	"github.com/okian/sideout/internal/testsets"
	"github.com/okian/sideout/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// sliceSource serves a fixed stream of sets.
type sliceSource struct {
	sets []model.Set
	err  error
}

func (s *sliceSource) SetsChronological(ctx context.Context) ([]model.Set, error) {
	return s.sets, s.err
}

// memorySink records everything persisted through it.
type memorySink struct {
	mu          sync.Mutex
	ratings     map[string]float64
	games       map[string]int
	history     []model.HistoryEntry
	tierRatings map[model.Tier]map[string]float64
	cleared     int
}

func newMemorySink() *memorySink {
	return &memorySink{
		ratings:     make(map[string]float64),
		games:       make(map[string]int),
		tierRatings: make(map[model.Tier]map[string]float64),
	}
}

func (m *memorySink) UpdatePlayerRating(ctx context.Context, playerID string, rating float64, games int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings[playerID] = rating
	m.games[playerID] = games
	return nil
}

func (m *memorySink) InsertRatingHistory(ctx context.Context, entries []model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, entries...)
	return nil
}

func (m *memorySink) UpsertTierRating(ctx context.Context, tier model.Tier, playerID string, rating float64, games int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tierRatings[tier] == nil {
		m.tierRatings[tier] = make(map[string]float64)
	}
	m.tierRatings[tier][playerID] = rating
	return nil
}

func (m *memorySink) ClearTierRatings(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	m.tierRatings = make(map[model.Tier]map[string]float64)
	return nil
}

func seasonSource() *sliceSource {
	return &sliceSource{sets: testsets.New(testsets.DefaultConfig()).Season()}
}

func TestServiceRecompute(t *testing.T) {
	Convey("Given a service over a synthetic season", t, func() {
		ctx := context.Background()
		sink := newMemorySink()
		svc := service.New(
			service.WithSource(seasonSource()),
			service.WithSink(sink),
		)

		Convey("When running a full recompute", func() {
			result, err := svc.Recompute(ctx)

			Convey("Then every participant ends up rated", func() {
				So(err, ShouldBeNil)
				So(result, ShouldNotBeNil)
				So(result.Sets, ShouldEqual, 6*40)
				So(len(result.Ratings), ShouldBeGreaterThan, 0)
			})

			Convey("And the standings store mirrors the ratings", func() {
				So(err, ShouldBeNil)
				So(svc.Count(ctx), ShouldEqual, len(result.Ratings))

				top, err := svc.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(len(top), ShouldBeLessThanOrEqualTo, 10)
				for i := 1; i < len(top); i++ {
					So(top[i].Rating, ShouldBeLessThanOrEqualTo, top[i-1].Rating)
				}
			})

			Convey("And the sink receives ratings and history", func() {
				So(err, ShouldBeNil)
				So(len(sink.ratings), ShouldEqual, len(result.Ratings))
				// Four participants per set, one entry each.
				So(len(sink.history), ShouldEqual, result.Sets*4)
			})

			Convey("And games played counts every appearance", func() {
				So(err, ShouldBeNil)
				total := 0
				for _, g := range result.Games {
					total += g
				}
				So(total, ShouldEqual, result.Sets*4)
			})
		})

		Convey("When the source fails", func() {
			failing := service.New(
				service.WithSource(&sliceSource{err: errors.New("connection refused")}),
			)
			_, err := failing.Recompute(ctx)

			Convey("Then the error propagates", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a set is malformed", func() {
			bad := service.New(service.WithSource(&sliceSource{sets: []model.Set{{
				ID:           "bad",
				Team1Player1: "a", Team1Player2: "b",
				Team2Player1: "c", Team2Player2: "d",
				Team1Score: 20, Team2Score: 20,
			}}}))
			_, err := bad.Recompute(ctx)

			Convey("Then the recompute fails rather than guessing a winner", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestServiceRecomputeTiers(t *testing.T) {
	Convey("Given a service over a synthetic season", t, func() {
		ctx := context.Background()
		sink := newMemorySink()
		svc := service.New(
			service.WithSource(seasonSource()),
			service.WithSink(sink),
		)

		Convey("When running the tier-segmented recompute", func() {
			results, err := svc.RecomputeTiers(ctx)

			Convey("Then one result per tier comes back", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, len(model.AllTiers()))
			})

			Convey("And old tier ratings are cleared before persisting", func() {
				So(err, ShouldBeNil)
				So(sink.cleared, ShouldEqual, 1)
			})

			Convey("And persisted segments match the computed ones", func() {
				So(err, ShouldBeNil)
				for _, res := range results {
					So(len(sink.tierRatings[res.Tier]), ShouldEqual, len(res.Ratings))
				}
			})
		})

		Convey("When restricting to a subset of tiers", func() {
			scoped := service.New(
				service.WithSource(seasonSource()),
				service.WithTiers([]model.Tier{model.TierAA, model.TierB}),
			)
			results, err := scoped.RecomputeTiers(ctx)

			Convey("Then only those tiers are computed", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 2)
				So(results[0].Tier, ShouldEqual, model.TierAA)
				So(results[1].Tier, ShouldEqual, model.TierB)
			})
		})
	})
}

func TestServiceCompareModels(t *testing.T) {
	Convey("Given a service over a synthetic season", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithSource(seasonSource()),
			service.WithTrainingParams(20, 0.01, 1.0),
			service.WithSeed(42),
		)

		Convey("When comparing the five models", func() {
			results, err := svc.CompareModels(ctx)

			Convey("Then all five models report results sorted by accuracy", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 5)
				for i := 1; i < len(results); i++ {
					So(results[i].Accuracy, ShouldBeLessThanOrEqualTo, results[i-1].Accuracy)
				}

				names := make(map[string]struct{}, len(results))
				for _, r := range results {
					names[r.Name] = struct{}{}
				}
				So(names, ShouldHaveLength, 5)
			})

			Convey("And hidden strengths make the models beat a coin flip", func() {
				So(err, ShouldBeNil)
				So(results[0].Accuracy, ShouldBeGreaterThan, 0.5)
			})
		})

		Convey("When the holdout period has no sets", func() {
			cfg := testsets.DefaultConfig()
			cfg.Months = []int{6, 7}
			scoped := service.New(
				service.WithSource(&sliceSource{sets: testsets.New(cfg).Season()}),
				service.WithTestPeriod(split.NewPeriod([]int{10, 11}, 2025)),
				service.WithTrainingParams(5, 0.01, 1.0),
			)
			results, err := scoped.CompareModels(ctx)

			Convey("Then every model reports zero accuracy without error", func() {
				So(err, ShouldBeNil)
				for _, r := range results {
					So(r.Evaluated, ShouldEqual, 0)
					So(r.Accuracy, ShouldEqual, 0.0)
				}
			})
		})
	})
}

func TestServiceStandingsQueries(t *testing.T) {
	Convey("Given a recomputed service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithSource(seasonSource()))

		result, err := svc.Recompute(ctx)
		So(err, ShouldBeNil)

		Convey("When querying a rated player", func() {
			var any string
			for id := range result.Ratings {
				any = id
				break
			}
			entry, err := svc.Rank(ctx, any)

			Convey("Then the entry carries rank, rating and games", func() {
				So(err, ShouldBeNil)
				So(entry.PlayerID, ShouldEqual, any)
				So(entry.Rank, ShouldBeGreaterThan, 0)
				So(entry.Games, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When querying an unknown player", func() {
			_, err := svc.Rank(ctx, "nobody")

			Convey("Then the lookup fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
