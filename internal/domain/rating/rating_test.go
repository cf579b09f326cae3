package rating_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/sideout/internal/domain/model"
	rating "github.com/okian/sideout/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func set(id string, t1p1, t1p2, t2p1, t2p2 string, s1, s2 int) model.Set {
	return model.Set{
		ID:           id,
		Team1Player1: t1p1,
		Team1Player2: t1p2,
		Team2Player1: t2p1,
		Team2Player2: t2p2,
		Team1Score:   s1,
		Team2Score:   s2,
	}
}

func TestExpected(t *testing.T) {
	Convey("Given the expected score function", t, func() {
		Convey("When both teams have equal ratings", func() {
			e := rating.Expected(1500, 1500)

			Convey("Then the expected score is one half", func() {
				So(e, ShouldAlmostEqual, 0.5, 1e-12)
			})
		})

		Convey("When the ratings differ", func() {
			e1 := rating.Expected(1600, 1400)
			e2 := rating.Expected(1400, 1600)

			Convey("Then the stronger team is favored", func() {
				So(e1, ShouldBeGreaterThan, 0.5)
				So(e2, ShouldBeLessThan, 0.5)
			})

			Convey("And the two expectations sum to one", func() {
				So(e1+e2, ShouldAlmostEqual, 1.0, 1e-12)
			})
		})

		Convey("When the gap is extreme", func() {
			e := rating.Expected(3000, 100)

			Convey("Then the result stays inside (0, 1)", func() {
				So(e, ShouldBeGreaterThan, 0.0)
				So(e, ShouldBeLessThan, 1.0)
			})
		})
	})
}

func TestUpdate(t *testing.T) {
	Convey("Given the rating update rule", t, func() {
		Convey("When a team wins", func() {
			after := rating.Update(1500, 0.5, 1.0, rating.DefaultKFactor)

			Convey("Then the rating increases", func() {
				So(after, ShouldBeGreaterThan, 1500)
				So(after, ShouldAlmostEqual, 1516, 1e-9)
			})
		})

		Convey("When a team loses", func() {
			after := rating.Update(1500, 0.5, 0.0, rating.DefaultKFactor)

			Convey("Then the rating decreases", func() {
				So(after, ShouldBeLessThan, 1500)
				So(after, ShouldAlmostEqual, 1484, 1e-9)
			})
		})

		Convey("When an underdog wins", func() {
			underdogGain := rating.Update(1400, rating.Expected(1400, 1600), 1.0, rating.DefaultKFactor) - 1400
			favoriteGain := rating.Update(1600, rating.Expected(1600, 1400), 1.0, rating.DefaultKFactor) - 1600

			Convey("Then the underdog gains more than a favorite would", func() {
				So(underdogGain, ShouldBeGreaterThan, favoriteGain)
			})
		})
	})
}

func TestMapGet(t *testing.T) {
	Convey("Given a rating map", t, func() {
		m := rating.Map{"alice": 1620.5}

		Convey("When looking up a known player", func() {
			So(m.Get("alice"), ShouldEqual, 1620.5)
		})

		Convey("When looking up an unknown player", func() {
			Convey("Then the default rating is substituted", func() {
				So(m.Get("nobody"), ShouldEqual, rating.DefaultRating)
			})
		})
	})
}

func TestEngineReplay(t *testing.T) {
	Convey("Given a fresh engine", t, func() {
		ctx := context.Background()

		Convey("When replaying a single set", func() {
			e := rating.New()
			ratings, _, err := e.Replay(ctx, nil, []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 21, 17),
			})

			Convey("Then the winners rise and the losers fall symmetrically", func() {
				So(err, ShouldBeNil)
				So(ratings["p1"], ShouldAlmostEqual, 1516, 1e-9)
				So(ratings["p2"], ShouldAlmostEqual, 1516, 1e-9)
				So(ratings["p3"], ShouldAlmostEqual, 1484, 1e-9)
				So(ratings["p4"], ShouldAlmostEqual, 1484, 1e-9)
			})

			Convey("And teammates receive identical deltas", func() {
				So(ratings["p1"], ShouldEqual, ratings["p2"])
				So(ratings["p3"], ShouldEqual, ratings["p4"])
			})
		})

		Convey("When replaying two sets over the same four players", func() {
			e := rating.New()
			ratings, _, err := e.Replay(ctx, nil, []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 21, 17),
				set("s2", "p3", "p4", "p1", "p2", 21, 19),
			})

			Convey("Then the second update uses post-first-set ratings", func() {
				So(err, ShouldBeNil)

				// After s1: p1/p2 1516, p3/p4 1484. For s2 the winners
				// (p3/p4) are the underdogs, so they gain more than 16.
				expected := rating.Expected(1484, 1516)
				delta := rating.DefaultKFactor * (1.0 - expected)
				So(delta, ShouldBeGreaterThan, 16)
				So(ratings["p3"], ShouldAlmostEqual, 1484+delta, 1e-9)
				So(ratings["p1"], ShouldAlmostEqual, 1516-delta, 1e-9)
			})
		})

		Convey("When the same computation runs with team labels mirrored", func() {
			sets := []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 21, 15),
				set("s2", "p1", "p3", "p2", "p4", 18, 21),
			}
			mirrored := []model.Set{
				set("s1", "p3", "p4", "p1", "p2", 15, 21),
				set("s2", "p2", "p4", "p1", "p3", 21, 18),
			}

			a, _, errA := rating.New().Replay(ctx, nil, sets)
			b, _, errB := rating.New().Replay(ctx, nil, mirrored)

			Convey("Then the final ratings are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				for _, p := range []string{"p1", "p2", "p3", "p4"} {
					So(a[p], ShouldAlmostEqual, b[p], 1e-9)
				}
			})
		})

		Convey("When a set ID is fed twice", func() {
			e := rating.New()
			once, _, err1 := rating.New().Replay(ctx, nil, []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 21, 17),
			})
			twice, _, err2 := e.Replay(ctx, nil, []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 21, 17),
				set("s1", "p1", "p2", "p3", "p4", 21, 17),
			})

			Convey("Then the duplicate is skipped and ratings match a single pass", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				for p, r := range once {
					So(twice[p], ShouldAlmostEqual, r, 1e-12)
				}
			})
		})

		Convey("When a set has a tied score", func() {
			e := rating.New()
			_, _, err := e.Replay(ctx, nil, []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 20, 20),
			})

			Convey("Then the replay fails with ErrMalformedSet", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, rating.ErrMalformedSet), ShouldBeTrue)
			})
		})

		Convey("When history recording is enabled", func() {
			e := rating.New(rating.WithHistory())
			_, history, err := e.Replay(ctx, nil, []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 21, 17),
			})

			Convey("Then one entry per player per set is recorded", func() {
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 4)
				So(history[0].PlayerID, ShouldEqual, "p1")
				So(history[0].Before, ShouldEqual, rating.DefaultRating)
				So(history[0].After, ShouldAlmostEqual, 1516, 1e-9)
				So(history[0].SetID, ShouldEqual, "s1")
			})
		})

		Convey("When history recording is disabled", func() {
			e := rating.New()
			_, history, err := e.Replay(ctx, nil, []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 21, 17),
			})

			Convey("Then no history is produced", func() {
				So(err, ShouldBeNil)
				So(history, ShouldBeEmpty)
			})
		})

		Convey("When continuing from an existing rating map", func() {
			e := rating.New()
			seed := rating.Map{"p1": 1700, "p2": 1700, "p3": 1300, "p4": 1300}
			ratings, _, err := e.Replay(ctx, seed, []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 21, 10),
			})

			Convey("Then the favorites gain little for the expected win", func() {
				So(err, ShouldBeNil)
				gain := ratings["p1"] - 1700
				So(gain, ShouldBeGreaterThan, 0)
				So(gain, ShouldBeLessThan, 4)
			})
		})

		Convey("When a custom K-factor is configured", func() {
			e := rating.New(rating.WithKFactor(64))
			ratings, _, err := e.Replay(ctx, nil, []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 21, 17),
			})

			Convey("Then the delta scales with K", func() {
				So(err, ShouldBeNil)
				So(ratings["p1"], ShouldAlmostEqual, 1532, 1e-9)
			})
		})

		Convey("When a custom default rating is configured", func() {
			e := rating.New(rating.WithDefaultRating(1000))
			ratings, _, err := e.Replay(ctx, nil, []model.Set{
				set("s1", "p1", "p2", "p3", "p4", 21, 17),
			})

			Convey("Then unseen players start from the configured value", func() {
				So(err, ShouldBeNil)
				So(ratings["p1"], ShouldAlmostEqual, 1016, 1e-9)
			})
		})

		Convey("When replaying an empty stream", func() {
			ratings, history, err := rating.New().Replay(ctx, nil, nil)

			Convey("Then the result is an empty map", func() {
				So(err, ShouldBeNil)
				So(ratings, ShouldBeEmpty)
				So(history, ShouldBeEmpty)
			})
		})
	})
}

func TestRatingConservation(t *testing.T) {
	Convey("Given a replay over many sets", t, func() {
		ctx := context.Background()
		sets := []model.Set{
			set("s1", "p1", "p2", "p3", "p4", 21, 17),
			set("s2", "p1", "p3", "p2", "p4", 15, 21),
			set("s3", "p1", "p4", "p2", "p3", 21, 19),
			set("s4", "p2", "p3", "p1", "p4", 22, 20),
		}

		ratings, _, err := rating.New().Replay(ctx, nil, sets)

		Convey("Then the total rating mass is conserved", func() {
			So(err, ShouldBeNil)
			total := 0.0
			for _, r := range ratings {
				total += r
			}
			So(total, ShouldAlmostEqual, 4*rating.DefaultRating, 1e-9)
			So(math.IsNaN(total), ShouldBeFalse)
		})
	})
}
