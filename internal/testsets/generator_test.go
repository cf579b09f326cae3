package testsets_test

import (
	"testing"

	"github.com/okian/sideout/internal/domain/model"
	testsets "github.com/okian/sideout/internal/testsets"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGeneratorSeason(t *testing.T) {
	Convey("Given a generator with the default config", t, func() {
		g := testsets.New(testsets.DefaultConfig())
		season := g.Season()

		Convey("When generating a season", func() {
			Convey("Then every configured month is covered", func() {
				cfg := testsets.DefaultConfig()
				So(season, ShouldHaveLength, len(cfg.Months)*cfg.SetsPerMonth)

				months := make(map[int]int)
				for _, s := range season {
					months[s.Month]++
					So(s.Year, ShouldEqual, cfg.Year)
				}
				for _, m := range cfg.Months {
					So(months[m], ShouldEqual, cfg.SetsPerMonth)
				}
			})

			Convey("And no set has a tied score", func() {
				for _, s := range season {
					So(s.Team1Score, ShouldNotEqual, s.Team2Score)
				}
			})

			Convey("And the winning side always reaches the target score", func() {
				for _, s := range season {
					if s.Team1Won() {
						So(s.Team1Score, ShouldEqual, 21)
						So(s.Team2Score, ShouldBeBetween, 4, 20)
					} else {
						So(s.Team2Score, ShouldEqual, 21)
						So(s.Team1Score, ShouldBeBetween, 4, 20)
					}
				}
			})

			Convey("And all four participants of a set are distinct", func() {
				for _, s := range season {
					players := s.Players()
					seen := make(map[string]struct{}, 4)
					for _, p := range players {
						seen[p] = struct{}{}
					}
					So(seen, ShouldHaveLength, 4)
				}
			})

			Convey("And every participant carries a tier tag", func() {
				valid := make(map[model.Tier]struct{})
				for _, tier := range model.AllTiers() {
					valid[tier] = struct{}{}
				}
				for _, s := range season {
					for _, tag := range s.TierTags() {
						_, ok := valid[tag]
						So(ok, ShouldBeTrue)
					}
				}
			})

			Convey("And set IDs are unique", func() {
				ids := make(map[string]struct{}, len(season))
				for _, s := range season {
					ids[s.ID] = struct{}{}
				}
				So(ids, ShouldHaveLength, len(season))
			})
		})
	})
}

func TestGeneratorDeterminism(t *testing.T) {
	Convey("Given two generators with the same seed", t, func() {
		cfg := testsets.DefaultConfig()
		a := testsets.New(cfg).Season()
		b := testsets.New(cfg).Season()

		Convey("Then the seasons match except for the random set IDs", func() {
			So(len(a), ShouldEqual, len(b))
			for i := range a {
				So(a[i].Team1Player1, ShouldEqual, b[i].Team1Player1)
				So(a[i].Team2Player2, ShouldEqual, b[i].Team2Player2)
				So(a[i].Team1Score, ShouldEqual, b[i].Team1Score)
				So(a[i].Team2Score, ShouldEqual, b[i].Team2Score)
			}
		})
	})

	Convey("Given two generators with different seeds", t, func() {
		cfg := testsets.DefaultConfig()
		other := cfg
		other.Seed = 7

		a := testsets.New(cfg).Season()
		b := testsets.New(other).Season()

		Convey("Then the seasons diverge somewhere", func() {
			diverged := false
			for i := range a {
				if a[i].Team1Player1 != b[i].Team1Player1 || a[i].Team1Score != b[i].Team1Score {
					diverged = true
					break
				}
			}
			So(diverged, ShouldBeTrue)
		})
	})
}

func TestGeneratorPlayers(t *testing.T) {
	Convey("Given a generator", t, func() {
		cfg := testsets.DefaultConfig()
		cfg.NumPlayers = 16
		g := testsets.New(cfg)

		Convey("When listing players", func() {
			players := g.Players()

			Convey("Then the configured pool size is honored", func() {
				So(players, ShouldHaveLength, 16)
			})
		})

		Convey("When the pool is below the minimum", func() {
			small := cfg
			small.NumPlayers = 2

			Convey("Then the generator clamps to four players", func() {
				So(testsets.New(small).Players(), ShouldHaveLength, 4)
			})
		})
	})
}
