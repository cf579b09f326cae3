package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/sideout/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryTracker(t *testing.T) {
	Convey("Given a new InMemoryTracker", t, func() {
		Convey("When creating a tracker with default options", func() {
			tr := dedupe.NewInMemoryTracker()

			Convey("Then it should start empty", func() {
				So(tr, ShouldNotBeNil)
				So(tr.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording set IDs", func() {
			tr := dedupe.NewInMemoryTracker()

			Convey("And the set is new", func() {
				seen := tr.SeenAndRecord(context.Background(), "set-1")

				Convey("Then it should return false and record the set", func() {
					So(seen, ShouldBeFalse)
					So(tr.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the set was already processed", func() {
				tr.SeenAndRecord(context.Background(), "set-1")
				seen := tr.SeenAndRecord(context.Background(), "set-1")

				Convey("Then it should return true without growing", func() {
					So(seen, ShouldBeTrue)
					So(tr.Size(), ShouldEqual, 1)
				})
			})

			Convey("And multiple sets are recorded", func() {
				ids := []string{"set-1", "set-2", "set-3", "set-4", "set-5"}
				for _, id := range ids {
					So(tr.SeenAndRecord(context.Background(), id), ShouldBeFalse)
				}

				Convey("Then all of them should be seen afterwards", func() {
					So(tr.Size(), ShouldEqual, int64(len(ids)))
					for _, id := range ids {
						So(tr.SeenAndRecord(context.Background(), id), ShouldBeTrue)
					}
				})
			})
		})

		Convey("When unrecording a set ID", func() {
			tr := dedupe.NewInMemoryTracker()
			tr.SeenAndRecord(context.Background(), "set-1")
			tr.Unrecord(context.Background(), "set-1")

			Convey("Then it can be recorded again", func() {
				So(tr.Size(), ShouldEqual, 0)
				So(tr.SeenAndRecord(context.Background(), "set-1"), ShouldBeFalse)
			})

			Convey("And unrecording an unknown ID is a no-op", func() {
				tr.Unrecord(context.Background(), "nonexistent")
				So(tr.Size(), ShouldEqual, 1)
			})
		})

		Convey("When using bounded mode", func() {
			tr := dedupe.NewInMemoryTracker(dedupe.WithMaxSize(3))

			Convey("And the tracker is at capacity", func() {
				for _, id := range []string{"set-1", "set-2", "set-3"} {
					So(tr.SeenAndRecord(context.Background(), id), ShouldBeFalse)
				}
				So(tr.Size(), ShouldEqual, 3)

				seen := tr.SeenAndRecord(context.Background(), "set-4")

				Convey("Then the oldest ID is evicted to make room", func() {
					So(seen, ShouldBeFalse)
					So(tr.Size(), ShouldEqual, 3)

					// set-1 was evicted, so it reads as unseen again.
					So(tr.SeenAndRecord(context.Background(), "set-1"), ShouldBeFalse)
					So(tr.Size(), ShouldEqual, 3)
				})
			})
		})

		Convey("When using unbounded mode", func() {
			tr := dedupe.NewInMemoryTracker(dedupe.WithMaxSize(0))

			const numSets = 1000
			for i := 0; i < numSets; i++ {
				So(tr.SeenAndRecord(context.Background(), fmt.Sprintf("set-%d", i)), ShouldBeFalse)
			}

			Convey("Then nothing is ever evicted", func() {
				So(tr.Size(), ShouldEqual, int64(numSets))
				for i := 0; i < numSets; i++ {
					So(tr.SeenAndRecord(context.Background(), fmt.Sprintf("set-%d", i)), ShouldBeTrue)
				}
			})
		})
	})
}

func TestTrackerConcurrency(t *testing.T) {
	Convey("Given a tracker with concurrent access", t, func() {
		tr := dedupe.NewInMemoryTracker()
		const numGoroutines = 10
		const setsPerGoroutine = 100

		Convey("When multiple goroutines record IDs concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for j := 0; j < setsPerGoroutine; j++ {
						tr.SeenAndRecord(context.Background(), fmt.Sprintf("set-%d-%d", g, j))
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every distinct ID is recorded exactly once", func() {
				So(tr.Size(), ShouldEqual, int64(numGoroutines*setsPerGoroutine))
			})
		})
	})
}
