// Package split partitions a chronological set stream into train and test
// subsets by calendar period.
package split

import "github.com/okian/sideout/internal/domain/model"

// Default holdout period. October and November of the 2025 season are held
// out for evaluation; everything else trains.
var DefaultTestPeriod = Period{
	Months: map[int]struct{}{10: {}, 11: {}},
	Year:   2025,
}

// Period selects sets whose month is in Months and whose year equals Year.
type Period struct {
	Months map[int]struct{}
	Year   int
}

// NewPeriod builds a Period from a month list and a year.
func NewPeriod(months []int, year int) Period {
	p := Period{Months: make(map[int]struct{}, len(months)), Year: year}
	for _, m := range months {
		p.Months[m] = struct{}{}
	}
	return p
}

// Contains reports whether the set falls inside the period.
func (p Period) Contains(s model.Set) bool {
	if s.Year != p.Year {
		return false
	}
	_, ok := p.Months[s.Month]
	return ok
}

// TrainTest partitions sets into a training slice and a test slice. Relative
// order is preserved in both outputs and every input set lands in exactly
// one of them.
func TrainTest(sets []model.Set, test Period) (train, holdout []model.Set) {
	for _, s := range sets {
		if test.Contains(s) {
			holdout = append(holdout, s)
		} else {
			train = append(train, s)
		}
	}
	return train, holdout
}
