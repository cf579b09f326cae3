package predict

import (
	"context"

	"github.com/okian/sideout/internal/domain/model"
)

// MarginModel predicts winners from per-player average point differentials.
// Winning team members bank the positive margin, losers the negative.
type MarginModel struct {
	margins map[string]float64
}

func NewMarginModel() *MarginModel {
	return &MarginModel{}
}

func (m *MarginModel) Name() string { return "Score Margin" }

// Fit accumulates signed score margins per player over the training sets.
func (m *MarginModel) Fit(ctx context.Context, train []model.Set) error {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, s := range train {
		diff := float64(s.Team1Score - s.Team2Score)

		for _, p := range []string{s.Team1Player1, s.Team1Player2} {
			sums[p] += diff
			counts[p]++
		}
		for _, p := range []string{s.Team2Player1, s.Team2Player2} {
			sums[p] -= diff
			counts[p]++
		}
	}

	m.margins = make(map[string]float64, len(counts))
	for p, n := range counts {
		m.margins[p] = sums[p] / float64(n)
	}
	return nil
}

func (m *MarginModel) margin(id string) float64 {
	return m.margins[id] // zero value doubles as the unknown-player default
}

// Predict sums each team's average margins; unlike win rate this is a sum,
// not a mean, matching the original formulation. Ties go to team 1.
func (m *MarginModel) Predict(s model.Set) Winner {
	t1 := m.margin(s.Team1Player1) + m.margin(s.Team1Player2)
	t2 := m.margin(s.Team2Player1) + m.margin(s.Team2Player2)
	if t1 >= t2 {
		return Team1
	}
	return Team2
}
