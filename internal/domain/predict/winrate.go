package predict

import (
	"context"

	"github.com/okian/sideout/internal/domain/model"
)

// Neutral win rate assumed for players with no training appearances.
const defaultWinRate = 0.5

// WinRateModel predicts winners from empirical per-player win percentages.
type WinRateModel struct {
	rates map[string]float64
}

func NewWinRateModel() *WinRateModel {
	return &WinRateModel{}
}

func (m *WinRateModel) Name() string { return "Player Win Rate" }

// Fit counts wins and appearances per player over the training sets.
func (m *WinRateModel) Fit(ctx context.Context, train []model.Set) error {
	wins := make(map[string]int)
	total := make(map[string]int)

	for _, s := range train {
		team1Won := s.Team1Won()

		for _, p := range []string{s.Team1Player1, s.Team1Player2} {
			total[p]++
			if team1Won {
				wins[p]++
			}
		}
		for _, p := range []string{s.Team2Player1, s.Team2Player2} {
			total[p]++
			if !team1Won {
				wins[p]++
			}
		}
	}

	m.rates = make(map[string]float64, len(total))
	for p, n := range total {
		m.rates[p] = float64(wins[p]) / float64(n)
	}
	return nil
}

func (m *WinRateModel) rate(id string) float64 {
	if r, ok := m.rates[id]; ok {
		return r
	}
	return defaultWinRate
}

// Predict averages each team's win rates. Ties go to team 1.
func (m *WinRateModel) Predict(s model.Set) Winner {
	t1 := (m.rate(s.Team1Player1) + m.rate(s.Team1Player2)) / 2
	t2 := (m.rate(s.Team2Player1) + m.rate(s.Team2Player2)) / 2
	if t1 >= t2 {
		return Team1
	}
	return Team2
}
