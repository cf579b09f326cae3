package predict

import (
	"context"

	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/internal/domain/rating"
)

// EloModel predicts winners by replaying the training sets through the
// standard rating engine and comparing team rating means at predict time.
type EloModel struct {
	engine  *rating.Engine
	ratings rating.Map
}

// NewEloModel builds an ELO predictor. Engine options apply to the replay
// used for training.
func NewEloModel(opts ...rating.Option) *EloModel {
	return &EloModel{engine: rating.New(opts...)}
}

func (m *EloModel) Name() string { return "ELO-Based" }

// Fit replays the training sets chronologically, one rating pass.
func (m *EloModel) Fit(ctx context.Context, train []model.Set) error {
	ratings, _, err := m.engine.Replay(ctx, nil, train)
	if err != nil {
		return err
	}
	m.ratings = ratings
	return nil
}

// Predict compares team rating means. Unknown players fall back to the
// default rating. Ties go to team 1.
func (m *EloModel) Predict(s model.Set) Winner {
	t1 := (m.ratings.Get(s.Team1Player1) + m.ratings.Get(s.Team1Player2)) / 2
	t2 := (m.ratings.Get(s.Team2Player1) + m.ratings.Get(s.Team2Player2)) / 2
	if t1 >= t2 {
		return Team1
	}
	return Team2
}

// Ratings exposes the trained rating map for ranking output.
func (m *EloModel) Ratings() rating.Map {
	return m.ratings
}
