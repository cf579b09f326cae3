// Package predict implements five set-winner prediction models trained on a
// historical split of the season and a shared evaluator that compares them
// on the held-out sets.
package predict

import (
	"context"

	"github.com/okian/sideout/internal/domain/model"
)

// Winner identifies the predicted or actual winning side of a set.
type Winner int

const (
	Team1 Winner = 1
	Team2 Winner = 2
)

// Model is a trainable set-winner predictor. Fit consumes the training sets
// once; Predict must be safe to call repeatedly afterwards.
type Model interface {
	Name() string
	Fit(ctx context.Context, train []model.Set) error
	Predict(s model.Set) Winner
}

// actualWinner derives the ground-truth side from the raw scores.
func actualWinner(s model.Set) Winner {
	if s.Team1Score > s.Team2Score {
		return Team1
	}
	return Team2
}
