package predict

import (
	"sort"

	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/pkg/metrics"
)

// Result summarizes one model's performance on the held-out sets.
type Result struct {
	Name      string
	Accuracy  float64
	Evaluated int
	Excluded  int
	Correct   int
	Incorrect int
}

// TrainingPlayers collects every player ID appearing in the training sets.
func TrainingPlayers(train []model.Set) map[string]struct{} {
	players := make(map[string]struct{})
	for _, s := range train {
		for _, p := range s.Players() {
			players[p] = struct{}{}
		}
	}
	return players
}

// Evaluate scores a fitted model against the held-out sets. A set with any
// participant absent from the training players is excluded rather than
// counted wrong; accuracy is zero when nothing was evaluated.
func Evaluate(m Model, holdout []model.Set, trainingPlayers map[string]struct{}) Result {
	res := Result{Name: m.Name()}

	for _, s := range holdout {
		if !allKnown(s, trainingPlayers) {
			res.Excluded++
			continue
		}

		if m.Predict(s) == actualWinner(s) {
			res.Correct++
		} else {
			res.Incorrect++
		}
	}

	res.Evaluated = res.Correct + res.Incorrect
	if res.Evaluated > 0 {
		res.Accuracy = float64(res.Correct) / float64(res.Evaluated)
	}

	metrics.UpdateModelAccuracy(res.Name, res.Accuracy)
	metrics.UpdateModelEvaluated(res.Name, res.Evaluated, res.Excluded)

	return res
}

func allKnown(s model.Set, players map[string]struct{}) bool {
	for _, p := range s.Players() {
		if _, ok := players[p]; !ok {
			return false
		}
	}
	return true
}

// SortResults orders results by accuracy, best first. Sorting is stable so
// models tied on accuracy keep their registration order.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Accuracy > results[j].Accuracy
	})
}
