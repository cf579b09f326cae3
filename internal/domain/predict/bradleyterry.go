package predict

import (
	"context"
	"math"
	"math/rand"

	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/pkg/metrics"
)

// Clamp on the strength difference before the sigmoid, preventing exp
// overflow. The epsilon guards the cross-entropy logs.
const (
	btDiffClamp = 20.0
	btEps       = 1e-10
)

// BTOption applies a configuration option to the BradleyTerryModel.
type BTOption func(*BradleyTerryModel)

// WithBTEpochs sets the number of SGD passes over the training data.
func WithBTEpochs(n int) BTOption {
	return func(m *BradleyTerryModel) {
		if n > 0 {
			m.epochs = n
		}
	}
}

// WithBTLearningRate sets the SGD step size.
func WithBTLearningRate(lr float64) BTOption {
	return func(m *BradleyTerryModel) {
		if lr > 0 {
			m.lr = lr
		}
	}
}

// WithBTLambda sets the L2 regularization strength on player strengths.
func WithBTLambda(l float64) BTOption {
	return func(m *BradleyTerryModel) {
		if l >= 0 {
			m.lambda = l
		}
	}
}

// WithBTRand replaces the RNG driving the per-epoch shuffle.
func WithBTRand(r *rand.Rand) BTOption {
	return func(m *BradleyTerryModel) {
		if r != nil {
			m.rng = r
		}
	}
}

// BradleyTerryModel fits latent per-player strengths by logistic SGD.
// A team's strength is the sum of its players' strengths and
// P(team1 wins) = sigmoid(t1 - t2); training minimizes cross-entropy.
type BradleyTerryModel struct {
	epochs int
	lr     float64
	lambda float64
	rng    *rand.Rand

	strengths map[string]float64

	// EpochLosses holds the mean cross-entropy at the end of each epoch.
	EpochLosses []float64
}

// NewBradleyTerryModel builds a Bradley-Terry predictor with default
// hyperparameters.
func NewBradleyTerryModel(opts ...BTOption) *BradleyTerryModel {
	m := &BradleyTerryModel{
		epochs: DefaultEpochs,
		lr:     DefaultLearningRate,
		lambda: DefaultLambda,
		rng:    rand.New(rand.NewSource(defaultSkillSeed)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *BradleyTerryModel) Name() string { return "Bradley-Terry (Logistic)" }

// Fit runs logistic SGD over the training sets, shuffling every epoch.
func (m *BradleyTerryModel) Fit(ctx context.Context, train []model.Set) error {
	if len(train) == 0 {
		return ErrEmptyTraining
	}

	index := buildPlayerIndex(train)
	n := len(train)
	nTrain := float64(n)

	strengths := make([]float64, len(index.ids))
	m.EpochLosses = make([]float64, 0, m.epochs)

	for epoch := 0; epoch < m.epochs; epoch++ {
		totalLoss := 0.0

		for _, idx := range m.rng.Perm(n) {
			s := train[idx]

			i1 := index.of(s.Team1Player1)
			i2 := index.of(s.Team1Player2)
			i3 := index.of(s.Team2Player1)
			i4 := index.of(s.Team2Player2)

			diff := (strengths[i1] + strengths[i2]) - (strengths[i3] + strengths[i4])
			diff = math.Max(-btDiffClamp, math.Min(btDiffClamp, diff))
			prob := 1.0 / (1.0 + math.Exp(-diff))

			y := 0.0
			if s.Team1Won() {
				y = 1.0
			}

			totalLoss += -(y*math.Log(prob+btEps) + (1-y)*math.Log(1-prob+btEps))

			grad := prob - y

			strengths[i1] -= m.lr * (grad + 2*m.lambda*strengths[i1]/nTrain)
			strengths[i2] -= m.lr * (grad + 2*m.lambda*strengths[i2]/nTrain)
			strengths[i3] -= m.lr * (-grad + 2*m.lambda*strengths[i3]/nTrain)
			strengths[i4] -= m.lr * (-grad + 2*m.lambda*strengths[i4]/nTrain)
		}

		avgLoss := totalLoss / nTrain
		m.EpochLosses = append(m.EpochLosses, avgLoss)
		metrics.RecordTrainingEpoch(m.Name())
		metrics.UpdateTrainingLoss(m.Name(), avgLoss)
	}

	m.strengths = make(map[string]float64, len(index.ids))
	for id, idx := range index.byID {
		m.strengths[id] = strengths[idx]
	}
	return nil
}

// Predict compares additive team strengths. Unknown players have strength
// zero. Ties go to team 1.
func (m *BradleyTerryModel) Predict(s model.Set) Winner {
	t1 := m.strengths[s.Team1Player1] + m.strengths[s.Team1Player2]
	t2 := m.strengths[s.Team2Player1] + m.strengths[s.Team2Player2]
	if t1 >= t2 {
		return Team1
	}
	return Team2
}

// Strengths exposes the fitted per-player strength map for ranking output.
func (m *BradleyTerryModel) Strengths() map[string]float64 {
	return m.strengths
}
