package predict

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/pkg/metrics"
)

// Skill model training defaults.
const (
	DefaultEpochs       = 50
	DefaultLearningRate = 0.01
	DefaultLambda       = 1.0
	defaultSkillSeed    = 42

	// Lower bound keeping the stronger/weaker coefficients positive.
	coefficientFloor = 0.001
)

// SkillOption applies a configuration option to the SkillModel.
type SkillOption func(*SkillModel)

// WithEpochs sets the number of SGD passes over the training data.
func WithEpochs(n int) SkillOption {
	return func(m *SkillModel) {
		if n > 0 {
			m.epochs = n
		}
	}
}

// WithLearningRate sets the SGD step size.
func WithLearningRate(lr float64) SkillOption {
	return func(m *SkillModel) {
		if lr > 0 {
			m.lr = lr
		}
	}
}

// WithLambda sets the L2 regularization strength on player skills.
func WithLambda(l float64) SkillOption {
	return func(m *SkillModel) {
		if l >= 0 {
			m.lambda = l
		}
	}
}

// WithGapTerm enables the partner skill-gap coefficient c in the team
// strength formula.
func WithGapTerm() SkillOption {
	return func(m *SkillModel) {
		m.gapTerm = true
	}
}

// WithRand replaces the RNG driving the per-epoch shuffle. Tests use a
// fixed source for reproducible runs.
func WithRand(r *rand.Rand) SkillOption {
	return func(m *SkillModel) {
		if r != nil {
			m.rng = r
		}
	}
}

// SkillModel fits latent per-player skills by stochastic gradient descent
// on squared score-margin error. Team strength is
//
//	t(i,j) = a*max(s_i,s_j) + b*min(s_i,s_j) + c*|s_i - s_j|
//
// with c fixed at zero unless the gap term is enabled.
type SkillModel struct {
	epochs  int
	lr      float64
	lambda  float64
	gapTerm bool
	rng     *rand.Rand

	a, b, c float64
	skills  map[string]float64

	// EpochLosses holds the train RMSE at the end of each epoch.
	EpochLosses []float64
}

// NewSkillModel builds a skill predictor with default hyperparameters.
func NewSkillModel(opts ...SkillOption) *SkillModel {
	m := &SkillModel{
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

func (m *SkillModel) Name() string {
	if m.gapTerm {
		return "Skill Model (a*max+b*min+c*gap)"
	}
	return "Skill Model (a*max+b*min)"
}

func (m *SkillModel) teamStrength(s1, s2 float64) float64 {
	return m.a*math.Max(s1, s2) + m.b*math.Min(s1, s2) + m.c*math.Abs(s1-s2)
}

// Fit runs SGD over the training sets, shuffling the order every epoch.
func (m *SkillModel) Fit(ctx context.Context, train []model.Set) error {
	if len(train) == 0 {
		return ErrEmptyTraining
	}

	index := buildPlayerIndex(train)
	n := len(train)
	nTrain := float64(n)

	m.a, m.b, m.c = 1.0, 1.0, 0.0
	skills := make([]float64, len(index.ids))
	m.EpochLosses = make([]float64, 0, m.epochs)

	for epoch := 0; epoch < m.epochs; epoch++ {
		totalLoss := 0.0

		for _, idx := range m.rng.Perm(n) {
			s := train[idx]

			i1 := index.of(s.Team1Player1)
			i2 := index.of(s.Team1Player2)
			i3 := index.of(s.Team2Player1)
			i4 := index.of(s.Team2Player2)

			s1p1, s1p2 := skills[i1], skills[i2]
			s2p1, s2p2 := skills[i3], skills[i4]

			t1 := m.teamStrength(s1p1, s1p2)
			t2 := m.teamStrength(s2p1, s2p2)

			err := (t1 - t2) - float64(s.Team1Score-s.Team2Score)
			totalLoss += err * err

			gradA := 2 * err * (math.Max(s1p1, s1p2) - math.Max(s2p1, s2p2))
			gradB := 2 * err * (math.Min(s1p1, s1p2) - math.Min(s2p1, s2p2))

			var g1p1, g1p2, g2p1, g2p2 float64
			if m.gapTerm {
				// Each player contributes a+c on the high side of
				// the pair and b-c on the low side; equal skills
				// count both as high.
				g1p1 = m.sideGradient(s1p1, s1p2)
				g1p2 = m.sideGradient(s1p2, s1p1)
				g2p1 = m.sideGradient(s2p1, s2p2)
				g2p2 = m.sideGradient(s2p2, s2p1)
			} else {
				if s1p1 >= s1p2 {
					g1p1, g1p2 = m.a, m.b
				} else {
					g1p1, g1p2 = m.b, m.a
				}
				if s2p1 >= s2p2 {
					g2p1, g2p2 = m.a, m.b
				} else {
					g2p1, g2p2 = m.b, m.a
				}
			}

			skills[i1] -= m.lr * (2*err*g1p1 + 2*m.lambda*s1p1/nTrain)
			skills[i2] -= m.lr * (2*err*g1p2 + 2*m.lambda*s1p2/nTrain)
			skills[i3] -= m.lr * (2*err*(-g2p1) + 2*m.lambda*s2p1/nTrain)
			skills[i4] -= m.lr * (2*err*(-g2p2) + 2*m.lambda*s2p2/nTrain)

			m.a -= m.lr * gradA
			m.b -= m.lr * gradB
			if m.gapTerm {
				gradC := 2 * err * (math.Abs(s1p1-s1p2) - math.Abs(s2p1-s2p2))
				m.c -= m.lr * gradC
			}

			m.a = math.Max(m.a, coefficientFloor)
			m.b = math.Max(m.b, coefficientFloor)
		}

		rmse := math.Sqrt(totalLoss / nTrain)
		m.EpochLosses = append(m.EpochLosses, rmse)
		metrics.RecordTrainingEpoch(m.Name())
		metrics.UpdateTrainingLoss(m.Name(), rmse)
	}

	m.skills = make(map[string]float64, len(index.ids))
	for id, idx := range index.byID {
		m.skills[id] = skills[idx]
	}
	return nil
}

func (m *SkillModel) sideGradient(own, partner float64) float64 {
	if own >= partner {
		return m.a + m.c
	}
	return m.b - m.c
}

// Predict compares team strengths under the fitted coefficients. Unknown
// players have skill zero. Ties go to team 1.
func (m *SkillModel) Predict(s model.Set) Winner {
	t1 := m.teamStrength(m.skills[s.Team1Player1], m.skills[s.Team1Player2])
	t2 := m.teamStrength(m.skills[s.Team2Player1], m.skills[s.Team2Player2])
	if t1 >= t2 {
		return Team1
	}
	return Team2
}

// Coefficients returns the fitted a, b and c values.
func (m *SkillModel) Coefficients() (a, b, c float64) {
	return m.a, m.b, m.c
}

// Skills exposes the fitted per-player skill map for ranking output.
func (m *SkillModel) Skills() map[string]float64 {
	return m.skills
}

// playerIndex maps player IDs to dense slice positions in sorted ID order.
type playerIndex struct {
	ids  []string
	byID map[string]int
}

func buildPlayerIndex(sets []model.Set) playerIndex {
	seen := make(map[string]struct{})
	for _, s := range sets {
		for _, p := range s.Players() {
			seen[p] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for p := range seen {
		ids = append(ids, p)
	}
	sort.Strings(ids)

	byID := make(map[string]int, len(ids))
	for i, p := range ids {
		byID[p] = i
	}
	return playerIndex{ids: ids, byID: byID}
}

func (pi playerIndex) of(id string) int {
	return pi.byID[id]
}
