// Package service orchestrates the rating pipelines: the full ELO
// recompute, the tier-segmented recompute and the model comparison.
package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	repository "github.com/okian/sideout/internal/adapters/repository"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/internal/domain/predict"
	"github.com/okian/sideout/internal/domain/rating"
	"github.com/okian/sideout/internal/domain/split"
	"github.com/okian/sideout/pkg/logger"
	"github.com/okian/sideout/pkg/metrics"
)

// SetSource supplies the chronological set stream.
type SetSource interface {
	SetsChronological(ctx context.Context) ([]model.Set, error)
}

// ResultSink persists recompute output. The sink is optional; without one
// results live only in the standings store.
type ResultSink interface {
	UpdatePlayerRating(ctx context.Context, playerID string, rating float64, games int) error
	InsertRatingHistory(ctx context.Context, entries []model.HistoryEntry) error
	UpsertTierRating(ctx context.Context, tier model.Tier, playerID string, rating float64, games int) error
	ClearTierRatings(ctx context.Context) error
}

// RecomputeResult is the outcome of a full historical replay.
type RecomputeResult struct {
	Ratings rating.Map
	History []model.HistoryEntry
	Games   map[string]int
	Sets    int
}

// Service implements the rating pipelines over a set source.
type Service struct {
	mu sync.Mutex

	// Core components
	source    SetSource
	sink      ResultSink
	standings repository.Store

	// Configuration
	kFactor       float64
	defaultRating float64
	tiers         []model.Tier
	testPeriod    split.Period
	epochs        int
	learningRate  float64
	lambda        float64
	gapTerm       bool
	seed          int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the chronological set source.
func WithSource(src SetSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithSink sets the persistence sink for recompute output.
func WithSink(sink ResultSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithStandings replaces the in-memory standings store.
func WithStandings(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.standings = store
		}
	}
}

// WithKFactor sets the ELO K-factor.
func WithKFactor(k float64) Option {
	return func(s *Service) {
		if k > 0 {
			s.kFactor = k
		}
	}
}

// WithDefaultRating sets the starting rating for unseen players.
func WithDefaultRating(r float64) Option {
	return func(s *Service) {
		if r > 0 {
			s.defaultRating = r
		}
	}
}

// WithTiers sets the tier segments for the segmented recompute.
func WithTiers(tiers []model.Tier) Option {
	return func(s *Service) {
		if len(tiers) > 0 {
			s.tiers = tiers
		}
	}
}

// WithTestPeriod sets the holdout period for the model comparison.
func WithTestPeriod(p split.Period) Option {
	return func(s *Service) {
		if p.Year != 0 && len(p.Months) > 0 {
			s.testPeriod = p
		}
	}
}

// WithTrainingParams sets the SGD hyperparameters shared by the trained models.
func WithTrainingParams(epochs int, lr, lambda float64) Option {
	return func(s *Service) {
		if epochs > 0 {
			s.epochs = epochs
		}
		if lr > 0 {
			s.learningRate = lr
		}
		if lambda >= 0 {
			s.lambda = lambda
		}
	}
}

// WithGapTerm enables the partner skill-gap coefficient in the skill model.
func WithGapTerm(enabled bool) Option {
	return func(s *Service) {
		s.gapTerm = enabled
	}
}

// WithSeed sets the RNG seed for training shuffles.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		standings:     repository.NewTreapStore(),
		kFactor:       rating.DefaultKFactor,
		defaultRating: rating.DefaultRating,
		tiers:         model.AllTiers(),
		testPeriod:    split.DefaultTestPeriod,
		epochs:        predict.DefaultEpochs,
		learningRate:  predict.DefaultLearningRate,
		lambda:        predict.DefaultLambda,
		seed:          42,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s.logger
}

// Recompute replays the full historical stream, refreshes the standings
// store and persists ratings plus history through the sink when present.
func (s *Service) Recompute(ctx context.Context) (*RecomputeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	sets, err := s.source.SetsChronological(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "load_sets")
		return nil, err
	}

	s.log().Info(ctx, "starting full recompute", logger.Int("sets", len(sets)))

	engine := rating.New(
		rating.WithKFactor(s.kFactor),
		rating.WithDefaultRating(s.defaultRating),
		rating.WithHistory(),
	)

	ratings, history, err := engine.Replay(ctx, nil, sets)
	if err != nil {
		metrics.RecordErrorByComponent("service", "replay")
		return nil, err
	}

	games := make(map[string]int)
	for _, set := range sets {
		for _, p := range set.Players() {
			games[p]++
		}
	}

	for id, r := range ratings {
		if err := s.standings.SetRating(ctx, id, r, games[id]); err != nil {
			return nil, err
		}
	}
	metrics.UpdateTotalPlayers(len(ratings))

	if s.sink != nil {
		for id, r := range ratings {
			if err := s.sink.UpdatePlayerRating(ctx, id, r, games[id]); err != nil {
				metrics.RecordErrorByComponent("service", "persist_rating")
				return nil, err
			}
		}
		if err := s.sink.InsertRatingHistory(ctx, history); err != nil {
			metrics.RecordErrorByComponent("service", "persist_history")
			return nil, err
		}
	}

	elapsed := float64(time.Since(start).Milliseconds())
	metrics.RecordReplayDuration(elapsed)

	s.log().Info(ctx, "full recompute finished",
		logger.Int("players", len(ratings)),
		logger.Int("historyEntries", len(history)),
		logger.Float64("durationMs", elapsed),
	)

	return &RecomputeResult{
		Ratings: ratings,
		History: history,
		Games:   games,
		Sets:    len(sets),
	}, nil
}

// RecomputeTiers runs an independent replay per tier segment and persists
// each segment through the sink when present.
func (s *Service) RecomputeTiers(ctx context.Context) ([]rating.TierResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, err := s.source.SetsChronological(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "load_sets")
		return nil, err
	}

	s.log().Info(ctx, "starting tier-segmented recompute",
		logger.Int("sets", len(sets)),
		logger.Int("tiers", len(s.tiers)),
	)

	engine := rating.New(
		rating.WithKFactor(s.kFactor),
		rating.WithDefaultRating(s.defaultRating),
	)

	results, err := engine.ReplayTiers(ctx, sets, s.tiers)
	if err != nil {
		metrics.RecordErrorByComponent("service", "tier_replay")
		return nil, err
	}

	if s.sink != nil {
		if err := s.sink.ClearTierRatings(ctx); err != nil {
			metrics.RecordErrorByComponent("service", "clear_tiers")
			return nil, err
		}
		for _, res := range results {
			for id, r := range res.Ratings {
				if err := s.sink.UpsertTierRating(ctx, res.Tier, id, r, res.GamesPlayed[id]); err != nil {
					metrics.RecordErrorByComponent("service", "persist_tier")
					return nil, err
				}
			}
		}
	}

	for _, res := range results {
		s.log().Info(ctx, "tier recompute finished",
			logger.String("tier", string(res.Tier)),
			logger.Int("sets", res.Sets),
			logger.Int("players", len(res.Ratings)),
		)
	}

	return results, nil
}

// CompareModels trains all five predictors on the training split and
// evaluates them on the holdout, best accuracy first.
func (s *Service) CompareModels(ctx context.Context) ([]predict.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets, err := s.source.SetsChronological(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "load_sets")
		return nil, err
	}

	train, holdout := split.TrainTest(sets, s.testPeriod)
	trainingPlayers := predict.TrainingPlayers(train)

	s.log().Info(ctx, "starting model comparison",
		logger.Int("trainSets", len(train)),
		logger.Int("holdoutSets", len(holdout)),
		logger.Int("trainingPlayers", len(trainingPlayers)),
	)

	models := []predict.Model{
		predict.NewSkillModel(
			predict.WithEpochs(s.epochs),
			predict.WithLearningRate(s.learningRate),
			predict.WithLambda(s.lambda),
			predict.WithRand(rand.New(rand.NewSource(s.seed))),
			s.skillGapOption(),
		),
		predict.NewEloModel(
			rating.WithKFactor(s.kFactor),
			rating.WithDefaultRating(s.defaultRating),
		),
		predict.NewBradleyTerryModel(
			predict.WithBTEpochs(s.epochs),
			predict.WithBTLearningRate(s.learningRate),
			predict.WithBTLambda(s.lambda),
			predict.WithBTRand(rand.New(rand.NewSource(s.seed))),
		),
		predict.NewWinRateModel(),
		predict.NewMarginModel(),
	}

	results := make([]predict.Result, 0, len(models))
	for _, m := range models {
		if err := m.Fit(ctx, train); err != nil {
			metrics.RecordErrorByComponent("service", "fit")
			return nil, err
		}
		s.logTrainingLosses(ctx, m)

		res := predict.Evaluate(m, holdout, trainingPlayers)
		s.log().Info(ctx, "model evaluated",
			logger.String("model", res.Name),
			logger.Float64("accuracy", res.Accuracy),
			logger.Int("evaluated", res.Evaluated),
			logger.Int("excluded", res.Excluded),
		)
		results = append(results, res)
	}

	predict.SortResults(results)
	return results, nil
}

// skillGapOption turns the configured gap-term flag into a model option.
func (s *Service) skillGapOption() predict.SkillOption {
	if s.gapTerm {
		return predict.WithGapTerm()
	}
	return func(*predict.SkillModel) {}
}

// logTrainingLosses reports every tenth epoch plus the final one, matching
// the cadence training has always been monitored at.
func (s *Service) logTrainingLosses(ctx context.Context, m predict.Model) {
	var losses []float64
	switch t := m.(type) {
	case *predict.SkillModel:
		losses = t.EpochLosses
	case *predict.BradleyTerryModel:
		losses = t.EpochLosses
	default:
		return
	}

	for i, loss := range losses {
		if i%10 == 0 || i == len(losses)-1 {
			s.log().Debug(ctx, "training epoch",
				logger.String("model", m.Name()),
				logger.Int("epoch", i+1),
				logger.Float64("loss", loss),
			)
		}
	}
}

// TopN returns the top N standings entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.standings.TopN(ctx, n)
}

// Rank returns the rank entry for a single player.
func (s *Service) Rank(ctx context.Context, playerID string) (repository.Entry, error) {
	return s.standings.Rank(ctx, playerID)
}

// Count returns the number of rated players in the standings.
func (s *Service) Count(ctx context.Context) int {
	return s.standings.Count(ctx)
}
