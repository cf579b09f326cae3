package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/okian/sideout/internal/adapters/postgres"
	repository "github.com/okian/sideout/internal/adapters/repository"
	service "github.com/okian/sideout/internal/app"
	"github.com/okian/sideout/internal/config"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/internal/domain/split"
	"github.com/okian/sideout/internal/testsets"
	"github.com/okian/sideout/pkg/logger"
)

// Pipeline modes selectable via -mode.
const (
	modeElo     = "elo"
	modeTiers   = "tiers"
	modeCompare = "compare"
)

// Qualified tier leaderboards: top 10 with at least 5 appearances.
const (
	tierLeaderboardSize = 10
	tierMinGames        = 5
)

// generatedSource serves a synthetic season when no database is configured.
type generatedSource struct {
	sets []model.Set
}

func (g *generatedSource) SetsChronological(_ context.Context) ([]model.Set, error) {
	return g.sets, nil
}

func main() {
	mode := flag.String("mode", modeElo, "Pipeline to run: elo, tiers or compare")
	flag.Parse()

	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logging: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts := []service.Option{
		service.WithLogger(loggerInstance),
		service.WithStandings(repository.NewTreapStore(repository.WithCapacityHint(cfg.StandingsCapacity))),
		service.WithKFactor(cfg.KFactor),
		service.WithDefaultRating(cfg.DefaultRating),
		service.WithTestPeriod(split.NewPeriod(cfg.TestMonths, cfg.TestYear)),
		service.WithTrainingParams(cfg.Epochs, cfg.LearningRate, cfg.Lambda),
		service.WithGapTerm(cfg.GapTerm),
		service.WithSeed(cfg.Seed),
	}

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			loggerInstance.Error(ctx, "failed to open database", logger.Error(err))
			return
		}
		defer db.Close(ctx)

		if err := postgres.Migrate(ctx, db); err != nil {
			loggerInstance.Error(ctx, "failed to migrate database", logger.Error(err))
			return
		}

		opts = append(opts, service.WithSource(db), service.WithSink(db))
	} else {
		loggerInstance.Info(ctx, "no database configured; using a generated season")
		gen := testsets.DefaultConfig()
		gen.Seed = cfg.Seed
		opts = append(opts, service.WithSource(&generatedSource{sets: testsets.New(gen).Season()}))
	}

	svc := service.New(opts...)

	switch *mode {
	case modeElo:
		err = runRecompute(ctx, svc, cfg.TopN)
	case modeTiers:
		err = runTiers(ctx, svc)
	case modeCompare:
		err = runCompare(ctx, svc)
	default:
		os.Stderr.WriteString("unknown mode: " + *mode + "\n")
		flag.Usage()
		return
	}
	if err != nil {
		loggerInstance.Error(ctx, "pipeline failed", logger.String("mode", *mode), logger.Error(err))
	}
}

// runRecompute replays the full history and prints the top of the standings.
func runRecompute(ctx context.Context, svc *service.Service, topN int) error {
	result, err := svc.Recompute(ctx)
	if err != nil {
		return err
	}

	top, err := svc.TopN(ctx, topN)
	if err != nil {
		return err
	}

	fmt.Printf("Processed %d sets covering %d players\n\n", result.Sets, len(result.Ratings))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPLAYER\tRATING\tGAMES")
	for _, e := range top {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%d\n", e.Rank, e.PlayerID, e.Rating, e.Games)
	}
	return w.Flush()
}

// runTiers replays each tier independently and prints a table per segment.
func runTiers(ctx context.Context, svc *service.Service) error {
	results, err := svc.RecomputeTiers(ctx)
	if err != nil {
		return err
	}

	for _, res := range results {
		fmt.Printf("\nTier %s (%d sets, %d players)\n", res.Tier, res.Sets, len(res.Ratings))

		top := res.TopQualified(tierLeaderboardSize, tierMinGames)
		if len(top) == 0 {
			fmt.Printf("no player with %d or more sets\n", tierMinGames)
			continue
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PLAYER\tRATING\tGAMES")
		for _, p := range top {
			fmt.Fprintf(w, "%s\t%.1f\t%d\n", p.PlayerID, p.Rating, p.Games)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// runCompare trains the predictors and prints the accuracy table.
func runCompare(ctx context.Context, svc *service.Service) error {
	results, err := svc.CompareModels(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tACCURACY\tEVALUATED\tEXCLUDED")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%.1f%%\t%d\t%d\n", r.Name, r.Accuracy*100, r.Evaluated, r.Excluded)
	}
	return w.Flush()
}
