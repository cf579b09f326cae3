// Command gen-sets generates a synthetic season of beach volleyball sets
// for local development: either as JSON on stdout/file or straight into a
// PostgreSQL instance.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/okian/sideout/internal/adapters/postgres"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/internal/testsets"
)

const defaultGenTimeout = 5 * time.Minute

func main() {
	var (
		numPlayers   = flag.Int("players", 0, "Number of players in the pool (default: generator default)")
		setsPerMonth = flag.Int("sets-per-month", 0, "Number of sets per month (default: generator default)")
		year         = flag.Int("year", 0, "Season year (default: generator default)")
		seed         = flag.Int64("seed", 0, "RNG seed (default: generator default)")
		outputFile   = flag.String("output", "", "Output file for the generated sets (default: stdout)")
		databaseURL  = flag.String("db", "", "PostgreSQL DSN; when set, insert the sets instead of printing them")
	)
	flag.Parse()

	cfg := testsets.DefaultConfig()
	if *numPlayers > 0 {
		cfg.NumPlayers = *numPlayers
	}
	if *setsPerMonth > 0 {
		cfg.SetsPerMonth = *setsPerMonth
	}
	if *year > 0 {
		cfg.Year = *year
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	season := testsets.New(cfg).Season()

	ctx, cancel := context.WithTimeout(context.Background(), defaultGenTimeout)
	defer cancel()

	if *databaseURL != "" {
		if err := insertSeason(ctx, *databaseURL, season); err != nil {
			os.Stderr.WriteString("failed to insert sets: " + err.Error() + "\n")
			os.Exit(1)
		}
		return
	}

	out := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			os.Stderr.WriteString("failed to create output file: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(season); err != nil {
		os.Stderr.WriteString("failed to encode sets: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func insertSeason(ctx context.Context, dsn string, season []model.Set) error {
	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	for _, s := range season {
		if err := db.InsertSet(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
