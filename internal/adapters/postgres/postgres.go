// Package postgres persists sets, ratings and rating history in PostgreSQL.
package postgres

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/pkg/metrics"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

/* -----------------------------
   Set stream reads
------------------------------*/

// SetsChronological returns every recorded set in play order: tournament
// year, then month, then insertion sequence inside the tournament.
func (db *DB) SetsChronological(ctx context.Context) ([]model.Set, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := db.Query(ctx, `
		SELECT id,
		       team1_player1, team1_player2, team2_player1, team2_player2,
		       team1_score, team2_score,
		       month, year,
		       team1_player1_tier, team1_player2_tier,
		       team2_player1_tier, team2_player2_tier
		  FROM sets
		 ORDER BY year, month, seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []model.Set
	for rows.Next() {
		var s model.Set
		if err := rows.Scan(
			&s.ID,
			&s.Team1Player1, &s.Team1Player2, &s.Team2Player1, &s.Team2Player2,
			&s.Team1Score, &s.Team2Score,
			&s.Month, &s.Year,
			&s.Team1Player1Tier, &s.Team1Player2Tier,
			&s.Team2Player1Tier, &s.Team2Player2Tier,
		); err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

// InsertSet records one set. The sequence column orders sets inside a
// tournament month, so callers insert in play order.
func (db *DB) InsertSet(ctx context.Context, s model.Set) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	_, err := db.Exec(ctx, `
		INSERT INTO sets(
			id,
			team1_player1, team1_player2, team2_player1, team2_player2,
			team1_score, team2_score,
			month, year,
			team1_player1_tier, team1_player2_tier,
			team2_player1_tier, team2_player2_tier
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO NOTHING
	`, s.ID,
		s.Team1Player1, s.Team1Player2, s.Team2Player1, s.Team2Player2,
		s.Team1Score, s.Team2Score,
		s.Month, s.Year,
		s.Team1Player1Tier, s.Team1Player2Tier,
		s.Team2Player1Tier, s.Team2Player2Tier,
	)
	return err
}

/* -----------------------------
   Rating writes
------------------------------*/

// UpdatePlayerRating upserts the player's current rating and games count.
func (db *DB) UpdatePlayerRating(ctx context.Context, playerID string, rating float64, games int) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	_, err := db.Exec(ctx, `
		INSERT INTO player_ratings(player_id, rating, games)
		VALUES ($1,$2,$3)
		ON CONFLICT (player_id) DO UPDATE
		  SET rating = EXCLUDED.rating,
		      games = EXCLUDED.games,
		      updated_at = now()
	`, playerID, rating, games)
	return err
}

// InsertRatingHistory writes the per-set before/after trail in one batch.
func (db *DB) InsertRatingHistory(ctx context.Context, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO rating_history(player_id, set_id, rating_before, rating_after)
			VALUES ($1,$2,$3,$4)
		`, e.PlayerID, e.SetID, e.Before, e.After)
	}

	br := db.SendBatch(ctx, batch)
	defer br.Close()

	for range entries {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertTierRating writes one player's rating inside a tier segment.
func (db *DB) UpsertTierRating(ctx context.Context, tier model.Tier, playerID string, rating float64, games int) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	_, err := db.Exec(ctx, `
		INSERT INTO tier_ratings(tier, player_id, rating, games)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (tier, player_id) DO UPDATE
		  SET rating = EXCLUDED.rating,
		      games = EXCLUDED.games,
		      updated_at = now()
	`, string(tier), playerID, rating, games)
	return err
}

// ClearTierRatings wipes all tier segments before a fresh recompute.
func (db *DB) ClearTierRatings(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	_, err := db.Exec(ctx, `DELETE FROM tier_ratings`)
	return err
}

/* -----------------------------
   Player reads
------------------------------*/

// ListPlayerNames maps player IDs to display names.
func (db *DB) ListPlayerNames(ctx context.Context) (map[string]string, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := db.Query(ctx, `SELECT id, name FROM players`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// PlayerRating fetches one player's stored rating. A missing row is not an
// error; the bool reports presence.
func (db *DB) PlayerRating(ctx context.Context, playerID string) (float64, bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var rating float64
	err := db.QueryRow(ctx, `
		SELECT rating FROM player_ratings WHERE player_id = $1
	`, playerID).Scan(&rating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return rating, true, nil
}
