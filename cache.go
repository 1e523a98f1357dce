package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var clog zerolog.Logger

const cacheSchema = `
CREATE TABLE IF NOT EXISTS results (
	labels      TEXT    NOT NULL,
	extend_to   INTEGER NOT NULL,
	rounds      INTEGER NOT NULL,
	label_order TEXT    NOT NULL DEFAULT '',
	first_star  INTEGER NOT NULL DEFAULT 0,
	second_star INTEGER NOT NULL DEFAULT 0,
	product     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (labels, extend_to, rounds)
);`

// ResultCache remembers checkpoints so a long game with a known starting
// arrangement is only ever played once. A nil *ResultCache plays every game.
type ResultCache struct {
	db *sql.DB
}

// OpenResultCache opens (creating if needed) the cache database at path.
// ":memory:" keeps it in memory.
func OpenResultCache(path string) (*ResultCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection so an in-memory database is shared by every query.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &ResultCache{db: db}, nil
}

// CachePath is where the cache lives inside the data dir.
func CachePath(config *Config) string {
	return filepath.Join(config.DataDir(), "cache.db")
}

func (rc *ResultCache) Close() error {
	if rc == nil {
		return nil
	}
	return rc.db.Close()
}

func (rc *ResultCache) Lookup(labels string, extendTo int, rounds uint64) (Checkpoint, bool, error) {
	c := Checkpoint{Rounds: rounds, Cached: true}
	err := rc.db.QueryRow(
		`SELECT label_order, first_star, second_star, product FROM results
		 WHERE labels = ? AND extend_to = ? AND rounds = ?`,
		labels, extendTo, int64(rounds),
	).Scan(&c.LabelOrder, &c.FirstStar, &c.SecondStar, &c.Product)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, err
	}
	return c, true, nil
}

func (rc *ResultCache) Store(labels string, extendTo int, c Checkpoint) error {
	_, err := rc.db.Exec(
		`INSERT INTO results (labels, extend_to, rounds, label_order, first_star, second_star, product)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (labels, extend_to, rounds) DO UPDATE SET
			label_order = excluded.label_order,
			first_star  = excluded.first_star,
			second_star = excluded.second_star,
			product     = excluded.product`,
		labels, extendTo, int64(c.Rounds), c.LabelOrder, c.FirstStar, c.SecondStar, int64(c.Product),
	)
	return err
}

// Play answers the game from the cache when every checkpoint is known and
// otherwise plays it with PlayGame, storing the results afterwards.
func (rc *ResultCache) Play(ctx context.Context, game Game, labels []int, every uint64, onProgress ProgressFunc) (Report, error) {
	if rc == nil {
		return PlayGame(ctx, game, labels, every, onProgress)
	}
	if err := game.Validate(); err != nil {
		return Report{}, err
	}

	key := FormatLabels(labels)

	if report, ok := rc.lookupGame(game, key); ok {
		clog.Debug().Str("game", game.Name).Str("labels", key).Msg("Answered from cache")
		return report, nil
	}

	report, err := PlayGame(ctx, game, labels, every, onProgress)
	if err != nil {
		return Report{}, err
	}

	for _, c := range report.Checkpoints {
		if err := rc.Store(key, game.ExtendTo, c); err != nil {
			clog.Warn().Err(err).Str("game", game.Name).Uint64("rounds", c.Rounds).Msg("Could not cache result")
		}
	}

	return report, nil
}

func (rc *ResultCache) lookupGame(game Game, key string) (Report, bool) {
	report := Report{
		Name:     game.Name,
		Mode:     game.Mode(),
		Labels:   key,
		ExtendTo: game.ExtendTo,
	}

	for _, rounds := range game.Checkpoints {
		c, ok, err := rc.Lookup(key, game.ExtendTo, rounds)
		if err != nil {
			clog.Warn().Err(err).Str("game", game.Name).Msg("Cache lookup failed")
			return Report{}, false
		}
		if !ok {
			return Report{}, false
		}
		report.Checkpoints = append(report.Checkpoints, c)
	}

	report.FinishedAt = time.Now()
	return report, true
}
