package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// Games shorter than this finish before a progress bar is worth drawing.
const progressBarThreshold = 1_000_000

func newProgressBar(game Game) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		int64(game.TotalRounds()),
		progressbar.OptionSetDescription(game.Name),
		progressbar.OptionSetWriter(NewThreadSafeWriter(os.Stderr)),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// RunGames plays every configured game in order on the calling goroutine and
// prints one line per checkpoint to out.
func RunGames(ctx context.Context, config *Config, storage *Storage, cache *ResultCache, out io.Writer, showProgress bool) error {
	labels := config.Labels()

	for _, game := range config.Games() {
		var onProgress ProgressFunc
		var bar *progressbar.ProgressBar
		if showProgress && game.TotalRounds() >= progressBarThreshold {
			bar = newProgressBar(game)
			onProgress = func(rounds, total uint64) {
				bar.Set64(int64(rounds))
			}
		}

		report, err := cache.Play(ctx, game, labels, config.ProgressEvery(), onProgress)
		if bar != nil {
			bar.Finish()
		}
		if err != nil {
			return fmt.Errorf("game %q: %w", game.Name, err)
		}

		for _, c := range report.Checkpoints {
			fmt.Fprintln(out, FormatCheckpoint(game, c))
		}

		if err := storage.SaveReport(report); err != nil {
			log.Warn().Err(err).Str("game", game.Name).Msg("Could not save report")
		}
	}

	return nil
}

// FormatCheckpoint renders a checkpoint as one line of console output.
func FormatCheckpoint(game Game, c Checkpoint) string {
	if game.Mode() == ModeExtended {
		return fmt.Sprintf("%s after %d rounds: %d (%d * %d)", game.Name, c.Rounds, c.Product, c.FirstStar, c.SecondStar)
	}
	return fmt.Sprintf("%s after %d rounds: %s", game.Name, c.Rounds, c.LabelOrder)
}
