package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gregoryjjb/cups/cups"
)

const (
	ModeSmall    = "small"
	ModeExtended = "extended"
)

// Game is one configured run: an optional extension of the starting
// labels and the round counts at which results are read.
type Game struct {
	Name        string   `json:"name"`
	ExtendTo    int      `json:"extend_to,omitempty"`
	Checkpoints []uint64 `json:"checkpoints"`
}

func (g Game) Mode() string {
	if g.ExtendTo > 0 {
		return ModeExtended
	}
	return ModeSmall
}

// TotalRounds is the round count of the last checkpoint.
func (g Game) TotalRounds() uint64 {
	if len(g.Checkpoints) == 0 {
		return 0
	}
	return g.Checkpoints[len(g.Checkpoints)-1]
}

func (g Game) Validate() error {
	if err := ValidateReportName(g.Name); err != nil {
		return err
	}
	if g.ExtendTo < 0 || g.ExtendTo > cups.MaxCapacity {
		return fmt.Errorf("%w: extend_to must be within 0..%d, got %d", ErrValidation, cups.MaxCapacity, g.ExtendTo)
	}
	if len(g.Checkpoints) == 0 {
		return fmt.Errorf("%w: at least one checkpoint is required", ErrValidation)
	}
	var prev uint64
	for _, c := range g.Checkpoints {
		if c <= prev {
			return fmt.Errorf("%w: checkpoints must be positive and increasing, got %v", ErrValidation, g.Checkpoints)
		}
		prev = c
	}
	return nil
}

// Checkpoint is the state of the ring after a number of rounds. Small games
// record the label order after cup 1, extended games the two cups after
// cup 1 and their product.
type Checkpoint struct {
	Rounds     uint64 `json:"rounds"`
	LabelOrder string `json:"label_order,omitempty"`
	FirstStar  uint32 `json:"first_star,omitempty"`
	SecondStar uint32 `json:"second_star,omitempty"`
	Product    uint64 `json:"product,omitempty"`
	Cached     bool   `json:"cached,omitempty"`
}

// Answer is the single value a player would submit for this checkpoint.
func (c Checkpoint) Answer() string {
	if c.LabelOrder != "" {
		return c.LabelOrder
	}
	return strconv.FormatUint(c.Product, 10)
}

type Report struct {
	Name        string       `json:"name"`
	Mode        string       `json:"mode"`
	Labels      string       `json:"labels"`
	ExtendTo    int          `json:"extend_to,omitempty"`
	Checkpoints []Checkpoint `json:"checkpoints"`
	DurationMS  float64      `json:"duration_ms"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// ProgressFunc is told how many rounds have been played out of total.
type ProgressFunc func(rounds, total uint64)

func newRing(game Game, labels []int) (*cups.Ring, error) {
	if game.ExtendTo > 0 {
		return cups.NewExtended(labels, game.ExtendTo)
	}
	return cups.New(labels)
}

func readCheckpoint(game Game, ring *cups.Ring) Checkpoint {
	c := Checkpoint{Rounds: ring.Rounds()}
	if game.Mode() == ModeExtended {
		a, b := ring.StarCups()
		c.FirstStar = uint32(a)
		c.SecondStar = uint32(b)
		c.Product = ring.Product()
	} else {
		c.LabelOrder = ring.LabelOrder()
	}
	return c
}

// PlayGame builds a fresh ring and plays it through every checkpoint. Rounds
// run in batches of every; the context is checked and onProgress called
// between batches.
func PlayGame(ctx context.Context, game Game, labels []int, every uint64, onProgress ProgressFunc) (Report, error) {
	if err := game.Validate(); err != nil {
		return Report{}, err
	}
	if every == 0 {
		every = defaultProgressEvery
	}

	start := time.Now()

	ring, err := newRing(game, labels)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	total := game.TotalRounds()
	report := Report{
		Name:     game.Name,
		Mode:     game.Mode(),
		Labels:   FormatLabels(labels),
		ExtendTo: game.ExtendTo,
	}

	for _, target := range game.Checkpoints {
		for ring.Rounds() < target {
			if err := ctx.Err(); err != nil {
				return Report{}, err
			}
			ring.PlayUntil(min(target, ring.Rounds()+every))
			if onProgress != nil {
				onProgress(ring.Rounds(), total)
			}
		}
		report.Checkpoints = append(report.Checkpoints, readCheckpoint(game, ring))
	}

	if err := ring.Verify(); err != nil {
		return Report{}, fmt.Errorf("game %q: %w", game.Name, err)
	}

	report.FinishedAt = time.Now()
	report.DurationMS = float64(report.FinishedAt.Sub(start).Nanoseconds()) / 1000000.0
	return report, nil
}
