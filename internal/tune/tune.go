// Package tune searches the tile size that minimizes the tiled adder's
// elapsed time on one accelerator.
package tune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"

	"github.com/cwbudde/ampbench/internal/accel"
	"github.com/cwbudde/ampbench/internal/timing"
	"github.com/cwbudde/ampbench/internal/vecadd"
)

const (
	// MinTileExp and MaxTileExp bound the searched tile sizes to
	// [1<<MinTileExp, 1<<MaxTileExp].
	MinTileExp = 4
	MaxTileExp = 12
)

// TileSizeAt maps a normalized position in [0, 1] to a power-of-two tile size.
// Positions outside the interval are clamped.
func TileSizeAt(x float64) int {
	if math.IsNaN(x) || x < 0 {
		x = 0
	}
	if x > 1 {
		x = 1
	}
	exp := MinTileExp + int(math.Round(x*float64(MaxTileExp-MinTileExp)))
	return 1 << exp
}

// Config configures a tile-size search.
type Config struct {
	Size   int // vector length, default 1<<20
	Repeat int // tiled runs averaged per candidate, default 3

	Clock  clock.Clock
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Size < 0 {
		return fmt.Errorf("size must not be negative: %d", c.Size)
	}
	if c.Size == 0 {
		c.Size = 1 << 20
	}
	if c.Repeat <= 0 {
		c.Repeat = 3
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Trial is the measured cost of one candidate tile size.
type Trial struct {
	TileSize int
	Mean     time.Duration
	Err      error
}

// Result is the outcome of a search.
type Result struct {
	TileSize int
	Mean     time.Duration

	// Trials lists every distinct candidate measured, ordered by tile size.
	Trials []Trial
}

// measureFunc returns the mean elapsed time of the tiled adder at one tile size.
type measureFunc func(ctx context.Context, tileSize int) (time.Duration, error)

// TileSearch minimizes the tiled adder's mean elapsed time over tile sizes.
// Each distinct tile size is measured once.
type TileSearch struct {
	cfg     Config
	opt     Optimizer
	measure measureFunc
}

// NewTileSearch creates a search of acc's tiled adder driven by opt.
func NewTileSearch(acc accel.Accelerator, opt Optimizer, cfg Config) (*TileSearch, error) {
	if acc == nil {
		return nil, accel.ErrNoAccelerator
	}
	if opt == nil {
		return nil, errors.New("optimizer cannot be nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &TileSearch{cfg: cfg, opt: opt}
	s.measure = s.adderMeasure(acc)
	return s, nil
}

func (s *TileSearch) adderMeasure(acc accel.Accelerator) measureFunc {
	v1 := make([]float64, s.cfg.Size)
	v2 := make([]float64, s.cfg.Size)
	v3 := make([]float64, s.cfg.Size)
	for i := range v1 {
		v1[i], v2[i] = 1.0, 2.0
	}

	return func(ctx context.Context, tileSize int) (time.Duration, error) {
		adder, err := vecadd.New(vecadd.Config{
			Accelerator: acc,
			TileSize:    tileSize,
			Clock:       s.cfg.Clock,
			Logger:      s.cfg.Logger,
			// Failures are collected per trial instead of logged per call.
			Reporter: vecadd.ReporterFunc(func(vecadd.Strategy, error) {}),
		})
		if err != nil {
			return 0, err
		}

		samples := make([]timing.Sample, 0, s.cfg.Repeat)
		for i := 0; i < s.cfg.Repeat; i++ {
			res := adder.Tiled(ctx, v1, v2, v3)
			if res.Err != nil {
				return 0, res.Err
			}
			samples = append(samples, res.Sample)
		}
		return timing.Summarize(samples).Mean, nil
	}
}

// Run executes the search. It fails only when no candidate could be measured.
func (s *TileSearch) Run(ctx context.Context) (*Result, error) {
	trials := make(map[int]Trial)

	eval := func(x []float64) float64 {
		ts := TileSizeAt(x[0])
		if t, ok := trials[ts]; ok {
			return cost(t)
		}
		if ctx.Err() != nil {
			return math.Inf(1)
		}

		mean, err := s.measure(ctx, ts)
		t := Trial{TileSize: ts, Mean: mean, Err: err}
		trials[ts] = t
		s.cfg.Logger.Debug("Measured tile size", "tile_size", ts, "mean", mean, "error", err)
		return cost(t)
	}

	s.opt.Run(eval, []float64{0}, []float64{1}, 1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	var errs error
	for _, t := range trials {
		res.Trials = append(res.Trials, t)
		if t.Err != nil {
			errs = multierror.Append(errs, fmt.Errorf("tile size %d: %w", t.TileSize, t.Err))
			continue
		}
		if res.TileSize == 0 || t.Mean < res.Mean || (t.Mean == res.Mean && t.TileSize < res.TileSize) {
			res.TileSize, res.Mean = t.TileSize, t.Mean
		}
	}
	sort.Slice(res.Trials, func(i, j int) bool { return res.Trials[i].TileSize < res.Trials[j].TileSize })

	if res.TileSize == 0 {
		if errs == nil {
			errs = errors.New("no tile size was evaluated")
		}
		return nil, errs
	}

	s.cfg.Logger.Info("Tile size search finished",
		"tile_size", res.TileSize,
		"mean", res.Mean,
		"candidates", len(res.Trials))
	return res, nil
}

func cost(t Trial) float64 {
	if t.Err != nil {
		return math.Inf(1)
	}
	return t.Mean.Seconds()
}
