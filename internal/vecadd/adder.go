package vecadd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/juju/clock"

	"github.com/cwbudde/ampbench/internal/accel"
	"github.com/cwbudde/ampbench/internal/timing"
)

// Config configures an accelerated Adder.
type Config struct {
	// Accelerator executes the kernels. Required.
	Accelerator accel.Accelerator

	// TileSize is the tile size of the tiled adder. Zero means DefaultTileSize.
	TileSize int

	// Clock times every call. Defaults to the wall clock.
	Clock clock.Clock

	// Reporter receives caught accelerator failures. Defaults to LogReporter(Logger).
	Reporter ErrorReporter

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Accelerator == nil {
		return accel.ErrNoAccelerator
	}
	if c.TileSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTileSize, c.TileSize)
	}
	if c.TileSize == 0 {
		c.TileSize = DefaultTileSize
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Reporter == nil {
		c.Reporter = LogReporter(c.Logger)
	}
	return nil
}

// Adder runs the parallel and tiled adders on one accelerator. Calls must
// not overlap.
type Adder struct {
	cfg Config
}

// New validates cfg and creates an Adder.
func New(cfg Config) (*Adder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Adder{cfg: cfg}, nil
}

// TileSize returns the tile size used by Tiled.
func (a *Adder) TileSize() int {
	return a.cfg.TileSize
}

// Accelerator returns the device the adder dispatches to.
func (a *Adder) Accelerator() accel.Accelerator {
	return a.cfg.Accelerator
}

// Parallel computes v3 = v1 + v2 with one accelerator task per element.
// The timed region covers staging, compute and the copy back of v3.
// Accelerator failures never escape: they are reported and returned in
// Result.Err.
func (a *Adder) Parallel(ctx context.Context, v1, v2, v3 []float64) Result {
	return a.run(ctx, StrategyParallel, accel.Flat(len(v1)), v1, v2, v3)
}

// Tiled is Parallel with the index space grouped in tiles of TileSize. A
// final partial tile is masked, so any length is accepted.
func (a *Adder) Tiled(ctx context.Context, v1, v2, v3 []float64) Result {
	return a.run(ctx, StrategyTiled, accel.Tiled(len(v1), a.cfg.TileSize), v1, v2, v3)
}

func (a *Adder) run(ctx context.Context, strategy Strategy, space accel.IndexSpace, v1, v2, v3 []float64) Result {
	desc := a.cfg.Accelerator.Describe()
	res := Result{Strategy: strategy, Accelerator: desc.Path}

	if err := checkLengths(v1, v2, v3); err != nil {
		res.Err = err
		return res
	}

	sw := timing.Start(a.cfg.Clock)
	err := a.execute(ctx, desc, space, v1, v2, v3)
	res.Sample = sw.Stop()

	if err != nil {
		res.Err = err
		a.cfg.Reporter.ReportError(strategy, err)
		return res
	}

	a.cfg.Logger.Debug("Vector addition finished",
		"strategy", strategy,
		"accelerator", desc.Path,
		"space", space.String(),
		"elapsed", res.Elapsed())
	return res
}

// execute stages the buffers, dispatches the add kernel and copies the
// result back. Every failure, including a panic, becomes a DispatchError.
func (a *Adder) execute(ctx context.Context, desc accel.Descriptor, space accel.IndexSpace, v1, v2, v3 []float64) (err error) {
	acc := a.cfg.Accelerator
	path := desc.Path

	defer func() {
		if r := recover(); r != nil {
			err = accel.WrapDispatch(path, "dispatch", fmt.Errorf("panic: %v", r))
		}
	}()

	if !desc.Float64() {
		return accel.WrapDispatch(path, "dispatch", accel.ErrDoublePrecision)
	}

	var views []accel.View
	defer func() {
		for _, v := range views {
			if cerr := v.Close(); cerr != nil && err == nil {
				err = accel.WrapDispatch(path, "close", cerr)
			}
		}
	}()

	stage := func(host []float64, access accel.Access) (accel.View, error) {
		v, err := acc.Stage(host, access)
		if err != nil {
			return nil, accel.WrapDispatch(path, "stage", err)
		}
		views = append(views, v)
		return v, nil
	}

	in1, err := stage(v1, accel.ReadOnly)
	if err != nil {
		return err
	}
	in2, err := stage(v2, accel.ReadOnly)
	if err != nil {
		return err
	}
	out, err := stage(v3, accel.WriteOnly)
	if err != nil {
		return err
	}

	if err := acc.Dispatch(ctx, space, newAddKernel(in1, in2, out)); err != nil {
		return accel.WrapDispatch(path, "dispatch", err)
	}
	if err := acc.Synchronize(ctx, out); err != nil {
		return accel.WrapDispatch(path, "synchronize", err)
	}
	return nil
}
