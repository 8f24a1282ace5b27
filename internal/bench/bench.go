// Package bench runs the vector-addition benchmark: it reports the available
// accelerators, then times the tiled, parallel and serial adders on the same
// inputs.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/ampbench/internal/accel"
	"github.com/cwbudde/ampbench/internal/accel/opencl"
	"github.com/cwbudde/ampbench/internal/accel/workers"
	"github.com/cwbudde/ampbench/internal/metrics"
	"github.com/cwbudde/ampbench/internal/store"
	"github.com/cwbudde/ampbench/internal/vecadd"
)

const (
	// DefaultSize is the vector length of the ampbench run command.
	DefaultSize = 2 << 24

	// verifyTolerance bounds the difference between an adder output and the
	// expected sum.
	verifyTolerance = 1e-12
)

// Input values of the benchmark buffers.
const (
	v1Fill = 1.0
	v2Fill = 2.0
)

// ErrVerification marks an adder output that differs from the element-wise sum.
var ErrVerification = errors.New("result differs from the element-wise sum")

// SampleSink receives every timed call. store.SampleWriter implements it.
type SampleSink interface {
	Write(entry store.SampleEntry) error
}

// Config configures a benchmark run.
type Config struct {
	RunID string // identifies the run, generated when empty

	Size     int // vector length; zero runs the adders on empty vectors
	TileSize int // tile size of the tiled adder, default vecadd.DefaultTileSize
	Repeat   int // repetitions of the three adders, default 1

	// Accelerator is the device path of the accelerator to use. Empty
	// selects the default accelerator.
	Accelerator string

	// Verify compares every accelerated output with the element-wise sum.
	Verify bool

	// Strict makes Run return the aggregated failures of the run.
	Strict bool

	// Enumerator lists the accelerators. Defaults to DefaultEnumerator.
	Enumerator accel.Enumerator

	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *metrics.Collector // optional
	Samples SampleSink         // optional

	// Out receives the human-readable report. Defaults to os.Stdout.
	Out io.Writer
}

func (c *Config) validate() error {
	if c.Size < 0 {
		return fmt.Errorf("size must not be negative: %d", c.Size)
	}
	if c.TileSize < 0 {
		return fmt.Errorf("%w: %d", vecadd.ErrInvalidTileSize, c.TileSize)
	}
	if c.TileSize == 0 {
		c.TileSize = vecadd.DefaultTileSize
	}
	if c.Repeat < 0 {
		return fmt.Errorf("repeat must not be negative: %d", c.Repeat)
	}
	if c.Repeat == 0 {
		c.Repeat = 1
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	if c.Enumerator == nil {
		c.Enumerator = DefaultEnumerator(c.Logger)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	return nil
}

// DefaultEnumerator returns a registry over every accelerator backend.
func DefaultEnumerator(logger *slog.Logger) *accel.Registry {
	return accel.NewRegistry(logger,
		opencl.Provider{Logger: logger},
		workers.Provider{},
	)
}

// Run executes the benchmark. Device failures are reported and collected in
// the outcome; Run only fails on invalid configuration, on an unknown
// accelerator path, or in strict mode when any step failed.
func Run(ctx context.Context, cfg Config) (*Outcome, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	out := &Outcome{
		RunID:  cfg.RunID,
		Config: cfg,
	}
	logger := cfg.Logger.With("run_id", out.RunID)

	list, err := accel.QuerySupport(cfg.Out, cfg.Enumerator)
	if err != nil {
		logger.Warn("Accelerator enumeration incomplete", "error", err)
		out.addError(err)
	}
	defer func() {
		if err := accel.CloseAll(list); err != nil {
			logger.Warn("Failed to release accelerators", "error", err)
		}
	}()
	for _, a := range list {
		out.Accelerators = append(out.Accelerators, a.Describe())
	}

	var adder *vecadd.Adder
	switch {
	case len(list) > 0 || cfg.Accelerator != "":
		acc, err := accel.Find(list, cfg.Accelerator)
		if err != nil {
			return nil, err
		}
		adder, err = vecadd.New(vecadd.Config{
			Accelerator: acc,
			TileSize:    cfg.TileSize,
			Clock:       cfg.Clock,
			Logger:      logger,
			Reporter:    vecadd.LogReporter(logger),
		})
		if err != nil {
			return nil, err
		}
		desc := acc.Describe()
		out.Selected = &desc
		logger.Info("Selected accelerator", "accelerator", desc.Path, "description", desc.Description)
	default:
		fmt.Fprintln(cfg.Out, "Skipping the accelerated adders: no accelerator available.")
	}

	// Buffers are allocated and filled outside every timed region.
	v1 := make([]float64, cfg.Size)
	v2 := make([]float64, cfg.Size)
	v3 := make([]float64, cfg.Size)
	for i := range v1 {
		v1[i], v2[i] = v1Fill, v2Fill
	}
	if cfg.Metrics != nil {
		cfg.Metrics.SetVectorLength(cfg.Size)
	}

	var want []float64
	if cfg.Verify {
		want = make([]float64, cfg.Size)
		floats.AddTo(want, v1, v2)
		out.Verified = true
	}

	r := runner{cfg: cfg, out: out, logger: logger, v3: v3, want: want}
	for rep := 0; rep < cfg.Repeat; rep++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if adder != nil {
			r.record(rep, func() vecadd.Result { return adder.Tiled(ctx, v1, v2, v3) })
			r.record(rep, func() vecadd.Result { return adder.Parallel(ctx, v1, v2, v3) })
		}
		r.record(rep, func() vecadd.Result {
			res, _ := vecadd.Serial(cfg.Clock, v1, v2, v3)
			return res
		})
	}
	out.compareChecksums()

	logger.Info("Benchmark finished",
		"size", cfg.Size,
		"repeat", cfg.Repeat,
		"failures", out.Failures())

	if cfg.Strict {
		if err := out.Err(); err != nil {
			return out, err
		}
	}
	return out, nil
}

type runner struct {
	cfg    Config
	out    *Outcome
	logger *slog.Logger
	v3     []float64
	want   []float64
}

// record zeroes the output buffer, runs one adder and books its result.
func (r *runner) record(rep int, run func() vecadd.Result) {
	clear(r.v3)
	res := run()

	fmt.Fprintln(r.cfg.Out, timingLine(res))
	r.out.Results = append(r.out.Results, res)

	if r.cfg.Metrics != nil {
		r.cfg.Metrics.Observe(res)
	}
	if r.cfg.Samples != nil {
		if err := r.cfg.Samples.Write(sampleEntry(rep, res)); err != nil {
			r.logger.Warn("Failed to record sample", "error", err)
		}
	}

	if res.Err != nil {
		// A failed adder produced no output to verify.
		if r.want != nil {
			r.out.Verified = false
		}
		r.out.addError(fmt.Errorf("%s adder: %w", res.Strategy, res.Err))
		return
	}

	r.out.setChecksum(res.Strategy, checksum(r.v3))
	if r.want != nil && !floats.EqualApprox(r.v3, r.want, verifyTolerance) {
		r.out.Verified = false
		r.out.addError(fmt.Errorf("%s adder: %w", res.Strategy, ErrVerification))
	}
}

// timingLine formats the report line of one adder call.
func timingLine(res vecadd.Result) string {
	ms := res.Sample.Milliseconds()
	switch res.Strategy {
	case vecadd.StrategyTiled:
		return fmt.Sprintf("Adding the vectors using tiled %s (data transfer and compute) takes %d ms.", res.Accelerator, ms)
	case vecadd.StrategyParallel:
		return fmt.Sprintf("Adding the vectors using %s (data transfer and compute) takes %d ms.", res.Accelerator, ms)
	default:
		return fmt.Sprintf("Adding the vectors serially using the CPU takes %d ms.", ms)
	}
}

func sampleEntry(rep int, res vecadd.Result) store.SampleEntry {
	e := store.SampleEntry{
		Repetition:  rep,
		Strategy:    string(res.Strategy),
		Accelerator: res.Accelerator,
		Start:       res.Sample.Start,
		End:         res.Sample.End,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	return e
}
