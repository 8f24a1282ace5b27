// Package vecadd adds float64 vectors element-wise, serially on the host or
// on an accelerator over a flat or tiled index space.
package vecadd

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/juju/clock"

	"github.com/cwbudde/ampbench/internal/timing"
)

//go:generate mockgen -package mocks -destination mocks/mock_reporter.go github.com/cwbudde/ampbench/internal/vecadd ErrorReporter

// DefaultTileSize is the tile size used when Config.TileSize is zero.
const DefaultTileSize = 1024

var (
	// ErrLengthMismatch is returned when the three buffers differ in length.
	ErrLengthMismatch = errors.New("vector lengths differ")
	// ErrInvalidTileSize is returned for negative tile sizes.
	ErrInvalidTileSize = errors.New("tile size must be positive")
)

// Strategy names an addition strategy.
type Strategy string

const (
	StrategySerial   Strategy = "serial"
	StrategyParallel Strategy = "parallel"
	StrategyTiled    Strategy = "tiled"
)

// Result is the outcome of one adder call. Err is nil on success; after a
// failure the contents of the output buffer are unspecified.
type Result struct {
	Strategy    Strategy
	Accelerator string // device path; empty for the serial adder
	Sample      timing.Sample
	Err         error
}

// Elapsed returns the measured duration of the call.
func (r Result) Elapsed() time.Duration {
	return r.Sample.Elapsed()
}

// ErrorReporter receives accelerator failures caught by the adders.
type ErrorReporter interface {
	ReportError(strategy Strategy, err error)
}

// ReporterFunc adapts a function to ErrorReporter.
type ReporterFunc func(Strategy, error)

// ReportError implements ErrorReporter.
func (f ReporterFunc) ReportError(s Strategy, err error) { f(s, err) }

// LogReporter reports failures as error logs.
func LogReporter(logger *slog.Logger) ErrorReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return ReporterFunc(func(s Strategy, err error) {
		logger.Error("Accelerated vector addition failed", "strategy", s, "error", err)
	})
}

func checkLengths(v1, v2, v3 []float64) error {
	if len(v1) != len(v2) || len(v1) != len(v3) {
		return fmt.Errorf("%w: %d, %d, %d", ErrLengthMismatch, len(v1), len(v2), len(v3))
	}
	return nil
}

// Serial computes v3[i] = v1[i] + v2[i] on the calling goroutine. Only the
// loop is timed.
func Serial(clk clock.Clock, v1, v2, v3 []float64) (Result, error) {
	if err := checkLengths(v1, v2, v3); err != nil {
		return Result{Strategy: StrategySerial, Err: err}, err
	}

	sw := timing.Start(clk)
	v3 = v3[:len(v1)]
	v2 = v2[:len(v1)]
	for i := range v1 {
		v3[i] = v1[i] + v2[i]
	}
	return Result{Strategy: StrategySerial, Sample: sw.Stop()}, nil
}
