// Package timing measures wall-clock intervals against an injectable clock.
package timing

import (
	"sort"
	"time"

	"github.com/juju/clock"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sample is one measured interval.
type Sample struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Elapsed returns the length of the interval.
func (s Sample) Elapsed() time.Duration {
	return s.End.Sub(s.Start)
}

// Milliseconds returns the elapsed time truncated to whole milliseconds.
func (s Sample) Milliseconds() int64 {
	return s.Elapsed().Milliseconds()
}

// Stopwatch measures a single interval.
type Stopwatch struct {
	clk   clock.Clock
	start time.Time
}

// Start begins measuring. A nil clock uses the wall clock.
func Start(clk clock.Clock) *Stopwatch {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Stopwatch{clk: clk, start: clk.Now()}
}

// Stop ends the measurement and returns the sample.
func (s *Stopwatch) Stop() Sample {
	return Sample{Start: s.start, End: s.clk.Now()}
}

// Summary aggregates repeated samples.
type Summary struct {
	Count  int           `json:"count"`
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
	Median time.Duration `json:"median"`
	StdDev time.Duration `json:"stddev"`
}

// Summarize computes statistics over samples. StdDev is zero for fewer than
// two samples.
func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	ns := make([]float64, len(samples))
	for i, s := range samples {
		ns[i] = float64(s.Elapsed())
	}
	sort.Float64s(ns)

	sum := Summary{
		Count:  len(ns),
		Min:    time.Duration(floats.Min(ns)),
		Max:    time.Duration(floats.Max(ns)),
		Mean:   time.Duration(stat.Mean(ns, nil)),
		Median: time.Duration(stat.Quantile(0.5, stat.Empirical, ns, nil)),
	}
	if len(ns) > 1 {
		sum.StdDev = time.Duration(stat.StdDev(ns, nil))
	}
	return sum
}
