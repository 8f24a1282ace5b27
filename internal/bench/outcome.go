package bench

import (
	"fmt"
	"runtime"
	"strconv"
	"time"
	"unsafe"

	"github.com/hashicorp/go-multierror"
	"github.com/zeebo/xxh3"

	"github.com/cwbudde/ampbench/internal/accel"
	"github.com/cwbudde/ampbench/internal/store"
	"github.com/cwbudde/ampbench/internal/timing"
	"github.com/cwbudde/ampbench/internal/vecadd"
)

// Outcome collects everything a benchmark run observed.
type Outcome struct {
	RunID  string
	Config Config

	Accelerators []accel.Descriptor
	Selected     *accel.Descriptor // nil when only the serial adder ran

	// Results holds every adder call in execution order.
	Results []vecadd.Result

	// Verified reports whether every accelerated output matched the
	// element-wise sum. Always false when verification is disabled.
	Verified bool

	checksums map[vecadd.Strategy]uint64
	errs      *multierror.Error
}

func (o *Outcome) addError(err error) {
	o.errs = multierror.Append(o.errs, err)
}

// Err returns every failure of the run aggregated, or nil.
func (o *Outcome) Err() error {
	return o.errs.ErrorOrNil()
}

// Failures returns the number of adder calls that failed.
func (o *Outcome) Failures() int {
	n := 0
	for _, r := range o.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Checksum returns the xxh3 digest of the last successful output of a strategy.
func (o *Outcome) Checksum(s vecadd.Strategy) (uint64, bool) {
	sum, ok := o.checksums[s]
	return sum, ok
}

func (o *Outcome) setChecksum(s vecadd.Strategy, sum uint64) {
	if o.checksums == nil {
		o.checksums = make(map[vecadd.Strategy]uint64)
	}
	o.checksums[s] = sum
}

// compareChecksums checks that the tiled and flat adders produced
// bit-identical outputs.
func (o *Outcome) compareChecksums() {
	tiled, okTiled := o.checksums[vecadd.StrategyTiled]
	flat, okFlat := o.checksums[vecadd.StrategyParallel]
	if okTiled && okFlat && tiled != flat {
		o.addError(fmt.Errorf("tiled output %016x differs from flat output %016x", tiled, flat))
	}
}

// checksum hashes the raw bytes of v.
func checksum(v []float64) uint64 {
	if len(v) == 0 {
		return xxh3.Hash(nil)
	}
	return xxh3.Hash(unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*8))
}

// Summaries aggregates the results per strategy, in execution order.
func (o *Outcome) Summaries() []store.StrategySummary {
	var (
		order   []vecadd.Strategy
		byKey   = make(map[vecadd.Strategy]*store.StrategySummary)
		samples = make(map[vecadd.Strategy][]timing.Sample)
	)
	for _, r := range o.Results {
		s, ok := byKey[r.Strategy]
		if !ok {
			s = &store.StrategySummary{Strategy: string(r.Strategy), Accelerator: r.Accelerator}
			byKey[r.Strategy] = s
			order = append(order, r.Strategy)
		}
		s.Runs++
		if r.Err != nil {
			s.Failures++
			continue
		}
		samples[r.Strategy] = append(samples[r.Strategy], r.Sample)
	}

	out := make([]store.StrategySummary, 0, len(order))
	for _, key := range order {
		s := byKey[key]
		sum := timing.Summarize(samples[key])
		s.Min, s.Max, s.Mean, s.Median, s.StdDev = sum.Min, sum.Max, sum.Mean, sum.Median, sum.StdDev
		if c, ok := o.checksums[key]; ok {
			s.Checksum = strconv.FormatUint(c, 16)
		}
		out = append(out, *s)
	}
	return out
}

// Report converts the outcome into its persisted form.
func (o *Outcome) Report() *store.Report {
	r := &store.Report{
		RunID:     o.RunID,
		Timestamp: time.Now().UTC(),
		GoVersion: runtime.Version(),
		Config: store.RunConfig{
			Size:        o.Config.Size,
			TileSize:    o.Config.TileSize,
			Repeat:      o.Config.Repeat,
			Accelerator: o.Config.Accelerator,
			Verify:      o.Config.Verify,
		},
		Strategies: o.Summaries(),
		Verified:   o.Verified,
	}
	if len(o.Results) > 0 {
		r.Timestamp = o.Results[0].Sample.Start.UTC()
	}
	for _, d := range o.Accelerators {
		r.Accelerators = append(r.Accelerators, acceleratorInfo(d))
	}
	if o.Selected != nil {
		r.Selected = o.Selected.Path
	}
	if o.errs != nil {
		for _, err := range o.errs.Errors {
			r.Errors = append(r.Errors, err.Error())
		}
	}
	return r
}

func acceleratorInfo(d accel.Descriptor) store.AcceleratorInfo {
	return store.AcceleratorInfo{
		Description:                    d.Description,
		Path:                           d.Path,
		Kind:                           string(d.Kind),
		DedicatedMemory:                d.DedicatedMemory,
		HasDisplay:                     d.HasDisplay,
		IsDebug:                        d.IsDebug,
		IsEmulated:                     d.IsEmulated,
		SupportsDoublePrecision:        d.SupportsDoublePrecision,
		SupportsLimitedDoublePrecision: d.SupportsLimitedDoublePrecision,
	}
}
