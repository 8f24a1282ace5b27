package store

import (
	"fmt"
	"time"
)

// RunConfig is the persisted copy of the benchmark configuration.
// It avoids an import cycle with the bench package.
type RunConfig struct {
	Size        int    `json:"size"`
	TileSize    int    `json:"tileSize"`
	Repeat      int    `json:"repeat"`
	Accelerator string `json:"accelerator,omitempty"` // requested device path
	Verify      bool   `json:"verify"`
}

// AcceleratorInfo is the persisted form of an accelerator descriptor.
type AcceleratorInfo struct {
	Description                    string `json:"description"`
	Path                           string `json:"path"`
	Kind                           string `json:"kind"`
	DedicatedMemory                uint64 `json:"dedicatedMemory"`
	HasDisplay                     bool   `json:"hasDisplay"`
	IsDebug                        bool   `json:"isDebug"`
	IsEmulated                     bool   `json:"isEmulated"`
	SupportsDoublePrecision        bool   `json:"supportsDoublePrecision"`
	SupportsLimitedDoublePrecision bool   `json:"supportsLimitedDoublePrecision"`
}

// StrategySummary aggregates the repetitions of one adder.
type StrategySummary struct {
	Strategy    string        `json:"strategy"`
	Accelerator string        `json:"accelerator,omitempty"`
	Runs        int           `json:"runs"`
	Failures    int           `json:"failures"`
	Min         time.Duration `json:"min"`
	Max         time.Duration `json:"max"`
	Mean        time.Duration `json:"mean"`
	Median      time.Duration `json:"median"`
	StdDev      time.Duration `json:"stddev"`

	// Checksum is the xxh3 digest of the last successful output, in hex.
	Checksum string `json:"checksum,omitempty"`
}

// Report is the persisted outcome of one benchmark run.
type Report struct {
	RunID     string    `json:"runId"`
	Timestamp time.Time `json:"timestamp"`
	GoVersion string    `json:"goVersion"`
	Config    RunConfig `json:"config"`

	// Accelerators lists every enumerated device; Selected is the path of
	// the one the accelerated adders ran on (empty when none was usable).
	Accelerators []AcceleratorInfo `json:"accelerators"`
	Selected     string            `json:"selected,omitempty"`

	Strategies []StrategySummary `json:"strategies"`

	// Verified is true when every accelerated output matched the serial one.
	Verified bool     `json:"verified"`
	Errors   []string `json:"errors,omitempty"`
}

// ReportInfo contains report metadata without per-strategy detail.
// Used for listing reports efficiently.
type ReportInfo struct {
	RunID     string    `json:"runId"`
	Timestamp time.Time `json:"timestamp"`
	Size      int       `json:"size"`
	Selected  string    `json:"selected,omitempty"`
	Failures  int       `json:"failures"`

	// Speedup is the serial mean divided by the fastest accelerated mean,
	// or 0 if no accelerated adder succeeded.
	Speedup float64 `json:"speedup"`
}

// ToInfo converts a full Report to ReportInfo.
func (r *Report) ToInfo() ReportInfo {
	info := ReportInfo{
		RunID:     r.RunID,
		Timestamp: r.Timestamp,
		Size:      r.Config.Size,
		Selected:  r.Selected,
	}

	var serial, fastest time.Duration
	for _, s := range r.Strategies {
		info.Failures += s.Failures
		if s.Runs == s.Failures {
			continue
		}
		if s.Strategy == "serial" {
			serial = s.Mean
			continue
		}
		if fastest == 0 || s.Mean < fastest {
			fastest = s.Mean
		}
	}
	if serial > 0 && fastest > 0 {
		info.Speedup = float64(serial) / float64(fastest)
	}
	return info
}

// Validate checks that the report has the fields required to store it.
func (r *Report) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Size < 0 {
		return &ValidationError{Field: "Config.Size", Reason: "cannot be negative"}
	}
	if r.Config.Repeat <= 0 {
		return &ValidationError{Field: "Config.Repeat", Reason: "must be positive"}
	}
	for i, s := range r.Strategies {
		if s.Strategy == "" {
			return &ValidationError{Field: fmt.Sprintf("Strategies[%d].Strategy", i), Reason: "cannot be empty"}
		}
		if s.Failures > s.Runs {
			return &ValidationError{Field: fmt.Sprintf("Strategies[%d].Failures", i), Reason: "exceeds runs"}
		}
	}
	return nil
}

// ValidationError represents a report validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
