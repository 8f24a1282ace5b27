package store

import (
	"errors"
	"testing"
	"time"
)

func TestReportValidate(t *testing.T) {
	valid := func() *Report { return createTestReport("run", time.Now()) }

	tests := []struct {
		name   string
		mutate func(*Report)
		field  string
	}{
		{"valid", func(*Report) {}, ""},
		{"empty run id", func(r *Report) { r.RunID = "" }, "RunID"},
		{"zero timestamp", func(r *Report) { r.Timestamp = time.Time{} }, "Timestamp"},
		{"negative size", func(r *Report) { r.Config.Size = -1 }, "Config.Size"},
		{"zero repeat", func(r *Report) { r.Config.Repeat = 0 }, "Config.Repeat"},
		{"unnamed strategy", func(r *Report) { r.Strategies[1].Strategy = "" }, "Strategies[1].Strategy"},
		{"too many failures", func(r *Report) { r.Strategies[0].Failures = 4 }, "Strategies[0].Failures"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)

			err := r.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Expected valid report, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestReportToInfo(t *testing.T) {
	r := createTestReport("run", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	info := r.ToInfo()

	if info.RunID != "run" || info.Size != 1<<20 || info.Selected != "go:workers" {
		t.Errorf("Unexpected metadata: %+v", info)
	}
	if info.Failures != 1 {
		t.Errorf("Failures = %d, want 1", info.Failures)
	}
	// Serial 40ms against the fastest accelerated mean of 8ms.
	if info.Speedup != 5 {
		t.Errorf("Speedup = %v, want 5", info.Speedup)
	}
}

func TestReportToInfoWithoutAccelerator(t *testing.T) {
	r := createTestReport("run", time.Now())
	r.Selected = ""
	r.Strategies = []StrategySummary{{Strategy: "serial", Runs: 1, Mean: time.Millisecond}}

	if info := r.ToInfo(); info.Speedup != 0 {
		t.Errorf("Speedup without accelerated runs = %v, want 0", info.Speedup)
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{RunID: "abc"}
	if err.Error() != "report not found: abc" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError must match ErrNotFound")
	}
	if (&NotFoundError{}).Error() != "report not found" {
		t.Error("unexpected message without run ID")
	}
}
