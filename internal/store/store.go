// Package store persists benchmark reports and their timing samples.
package store

// Store defines the interface for report persistence operations.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return ErrNotFound if a report doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveReport atomically saves the report of one run, overwriting any
	// report already stored under runID.
	SaveReport(runID string, report *Report) error

	// LoadReport retrieves the report of a run.
	// Returns ErrNotFound if no report exists for runID.
	LoadReport(runID string) (*Report, error)

	// ListReports returns summaries of all stored reports, newest first.
	ListReports() ([]ReportInfo, error)

	// DeleteReport removes the report and its samples.
	// Returns ErrNotFound if no report exists for runID.
	DeleteReport(runID string) error
}

// ErrNotFound is returned when a requested report does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing report.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "report not found: " + e.RunID
	}
	return "report not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
