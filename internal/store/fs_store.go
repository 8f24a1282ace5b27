package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

const reportFile = "report.json"

// FSStore implements Store on the filesystem. Reports are stored in
// <baseDir>/runs/<runID>/report.json next to the run's sample trace.
//
// Writes use temp file + rename, so readers never observe a partial report.
type FSStore struct {
	baseDir string
	logger  *slog.Logger
}

// NewFSStore creates a filesystem store, creating baseDir if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir, logger: slog.Default()}, nil
}

// WithLogger returns a copy of the store logging to logger.
func (fs *FSStore) WithLogger(logger *slog.Logger) *FSStore {
	cp := *fs
	cp.logger = logger
	return &cp
}

// BaseDir returns the root directory of the store.
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

// RunDir returns the directory holding every artifact of a run.
func (fs *FSStore) RunDir(runID string) string {
	return runDir(fs.baseDir, runID)
}

func runDir(baseDir, runID string) string {
	return filepath.Join(baseDir, "runs", runID)
}

func (fs *FSStore) reportPath(runID string) string {
	return filepath.Join(fs.RunDir(runID), reportFile)
}

// SaveReport atomically saves a report.
func (fs *FSStore) SaveReport(runID string, report *Report) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if err := report.Validate(); err != nil {
		return err
	}

	dir := fs.RunDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	finalPath := fs.reportPath(runID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp report file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename report file: %w", err)
	}

	fs.logger.Debug("Report saved", "run_id", runID, "path", finalPath)
	return nil
}

// LoadReport retrieves the report of a run.
func (fs *FSStore) LoadReport(runID string) (*Report, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	path := fs.reportPath(runID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{RunID: runID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}

	fs.logger.Debug("Report loaded", "run_id", runID, "path", path)
	return &report, nil
}

// ListReports returns summaries of all stored reports, newest first.
// Unreadable reports are skipped with a warning.
func (fs *FSStore) ListReports() ([]ReportInfo, error) {
	entries, err := os.ReadDir(filepath.Join(fs.baseDir, "runs"))
	if os.IsNotExist(err) {
		return []ReportInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	infos := []ReportInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		runID := entry.Name()
		if _, err := os.Stat(fs.reportPath(runID)); os.IsNotExist(err) {
			continue
		}

		report, err := fs.LoadReport(runID)
		if err != nil {
			fs.logger.Warn("Failed to load report for listing", "run_id", runID, "error", err)
			continue
		}
		infos = append(infos, report.ToInfo())
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})

	fs.logger.Debug("Listed reports", "count", len(infos))
	return infos, nil
}

// DeleteReport removes a run directory with all its artifacts.
func (fs *FSStore) DeleteReport(runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	dir := fs.RunDir(runID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{RunID: runID}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	fs.logger.Debug("Report deleted", "run_id", runID, "path", dir)
	return nil
}
