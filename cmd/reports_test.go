package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/ampbench/internal/store"
)

func TestSelectReportsForDeletion_ByAge(t *testing.T) {
	now := time.Now()
	infos := []store.ReportInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectReportsForDeletion(infos, 0, 7, now)

	if got := ids(toDelete); got != "run1,run4" {
		t.Errorf("Expected run1,run4 to be selected for deletion, got %s", got)
	}
}

func TestSelectReportsForDeletion_ByCount(t *testing.T) {
	now := time.Now()
	infos := []store.ReportInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectReportsForDeletion(infos, 2, 0, now)

	// Oldest first.
	if got := ids(toDelete); got != "run4,run1" {
		t.Errorf("Expected run4,run1 to be selected for deletion, got %s", got)
	}
}

func TestSelectReportsForDeletion_Combined(t *testing.T) {
	now := time.Now()
	infos := []store.ReportInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -10)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -5)},
		{RunID: "run3", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run4", Timestamp: now.AddDate(0, 0, -30)},
	}

	// run1 and run4 by age, run2 because only one is kept. No duplicates.
	toDelete := selectReportsForDeletion(infos, 1, 7, now)

	if got := ids(toDelete); got != "run1,run4,run2" {
		t.Errorf("Expected run1,run4,run2, got %s", got)
	}
}

func TestSelectReportsForDeletion_NothingToDelete(t *testing.T) {
	now := time.Now()
	infos := []store.ReportInfo{
		{RunID: "run1", Timestamp: now.AddDate(0, 0, -1)},
		{RunID: "run2", Timestamp: now.AddDate(0, 0, -2)},
	}

	if toDelete := selectReportsForDeletion(infos, 5, 7, now); len(toDelete) != 0 {
		t.Errorf("Expected no reports to delete, got %d", len(toDelete))
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.bytes); got != tt.expected {
			t.Errorf("formatBytes(%d) = %s, expected %s", tt.bytes, got, tt.expected)
		}
	}
}

func TestGetDirSize(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "a.json"), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(tmpDir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b.json"), make([]byte, 50), 0644); err != nil {
		t.Fatal(err)
	}

	size, err := getDirSize(tmpDir)
	if err != nil {
		t.Fatalf("getDirSize failed: %v", err)
	}
	if size != 150 {
		t.Errorf("Expected size 150, got %d", size)
	}

	if _, err := getDirSize(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID kept %q", got)
	}
	if got := shortID("0123456789abcdef"); got != "0123456789ab..." {
		t.Errorf("shortID truncated to %q", got)
	}
}

func TestRunSaveAndListReports(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run",
		"--size", "256",
		"--tile-size", "64",
		"--accelerator", "go:workers",
		"--verify",
		"--save",
		"--data-dir", dir,
		"--metrics-file", filepath.Join(dir, "ampbench.prom"),
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Adding the vectors serially using the CPU takes") {
		t.Errorf("missing serial timing line\n%s", out.String())
	}

	metricsText, err := os.ReadFile(filepath.Join(dir, "ampbench.prom"))
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(metricsText), "ampbench_vector_length 256") {
		t.Errorf("unexpected metrics file\n%s", metricsText)
	}

	fs, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	infos, err := fs.ListReports()
	if err != nil || len(infos) != 1 {
		t.Fatalf("expected one saved report, got %d (%v)", len(infos), err)
	}
	if infos[0].Selected != "go:workers" || infos[0].Size != 256 {
		t.Errorf("unexpected report info: %+v", infos[0])
	}

	out.Reset()
	rootCmd.SetArgs([]string{"reports", "show", infos[0].RunID, "--data-dir", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("reports show failed: %v", err)
	}
	for _, want := range []string{"Verified:    true", "tiled", "parallel", "serial", "Recorded samples: 3"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("reports show missing %q\n%s", want, out.String())
		}
	}
}

func ids(infos []store.ReportInfo) string {
	var parts []string
	for _, info := range infos {
		parts = append(parts, info.RunID)
	}
	return strings.Join(parts, ",")
}
