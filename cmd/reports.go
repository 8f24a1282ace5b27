package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/ampbench/internal/store"
)

var (
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage saved benchmark reports",
	Long: `Manage the reports written by "ampbench run --save", including listing,
inspecting and cleaning old runs.`,
}

var listReportsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved reports",
	Long:  `Display all reports with run ID, timestamp, vector length, accelerator, failures, speedup and disk usage.`,
	RunE:  runListReports,
}

var showReportCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the per-strategy summary of a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowReport,
}

var cleanReportsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old reports",
	Long: `Delete old reports based on retention policy.
You can keep only the N most recent reports or delete reports older than N days.`,
	RunE: runCleanReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)

	reportsCmd.AddCommand(listReportsCmd)
	reportsCmd.AddCommand(showReportCmd)
	reportsCmd.AddCommand(cleanReportsCmd)

	reportsCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "Base directory for saved reports")

	cleanReportsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the last N reports (0 = keep all)")
	cleanReportsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete reports older than N days (0 = no age limit)")
	cleanReportsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListReports(cmd *cobra.Command, args []string) error {
	reports, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	infos, err := reports.ListReports()
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTIMESTAMP\tLENGTH\tACCELERATOR\tFAILURES\tSPEEDUP\tSIZE")
	fmt.Fprintln(w, "------\t---------\t------\t-----------\t--------\t-------\t----")

	for _, info := range infos {
		sizeStr := "unknown"
		if size, err := getDirSize(reports.RunDir(info.RunID)); err == nil {
			sizeStr = formatBytes(size)
		}

		selected := info.Selected
		if selected == "" {
			selected = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%.2fx\t%s\n",
			shortID(info.RunID),
			info.Timestamp.Local().Format("2006-01-02 15:04:05"),
			info.Size,
			selected,
			info.Failures,
			info.Speedup,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Fprintf(out, "\nTotal reports: %d\n", len(infos))
	return nil
}

func runShowReport(cmd *cobra.Command, args []string) error {
	reports, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	report, err := reports.LoadReport(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printReport(out, report)

	sr, err := store.NewSampleReader(dataDir, report.RunID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open samples: %w", err)
	}
	defer sr.Close()

	samples, err := sr.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read samples: %w", err)
	}
	fmt.Fprintf(out, "\nRecorded samples: %d\n", len(samples))
	return nil
}

func printReport(out io.Writer, r *store.Report) {
	fmt.Fprintf(out, "Run:         %s\n", r.RunID)
	fmt.Fprintf(out, "Timestamp:   %s\n", r.Timestamp.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "Go:          %s\n", r.GoVersion)
	fmt.Fprintf(out, "Length:      %d (tile size %d, %d repetitions)\n", r.Config.Size, r.Config.TileSize, r.Config.Repeat)
	if r.Selected != "" {
		fmt.Fprintf(out, "Accelerator: %s\n", r.Selected)
	}
	if r.Config.Verify {
		fmt.Fprintf(out, "Verified:    %t\n", r.Verified)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tACCELERATOR\tRUNS\tFAILURES\tMEAN\tMEDIAN\tMIN\tMAX\tSTDDEV")
	for _, s := range r.Strategies {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			s.Strategy, s.Accelerator, s.Runs, s.Failures,
			s.Mean, s.Median, s.Min, s.Max, s.StdDev)
	}
	w.Flush()

	if len(r.Errors) > 0 {
		fmt.Fprintf(out, "\nErrors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}
}

func runCleanReports(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	reports, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	infos, err := reports.ListReports()
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No reports to clean.")
		return nil
	}

	toDelete := selectReportsForDeletion(infos, keepLast, olderThanDays, time.Now())
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No reports match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d report(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (length %d, %s)\n",
			shortID(info.RunID),
			info.Size,
			info.Timestamp.Local().Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := reports.DeleteReport(info.RunID); err != nil {
			logger.Error("Failed to delete report", "run_id", info.RunID, "error", err)
			failed++
		} else {
			logger.Info("Deleted report", "run_id", info.RunID)
			deleted++
		}
	}

	fmt.Fprintf(out, "\nDeleted %d report(s), %d failed.\n", deleted, failed)
	return nil
}

// selectReportsForDeletion returns the reports older than olderThanDays
// together with all but the keepLast most recent ones. Zero disables a rule.
func selectReportsForDeletion(infos []store.ReportInfo, keepLast, olderThanDays int, now time.Time) []store.ReportInfo {
	var toDelete []store.ReportInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.ReportInfo, len(infos))
		copy(sorted, infos)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		for _, info := range sorted[:len(sorted)-keepLast] {
			if !selected[info.RunID] {
				toDelete = append(toDelete, info)
				selected[info.RunID] = true
			}
		}
	}

	return toDelete
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
