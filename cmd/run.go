package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cwbudde/ampbench/internal/bench"
	"github.com/cwbudde/ampbench/internal/metrics"
	"github.com/cwbudde/ampbench/internal/store"
	"github.com/cwbudde/ampbench/internal/vecadd"
)

var (
	size        int
	tileSize    int
	repeat      int
	accelerator string
	verify      bool
	strict      bool
	metricsFile string
	saveRun     bool
	dataDir     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the vector addition benchmark",
	Long: `Lists the available accelerators, then adds two vectors with the tiled,
the flat parallel and the serial adder and prints the elapsed time of each.

Accelerator failures are logged and the run continues. Use --strict to exit
with status 1 when any adder failed.`,
	RunE: runBenchmark,
}

func init() {
	addRunFlags(runCmd.Flags())
	addRunFlags(rootCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.IntVar(&size, "size", bench.DefaultSize, "Vector length (0 runs the adders on empty vectors)")
	fs.IntVar(&tileSize, "tile-size", vecadd.DefaultTileSize, "Tile size of the tiled adder")
	fs.IntVar(&repeat, "repeat", 1, "Number of times each adder runs")
	fs.StringVar(&accelerator, "accelerator", "", "Device path of the accelerator (empty = default)")
	fs.BoolVar(&verify, "verify", false, "Check every output against the element-wise sum")
	fs.BoolVar(&strict, "strict", false, "Exit with status 1 when any adder failed")
	fs.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	fs.BoolVar(&saveRun, "save", false, "Persist the report and timing samples")
	fs.StringVar(&dataDir, "data-dir", "./data", "Base directory for saved reports")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()
	cfg := bench.Config{
		RunID:       runID,
		Size:        size,
		TileSize:    tileSize,
		Repeat:      repeat,
		Accelerator: accelerator,
		Verify:      verify,
		Strict:      strict,
		Logger:      logger,
		Out:         cmd.OutOrStdout(),
	}

	var collector *metrics.Collector
	if metricsFile != "" {
		collector = metrics.NewCollector()
		cfg.Metrics = collector
	}

	var (
		reports *store.FSStore
		samples *store.SampleWriter
	)
	if saveRun {
		var err error
		reports, err = store.NewFSStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to create report store: %w", err)
		}
		reports = reports.WithLogger(logger)

		samples, err = store.NewSampleWriter(dataDir, runID)
		if err != nil {
			return fmt.Errorf("failed to create sample writer: %w", err)
		}
		cfg.Samples = samples
	}

	outcome, runErr := bench.Run(cmd.Context(), cfg)

	if samples != nil {
		if err := samples.Close(); err != nil {
			logger.Warn("Failed to close sample file", "path", samples.Path(), "error", err)
		}
	}
	if outcome == nil {
		return runErr
	}

	var result *multierror.Error
	if collector != nil {
		if err := collector.WriteTextfile(metricsFile); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to write metrics: %w", err))
		} else {
			logger.Info("Wrote metrics", "path", metricsFile)
		}
	}
	if reports != nil {
		if err := reports.SaveReport(runID, outcome.Report()); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to save report: %w", err))
		} else {
			logger.Info("Saved report", "run_id", runID, "dir", reports.RunDir(runID))
		}
	}

	// runErr is only set in strict mode.
	return multierror.Append(result, runErr).ErrorOrNil()
}
