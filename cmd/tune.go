package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/ampbench/internal/accel"
	"github.com/cwbudde/ampbench/internal/bench"
	"github.com/cwbudde/ampbench/internal/tune"
)

var (
	tuneSize        int
	tuneRepeat      int
	tuneIters       int
	tunePopSize     int
	tuneSeed        int64
	tuneAccelerator string
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Search the fastest tile size of the tiled adder",
	Long: `Runs the mayfly optimizer over power-of-two tile sizes between 16 and 4096
and reports the tile size with the lowest mean elapsed time on the selected
accelerator.`,
	RunE: runTune,
}

func init() {
	tuneCmd.Flags().IntVar(&tuneSize, "size", 1<<20, "Vector length")
	tuneCmd.Flags().IntVar(&tuneRepeat, "repeat", 3, "Tiled runs averaged per candidate")
	tuneCmd.Flags().IntVar(&tuneIters, "iters", 20, "Max iterations")
	tuneCmd.Flags().IntVar(&tunePopSize, "pop", tune.MinPopSize, "Population size")
	tuneCmd.Flags().Int64Var(&tuneSeed, "seed", 42, "Random seed")
	tuneCmd.Flags().StringVar(&tuneAccelerator, "accelerator", "", "Device path of the accelerator (empty = default)")
	rootCmd.AddCommand(tuneCmd)
}

func runTune(cmd *cobra.Command, args []string) error {
	list, err := bench.DefaultEnumerator(logger).Accelerators()
	if err != nil {
		logger.Warn("Accelerator enumeration incomplete", "error", err)
	}
	defer release(list)

	acc, err := accel.Find(list, tuneAccelerator)
	if err != nil {
		return err
	}

	search, err := tune.NewTileSearch(acc, tune.NewMayfly(tuneIters, tunePopSize, tuneSeed), tune.Config{
		Size:   tuneSize,
		Repeat: tuneRepeat,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create tile search: %w", err)
	}

	logger.Info("Starting tile size search",
		"accelerator", acc.Describe().Path,
		"size", tuneSize,
		"iters", tuneIters,
		"pop", tunePopSize)

	res, err := search.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("tile size search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TILE SIZE\tMEAN\tERROR")
	fmt.Fprintln(w, "---------\t----\t-----")
	for _, t := range res.Trials {
		errStr := ""
		if t.Err != nil {
			errStr = t.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", t.TileSize, t.Mean, errStr)
	}
	w.Flush()

	fmt.Fprintf(out, "\nBest tile size on %s: %d (mean %s)\n", acc.Describe().Path, res.TileSize, res.Mean)
	return nil
}
