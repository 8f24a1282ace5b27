package main

import (
	"github.com/spf13/cobra"

	"github.com/cwbudde/ampbench/internal/accel"
	"github.com/cwbudde/ampbench/internal/bench"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the accelerators compatible with ampbench",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := accel.QuerySupport(cmd.OutOrStdout(), bench.DefaultEnumerator(logger))
		if err != nil {
			logger.Warn("Accelerator enumeration incomplete", "error", err)
		}
		return accel.CloseAll(list)
	},
}

// release closes accelerators a command is done with, logging failures.
func release(list []accel.Accelerator) {
	if err := accel.CloseAll(list); err != nil {
		logger.Warn("Failed to release accelerators", "error", err)
	}
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
