package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/probeexporter/internal/hoststats"
	"github.com/hamed0406/probeexporter/internal/metrics"
)

func newSystemCmd(_ *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "system [load|cpu|memory|swap]",
		Short:     "Print host statistics once",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"load", "cpu", "memory", "swap"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystem(cmd, hoststats.NewCollector(hoststats.Gopsutil{}), args)
		},
	}
}

func runSystem(cmd *cobra.Command, c *hoststats.Collector, args []string) error {
	group := ""
	if len(args) == 1 {
		group = args[0]
	}
	collect, ok := c.Group(group)
	if !ok {
		return fmt.Errorf("unknown group %q", group)
	}

	snap, err := collect(cmd.Context())
	if err != nil {
		if snap.Empty() {
			return err
		}
		cliLogger(cmd).Warn("hoststats_error", zap.Error(err))
	}
	reg, err := metrics.NewRegistry(snap.Values, metrics.Options{Help: hoststats.Help}, snap.Series...)
	if err != nil {
		return err
	}
	return metrics.Write(cmd.OutOrStdout(), reg)
}
