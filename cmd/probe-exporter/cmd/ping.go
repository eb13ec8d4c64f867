package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/probeexporter/internal/domain"
	"github.com/hamed0406/probeexporter/internal/metrics"
	"github.com/hamed0406/probeexporter/internal/probe"
)

func newPingCmd(g *globalFlags) *cobra.Command {
	var count int
	c := &cobra.Command{
		Use:   "ping <target>",
		Short: "Ping a target once and print the exposition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			target, err := domain.ParseTarget(args[0])
			if err != nil {
				return err
			}
			if cfg.MaxCount > 0 && count > cfg.MaxCount {
				return fmt.Errorf("%w: %d exceeds limit %d", domain.ErrInvalidCount, count, cfg.MaxCount)
			}
			req, err := domain.NewProbeRequest(target, count)
			if err != nil {
				return err
			}

			pinger := probe.NewPinger(probe.NewExecRunner(cfg.PingBinary, cfg.Ping6Binary), cliLogger(cmd))
			rep, err := pinger.Probe(cmd.Context(), req)
			if err != nil {
				return err
			}
			reg, err := metrics.NewRegistry(rep.Observations, metrics.Options{
				Help:   probe.Help,
				Labels: map[string]string{"target": req.Target.String()},
			})
			if err != nil {
				return err
			}
			return metrics.Write(cmd.OutOrStdout(), reg)
		},
	}
	c.Flags().IntVarP(&count, "count", "c", domain.DefaultCount, "number of echo requests")
	return c
}
