// Package cmd implements the probe-exporter CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hamed0406/probeexporter/internal/config"
)

// Build info set from main.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo sets the version info from build-time ldflags.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
}

type globalFlags struct {
	cfgFile  string
	logLevel string
}

// NewRootCmd builds the command tree. A fresh tree per call keeps flag state
// out of package globals.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "probe-exporter",
		Short: "probe-exporter runs ping and host probes for Prometheus",
		Long: "probe-exporter is an HTTP exporter that runs a probe on every scrape:\n" +
			"an ICMP reachability check through the system ping tool, or a read of the\n" +
			"local host's load, CPU, memory and swap. Results are served as Prometheus\n" +
			"text exposition.",
		Version:      buildVersion,
		SilenceUsage:  true,
	}
	root.SetVersionTemplate(fmt.Sprintf("probe-exporter version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))

	root.PersistentFlags().StringVar(&g.cfgFile, "config", "", "YAML config file (optional)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error), overrides config")

	root.AddCommand(
		newServeCmd(g),
		newPingCmd(g),
		newSystemCmd(g),
		newPreflightCmd(g),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig resolves defaults, file, environment and flags, in that order.
func (g *globalFlags) loadConfig() (config.Config, error) {
	cfg, err := config.Load(g.cfgFile)
	if err != nil {
		return cfg, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// cliLogger reports warnings of one-shot commands on the command's stderr.
func cliLogger(cmd *cobra.Command) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(cmd.ErrOrStderr()), zap.WarnLevel)
	return zap.New(core)
}
