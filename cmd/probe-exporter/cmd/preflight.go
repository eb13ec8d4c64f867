package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

func newPreflightCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check the configuration and environment before serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			failed := 0
			fail := func(msg string) {
				fmt.Fprintln(errOut, "✖", msg)
				failed++
			}
			warn := func(msg string) { fmt.Fprintln(errOut, "⚠", msg) }
			ok := func(msg string) { fmt.Fprintln(out, "✔", msg) }

			cfg, err := g.loadConfig()
			if err != nil {
				fail(err.Error())
				return errors.New("preflight failed")
			}
			ok("configuration valid")
			ok("ADDR=" + strings.Join(cfg.Addrs, ","))

			if path, err := exec.LookPath(cfg.PingBinary); err != nil {
				fail(fmt.Sprintf("ping binary %q not found: %v", cfg.PingBinary, err))
			} else {
				ok("ping binary " + path)
			}
			if cfg.Ping6Binary != "" {
				if path, err := exec.LookPath(cfg.Ping6Binary); err != nil {
					fail(fmt.Sprintf("ping6 binary %q not found: %v", cfg.Ping6Binary, err))
				} else {
					ok("ping6 binary " + path)
				}
			}

			if err := checkWritable(cfg.LogDir); err != nil {
				fail(fmt.Sprintf("log dir %s not writable: %v", cfg.LogDir, err))
			} else {
				ok("log dir " + cfg.LogDir)
			}

			if len(cfg.APIKeys) == 0 {
				warn("API_KEYS empty; probe endpoints are open to anyone who can reach them.")
			}
			for _, k := range cfg.APIKeys {
				if strings.ContainsAny(k, " \t") {
					warn("API_KEYS contains spaces; use comma-separated with no spaces, e.g. key1,key2")
					break
				}
			}
			if cfg.MaxCount == 0 {
				warn("PING_MAX_COUNT is 0; a scrape may request any number of echoes.")
			}

			if failed > 0 {
				return fmt.Errorf("preflight failed: %d check(s)", failed)
			}
			ok("preflight passed")
			return nil
		},
	}
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".preflight-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
