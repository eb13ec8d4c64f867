package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/probeexporter/internal/config"
	"github.com/hamed0406/probeexporter/internal/hoststats"
	"github.com/hamed0406/probeexporter/internal/httpapi"
	"github.com/hamed0406/probeexporter/internal/logging"
	"github.com/hamed0406/probeexporter/internal/probe"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve probe endpoints over HTTP",
		Long: "Serve /probe/ping, /probe/system[/load|cpu|memory|swap], /info and /healthz\n" +
			"on every configured listen address until SIGINT or SIGTERM.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, cfg.LogStderr)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, logger, cfg.Addrs, newServer(cfg, logger).Router(), cfg.ShutdownTimeout)
		},
	}
}

func newServer(cfg config.Config, logger *zap.Logger) *httpapi.Server {
	pinger := probe.NewPinger(probe.NewExecRunner(cfg.PingBinary, cfg.Ping6Binary), logger)
	return httpapi.NewServer(logger, pinger, hoststats.NewCollector(hoststats.Gopsutil{}), httpapi.Options{
		MaxCount:       cfg.MaxCount,
		APIKeys:        cfg.APIKeys,
		AllowedOrigins: cfg.AllowedOrigins,
		RateRPM:        cfg.RateRPM,
		RateBurst:      cfg.RateBurst,
		Version:        buildVersion,
		Commit:         buildCommit,
		Date:           buildDate,
	})
}

// serve binds every address it can and serves h on each until ctx is done.
// It fails only when no address could be bound.
func serve(ctx context.Context, logger *zap.Logger, addrs []string, h http.Handler, shutdownTimeout time.Duration) error {
	var listeners []net.Listener
	for _, addr := range addrs {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Warn("listen_error", zap.String("addr", addr), zap.Error(err))
			continue
		}
		listeners = append(listeners, ln)
	}
	if len(listeners) == 0 {
		return fmt.Errorf("could not listen on any of %v", addrs)
	}

	g, gctx := errgroup.WithContext(ctx)
	servers := make([]*http.Server, 0, len(listeners))
	for _, ln := range listeners {
		hs := &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		}
		servers = append(servers, hs)

		g.Go(func() error {
			logger.Info("api_listen", zap.String("addr", ln.Addr().String()))
			if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", ln.Addr(), err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var firstErr error
		for _, hs := range servers {
			if err := hs.Shutdown(sctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		logger.Info("api_stopped")
		return firstErr
	})

	return g.Wait()
}
