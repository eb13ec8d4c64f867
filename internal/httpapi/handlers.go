package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/probeexporter/internal/domain"
	"github.com/hamed0406/probeexporter/internal/hoststats"
	"github.com/hamed0406/probeexporter/internal/metrics"
	"github.com/hamed0406/probeexporter/internal/probe"
)

// parsePingRequest validates the query; any error here is the client's.
func (s *Server) parsePingRequest(r *http.Request) (domain.ProbeRequest, error) {
	q := r.URL.Query()
	target, err := domain.ParseTarget(q.Get("target"))
	if err != nil {
		return domain.ProbeRequest{}, err
	}
	count, err := domain.ParseCount(q.Get("count"))
	if err != nil {
		return domain.ProbeRequest{}, err
	}
	if s.Opts.MaxCount > 0 && count > s.Opts.MaxCount {
		return domain.ProbeRequest{}, fmt.Errorf("%w: %d exceeds limit %d", domain.ErrInvalidCount, count, s.Opts.MaxCount)
	}
	return domain.NewProbeRequest(target, count)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	req, err := s.parsePingRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rep, err := s.Pinger.Probe(r.Context(), req)
	if err != nil {
		if r.Context().Err() != nil {
			// client went away; the ping process has been killed
			s.Logger.Info("ping_cancelled",
				zap.String("target", req.Target.String()),
				zap.Error(err),
			)
			return
		}

		var spawn *probe.SpawnError
		var malformed *probe.MalformedLineError
		switch {
		case errors.As(err, &spawn):
			s.Logger.Error("ping_spawn_error", zap.String("binary", spawn.Binary), zap.Error(spawn.Err))
			http.Error(w, "probe unavailable", http.StatusInternalServerError)
		case errors.As(err, &malformed):
			http.Error(w, "unexpected ping output: "+malformed.Error(), http.StatusBadGateway)
		default:
			s.Logger.Error("ping_error", zap.String("target", req.Target.String()), zap.Error(err))
			http.Error(w, "probe failed", http.StatusInternalServerError)
		}
		return
	}

	s.render(w, r, rep.Observations, metrics.Options{
		Help:   probe.Help,
		Labels: map[string]string{"target": req.Target.String()},
	})
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	collect, ok := s.Host.Group(group)
	if !ok {
		http.Error(w, "unknown group "+group, http.StatusNotFound)
		return
	}

	snap, err := collect(r.Context())
	if err != nil {
		s.Logger.Warn("hoststats_error",
			zap.String("group", group),
			zap.Errors("errors", multierr.Errors(err)),
		)
		if snap.Empty() {
			http.Error(w, "host statistics unavailable", http.StatusInternalServerError)
			return
		}
	}

	s.render(w, r, snap.Values, metrics.Options{Help: hoststats.Help}, snap.Series...)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	metrics.Handler(s.buildInfo).ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, obs domain.Observations, opts metrics.Options, series ...domain.Sample) {
	reg, err := metrics.NewRegistry(obs, opts, series...)
	if err != nil {
		s.Logger.Error("render_error", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	metrics.Handler(reg).ServeHTTP(w, r)
}
