package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/probeexporter/internal/httpapi/middleware"
	"github.com/hamed0406/probeexporter/internal/hoststats"
	"github.com/hamed0406/probeexporter/internal/metrics"
	"github.com/hamed0406/probeexporter/internal/probe"
)

// Options are the request-boundary settings of the server.
type Options struct {
	MaxCount       int // 0 = unlimited
	APIKeys        []string
	AllowedOrigins []string
	RateRPM        int
	RateBurst      int

	Version string
	Commit  string
	Date    string
}

type Server struct {
	Logger *zap.Logger
	Pinger *probe.Pinger
	Host   *hoststats.Collector
	Opts   Options

	buildInfo *prometheus.Registry
}

func NewServer(l *zap.Logger, p *probe.Pinger, h *hoststats.Collector, opts Options) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{
		Logger:    l,
		Pinger:    p,
		Host:      h,
		Opts:      opts,
		buildInfo: metrics.BuildInfo(opts.Version, opts.Commit, opts.Date),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(apimw.AccessLog(s.Logger))
	r.Use(chimw.Recoverer)

	origins := s.Opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "X-API-Key"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireKey(s.Opts.APIKeys))
		r.Use(apimw.RateLimit(s.Opts.RateRPM, s.Opts.RateBurst))

		r.Get("/probe/ping", s.handlePing)
		r.Get("/probe/system", s.handleSystem)
		r.Get("/probe/system/{group}", s.handleSystem)
		r.Get("/info", s.handleInfo)
	})

	return r
}
