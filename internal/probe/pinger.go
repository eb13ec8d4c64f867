package probe

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hamed0406/probeexporter/internal/domain"
)

// Report is everything one ping probe produced.
type Report struct {
	Raw          domain.RawOutput
	Result       domain.PingResult
	Observations domain.Observations
	// Unrecognized is set when parsing stopped at a line of unknown shape;
	// Observations then covers only the lines before it.
	Unrecognized *UnrecognizedLineError
}

// Pinger wires Runner -> ParsePing -> MapPing for one request. It holds no
// per-request state and is safe for concurrent use.
type Pinger struct {
	Runner Runner
	Logger *zap.Logger
}

func NewPinger(r Runner, l *zap.Logger) *Pinger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Pinger{Runner: r, Logger: l}
}

// Probe runs one ping. Spawn failures, cancellation and malformed output are
// returned as errors. Output with an unrecognized line still yields a report:
// the partial observations plus probe_ping_output_unrecognized=1.
func (p *Pinger) Probe(ctx context.Context, req domain.ProbeRequest) (Report, error) {
	raw, err := p.Runner.Run(ctx, req)
	if err != nil {
		return Report{Raw: raw}, err
	}

	rep := Report{Raw: raw}
	res, perr := ParsePing(raw.Stdout)
	rep.Result = res

	var unrec *UnrecognizedLineError
	switch {
	case perr == nil:
	case errors.As(perr, &unrec):
		rep.Unrecognized = unrec
		p.Logger.Warn("ping_unrecognized_line",
			zap.String("target", req.Target.String()),
			zap.Int("line", unrec.Line),
			zap.String("text", unrec.Text),
		)
	default:
		p.Logger.Error("ping_malformed_output",
			zap.String("target", req.Target.String()),
			zap.String("stdout", raw.Stdout),
			zap.Error(perr),
		)
		return rep, perr
	}

	obs := MapPing(res, raw.ExitCode)
	obs[MetricDuration] = raw.Duration.Seconds()
	if rep.Unrecognized != nil {
		obs[MetricUnrecognized] = 1
	} else {
		obs[MetricUnrecognized] = 0
	}
	rep.Observations = obs

	p.Logger.Debug("ping_probe",
		zap.String("target", req.Target.String()),
		zap.Int("count", req.Count),
		zap.Intp("exit_code", raw.ExitCode),
		zap.Duration("duration", raw.Duration),
		zap.String("stderr", raw.Stderr),
	)
	return rep, nil
}
