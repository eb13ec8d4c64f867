package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/probeexporter/internal/domain"
)

type fakeRunner struct {
	out   domain.RawOutput
	err   error
	calls int
}

func (f *fakeRunner) Run(_ context.Context, _ domain.ProbeRequest) (domain.RawOutput, error) {
	f.calls++
	return f.out, f.err
}

func TestPinger_Success(t *testing.T) {
	fr := &fakeRunner{out: domain.RawOutput{ExitCode: intp(0), Stdout: outOneProbe, Duration: 1500 * time.Millisecond}}
	p := NewPinger(fr, zap.NewNop())

	rep, err := p.Probe(context.Background(), mustRequest(t, "1.1.1.1", 1))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if fr.calls != 1 {
		t.Fatalf("want exactly one run, got %d", fr.calls)
	}
	obs := rep.Observations
	if obs[MetricTransmitted] != 1 || obs[MetricReceived] != 1 || obs[MetricPacketLoss] != 0 {
		t.Fatalf("unexpected observations: %v", obs)
	}
	if obs[MetricRTTAvg] != 7.537 || obs[MetricExitCode] != 0 {
		t.Fatalf("unexpected observations: %v", obs)
	}
	if obs[MetricUnrecognized] != 0 || obs[MetricDuration] != 1.5 {
		t.Fatalf("diagnostics wrong: %v", obs)
	}
	if rep.Unrecognized != nil {
		t.Fatalf("unexpected unrecognized line: %v", rep.Unrecognized)
	}
}

func TestPinger_UnrecognizedLineDegradesToPartial(t *testing.T) {
	stdout := "PING 1.1.1.1 (1.1.1.1) 56(84) bytes of data.\n" +
		"1 packets transmitted, 1 received, 0% packet loss, time 0ms\n" +
		"garbage output here\n" +
		"rtt min/avg/max/mdev = 7.537/7.537/7.537/0.000 ms\n"
	fr := &fakeRunner{out: domain.RawOutput{ExitCode: intp(0), Stdout: stdout}}
	p := NewPinger(fr, nil)

	rep, err := p.Probe(context.Background(), mustRequest(t, "1.1.1.1", 1))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if rep.Unrecognized == nil || rep.Unrecognized.Text != "garbage output here" {
		t.Fatalf("want unrecognized line reported, got %+v", rep.Unrecognized)
	}
	obs := rep.Observations
	if obs[MetricUnrecognized] != 1 {
		t.Fatalf("want diagnostic observation, got %v", obs)
	}
	if obs[MetricTransmitted] != 1 {
		t.Fatalf("partial summary missing: %v", obs)
	}
	if _, ok := obs[MetricRTTAvg]; ok {
		t.Fatalf("rtt after the bad line must be absent: %v", obs)
	}
}

func TestPinger_MalformedFails(t *testing.T) {
	fr := &fakeRunner{out: domain.RawOutput{ExitCode: intp(0), Stdout: "1 packets transmitted, x received, 0% packet loss\n"}}
	p := NewPinger(fr, nil)

	rep, err := p.Probe(context.Background(), mustRequest(t, "1.1.1.1", 1))
	var me *MalformedLineError
	if !errors.As(err, &me) {
		t.Fatalf("want MalformedLineError, got %v", err)
	}
	if rep.Observations != nil {
		t.Fatalf("no observations on malformed output, got %v", rep.Observations)
	}
}

func TestPinger_RunnerErrorPassesThrough(t *testing.T) {
	spawn := &SpawnError{Binary: "ping", Err: errors.New("not found")}
	p := NewPinger(&fakeRunner{err: spawn}, nil)

	_, err := p.Probe(context.Background(), mustRequest(t, "1.1.1.1", 1))
	var se *SpawnError
	if !errors.As(err, &se) {
		t.Fatalf("want SpawnError, got %v", err)
	}
}

func TestPinger_SignalledProcessReportsSentinel(t *testing.T) {
	fr := &fakeRunner{out: domain.RawOutput{Stdout: "PING 1.1.1.1 (1.1.1.1) 56(84) bytes of data.\n"}}
	p := NewPinger(fr, nil)

	rep, err := p.Probe(context.Background(), mustRequest(t, "1.1.1.1", 5))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if rep.Observations[MetricExitCode] != ExitCodeUnknown {
		t.Fatalf("want sentinel exit code, got %v", rep.Observations[MetricExitCode])
	}
	if _, ok := rep.Observations[MetricTransmitted]; ok {
		t.Fatalf("transmitted must be absent")
	}
}
