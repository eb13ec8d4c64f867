package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hamed0406/probeexporter/internal/domain"
)

func TestNewRegistry_GaugesCountersAndLabels(t *testing.T) {
	obs := domain.Observations{
		"probe_ping_packets_received":    3,
		"system_cpu_user_seconds_total": 12.5,
	}
	reg, err := NewRegistry(obs, Options{
		Help:   map[string]string{"probe_ping_packets_received": "Echo replies received by ping."},
		Labels: map[string]string{"target": "1.1.1.1"},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	want := `
# HELP probe_ping_packets_received Echo replies received by ping.
# TYPE probe_ping_packets_received gauge
probe_ping_packets_received{target="1.1.1.1"} 3
# HELP system_cpu_user_seconds_total Observation system_cpu_user_seconds_total.
# TYPE system_cpu_user_seconds_total counter
system_cpu_user_seconds_total{target="1.1.1.1"} 12.5
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want)); err != nil {
		t.Fatalf("exposition mismatch: %v", err)
	}
}

func TestNewRegistry_EmptySet(t *testing.T) {
	reg, err := NewRegistry(domain.Observations{}, Options{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if n, err := testutil.GatherAndCount(reg); err != nil || n != 0 {
		t.Fatalf("want no series, got %d err=%v", n, err)
	}
}

func TestNewRegistry_InvalidName(t *testing.T) {
	if _, err := NewRegistry(domain.Observations{"bad name": 1}, Options{}); err == nil {
		t.Fatalf("want error for invalid metric name")
	}
}

func TestWrite_TextFormat(t *testing.T) {
	reg, err := NewRegistry(domain.Observations{"probe_ping_exit_code": 0}, Options{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, reg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "probe_ping_exit_code 0\n") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestHandler_ServesExposition(t *testing.T) {
	reg, _ := NewRegistry(domain.Observations{"probe_ping_packet_loss_percent": 33.3}, Options{})
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "probe_ping_packet_loss_percent 33.3") {
		t.Fatalf("missing series:\n%s", rec.Body.String())
	}
}

func TestBuildInfo(t *testing.T) {
	reg := BuildInfo("1.2.3", "abc123", "2026-01-01")
	want := `
# HELP probe_exporter_build_info Build information about probe-exporter.
# TYPE probe_exporter_build_info gauge
probe_exporter_build_info{commit="abc123",date="2026-01-01",goversion="` + runtime.Version() + `",version="1.2.3"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), BuildInfoName); err != nil {
		t.Fatalf("build info mismatch: %v", err)
	}
}

func TestNewRegistry_LabelledSeries(t *testing.T) {
	series := []domain.Sample{
		{Name: "system_memory_platform_bytes", Labels: map[string]string{"os": "linux", "name": "cached"}, Value: 150},
		{Name: "system_memory_platform_bytes", Labels: map[string]string{"os": "linux", "name": "buffers"}, Value: 30},
	}
	reg, err := NewRegistry(domain.Observations{"system_memory_total_bytes": 1000}, Options{
		Help:   map[string]string{"system_memory_platform_bytes": "Platform specific memory information."},
		Labels: map[string]string{"host": "a"},
	}, series...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	want := `
# HELP system_memory_platform_bytes Platform specific memory information.
# TYPE system_memory_platform_bytes gauge
system_memory_platform_bytes{host="a",name="buffers",os="linux"} 30
system_memory_platform_bytes{host="a",name="cached",os="linux"} 150
# HELP system_memory_total_bytes Observation system_memory_total_bytes.
# TYPE system_memory_total_bytes gauge
system_memory_total_bytes{host="a"} 1000
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want)); err != nil {
		t.Fatalf("exposition mismatch: %v", err)
	}
}

func TestNewRegistry_LabelledSeriesErrors(t *testing.T) {
	mixedKeys := []domain.Sample{
		{Name: "m", Labels: map[string]string{"os": "linux"}, Value: 1},
		{Name: "m", Labels: map[string]string{"name": "x"}, Value: 2},
	}
	if _, err := NewRegistry(nil, Options{}, mixedKeys...); err == nil {
		t.Fatalf("want error for differing label keys")
	}

	clash := domain.Sample{Name: "m", Labels: map[string]string{"os": "linux"}, Value: 1}
	if _, err := NewRegistry(domain.Observations{"m": 1}, Options{}, clash); err == nil {
		t.Fatalf("want error for a name exposed with and without labels")
	}
}
