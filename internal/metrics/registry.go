// Package metrics turns observation sets into Prometheus exposition.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"runtime"
	"slices"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/hamed0406/probeexporter/internal/domain"
)

// Options control how observations are exposed.
type Options struct {
	// Help maps a metric name to its HELP text. Missing names get a generic one.
	Help map[string]string
	// Labels are constant labels attached to every series.
	Labels map[string]string
}

// observationCollector exposes a fixed set of values as const metrics.
type observationCollector struct {
	descs    map[string]*prometheus.Desc
	values   domain.Observations
	families map[string]*family
}

// family is the labelled series sharing one name. Every sample carries the
// same label keys.
type family struct {
	desc    *prometheus.Desc
	keys    []string
	samples []domain.Sample
}

func (c *observationCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
	for _, f := range c.families {
		ch <- f.desc
	}
}

func (c *observationCollector) Collect(ch chan<- prometheus.Metric) {
	for name, v := range c.values {
		ch <- prometheus.MustNewConstMetric(c.descs[name], valueType(name), v)
	}
	for name, f := range c.families {
		for _, s := range f.samples {
			lv := make([]string, len(f.keys))
			for i, k := range f.keys {
				lv[i] = s.Labels[k]
			}
			ch <- prometheus.MustNewConstMetric(f.desc, valueType(name), s.Value, lv...)
		}
	}
}

// Names ending in _total are counters, everything else is a gauge.
func valueType(name string) prometheus.ValueType {
	if strings.HasSuffix(name, "_total") {
		return prometheus.CounterValue
	}
	return prometheus.GaugeValue
}

func helpFor(opts Options, name string) string {
	if h := opts.Help[name]; h != "" {
		return h
	}
	return "Observation " + name + "."
}

func labelKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewRegistry builds a throwaway registry holding exactly obs and series. One
// registry is created per scrape; nothing is shared between requests.
func NewRegistry(obs domain.Observations, opts Options, series ...domain.Sample) (*prometheus.Registry, error) {
	c := &observationCollector{
		descs:    make(map[string]*prometheus.Desc, len(obs)),
		values:   obs,
		families: map[string]*family{},
	}
	for name := range obs {
		c.descs[name] = prometheus.NewDesc(name, helpFor(opts, name), nil, prometheus.Labels(opts.Labels))
	}

	for _, s := range series {
		f, ok := c.families[s.Name]
		if !ok {
			if _, dup := obs[s.Name]; dup {
				return nil, fmt.Errorf("%s is exposed both with and without labels", s.Name)
			}
			keys := labelKeys(s.Labels)
			f = &family{
				desc: prometheus.NewDesc(s.Name, helpFor(opts, s.Name), keys, prometheus.Labels(opts.Labels)),
				keys: keys,
			}
			c.families[s.Name] = f
		} else if !slices.Equal(f.keys, labelKeys(s.Labels)) {
			return nil, fmt.Errorf("%s: label keys %v differ from %v", s.Name, labelKeys(s.Labels), f.keys)
		}
		f.samples = append(f.samples, s)
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return nil, fmt.Errorf("register observations: %w", err)
	}
	return reg, nil
}

// Handler serves reg with content negotiation.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// Write renders reg in the text exposition format.
func Write(w io.Writer, reg prometheus.Gatherer) error {
	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// BuildInfoName is the gauge carrying build metadata as labels.
const BuildInfoName = "probe_exporter_build_info"

// BuildInfo builds a registry with a single always-1 gauge labelled with
// the build metadata.
func BuildInfo(version, commit, date string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: BuildInfoName,
		Help: "Build information about probe-exporter.",
	}, []string{"version", "commit", "date", "goversion"})
	g.WithLabelValues(version, commit, date, runtime.Version()).Set(1)
	reg.MustRegister(g)
	return reg
}
