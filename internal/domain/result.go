package domain

import (
	"sort"
	"time"
)

// RawOutput is what the probe tool left behind. ExitCode is nil when the
// process did not exit on its own (killed by a signal).
type RawOutput struct {
	ExitCode *int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// PingResult is the parsed ping summary. A nil field means the line carrying
// it was not in the output; it is never the same thing as zero.
type PingResult struct {
	Transmitted *int64   `json:"transmitted"`
	Received    *int64   `json:"received"`
	Duplicates  *int64   `json:"duplicates"`
	Errors      *int64   `json:"errors"`
	PacketLoss  *float64 `json:"packet_loss"` // percentage
	ElapsedMS   *int64   `json:"elapsed_ms"`
	RTTMin      *float64 `json:"rtt_min_ms"`
	RTTAvg      *float64 `json:"rtt_avg_ms"`
	RTTMax      *float64 `json:"rtt_max_ms"`
	RTTMdev     *float64 `json:"rtt_mdev_ms"`
}

// Observations maps a metric name to its value for one scrape.
type Observations map[string]float64

// Merge copies o2 into o, overwriting duplicates.
func (o Observations) Merge(o2 Observations) {
	for k, v := range o2 {
		o[k] = v
	}
}

func (o Observations) Names() []string {
	names := make([]string, 0, len(o))
	for k := range o {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Sample is one labelled series of a metric family, for values that do not
// fit a single name such as a per-OS memory breakdown.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}
