package probe

import "github.com/hamed0406/probeexporter/internal/domain"

const (
	MetricTransmitted  = "probe_ping_packets_transmitted"
	MetricReceived     = "probe_ping_packets_received"
	MetricDuplicates   = "probe_ping_packets_duplicated"
	MetricErrors       = "probe_ping_packets_errored"
	MetricPacketLoss   = "probe_ping_packet_loss_percent"
	MetricElapsed      = "probe_ping_time_milliseconds"
	MetricRTTMin       = "probe_ping_rtt_min_milliseconds"
	MetricRTTAvg       = "probe_ping_rtt_avg_milliseconds"
	MetricRTTMax       = "probe_ping_rtt_max_milliseconds"
	MetricRTTMdev      = "probe_ping_rtt_mdev_milliseconds"
	MetricExitCode     = "probe_ping_exit_code"
	MetricUnrecognized = "probe_ping_output_unrecognized"
	MetricDuration     = "probe_ping_duration_seconds"
)

// ExitCodeUnknown is reported when the ping process did not exit normally.
const ExitCodeUnknown = -1

// Help holds the HELP text for every name the ping pipeline can emit.
var Help = map[string]string{
	MetricTransmitted:  "Echo requests sent by ping.",
	MetricReceived:     "Echo replies received by ping.",
	MetricDuplicates:   "Duplicate replies reported by ping.",
	MetricErrors:       "ICMP errors reported by ping.",
	MetricPacketLoss:   "Packet loss reported by ping, in percent.",
	MetricElapsed:      "Total time reported by ping, in milliseconds.",
	MetricRTTMin:       "Minimum round-trip time, in milliseconds.",
	MetricRTTAvg:       "Average round-trip time, in milliseconds.",
	MetricRTTMax:       "Maximum round-trip time, in milliseconds.",
	MetricRTTMdev:      "Round-trip time deviation, in milliseconds.",
	MetricExitCode:     "Exit code of the ping process, -1 if it did not exit normally.",
	MetricUnrecognized: "1 if ping printed a line the exporter could not classify.",
	MetricDuration:     "Wall time spent running ping, in seconds.",
}

// MapPing converts a parse result into observations. Fields that are nil in
// res produce no observation; the exit code is always present.
func MapPing(res domain.PingResult, exitCode *int) domain.Observations {
	obs := domain.Observations{}

	putInt(obs, MetricTransmitted, res.Transmitted)
	putInt(obs, MetricReceived, res.Received)
	putInt(obs, MetricDuplicates, res.Duplicates)
	putInt(obs, MetricErrors, res.Errors)
	putInt(obs, MetricElapsed, res.ElapsedMS)
	putFloat(obs, MetricPacketLoss, res.PacketLoss)
	putFloat(obs, MetricRTTMin, res.RTTMin)
	putFloat(obs, MetricRTTAvg, res.RTTAvg)
	putFloat(obs, MetricRTTMax, res.RTTMax)
	putFloat(obs, MetricRTTMdev, res.RTTMdev)

	code := ExitCodeUnknown
	if exitCode != nil {
		code = *exitCode
	}
	obs[MetricExitCode] = float64(code)

	return obs
}

func putInt(obs domain.Observations, name string, v *int64) {
	if v != nil {
		obs[name] = float64(*v)
	}
}

func putFloat(obs domain.Observations, name string, v *float64) {
	if v != nil {
		obs[name] = *v
	}
}
