// Package hoststats reads load, CPU, memory and swap figures from the local
// host through gopsutil and returns them as observations, plus a labelled
// per-OS memory breakdown.
package hoststats

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/multierr"

	"github.com/hamed0406/probeexporter/internal/domain"
)

const (
	MetricLoad1  = "system_load_1"
	MetricLoad5  = "system_load_5"
	MetricLoad15 = "system_load_15"

	MetricCPUUser      = "system_cpu_user_seconds_total"
	MetricCPUNice      = "system_cpu_nice_seconds_total"
	MetricCPUSystem    = "system_cpu_system_seconds_total"
	MetricCPUIrq       = "system_cpu_irq_seconds_total"
	MetricCPUIdle      = "system_cpu_idle_seconds_total"
	MetricCPUCoreCount = "system_cpu_core_count"

	MetricMemTotal     = "system_memory_total_bytes"
	MetricMemFree      = "system_memory_free_bytes"
	MetricMemAvailable = "system_memory_available_bytes"
	MetricMemUsed      = "system_memory_used_bytes"

	// MetricMemPlatform carries os and name labels.
	MetricMemPlatform = "system_memory_platform_bytes"

	MetricSwapTotal = "system_swap_total_bytes"
	MetricSwapFree  = "system_swap_free_bytes"
	MetricSwapUsed  = "system_swap_used_bytes"
)

var Help = map[string]string{
	MetricLoad1:        "System load average over 1 minute.",
	MetricLoad5:        "System load average over 5 minutes.",
	MetricLoad15:       "System load average over 15 minutes.",
	MetricCPUUser:      "CPU time spent in user mode, summed over all CPUs.",
	MetricCPUNice:      "CPU time spent in niced user mode, summed over all CPUs.",
	MetricCPUSystem:    "CPU time spent in kernel mode, summed over all CPUs.",
	MetricCPUIrq:       "CPU time spent servicing interrupts, summed over all CPUs.",
	MetricCPUIdle:      "CPU time spent idle, summed over all CPUs.",
	MetricCPUCoreCount: "Number of logical CPUs available.",
	MetricMemTotal:     "Total memory in the system.",
	MetricMemFree:      "Free memory in the system.",
	MetricMemAvailable: "Memory available for new allocations.",
	MetricMemUsed:      "Used memory in the system.",
	MetricMemPlatform:  "Platform specific memory information.",
	MetricSwapTotal:    "Total swap in the system.",
	MetricSwapFree:     "Free swap in the system.",
	MetricSwapUsed:     "Used swap in the system.",
}

// Source is the slice of gopsutil the collector needs.
type Source interface {
	Load(ctx context.Context) (*load.AvgStat, error)
	CPUTimes(ctx context.Context) ([]cpu.TimesStat, error)
	CPUCount(ctx context.Context) (int, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error)
}

// Gopsutil reads from the running host.
type Gopsutil struct{}

func (Gopsutil) Load(ctx context.Context) (*load.AvgStat, error) {
	return load.AvgWithContext(ctx)
}

func (Gopsutil) CPUTimes(ctx context.Context) ([]cpu.TimesStat, error) {
	return cpu.TimesWithContext(ctx, false)
}

func (Gopsutil) CPUCount(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}

func (Gopsutil) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (Gopsutil) SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error) {
	return mem.SwapMemoryWithContext(ctx)
}

// Snapshot is what one group read: plain values plus labelled series.
type Snapshot struct {
	Values domain.Observations
	Series []domain.Sample
}

func (s Snapshot) Empty() bool { return len(s.Values) == 0 && len(s.Series) == 0 }

type Collector struct {
	Source Source
	// OS selects the platform memory breakdown; runtime.GOOS by default.
	OS string
}

func NewCollector(s Source) *Collector {
	if s == nil {
		s = Gopsutil{}
	}
	return &Collector{Source: s, OS: runtime.GOOS}
}

func (c *Collector) Load(ctx context.Context) (Snapshot, error) {
	avg, err := c.Source.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load average: %w", err)
	}
	return Snapshot{Values: domain.Observations{
		MetricLoad1:  avg.Load1,
		MetricLoad5:  avg.Load5,
		MetricLoad15: avg.Load15,
	}}, nil
}

// CPU sums the aggregate times across every entry gopsutil returns. The core
// count is reported even when times are unavailable.
func (c *Collector) CPU(ctx context.Context) (Snapshot, error) {
	obs := domain.Observations{}
	var errs error

	times, err := c.Source.CPUTimes(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("cpu times: %w", err))
	} else {
		var sum cpu.TimesStat
		for _, t := range times {
			sum.User += t.User
			sum.Nice += t.Nice
			sum.System += t.System
			sum.Irq += t.Irq
			sum.Idle += t.Idle
		}
		obs[MetricCPUUser] = sum.User
		obs[MetricCPUNice] = sum.Nice
		obs[MetricCPUSystem] = sum.System
		obs[MetricCPUIrq] = sum.Irq
		obs[MetricCPUIdle] = sum.Idle
	}

	n, err := c.Source.CPUCount(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("cpu count: %w", err))
	} else {
		obs[MetricCPUCoreCount] = float64(n)
	}
	return Snapshot{Values: obs}, errs
}

func (c *Collector) Memory(ctx context.Context) (Snapshot, error) {
	vm, err := c.Source.VirtualMemory(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("virtual memory: %w", err)
	}
	return Snapshot{
		Values: domain.Observations{
			MetricMemTotal:     float64(vm.Total),
			MetricMemFree:      float64(vm.Free),
			MetricMemAvailable: float64(vm.Available),
			MetricMemUsed:      float64(vm.Used),
		},
		Series: platformMemory(c.OS, vm),
	}, nil
}

// platformMemory breaks memory down the way the OS itself reports it. Linux
// entries use the lowercased /proc/meminfo keys. Other systems get nothing.
func platformMemory(goos string, vm *mem.VirtualMemoryStat) []domain.Sample {
	var out []domain.Sample
	add := func(name string, v uint64) {
		out = append(out, domain.Sample{
			Name:   MetricMemPlatform,
			Labels: map[string]string{"os": goos, "name": name},
			Value:  float64(v),
		})
	}

	switch goos {
	case "linux":
		add("memtotal", vm.Total)
		add("memfree", vm.Free)
		add("memavailable", vm.Available)
		add("buffers", vm.Buffers)
		add("cached", vm.Cached)
		add("swapcached", vm.SwapCached)
		add("active", vm.Active)
		add("inactive", vm.Inactive)
		add("dirty", vm.Dirty)
		add("writeback", vm.WriteBack)
		add("mapped", vm.Mapped)
		add("shmem", vm.Shared)
		add("slab", vm.Slab)
		add("sreclaimable", vm.Sreclaimable)
		add("sunreclaim", vm.Sunreclaim)
		add("pagetables", vm.PageTables)
		add("commitlimit", vm.CommitLimit)
		add("committed_as", vm.CommittedAS)
	case "freebsd":
		add("active", vm.Active)
		add("inactive", vm.Inactive)
		add("wired", vm.Wired)
		add("cache", vm.Cached)
		add("laundry", vm.Laundry)
		add("free", vm.Free)
	case "darwin":
		add("active", vm.Active)
		add("inactive", vm.Inactive)
		add("wired", vm.Wired)
		add("free", vm.Free)
	default:
		return nil
	}
	return out
}

func (c *Collector) Swap(ctx context.Context) (Snapshot, error) {
	sw, err := c.Source.SwapMemory(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("swap memory: %w", err)
	}
	return Snapshot{Values: domain.Observations{
		MetricSwapTotal: float64(sw.Total),
		MetricSwapFree:  float64(sw.Free),
		MetricSwapUsed:  float64(sw.Used),
	}}, nil
}

// All runs every group. Whatever succeeded is returned together with the
// combined error of the groups that failed.
func (c *Collector) All(ctx context.Context) (Snapshot, error) {
	all := Snapshot{Values: domain.Observations{}}
	var errs error
	for _, fn := range []func(context.Context) (Snapshot, error){c.Load, c.CPU, c.Memory, c.Swap} {
		snap, err := fn(ctx)
		errs = multierr.Append(errs, err)
		all.Values.Merge(snap.Values)
		all.Series = append(all.Series, snap.Series...)
	}
	return all, errs
}

// Group returns the collection function for a named group.
func (c *Collector) Group(name string) (func(context.Context) (Snapshot, error), bool) {
	switch name {
	case "", "all":
		return c.All, true
	case "load":
		return c.Load, true
	case "cpu":
		return c.CPU, true
	case "memory":
		return c.Memory, true
	case "swap":
		return c.Swap, true
	default:
		return nil, false
	}
}
