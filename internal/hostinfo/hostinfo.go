package hostinfo

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const bytesPerMB = 1024 * 1024

// Info is a read-only snapshot of the host environment.
//
// Info is computed fresh per request and has no identity beyond it.
type Info struct {
	Hostname      string `json:"hostname"`
	Platform      string `json:"platform"`
	Architecture  string `json:"architecture"`
	UptimeMinutes uint64 `json:"uptime_minutes"`
	FreeMemoryMB  uint64 `json:"free_memory_mb"`
	TotalMemoryMB uint64 `json:"total_memory_mb"`
	CPUCount      int    `json:"cpu_count"`
}

// Probe gathers a snapshot of host state.
//
// Implementations must be safe for concurrent use.
type Probe interface {
	Snapshot(ctx context.Context) (Info, error)
}

// SystemProbe reads the live host through gopsutil.
type SystemProbe struct{}

// NewSystemProbe returns a [Probe] backed by the running host.
func NewSystemProbe() SystemProbe {
	return SystemProbe{}
}

// Snapshot implements [Probe].
//
// Uptime is floored to whole minutes, memory is rounded to the nearest
// megabyte and CPU count is the number of logical CPUs.
func (SystemProbe) Snapshot(ctx context.Context) (Info, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read host info: %w", err)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read memory stats: %w", err)
	}

	cpus, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return Info{}, fmt.Errorf("failed to count cpus: %w", err)
	}
	if cpus < 1 {
		// some containers hide /proc/cpuinfo; the scheduler view is still valid
		cpus = runtime.NumCPU()
	}

	platform := hi.OS
	if platform == "" {
		platform = runtime.GOOS
	}
	arch := hi.KernelArch
	if arch == "" {
		arch = runtime.GOARCH
	}

	return Info{
		Hostname:      hi.Hostname,
		Platform:      platform,
		Architecture:  arch,
		UptimeMinutes: hi.Uptime / 60,
		FreeMemoryMB:  toMB(vm.Available),
		TotalMemoryMB: toMB(vm.Total),
		CPUCount:      cpus,
	}, nil
}

// toMB converts bytes to megabytes, rounding half up.
func toMB(b uint64) uint64 {
	return (b + bytesPerMB/2) / bytesPerMB
}

// StaticProbe is a [Probe] that always returns the same snapshot.
type StaticProbe struct {
	Info Info
	Err  error
}

// Snapshot implements [Probe].
func (p StaticProbe) Snapshot(_ context.Context) (Info, error) {
	if p.Err != nil {
		return Info{}, p.Err
	}
	return p.Info, nil
}
