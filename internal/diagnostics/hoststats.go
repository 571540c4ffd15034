package diagnostics

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is the subset of host resource usage /healthz reports.
// Grounded on the teacher's HealthChecker.RuntimeStats, generalized
// from Go-runtime-only figures (goroutines, heap) to host-OS figures
// via gopsutil, since an embedded scripting runtime cares about the
// machine it shares with the rest of the application, not just its own
// heap.
type HostStats struct {
	CPUPercent  float64 `json:"cpuPercent"`
	MemUsedPct  float64 `json:"memUsedPercent"`
	MemTotalMB  uint64  `json:"memTotalMb"`
	MemUsedMB   uint64  `json:"memUsedMb"`
	SampleError string  `json:"sampleError,omitempty"`
}

func hostStats() HostStats {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var stats HostStats

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		stats.SampleError = err.Error()
	} else if len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		if stats.SampleError == "" {
			stats.SampleError = err.Error()
		}
		return stats
	}
	stats.MemUsedPct = vm.UsedPercent
	stats.MemTotalMB = vm.Total / (1024 * 1024)
	stats.MemUsedMB = vm.Used / (1024 * 1024)
	return stats
}
