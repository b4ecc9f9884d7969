package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/process"
)

const (
	ProcessCpuPercent    = "corepool_exporter_cpu_percent"
	ProcessResidentBytes = "corepool_exporter_resident_memory_bytes"
	ProcessGoroutines    = "corepool_exporter_goroutines"
)

// ProcessStats samples the resource usage of the exporter itself. It is used by the
// long running watch mode, a one-shot scrape has nothing interesting to report.
type ProcessStats struct {
	proc *process.Process
}

func NewProcessStats() (ProcessStats, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ProcessStats{}, fmt.Errorf("open own process: %w", err)
	}
	return ProcessStats{proc: proc}, nil
}

// Publish records cpu usage since the previous call, resident memory and the number of
// goroutines.
func (s ProcessStats) Publish(ctx context.Context, pub Publisher) error {
	var errs []error

	cpu, err := s.proc.PercentWithContext(ctx, 0)
	if err == nil {
		errs = append(errs, pub.Gauge(ctx, ProcessCpuPercent, "exporter cpu usage in percent", nil, cpu))
	} else {
		errs = append(errs, fmt.Errorf("read cpu usage: %w", err))
	}

	mem, err := s.proc.MemoryInfoWithContext(ctx)
	if err == nil {
		errs = append(errs, pub.Gauge(ctx, ProcessResidentBytes, "exporter resident memory in bytes", nil, float64(mem.RSS)))
	} else {
		errs = append(errs, fmt.Errorf("read memory usage: %w", err))
	}

	errs = append(errs, pub.Gauge(ctx, ProcessGoroutines, "exporter goroutine count", nil, float64(runtime.NumGoroutine())))
	return errors.Join(errs...)
}
