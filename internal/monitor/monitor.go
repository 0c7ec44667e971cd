// Package monitor logs resource usage of the process while serve mode runs.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Monitor periodically logs CPU and memory usage of the running process.
type Monitor struct {
	interval time.Duration
	logger   *slog.Logger
	proc     *process.Process
	wg       sync.WaitGroup
}

// New creates a monitor with the given collection interval.
func New(interval time.Duration, logger *slog.Logger) *Monitor {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Error("failed to get process handle", "error", err)
		return nil
	}

	return &Monitor{
		interval: interval,
		logger:   logger,
		proc:     proc,
	}
}

// Run starts the monitoring loop in a background goroutine.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.collect()

		for {
			select {
			case <-ctx.Done():
				m.logger.Debug("monitor shutdown complete")
				return
			case <-ticker.C:
				m.collect()
			}
		}
	})
}

// Wait blocks until the monitor goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

func (m *Monitor) collect() {
	cpu, err := m.proc.CPUPercent()
	if err != nil {
		m.logger.Warn("failed to get CPU percent", "error", err)
		cpu = 0
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	mb := func(b uint64) float64 { return float64(b) / (1024 * 1024) }

	m.logger.LogAttrs(
		context.Background(),
		slog.LevelDebug,
		"resource",
		slog.String("cpu", fmt.Sprintf("%.2f%%", cpu)),
		slog.Int("goroutines", runtime.NumGoroutine()),
		slog.String("mem", fmt.Sprintf("alloc:%.2fMB sys:%.2fMB", mb(ms.HeapAlloc), mb(ms.HeapSys))),
		slog.Uint64("gc", uint64(ms.NumGC)),
	)
}
