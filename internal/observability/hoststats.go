package observability

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// HostStats is one utilization sample of the machine running the server
type HostStats struct {
	CPUPercent float64 `json:"cpu_percent"`
	RAMUsedMB  float64 `json:"ram_used_mb"`
	GPUUsedMB  float64 `json:"gpu_used_mb"`
}

var hostCPU cpuSampler

// SampleHost reads CPU utilization, memory use and GPU memory use. Sources that
// are unavailable on this host report 0.
func SampleHost(ctx context.Context) HostStats {
	return HostStats{
		CPUPercent: hostCPU.percent(readFile("/proc/stat")),
		RAMUsedMB:  ramUsedMB(readFile("/proc/meminfo")),
		GPUUsedMB:  gpuUsedMB(ctx),
	}
}

func readFile(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(b)
}

// cpuSampler turns the cumulative /proc/stat counters into busy time since
// the previous sample. The first sample covers the time since boot.
type cpuSampler struct {
	mu        sync.Mutex
	prevIdle  uint64
	prevTotal uint64
}

func (c *cpuSampler) percent(stat string) float64 {
	idle, total, ok := parseCPUStat(stat)
	if !ok {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if total < c.prevTotal || idle < c.prevIdle {
		// counters reset
		c.prevIdle, c.prevTotal = 0, 0
	}
	dIdle := idle - c.prevIdle
	dTotal := total - c.prevTotal
	c.prevIdle, c.prevTotal = idle, total

	if dTotal == 0 {
		return 0
	}
	return clamp(100*(1-float64(dIdle)/float64(dTotal)), 0, 100)
}

// parseCPUStat sums the aggregate cpu line of /proc/stat. Idle includes iowait.
func parseCPUStat(stat string) (idle, total uint64, ok bool) {
	for _, line := range strings.Split(stat, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}
		// user nice system idle iowait irq softirq steal; guest time is already in user
		for i, f := range fields[1:] {
			if i >= 8 {
				break
			}
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return 0, 0, false
			}
			total += v
			if i == 3 || i == 4 {
				idle += v
			}
		}
		return idle, total, true
	}
	return 0, 0, false
}

func ramUsedMB(meminfo string) float64 {
	var totalKB, availKB float64
	for _, line := range strings.Split(meminfo, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			totalKB, _ = strconv.ParseFloat(fields[1], 64)
		case "MemAvailable:":
			availKB, _ = strconv.ParseFloat(fields[1], 64)
		}
	}
	if totalKB <= 0 || availKB > totalKB {
		return 0
	}
	return (totalKB - availKB) / 1024
}

// gpuUsedMB sums memory.used over all GPUs reported by nvidia-smi
func gpuUsedMB(ctx context.Context) float64 {
	path, err := exec.LookPath("nvidia-smi")
	if err != nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--query-gpu=memory.used", "--format=csv,noheader,nounits").Output()
	if err != nil {
		return 0
	}
	return parseNvidiaSMI(string(out))
}

func parseNvidiaSMI(out string) float64 {
	var total float64
	for _, line := range strings.Split(out, "\n") {
		if v, err := strconv.ParseFloat(strings.TrimSpace(line), 64); err == nil {
			total += v
		}
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
