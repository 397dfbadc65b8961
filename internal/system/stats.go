package system

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/wasatext/internal/domain"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthReport is the body of GET /health
type HealthReport struct {
	Status    string         `json:"status"`
	Service   string         `json:"service"`
	Database  DatabaseHealth `json:"database"`
	CPU       CPUStats       `json:"cpu"`
	Memory    MemoryStats    `json:"memory"`
	Disk      []DiskStats    `json:"disk"`
	Timestamp time.Time      `json:"timestamp"`
}

// DatabaseHealth reports whether the database answered a ping
type DatabaseHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// CPUStats represents CPU usage statistics
type CPUStats struct {
	UsagePercent float64 `json:"usage_percent"`
	Cores        int     `json:"cores"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Total        uint64  `json:"total_bytes"`
	Used         uint64  `json:"used_bytes"`
	Available    uint64  `json:"available_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskStats represents disk usage statistics
type DiskStats struct {
	Total        uint64  `json:"total_bytes"`
	Used         uint64  `json:"used_bytes"`
	Free         uint64  `json:"free_bytes"`
	UsagePercent float64 `json:"usage_percent"`
	Path         string  `json:"path"`
}

// Collector gathers the health report
type Collector struct {
	database domain.HealthChecker
	paths    []string
}

// NewCollector creates a collector that pings database and reports disk usage for paths
func NewCollector(database domain.HealthChecker, paths ...string) *Collector {
	return &Collector{
		database: database,
		paths:    paths,
	}
}

// Collect builds a health report. Host metrics that cannot be read are left zero.
func (c *Collector) Collect() *HealthReport {
	var (
		dbHealth DatabaseHealth
		cpuStats CPUStats
		memStats MemoryStats
		disks    = make([]DiskStats, len(c.paths))
	)

	var wg sync.WaitGroup
	wg.Add(3 + len(c.paths))

	go func() {
		defer wg.Done()
		dbHealth = c.checkDatabase()
	}()
	go func() {
		defer wg.Done()
		cpuStats = getCPUStats()
	}()
	go func() {
		defer wg.Done()
		memStats = getMemoryStats()
	}()
	for i, p := range c.paths {
		go func(i int, p string) {
			defer wg.Done()
			disks[i] = getDiskStats(p)
		}(i, p)
	}
	wg.Wait()

	status := StatusHealthy
	if dbHealth.Status != StatusHealthy {
		status = StatusUnhealthy
	}

	return &HealthReport{
		Status:    status,
		Service:   "wasatext",
		Database:  dbHealth,
		CPU:       cpuStats,
		Memory:    memStats,
		Disk:      disks,
		Timestamp: time.Now(),
	}
}

func (c *Collector) checkDatabase() DatabaseHealth {
	if c.database == nil {
		return DatabaseHealth{Status: StatusUnhealthy, Error: "database not configured"}
	}
	if err := c.database.Ping(); err != nil {
		slog.Warn("database ping failed", "error", err)
		return DatabaseHealth{Status: StatusUnhealthy, Error: err.Error()}
	}
	return DatabaseHealth{Status: StatusHealthy}
}

// getCPUStats retrieves CPU usage statistics
func getCPUStats() CPUStats {
	cores, err := cpu.Counts(true)
	if err != nil {
		slog.Warn("failed to get CPU count", "error", err)
		cores = 1
	}

	// 0 interval compares against the previous call instead of blocking
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		slog.Warn("failed to get CPU usage", "error", err)
		return CPUStats{Cores: cores}
	}

	usagePercent := 0.0
	if len(percentages) > 0 {
		usagePercent = percentages[0]
	}
	return CPUStats{UsagePercent: usagePercent, Cores: cores}
}

// getMemoryStats retrieves memory usage statistics
func getMemoryStats() MemoryStats {
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		slog.Warn("failed to get memory stats", "error", err)
		return MemoryStats{}
	}

	return MemoryStats{
		Total:        vmStat.Total,
		Used:         vmStat.Used,
		Available:    vmStat.Available,
		UsagePercent: vmStat.UsedPercent,
	}
}

// getDiskStats retrieves disk usage statistics for a given path
func getDiskStats(path string) DiskStats {
	usage, err := disk.Usage(path)
	if err != nil {
		slog.Warn("failed to get disk stats", "path", path, "error", err)
		return DiskStats{Path: path}
	}

	return DiskStats{
		Total:        usage.Total,
		Used:         usage.Used,
		Free:         usage.Free,
		UsagePercent: usage.UsedPercent,
		Path:         path,
	}
}
