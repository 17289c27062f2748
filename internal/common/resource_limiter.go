package common

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceLimiterConfig holds configuration for the resource limiter
type ResourceLimiterConfig struct {
	MaxMemoryMB       int64         // Maximum application memory in MB before analyses are deferred
	SystemMemoryLimit float64       // System memory used fraction above which analyses are deferred
	CheckInterval     time.Duration // How often to sample resource usage
}

// DefaultResourceLimiterConfig returns default configuration
func DefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		MaxMemoryMB:       512,
		SystemMemoryLimit: 0.9,
		CheckInterval:     15 * time.Second,
	}
}

// ResourceUsage represents a sampled view of resource consumption
type ResourceUsage struct {
	AllocMB              int64   // Currently allocated memory by the application
	Goroutines           int     // Number of goroutines
	SystemMemUsedPercent float64 // System memory used percentage (0-100)
}

// ResourceLimiter samples application and system memory so the watcher can
// defer enqueuing new analyses under memory pressure instead of piling up
// concurrent hashing of large files.
type ResourceLimiter struct {
	config    ResourceLimiterConfig
	logger    zerolog.Logger
	mu        sync.RWMutex
	lastUsage ResourceUsage
	sampledAt time.Time
}

// NewResourceLimiter creates a new resource limiter
func NewResourceLimiter(config ResourceLimiterConfig, logger zerolog.Logger) *ResourceLimiter {
	if config.CheckInterval <= 0 {
		config.CheckInterval = 15 * time.Second
	}
	if config.SystemMemoryLimit <= 0 {
		config.SystemMemoryLimit = 0.9
	}
	return &ResourceLimiter{
		config: config,
		logger: logger.With().Str("component", "ResourceLimiter").Logger(),
	}
}

// Sample refreshes the cached resource usage. Samples are cached for the
// configured check interval so callers may invoke this on every event.
func (rl *ResourceLimiter) Sample() ResourceUsage {
	rl.mu.RLock()
	if time.Since(rl.sampledAt) < rl.config.CheckInterval && !rl.sampledAt.IsZero() {
		usage := rl.lastUsage
		rl.mu.RUnlock()
		return usage
	}
	rl.mu.RUnlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usage := ResourceUsage{
		AllocMB:    int64(m.Alloc / 1024 / 1024),
		Goroutines: runtime.NumGoroutine(),
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemUsedPercent = vmStat.UsedPercent
	} else {
		rl.logger.Debug().Err(err).Msg("Could not read system memory stats")
	}

	rl.mu.Lock()
	rl.lastUsage = usage
	rl.sampledAt = time.Now()
	rl.mu.Unlock()

	return usage
}

// OverLimit reports whether current memory usage exceeds the configured
// ceilings. A zero MaxMemoryMB disables the application memory check.
func (rl *ResourceLimiter) OverLimit() bool {
	usage := rl.Sample()

	if rl.config.MaxMemoryMB > 0 && usage.AllocMB > rl.config.MaxMemoryMB {
		rl.logger.Warn().
			Int64("alloc_mb", usage.AllocMB).
			Int64("max_memory_mb", rl.config.MaxMemoryMB).
			Msg("Application memory over limit, deferring new analyses")
		return true
	}

	if usage.SystemMemUsedPercent/100 > rl.config.SystemMemoryLimit {
		rl.logger.Warn().
			Float64("system_mem_used_percent", usage.SystemMemUsedPercent).
			Msg("System memory over limit, deferring new analyses")
		return true
	}

	return false
}
