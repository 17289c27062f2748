package config

import (
	"time"

	"filewarden/internal/common"
)

// ResourceLimiterConfig defines configuration for the resource limiter.
type ResourceLimiterConfig struct {
	MaxMemoryMB            int64   `json:"max_memory_mb,omitempty" yaml:"max_memory_mb,omitempty" validate:"omitempty,min=0"`
	SystemMemoryLimit      float64 `json:"system_memory_limit,omitempty" yaml:"system_memory_limit,omitempty" validate:"omitempty,gt=0,lte=1"`
	CheckIntervalSeconds   int     `json:"check_interval_seconds,omitempty" yaml:"check_interval_seconds,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultResourceLimiterConfig creates default resource limiter configuration
func NewDefaultResourceLimiterConfig() ResourceLimiterConfig {
	defaults := common.DefaultResourceLimiterConfig()
	return ResourceLimiterConfig{
		MaxMemoryMB:          defaults.MaxMemoryMB,
		SystemMemoryLimit:    defaults.SystemMemoryLimit,
		CheckIntervalSeconds: int(defaults.CheckInterval / time.Second),
	}
}

// ToCommon converts the config-file form into the runtime form.
func (rc ResourceLimiterConfig) ToCommon() common.ResourceLimiterConfig {
	return common.ResourceLimiterConfig{
		MaxMemoryMB:       rc.MaxMemoryMB,
		SystemMemoryLimit: rc.SystemMemoryLimit,
		CheckInterval:     time.Duration(rc.CheckIntervalSeconds) * time.Second,
	}
}
