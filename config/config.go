// ════════════════════════════════════════════════════════════════════════════════════════════════
// CONFIG — YAML → IngestionConfig / MultiFeedConfig, WITH VALIDATION
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Market Data Ingestion Core
// Component: The control boundary's configuration record (spec.md §6, §7 InvalidConfig)
//
// Grounded in rahjooh-CryptoTrade/config/config.go's LoadConfig/validateConfig shape: read the
// file, yaml.Unmarshal into a struct with yaml.v3 (unknown keys are ignored by default,
// satisfying spec.md §6), then validate and return a structured error on the first violation.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ValidationError reports one structural problem with a loaded config, the InvalidConfig
// error kind from spec.md §7.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config field %q: %s", e.Field, e.Reason)
}

// IngestionConfig is the control boundary for a single-feed binary (spec.md §3a).
type IngestionConfig struct {
	Host           string `yaml:"host"`
	Port           uint16 `yaml:"port"`
	BufferCapacity uint32 `yaml:"buffer_capacity"`
	MaxSeconds     uint32 `yaml:"max_seconds"`
	MaxMessages    uint64 `yaml:"max_messages"`
}

// FeedConfig is one feed entry within a MultiFeedConfig (spec.md §3 FeedConfig/FeedMonitor
// state, plus the connection fields from original_source/include/mdfh/multi_feed_ingestion.hpp).
type FeedConfig struct {
	Name              string `yaml:"name"`
	Host              string `yaml:"host"`
	Port              uint16 `yaml:"port"`
	OriginID          uint32 `yaml:"origin_id"`
	IsPrimary         bool   `yaml:"is_primary"`
	HeartbeatMs       uint64 `yaml:"heartbeat_ms"`
	TimeoutMultiplier uint64 `yaml:"timeout_multiplier"`
	BufferCapacity    uint32 `yaml:"buffer_capacity"`
}

// MultiFeedConfig is the control boundary for the multi-feed dispatcher binary.
type MultiFeedConfig struct {
	Feeds                 []FeedConfig `yaml:"feeds"`
	GlobalBufferCapacity  uint32       `yaml:"global_buffer_capacity"`
	DispatcherThreads     uint32       `yaml:"dispatcher_threads"`
	MaxSeconds            uint32       `yaml:"max_seconds"`
	MaxMessages           uint64       `yaml:"max_messages"`
	HealthCheckIntervalMS uint32       `yaml:"health_check_interval_ms"`
}

func isPowerOfTwo(n uint32) bool { return n > 0 && n&(n-1) == 0 }

// LoadIngestion reads and validates a single-feed config from path.
func LoadIngestion(path string) (IngestionConfig, error) {
	var cfg IngestionConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := validateIngestion(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateIngestion(cfg *IngestionConfig) error {
	if cfg.Host == "" {
		return &ValidationError{Field: "host", Reason: "must not be empty"}
	}
	if cfg.Port == 0 {
		return &ValidationError{Field: "port", Reason: "must be nonzero"}
	}
	if !isPowerOfTwo(cfg.BufferCapacity) {
		return &ValidationError{Field: "buffer_capacity", Reason: "must be a power of two"}
	}
	return nil
}

// LoadMultiFeed reads and validates a multi-feed config from path.
func LoadMultiFeed(path string) (MultiFeedConfig, error) {
	var cfg MultiFeedConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := validateMultiFeed(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateMultiFeed(cfg *MultiFeedConfig) error {
	if !isPowerOfTwo(cfg.GlobalBufferCapacity) {
		return &ValidationError{Field: "global_buffer_capacity", Reason: "must be a power of two"}
	}
	if len(cfg.Feeds) == 0 {
		return &ValidationError{Field: "feeds", Reason: "must list at least one feed"}
	}
	if cfg.HealthCheckIntervalMS == 0 {
		return &ValidationError{Field: "health_check_interval_ms", Reason: "must be nonzero"}
	}

	seenOrigins := make(map[uint32]bool, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		field := fmt.Sprintf("feeds[%d]", i)
		if f.Host == "" {
			return &ValidationError{Field: field + ".host", Reason: "must not be empty"}
		}
		if f.Port == 0 {
			return &ValidationError{Field: field + ".port", Reason: "must be nonzero"}
		}
		if f.HeartbeatMs == 0 {
			return &ValidationError{Field: field + ".heartbeat_ms", Reason: "must be nonzero"}
		}
		if f.TimeoutMultiplier == 0 {
			return &ValidationError{Field: field + ".timeout_multiplier", Reason: "must be nonzero"}
		}
		if !isPowerOfTwo(f.BufferCapacity) {
			return &ValidationError{Field: field + ".buffer_capacity", Reason: "must be a power of two"}
		}
		if seenOrigins[f.OriginID] {
			return &ValidationError{Field: field + ".origin_id", Reason: "duplicate origin id"}
		}
		seenOrigins[f.OriginID] = true
	}
	return nil
}
