// Package timeouts provides centralized timeout values for handler operations.
//
// These timeouts are used with context.WithTimeout for database, cache,
// and media I/O in HTTP handlers. Using centralized values ensures
// consistency and makes it easy to adjust timeouts across the application.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or cache lookups
//   - Medium: aggregation pages, profile updates
//   - Long: operations spanning store and media backends (image replace)
package timeouts

import (
	"os"
	"sync"
	"time"
)

// Default timeout values (used if no overrides are configured).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Ping returns the timeout for health checks and connectivity verification.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for simple operations like single-document reads.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for moderate operations like aggregation pages.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for operations that touch multiple backends.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Reset restores all timeouts to their default values. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
}

// ConfigureFromEnv reads timeout overrides from environment variables
// (TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM, TIMEOUT_LONG; duration
// strings like "5s" or "500ms"). Returns how many were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	configured := 0

	apply := func(env string, dst *time.Duration) {
		if v := os.Getenv(env); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				*dst = d
				configured++
			}
		}
	}
	apply("TIMEOUT_PING", &ping)
	apply("TIMEOUT_SHORT", &short)
	apply("TIMEOUT_MEDIUM", &medium)
	apply("TIMEOUT_LONG", &long)

	return configured
}
