package config

import "runtime"

// DomainConfig holds the tunable execution settings of graph construction.
// None of these settings change the resulting graph, only how it is computed.
type DomainConfig struct {
	// Workers is the number of goroutines enumerating record pairs.
	// A value of 1 forces the sequential path.
	Workers int

	// ParallelThreshold is the minimum record count for the parallel path.
	// Below it the pair enumeration overhead dominates.
	ParallelThreshold int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		Workers:           runtime.GOMAXPROCS(0),
		ParallelThreshold: 2000,
	}
}

// SequentialDomainConfig returns a configuration that never parallelizes
func SequentialDomainConfig() *DomainConfig {
	return &DomainConfig{
		Workers:           1,
		ParallelThreshold: 0,
	}
}

// LoadDomainConfig builds a domain configuration from analysis settings.
// Non-positive values fall back to the defaults.
func LoadDomainConfig(workers, parallelThreshold int) *DomainConfig {
	cfg := DefaultDomainConfig()
	if workers > 0 {
		cfg.Workers = workers
	}
	if parallelThreshold > 0 {
		cfg.ParallelThreshold = parallelThreshold
	}
	return cfg
}

// Parallel reports whether a build over n records should use workers
func (c *DomainConfig) Parallel(n int) bool {
	return c.Workers > 1 && n >= c.ParallelThreshold && n > 1
}
