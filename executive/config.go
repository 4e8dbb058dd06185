package executive

// Config holds the chain constants the executive enforces.
type Config struct {
	// MinimumPeriod is the minimum gap between block timestamps in milliseconds.
	MinimumPeriod uint64

	// MaxTimestampDrift bounds how far a block timestamp may run ahead of
	// the local clock during check_inherents, in milliseconds.
	MaxTimestampDrift uint64
}

// DefaultConfig returns the constants of the reference chain.
func DefaultConfig() Config {
	return Config{
		MinimumPeriod:     1_000,
		MaxTimestampDrift: 30_000,
	}
}
