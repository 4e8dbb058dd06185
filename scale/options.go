package scale

// DuplicatePolicy selects how a decoded mapping treats a repeated key.
type DuplicatePolicy uint8

const (
	// RejectDuplicates fails the decode with *errors.DuplicateKeyError.
	RejectDuplicates DuplicatePolicy = iota
	// OverwriteDuplicates keeps the last value at the key's first position.
	OverwriteDuplicates
)

func (p DuplicatePolicy) String() string {
	switch p {
	case RejectDuplicates:
		return "reject"
	case OverwriteDuplicates:
		return "overwrite"
	default:
		return "unknown"
	}
}

// Options configures decoding.
type Options struct {
	// StrictCompact rejects compact integers not in their shortest form.
	StrictCompact bool

	// DuplicateKeys applies to mapping types such as inherent data.
	DuplicateKeys DuplicatePolicy
}

// DefaultOptions returns strict decoding: canonical compacts only and no
// duplicate mapping keys.
func DefaultOptions() Options {
	return Options{
		StrictCompact: true,
		DuplicateKeys: RejectDuplicates,
	}
}
