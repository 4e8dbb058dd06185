package scale

import "github.com/wippyai/polkawasm/errors"

// Sentinel errors for errors.Is matching. Decode errors returned by this
// package carry the same Phase and Kind with more detail.
var (
	ErrUnexpectedEOF       = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOutOfBounds}
	ErrNonCanonicalCompact = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindNonCanonical}
	ErrOverflow            = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOverflow}
	ErrTrailingBytes       = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindTrailingBytes}
	ErrInvalidData         = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidData}
	ErrInvalidVariant      = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidVariant}
)
