package types

import (
	"fmt"

	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/scale"
)

// InherentError is an encodable inherent check failure.
type InherentError interface {
	error
	scale.Encodable
	IsFatal() bool
}

// CheckInherentsResult collects per-inherent diagnostics.
// Errors maps an inherent identifier to its encoded error.
type CheckInherentsResult struct {
	Okay       bool
	FatalError bool
	Errors     InherentData
}

// NewCheckInherentsResult returns an empty, successful result.
func NewCheckInherentsResult() CheckInherentsResult {
	return CheckInherentsResult{Okay: true}
}

// PutError records err for id. A fatal error discards previously recorded
// errors; no error can be recorded after a fatal one.
func (r *CheckInherentsResult) PutError(id InherentIdentifier, err InherentError) error {
	if r.FatalError {
		return errors.New(errors.PhaseRuntime, errors.KindInherent).
			Detail("fatal inherent error already reported").
			Build()
	}
	if err.IsFatal() {
		r.Errors.Clear()
	}
	if putErr := r.Errors.Put(id, scale.Marshal(err)); putErr != nil {
		return putErr
	}
	r.Okay = false
	r.FatalError = err.IsFatal()
	return nil
}

func (r *CheckInherentsResult) EncodeTo(e *scale.Encoder) {
	e.PutBool(r.Okay)
	e.PutBool(r.FatalError)
	r.Errors.EncodeTo(e)
}

func (r *CheckInherentsResult) DecodeFrom(d *scale.Decoder) error {
	var err error
	if r.Okay, err = d.Bool(); err != nil {
		return err
	}
	if r.FatalError, err = d.Bool(); err != nil {
		return err
	}
	return r.Errors.DecodeFrom(d)
}

// TimestampErrorKind is the encoded discriminant of a timestamp inherent error.
type TimestampErrorKind uint8

const (
	// TimestampValidAt: the block is valid from the carried timestamp on.
	TimestampValidAt TimestampErrorKind = iota
	// TimestampTooFarInFuture: the block timestamp exceeds the allowed drift.
	TimestampTooFarInFuture
	// TimestampInvalid: the inherent or its data could not be used.
	TimestampInvalid
)

// TimestampError is the inherent error reported for the timestamp inherent.
type TimestampError struct {
	Kind    TimestampErrorKind
	ValidAt uint64
	Message string
}

func (te *TimestampError) Error() string {
	switch te.Kind {
	case TimestampValidAt:
		return fmt.Sprintf("timestamp valid at %d", te.ValidAt)
	case TimestampTooFarInFuture:
		return "timestamp too far in the future"
	default:
		return "invalid timestamp: " + te.Message
	}
}

// IsFatal reports whether the block must be rejected outright.
func (te *TimestampError) IsFatal() bool {
	return te.Kind != TimestampValidAt
}

func (te *TimestampError) EncodeTo(e *scale.Encoder) {
	e.PutU8(uint8(te.Kind))
	switch te.Kind {
	case TimestampValidAt:
		e.PutU64(te.ValidAt)
	case TimestampInvalid:
		e.PutString(te.Message)
	}
}

func (te *TimestampError) DecodeFrom(d *scale.Decoder) error {
	tag, err := d.U8()
	if err != nil {
		return err
	}
	te.Kind = TimestampErrorKind(tag)
	switch te.Kind {
	case TimestampValidAt:
		te.ValidAt, err = d.U64()
		return err
	case TimestampTooFarInFuture:
		return nil
	case TimestampInvalid:
		te.Message, err = d.String()
		return err
	default:
		return errors.InvalidDiscriminant(errors.PhaseDecode, "TimestampError", tag)
	}
}
