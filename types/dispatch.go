package types

import (
	"fmt"

	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/scale"
)

// DispatchErrorKind is the encoded discriminant of a dispatch error.
type DispatchErrorKind uint8

const (
	DispatchOther DispatchErrorKind = iota
	DispatchCannotLookup
	DispatchBadOrigin
	DispatchModule
	DispatchUndecodable
	DispatchUnknownCall
	DispatchExhausted
)

var dispatchKindNames = [...]string{
	"Other", "CannotLookup", "BadOrigin", "Module", "Undecodable", "UnknownCall", "Exhausted",
}

func (k DispatchErrorKind) String() string {
	if int(k) < len(dispatchKindNames) {
		return dispatchKindNames[k]
	}
	return "Unknown"
}

// DispatchError is the recoverable failure of one extrinsic.
//
// Message is carried by Other and Undecodable. Module and Code identify the
// failing module and its error index for Module, or the module and function
// index for UnknownCall.
type DispatchError struct {
	Kind    DispatchErrorKind
	Message string
	Module  uint8
	Code    uint8
}

func (de *DispatchError) Error() string {
	switch de.Kind {
	case DispatchOther, DispatchUndecodable:
		return fmt.Sprintf("dispatch %s: %s", de.Kind, de.Message)
	case DispatchModule:
		return fmt.Sprintf("dispatch Module: module %d error %d", de.Module, de.Code)
	case DispatchUnknownCall:
		return fmt.Sprintf("dispatch UnknownCall: module %d function %d", de.Module, de.Code)
	default:
		return "dispatch " + de.Kind.String()
	}
}

func (de *DispatchError) EncodeTo(e *scale.Encoder) {
	e.PutU8(uint8(de.Kind))
	switch de.Kind {
	case DispatchOther, DispatchUndecodable:
		e.PutString(de.Message)
	case DispatchModule, DispatchUnknownCall:
		e.PutU8(de.Module)
		e.PutU8(de.Code)
	}
}

func (de *DispatchError) DecodeFrom(d *scale.Decoder) error {
	tag, err := d.U8()
	if err != nil {
		return err
	}
	de.Kind = DispatchErrorKind(tag)
	switch de.Kind {
	case DispatchOther, DispatchUndecodable:
		de.Message, err = d.String()
		return err
	case DispatchModule, DispatchUnknownCall:
		if de.Module, err = d.U8(); err != nil {
			return err
		}
		de.Code, err = d.U8()
		return err
	case DispatchCannotLookup, DispatchBadOrigin, DispatchExhausted:
		return nil
	default:
		return errors.InvalidDiscriminant(errors.PhaseDecode, "DispatchError", tag)
	}
}

// ApplyExtrinsicResult is Result<(), DispatchError>. A nil Err is success.
type ApplyExtrinsicResult struct {
	Err *DispatchError
}

// Ok reports whether the extrinsic applied successfully.
func (r *ApplyExtrinsicResult) Ok() bool {
	return r.Err == nil
}

func (r *ApplyExtrinsicResult) EncodeTo(e *scale.Encoder) {
	e.PutResult(r.Err == nil)
	if r.Err != nil {
		r.Err.EncodeTo(e)
	}
}

func (r *ApplyExtrinsicResult) DecodeFrom(d *scale.Decoder) error {
	ok, err := d.Result()
	if err != nil {
		return err
	}
	if ok {
		r.Err = nil
		return nil
	}
	r.Err = &DispatchError{}
	return r.Err.DecodeFrom(d)
}
