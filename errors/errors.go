package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode   Phase = "encode"   // Go value to SCALE bytes
	PhaseDecode   Phase = "decode"   // SCALE bytes to Go value
	PhaseAlloc    Phase = "alloc"    // allocator bridge
	PhaseABI      Phase = "abi"      // pointer-size marshaling
	PhaseDispatch Phase = "dispatch" // extrinsic dispatch
	PhaseRuntime  Phase = "runtime"  // entry point execution
	PhaseStorage  Phase = "storage"  // storage collaborator
	PhaseLoad     Phase = "load"     // runtime binary loading
	PhaseHost     Phase = "host"     // host function execution
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidData    Kind = "invalid_data"
	KindOverflow       Kind = "overflow"
	KindNonCanonical   Kind = "non_canonical"
	KindDuplicateKey   Kind = "duplicate_key"
	KindTrailingBytes  Kind = "trailing_bytes"
	KindInvalidVariant Kind = "invalid_variant"
	KindAllocation     Kind = "allocation"
	KindDoubleFree     Kind = "double_free"
	KindInvalidState   Kind = "invalid_state"
	KindTrap           Kind = "trap"
	KindMissingExport  Kind = "missing_export"
	KindNotFound       Kind = "not_found"
	KindInvalidInput   Kind = "invalid_input"
	KindInstantiation  Kind = "instantiation"
	KindRootMismatch   Kind = "root_mismatch"
	KindInherent       Kind = "inherent"
	KindUnsupported    Kind = "unsupported"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the name of the type being processed
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, offset, length, size int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("need %d bytes at offset %d, have %d", length, offset, size),
		Value:  offset,
	}
}

// InvalidDiscriminant creates an invalid discriminant error for enums
func InvalidDiscriminant(phase Phase, typ string, disc uint8) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidVariant,
		Type:   typ,
		Detail: fmt.Sprintf("unknown discriminant %d", disc),
		Value:  disc,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Type:   targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidState creates an error for an entry point called in the wrong block state
func InvalidState(operation, state string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInvalidState,
		Detail: fmt.Sprintf("%s not allowed in state %s", operation, state),
		Value:  state,
	}
}

// Trap creates the error carried by an aborted entry point
func Trap(entry string, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindTrap,
		Detail: fmt.Sprintf("%s trapped", entry),
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// DuplicateKeyError is returned when a decoded mapping repeats a key.
type DuplicateKeyError struct {
	Type string
	Key  []byte
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("[decode] duplicate_key: type %s - key 0x%x appears more than once", e.Type, e.Key)
}

// Is reports whether target matches this error type
func (e *DuplicateKeyError) Is(target error) bool {
	switch t := target.(type) {
	case *DuplicateKeyError:
		return true
	case *Error:
		return t.Phase == PhaseDecode && t.Kind == KindDuplicateKey
	}
	return false
}

// MissingExport describes a required entry point absent from a runtime binary
type MissingExport struct {
	Name   string
	Reason string // empty when the export does not exist at all
}

// MissingExportsError is returned when a runtime binary lacks required exports
// or exports them with the wrong signature.
type MissingExportsError struct {
	Exports []MissingExport
}

// NewMissingExportsError creates an error from name to reason pairs
func NewMissingExportsError(missing map[string]string) *MissingExportsError {
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &MissingExportsError{
		Exports: make([]MissingExport, 0, len(names)),
	}
	for _, name := range names {
		result.Exports = append(result.Exports, MissingExport{Name: name, Reason: missing[name]})
	}
	return result
}

func (e *MissingExportsError) Error() string {
	if len(e.Exports) == 0 {
		return "[load] missing_export: no exports specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("runtime is missing %d export(s):\n", len(e.Exports)))
	for _, exp := range e.Exports {
		b.WriteString("  - ")
		b.WriteString(exp.Name)
		if exp.Reason != "" {
			b.WriteString(" (")
			b.WriteString(exp.Reason)
			b.WriteByte(')')
		}
		b.WriteByte('\n')
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingExportsError) Is(target error) bool {
	switch t := target.(type) {
	case *MissingExportsError:
		return true
	case *Error:
		return t.Phase == PhaseLoad && t.Kind == KindMissingExport
	}
	return false
}
