package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindOutOfBounds,
				Path:   []string{"block", "header", "digest"},
				Type:   "DigestItem",
				Detail: "need 4 bytes",
			},
			contains: []string{"[decode]", "out_of_bounds", "block.header.digest", "DigestItem", "need 4 bytes"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAlloc,
				Kind:  KindAllocation,
			},
			contains: []string{"[alloc]", "allocation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindTrap,
				Detail: "Core_execute_block trapped",
				Cause:  errors.New("state root mismatch"),
			},
			contains: []string{"[runtime]", "trap", "Core_execute_block", "caused by", "state root mismatch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseStorage, KindInvalidData, cause, "read key")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseDecode,
		Kind:   KindNonCanonical,
		Detail: "compact 1 encoded in two bytes",
	}

	assert.True(t, errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindNonCanonical}))
	assert.False(t, errors.Is(err, &Error{Phase: PhaseEncode, Kind: KindNonCanonical}))
	assert.False(t, errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindOverflow}))
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseDecode, KindInvalidVariant).
		Path("digest", "items").
		Type("DigestItem").
		Value(uint8(9)).
		Detail("unknown discriminant %d", 9).
		Cause(cause).
		Build()

	assert.Equal(t, PhaseDecode, err.Phase)
	assert.Equal(t, KindInvalidVariant, err.Kind)
	assert.Equal(t, []string{"digest", "items"}, err.Path)
	assert.Equal(t, "DigestItem", err.Type)
	assert.Equal(t, uint8(9), err.Value)
	assert.Equal(t, "unknown discriminant 9", err.Detail)
	assert.ErrorIs(t, err, cause)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"allocation", AllocationFailed(PhaseAlloc, 64), PhaseAlloc, KindAllocation},
		{"out of bounds", OutOfBounds(PhaseDecode, nil, 4, 8, 6), PhaseDecode, KindOutOfBounds},
		{"discriminant", InvalidDiscriminant(PhaseDecode, "Option", 2), PhaseDecode, KindInvalidVariant},
		{"overflow", Overflow(PhaseDecode, 300, "u8"), PhaseDecode, KindOverflow},
		{"invalid state", InvalidState("finalize_block", "Idle"), PhaseRuntime, KindInvalidState},
		{"trap", Trap("Core_execute_block", nil), PhaseRuntime, KindTrap},
		{"not found", NotFound(PhaseRuntime, "export", "Foo_bar"), PhaseRuntime, KindNotFound},
		{"load", Load("compile", nil), PhaseLoad, KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.phase, tt.err.Phase)
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestDuplicateKeyError(t *testing.T) {
	err := &DuplicateKeyError{Type: "InherentData", Key: []byte("timstap0")}

	assert.Contains(t, err.Error(), "InherentData")
	assert.Contains(t, err.Error(), "74696d7374617030")
	assert.True(t, errors.Is(err, &DuplicateKeyError{}))
	assert.True(t, errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindDuplicateKey}))

	var dup *DuplicateKeyError
	require.True(t, errors.As(Wrap(PhaseDecode, KindDuplicateKey, err, "inherents"), &dup))
	assert.Equal(t, []byte("timstap0"), dup.Key)
}

func TestMissingExportsError(t *testing.T) {
	err := NewMissingExportsError(map[string]string{
		"Core_version":             "",
		"BlockBuilder_random_seed": "",
		"Core_initialize_block":    "want (i32, i32) -> (), got (i32) -> ()",
	})

	require.Len(t, err.Exports, 3)
	assert.Equal(t, "BlockBuilder_random_seed", err.Exports[0].Name)
	assert.Equal(t, "Core_initialize_block", err.Exports[1].Name)

	msg := err.Error()
	assert.Contains(t, msg, "missing 3 export(s)")
	assert.Contains(t, msg, "want (i32, i32) -> ()")
	assert.True(t, errors.Is(err, &MissingExportsError{}))
	assert.True(t, errors.Is(err, &Error{Phase: PhaseLoad, Kind: KindMissingExport}))

	empty := &MissingExportsError{}
	assert.Contains(t, empty.Error(), "no exports specified")
}
