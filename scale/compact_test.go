package scale

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutCompact(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x04}},
		{"single byte max", 63, []byte{0xfc}},
		{"two byte min", 64, []byte{0x01, 0x01}},
		{"two byte max", 1<<14 - 1, []byte{0xfd, 0xff}},
		{"four byte min", 1 << 14, []byte{0x02, 0x00, 0x01, 0x00}},
		{"four byte max", 1<<30 - 1, []byte{0xfe, 0xff, 0xff, 0xff}},
		{"big mode min", 1 << 30, []byte{0x03, 0x00, 0x00, 0x00, 0x40}},
		{"big mode five bytes", 1 << 32, []byte{0x07, 0x00, 0x00, 0x00, 0x00, 0x01}},
		{"u64 max", math.MaxUint64, []byte{0x13, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Encoder
			e.PutCompact(tt.value)
			assert.Equal(t, tt.want, e.Bytes())

			got, err := NewDecoder(tt.want).Compact()
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestCompact_NonCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		value uint64
	}{
		{"zero in two bytes", []byte{0x01, 0x00}, 0},
		{"63 in two bytes", []byte{0xfd, 0x00}, 63},
		{"zero in four bytes", []byte{0x02, 0x00, 0x00, 0x00}, 0},
		{"one in big mode", []byte{0x03, 0x01, 0x00, 0x00, 0x00}, 1},
		{"redundant high byte", []byte{0x07, 0x00, 0x00, 0x00, 0x40, 0x00}, 1 << 30},
	}

	for _, tt := range tests {
		t.Run(tt.name+" strict", func(t *testing.T) {
			_, err := NewDecoder(tt.input).Compact()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNonCanonicalCompact)
		})
		t.Run(tt.name+" lenient", func(t *testing.T) {
			d := NewDecoderWithOptions(tt.input, Options{StrictCompact: false})
			got, err := d.Compact()
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
			assert.Zero(t, d.Remaining())
		})
	}
}

func TestCompact_Truncated(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x01},
		{0x02, 0x00, 0x00},
		{0x03, 0x00, 0x00, 0x00},
		{0x13, 0xff},
	}
	for _, in := range inputs {
		_, err := NewDecoder(in).Compact()
		assert.ErrorIs(t, err, ErrUnexpectedEOF, "input %x", in)
	}
}

func TestCompact_TooWideForU64(t *testing.T) {
	input := append([]byte{0x17}, make([]byte, 9)...)
	input[9] = 0x01

	_, err := NewDecoder(input).Compact()
	assert.ErrorIs(t, err, ErrOverflow)

	v, err := NewDecoder(input).CompactBig()
	require.NoError(t, err)
	want := new(big.Int).Lsh(big.NewInt(1), 64)
	assert.Equal(t, 0, want.Cmp(v))
}

func TestCompactBig(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 8*maxBigBytes), big.NewInt(1))
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(63),
		big.NewInt(1 << 20),
		new(big.Int).SetUint64(math.MaxUint64),
		new(big.Int).Lsh(big.NewInt(1), 128),
		max,
	}

	for _, v := range values {
		t.Run(v.String(), func(t *testing.T) {
			var e Encoder
			require.NoError(t, e.PutCompactBig(v))

			got, err := NewDecoder(e.Bytes()).CompactBig()
			require.NoError(t, err)
			assert.Equal(t, 0, v.Cmp(got))
		})
	}

	var e Encoder
	err := e.PutCompactBig(new(big.Int).Lsh(big.NewInt(1), 8*maxBigBytes))
	assert.Error(t, err)
	assert.Error(t, e.PutCompactBig(big.NewInt(-1)))
	assert.Zero(t, e.Len())
}

func TestCompactBig_NonCanonical(t *testing.T) {
	// 2^64 padded with a zero high byte
	input := append([]byte{0x1b}, make([]byte, 10)...)
	input[9] = 0x01

	_, err := NewDecoder(input).CompactBig()
	assert.True(t, errors.Is(err, ErrNonCanonicalCompact))

	v, err := NewDecoderWithOptions(input, Options{}).CompactBig()
	require.NoError(t, err)
	assert.Equal(t, 0, new(big.Int).Lsh(big.NewInt(1), 64).Cmp(v))
}
