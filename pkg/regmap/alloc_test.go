package regmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllocator(t *testing.T) {
	a, err := NewAllocator(0)
	require.NoError(t, err)
	assert.Equal(t, uint(DefaultAddressWidth), a.AddressWidth())
	assert.Equal(t, uint64(0xFFFFFFFF), a.MaxAddress())

	a, err = NewAllocator(64)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), a.MaxAddress())

	_, err = NewAllocator(65)
	assert.Error(t, err)
	_, err = NewAllocator(4)
	assert.Error(t, err)
}

func TestAllocatorResolve(t *testing.T) {
	a, err := NewAllocator(32)
	require.NoError(t, err)

	tests := []struct {
		base, offset uint64
		want         uint64
	}{
		{0x0000, 0x00, 0x0000},
		{0x0000, 0x24, 0x0024},
		{0x1000, 0x1C, 0x101C},
		{0xFFFFFF00, 0xFC, 0xFFFFFFFC},
	}
	for _, tt := range tests {
		got, err := a.Resolve(tt.base, tt.offset)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "0x%X + 0x%X", tt.base, tt.offset)
	}
}

func TestAllocatorOverflow(t *testing.T) {
	a, err := NewAllocator(32)
	require.NoError(t, err)

	_, err = a.Resolve(0xFFFFFFFC, 0x04)
	assert.ErrorIs(t, err, ErrAddressOverflow)

	wide, err := NewAllocator(64)
	require.NoError(t, err)
	got, err := wide.Resolve(0xFFFFFFFC, 0x04)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x100000000), got)

	_, err = wide.Resolve(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrAddressOverflow)
}

func TestAllocateReportsEveryOverflow(t *testing.T) {
	a, err := NewAllocator(16)
	require.NoError(t, err)

	m := &Module{Name: "tiny", BaseAddress: 0xFF00, Registers: []Register{
		{Name: "ok", Offset: 0x00, Access: ReadWrite},
		{Name: "high", Offset: 0x100, Access: ReadWrite},
		{Name: "higher", Offset: 0x200, Access: ReadWrite},
	}}
	var r Report
	addrs := a.Allocate(m, &r)

	assert.Equal(t, []uint64{0xFF00, 0, 0}, addrs)
	require.Len(t, r.Violations, 2)
	assert.Equal(t, "high", r.Violations[0].Register)
	assert.Equal(t, "higher", r.Violations[1].Register)
}

func TestAllocateIsDeterministic(t *testing.T) {
	a, err := NewAllocator(32)
	require.NoError(t, err)
	m := &Module{Name: "spi", BaseAddress: 0x1000, Registers: []Register{
		{Name: "a", Offset: 0x00, Access: ReadWrite},
		{Name: "b", Offset: 0x08, Access: ReadWrite},
	}}
	var r1, r2 Report
	assert.Equal(t, a.Allocate(m, &r1), a.Allocate(m, &r2))
}
