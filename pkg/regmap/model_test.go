package regmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccess(t *testing.T) {
	tests := []struct {
		in   string
		want Access
	}{
		{"RO", ReadOnly},
		{"ro", ReadOnly},
		{"read-only", ReadOnly},
		{"readOnly", ReadOnly},
		{"WO", WriteOnly},
		{"write-only", WriteOnly},
		{"RW", ReadWrite},
		{" rw ", ReadWrite},
		{"readWrite", ReadWrite},
	}
	for _, tt := range tests {
		got, err := ParseAccess(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	got, err := ParseAccess("RX")
	assert.ErrorIs(t, err, ErrInvalidAccessMode)
	assert.Equal(t, Access("RX"), got)
	assert.False(t, got.Valid())
}

func TestAccessCapabilities(t *testing.T) {
	assert.True(t, ReadOnly.Readable())
	assert.False(t, ReadOnly.Writable())
	assert.False(t, WriteOnly.Readable())
	assert.True(t, WriteOnly.Writable())
	assert.True(t, ReadWrite.Readable())
	assert.True(t, ReadWrite.Writable())
	assert.False(t, Access("XX").Readable())
	assert.False(t, Access("XX").Writable())
}

func TestNewModule(t *testing.T) {
	m, err := NewModule("spi_controller", 0x1000,
		Register{Name: "ctrl_reg", Offset: 0x00, Access: ReadWrite},
		Register{Name: "fifo_status", Offset: 0x1C, Access: ReadOnly},
	)
	require.NoError(t, err)
	assert.Equal(t, "spi_controller", m.Name)
	assert.Len(t, m.Registers, 2)

	reg, ok := m.Register("fifo_status")
	require.True(t, ok)
	assert.Equal(t, uint64(0x1C), reg.Offset)
	assert.Equal(t, uint(WordWidth), reg.BitWidth())

	_, ok = m.Register("missing")
	assert.False(t, ok)
}

func TestNewModuleDuplicateRegisterName(t *testing.T) {
	_, err := NewModule("uart", 0,
		Register{Name: "data", Offset: 0x00, Access: ReadWrite},
		Register{Name: "data", Offset: 0x04, Access: ReadOnly},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateRegisterName)

	var be *BuildError
	require.True(t, errors.As(err, &be))
	require.Len(t, be.Violations, 1)
	assert.Equal(t, "uart", be.Violations[0].Module)
	assert.Equal(t, "data", be.Violations[0].Register)
}

func TestRegisterNamesAreCaseSensitive(t *testing.T) {
	var r Report
	m := &Module{Name: "uart", Registers: []Register{
		{Name: "Data", Offset: 0x00, Access: ReadWrite},
		{Name: "data", Offset: 0x04, Access: ReadWrite},
	}}
	m.Validate(&r)
	assert.False(t, r.Has(ErrDuplicateRegisterName))
}

func TestModuleValidateCollectsEverything(t *testing.T) {
	var r Report
	m := &Module{Name: "gpio", Registers: []Register{
		{Name: "dir", Offset: 0x00, Access: "XX"},
		{Name: "dir", Offset: 0x04, Access: ReadWrite},
		{Name: "wide", Offset: 0x08, Width: 64, Access: ReadWrite},
		{Name: "--", Offset: 0x10, Access: ReadOnly},
	}}
	m.Validate(&r)

	assert.Len(t, r.Violations, 4)
	assert.True(t, r.Has(ErrInvalidAccessMode))
	assert.True(t, r.Has(ErrDuplicateRegisterName))
	assert.True(t, r.Has(ErrUnsupportedWidth))
	assert.True(t, r.Has(ErrInvalidName))
}

func TestModuleValidateDefaultRange(t *testing.T) {
	u64 := func(v uint64) *uint64 { return &v }

	var r Report
	m := &Module{Name: "timer", Registers: []Register{
		{Name: "max", Offset: 0x00, Access: ReadWrite, Default: u64(0xFFFF_FFFF)},
		{Name: "over", Offset: 0x04, Access: ReadWrite, Default: u64(0x1_0000_0000)},
		{Name: "zero", Offset: 0x08, Access: ReadWrite, Default: u64(0)},
	}}
	m.Validate(&r)

	require.Len(t, r.Violations, 1)
	assert.ErrorIs(t, r.Violations[0], ErrInvalidDefault)
	assert.Equal(t, "timer.over: reset value out of range: 0x100000000 does not fit in 32 bits", r.Violations[0].Error())
}

func TestModuleValidateLeadingDigit(t *testing.T) {
	var r Report
	(&Module{Name: "2uart", Registers: []Register{{Name: "data", Access: ReadWrite}}}).Validate(&r)

	require.Len(t, r.Violations, 1)
	assert.ErrorIs(t, r.Violations[0], ErrInvalidName)
	assert.Contains(t, r.Violations[0].Detail, "must not start with a digit")
}

func TestEmptyModuleWarns(t *testing.T) {
	var r Report
	(&Module{Name: "empty"}).Validate(&r)
	assert.True(t, r.Valid())
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "empty: module has no registers", r.Warnings[0].String())
}

func TestBuildErrorMessage(t *testing.T) {
	var r Report
	assert.NoError(t, r.Err())

	r.AddError(ErrMisalignedOffset, "adc", "ctrl", "offset 0x%02X is not a multiple of %d", 2, 4)
	assert.EqualError(t, r.Err(), "adc.ctrl: misaligned offset: offset 0x02 is not a multiple of 4")

	r.AddError(ErrAddressOverlap, "dac", "", "boom")
	err := r.Err()
	assert.Contains(t, err.Error(), "2 violations:")
	assert.Contains(t, err.Error(), "dac: address overlap: boom")
	assert.ErrorIs(t, err, ErrMisalignedOffset)
	assert.ErrorIs(t, err, ErrAddressOverlap)
	assert.NotErrorIs(t, err, ErrSymbolCollision)
}
