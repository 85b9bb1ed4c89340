package regmap

import (
	"fmt"
	"math"
	"math/bits"
)

// DefaultAddressWidth is the target address width when none is configured.
const DefaultAddressWidth = 32

// Allocator resolves absolute register addresses within a target address
// space. It is stateless and safe for concurrent use.
type Allocator struct {
	width uint
}

// NewAllocator returns an allocator for an addressWidth-bit address space.
// Zero selects DefaultAddressWidth.
func NewAllocator(addressWidth uint) (*Allocator, error) {
	if addressWidth == 0 {
		addressWidth = DefaultAddressWidth
	}
	if addressWidth < 8 || addressWidth > 64 {
		return nil, fmt.Errorf("address width %d out of range [8, 64]", addressWidth)
	}
	return &Allocator{width: addressWidth}, nil
}

// AddressWidth returns the configured width in bits.
func (a *Allocator) AddressWidth() uint { return a.width }

// MaxAddress returns the highest representable address.
func (a *Allocator) MaxAddress() uint64 {
	if a.width == 64 {
		return math.MaxUint64
	}
	return 1<<a.width - 1
}

// Resolve returns base+offset, or ErrAddressOverflow if the sum does not fit
// the address space.
func (a *Allocator) Resolve(base, offset uint64) (uint64, error) {
	sum, carry := bits.Add64(base, offset, 0)
	if carry != 0 || sum > a.MaxAddress() {
		return 0, fmt.Errorf("%w: 0x%X + 0x%X exceeds %d-bit address space",
			ErrAddressOverflow, base, offset, a.width)
	}
	return sum, nil
}

// Allocate resolves every register of m. Registers whose address overflows
// are reported and keep a zero address.
func (a *Allocator) Allocate(m *Module, r *Report) []uint64 {
	if m.BaseAddress > a.MaxAddress() {
		r.AddError(ErrAddressOverflow, m.Name, "",
			"base address 0x%X exceeds %d-bit address space", m.BaseAddress, a.width)
	}

	addrs := make([]uint64, len(m.Registers))
	for i, reg := range m.Registers {
		addr, err := a.Resolve(m.BaseAddress, reg.Offset)
		if err != nil {
			r.AddError(ErrAddressOverflow, m.Name, reg.Name,
				"0x%X + 0x%X exceeds %d-bit address space", m.BaseAddress, reg.Offset, a.width)
			continue
		}
		addrs[i] = addr
	}
	return addrs
}
