package regmap

import (
	"math"
	"math/bits"
)

// ResolvedRegister is a register with its absolute address and symbol names.
// It is derived once per build and never modified afterwards.
type ResolvedRegister struct {
	Register

	// Address is BaseAddress + Offset.
	Address uint64

	// Field is the struct member name.
	Field string

	Symbols RegisterSymbols
}

// ResolvedModule is a module after address resolution.
type ResolvedModule struct {
	Module    *Module
	Namespace Namespace
	Registers []ResolvedRegister

	// Extent is max_offset + WordSize, zero for a module without registers.
	Extent uint64

	// Layout is set by Validator.CheckModule.
	Layout *Layout
}

// Base returns the module base address.
func (rm *ResolvedModule) Base() uint64 { return rm.Module.BaseAddress }

// End returns the first address past the module's range. A range that
// reaches the top of the 64-bit address space saturates at MaxUint64.
func (rm *ResolvedModule) End() uint64 {
	end, carry := bits.Add64(rm.Module.BaseAddress, rm.Extent, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return end
}

// below reports whether addr lies before the end of the module's range.
func (rm *ResolvedModule) below(addr uint64) bool {
	end, carry := bits.Add64(rm.Module.BaseAddress, rm.Extent, 0)
	return carry != 0 || addr < end
}

// Symbols returns every symbol the module emits, in emission order.
func (rm *ResolvedModule) Symbols() []Identifier {
	out := rm.Namespace.ModuleSymbols()
	for _, rr := range rm.Registers {
		out = append(out, rr.Symbols.All()...)
	}
	return out
}

// Resolve validates m, allocates its addresses and derives its symbols.
// Findings are recorded in r; the returned module is always non-nil so that
// build-wide checks can still run over it.
func Resolve(m *Module, alloc *Allocator, r *Report) *ResolvedModule {
	m.Validate(r)

	ns := NewNamespace(m.Name)
	addrs := alloc.Allocate(m, r)

	rm := &ResolvedModule{
		Module:    m,
		Namespace: ns,
		Registers: make([]ResolvedRegister, len(m.Registers)),
	}
	for i, reg := range m.Registers {
		rm.Registers[i] = ResolvedRegister{
			Register: reg,
			Address:  addrs[i],
			Field:    ns.Field(reg.Name),
			Symbols:  ns.SymbolsFor(reg),
		}
		if end := reg.Offset + WordSize; end > rm.Extent {
			rm.Extent = end
		}
	}
	return rm
}
