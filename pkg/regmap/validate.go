package regmap

import (
	"errors"
	"sort"
)

// Validator checks resolved modules. It keeps no state between calls.
type Validator struct {
	// WordSize is the register size in bytes used for alignment and extents.
	WordSize uint64
}

// NewValidator returns a validator for 32-bit registers.
func NewValidator() *Validator {
	return &Validator{WordSize: WordSize}
}

// CheckModule checks offset uniqueness and alignment, and lays the registers
// out in declaration order. The layout is stored in rm.Layout. Registers
// that already failed uniqueness or alignment are left out of the layout so
// that each defect is reported once.
func (v *Validator) CheckModule(rm *ResolvedModule, r *Report) {
	name := rm.Module.Name
	skip := make([]bool, len(rm.Registers))

	byOffset := make(map[uint64]string, len(rm.Registers))
	for i, rr := range rm.Registers {
		if rr.Offset%v.WordSize != 0 {
			r.AddError(ErrMisalignedOffset, name, rr.Name,
				"offset 0x%02X is not a multiple of %d", rr.Offset, v.WordSize)
			skip[i] = true
		}
		if other, ok := byOffset[rr.Offset]; ok {
			r.AddError(ErrOffsetConflict, name, rr.Name,
				"offset 0x%02X already used by %s", rr.Offset, other)
			skip[i] = true
			continue
		}
		byOffset[rr.Offset] = rr.Name
	}

	layout := NewLayout(rm.Namespace.TypeName())
	for i, rr := range rm.Registers {
		if skip[i] {
			continue
		}
		err := layout.declare(Field{
			Name:     rr.Field,
			Offset:   rr.Offset,
			Size:     v.WordSize,
			Register: rr.Name,
			Access:   rr.Access,
		})
		if errors.Is(err, ErrNonSequentialLayout) {
			r.AddError(ErrNonSequentialLayout, name, rr.Name,
				"offset 0x%02X is declared after a register ending at 0x%02X", rr.Offset, layout.Size())
		}
	}
	rm.Layout = layout
}

// CheckOverlap records every pair of modules whose address ranges
// [base, base+extent) intersect. Modules without registers occupy no range.
func (v *Validator) CheckOverlap(mods []*ResolvedModule, r *Report) {
	for i := 0; i < len(mods); i++ {
		a := mods[i]
		if a.Extent == 0 {
			continue
		}
		for j := i + 1; j < len(mods); j++ {
			b := mods[j]
			if b.Extent == 0 {
				continue
			}
			if b.below(a.Base()) && a.below(b.Base()) {
				r.AddError(ErrAddressOverlap, b.Module.Name, "",
					"range [0x%X, 0x%X) intersects module %q range [0x%X, 0x%X)",
					b.Base(), b.End(), a.Module.Name, a.Base(), a.End())
			}
		}
	}
}

// CheckBuild runs the whole-build checks: address overlap and namespaces.
// It must see every module of the build.
func (v *Validator) CheckBuild(mods []*ResolvedModule, r *Report) {
	v.CheckOverlap(mods, r)
	CheckNamespaces(mods, r)
}

// Analyze resolves and validates a whole build sequentially.
func Analyze(mods []*Module, alloc *Allocator, v *Validator) ([]*ResolvedModule, *Report) {
	r := &Report{}
	resolved := make([]*ResolvedModule, len(mods))
	for i, m := range mods {
		resolved[i] = Resolve(m, alloc, r)
		v.CheckModule(resolved[i], r)
	}
	v.CheckBuild(resolved, r)
	return resolved, r
}

// SortedByBase returns mods ordered by base address, ties by name.
func SortedByBase(mods []*ResolvedModule) []*ResolvedModule {
	out := make([]*ResolvedModule, len(mods))
	copy(out, mods)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Base() != out[j].Base() {
			return out[i].Base() < out[j].Base()
		}
		return out[i].Module.Name < out[j].Module.Name
	})
	return out
}
