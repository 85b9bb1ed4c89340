package regmap

import "fmt"

const (
	// WordWidth is the only register width currently supported, in bits.
	WordWidth = 32

	// WordSize is WordWidth in bytes.
	WordSize = WordWidth / 8
)

// Register is a named, fixed-offset, fixed-width unit within a module.
type Register struct {
	Name string

	// Offset is the byte distance from the module base. Always explicit.
	Offset uint64

	// Width in bits. Zero means WordWidth.
	Width uint

	Access Access

	Description string

	// Default is the reset value, if declared.
	Default *uint64
}

// BitWidth returns the register width with the zero value defaulted.
func (r Register) BitWidth() uint {
	if r.Width == 0 {
		return WordWidth
	}
	return r.Width
}

// Module is a named peripheral's register set with one base address.
// Registers keep declaration order; that order is the struct field order.
type Module struct {
	Name        string
	BaseAddress uint64
	Registers   []Register

	Description string

	// Source is where the description was loaded from, for diagnostics.
	Source string
}

// NewModule builds a module and validates its registers.
func NewModule(name string, base uint64, regs ...Register) (*Module, error) {
	m := &Module{Name: name, BaseAddress: base, Registers: regs}
	var r Report
	m.Validate(&r)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Register returns the register with the given name.
func (m *Module) Register(name string) (Register, bool) {
	for _, reg := range m.Registers {
		if reg.Name == name {
			return reg, true
		}
	}
	return Register{}, false
}

// Validate records model-level violations: names, access modes, widths and
// reset values.
func (m *Module) Validate(r *Report) {
	switch id := NormalizeIdent(m.Name); {
	case id == "":
		r.AddError(ErrInvalidName, m.Name, "", "module name %q has no identifier characters", m.Name)
	case id[0] >= '0' && id[0] <= '9':
		r.AddError(ErrInvalidName, m.Name, "", "module name %q must not start with a digit", m.Name)
	}

	seen := make(map[string]int, len(m.Registers))
	for i, reg := range m.Registers {
		if NormalizeIdent(reg.Name) == "" {
			r.AddError(ErrInvalidName, m.Name, reg.Name, "register %d has no usable name", i)
		}
		if first, dup := seen[reg.Name]; dup {
			r.AddError(ErrDuplicateRegisterName, m.Name, reg.Name,
				"declared at index %d and %d", first, i)
		} else {
			seen[reg.Name] = i
		}
		if !reg.Access.Valid() {
			r.AddError(ErrInvalidAccessMode, m.Name, reg.Name,
				"%q is not one of %s, %s, %s", reg.Access, ReadOnly, WriteOnly, ReadWrite)
		}
		w := reg.BitWidth()
		if w != WordWidth {
			r.AddError(ErrUnsupportedWidth, m.Name, reg.Name,
				"width %d, only %d-bit registers are supported", w, WordWidth)
		}
		if reg.Default != nil && w < 64 && *reg.Default > uint64(1)<<w-1 {
			r.AddError(ErrInvalidDefault, m.Name, reg.Name,
				"0x%X does not fit in %d bits", *reg.Default, w)
		}
	}

	if len(m.Registers) == 0 {
		r.AddWarning(m.Name, "module has no registers")
	}
}

func (m *Module) String() string {
	return fmt.Sprintf("%s@0x%X (%d registers)", m.Name, m.BaseAddress, len(m.Registers))
}
