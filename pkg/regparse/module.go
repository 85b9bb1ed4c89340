// Package regparse loads register module descriptions from YAML, JSON,
// TOML and XML files into regmap modules.
//
// YAML, JSON and TOML share one schema:
//
//	module: spi_controller
//	base_addr: "0x1000"
//	description: SPI master
//	registers:
//	  - name: ctrl_reg
//	    addr: "0x00"
//	    access: RW
//	    width: 32
//	    default: "0x00000001"
//	    description: Control register
//
// TOML files may also use a [module] table holding name and base_addr.
// XML files use either a register_map document with the same fields as
// attributes or an IP-XACT component. Addresses are integers or strings in
// hex ("0x1C") or decimal.
package regparse

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

// RawModuleDef is a module description as found in a source file.
type RawModuleDef struct {
	// Module is the module name, or for TOML a table with name and base_addr.
	Module      any              `yaml:"module" json:"module" toml:"module"`
	Name        string           `yaml:"name" json:"name" toml:"name"`
	BaseAddr    any              `yaml:"base_addr" json:"base_addr" toml:"base_addr"`
	Description string           `yaml:"description" json:"description" toml:"description"`
	Registers   []RawRegisterDef `yaml:"registers" json:"registers" toml:"registers"`
}

// RawRegisterDef is a register description as found in a source file.
type RawRegisterDef struct {
	Name        string `yaml:"name" json:"name" toml:"name"`
	Addr        any    `yaml:"addr" json:"addr" toml:"addr"`
	Access      string `yaml:"access" json:"access" toml:"access"` // "RO", "WO", "RW"; empty means RW
	Width       uint   `yaml:"width" json:"width" toml:"width"`
	Default     any    `yaml:"default" json:"default" toml:"default"`
	Description string `yaml:"description" json:"description" toml:"description"`
}

// ToModule converts the raw definition into a regmap module. Structural
// problems (missing names or addresses, unparsable numbers) are returned as
// errors; semantic problems such as unknown access modes are kept in the
// module for regmap validation to report.
func (def *RawModuleDef) ToModule(source string) (*regmap.Module, error) {
	name, base := def.Name, def.BaseAddr
	switch mod := def.Module.(type) {
	case nil:
	case string:
		name = mod
	case map[string]any:
		if n, ok := mod["name"].(string); ok {
			name = n
		}
		if b, ok := mod["base_addr"]; ok {
			base = b
		}
	default:
		return nil, fmt.Errorf("module: unexpected value of type %T", def.Module)
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("module definition missing name")
	}

	m := &regmap.Module{
		Name:        name,
		Description: def.Description,
		Source:      source,
	}

	var errs []error
	if base != nil {
		addr, err := ParseAddress(base)
		if err != nil {
			errs = append(errs, fmt.Errorf("base_addr: %w", err))
		}
		m.BaseAddress = addr
	}

	for i, raw := range def.Registers {
		reg, err := raw.toRegister()
		if err != nil {
			label := raw.Name
			if label == "" {
				label = "#" + strconv.Itoa(i)
			}
			errs = append(errs, fmt.Errorf("register %s: %w", label, err))
			continue
		}
		m.Registers = append(m.Registers, reg)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("module %s: %w", name, errors.Join(errs...))
	}
	return m, nil
}

func (raw RawRegisterDef) toRegister() (regmap.Register, error) {
	if strings.TrimSpace(raw.Name) == "" {
		return regmap.Register{}, errors.New("missing name")
	}
	if raw.Addr == nil {
		return regmap.Register{}, errors.New("missing addr")
	}
	offset, err := ParseAddress(raw.Addr)
	if err != nil {
		return regmap.Register{}, fmt.Errorf("addr: %w", err)
	}

	access := regmap.ReadWrite
	if raw.Access != "" {
		// unknown modes are kept and reported by model validation
		access, _ = regmap.ParseAccess(raw.Access)
	}

	reg := regmap.Register{
		Name:        raw.Name,
		Offset:      offset,
		Width:       raw.Width,
		Access:      access,
		Description: strings.TrimSpace(raw.Description),
	}
	if raw.Default != nil {
		v, err := ParseAddress(raw.Default)
		if err != nil {
			return regmap.Register{}, fmt.Errorf("default: %w", err)
		}
		reg.Default = &v
	}
	return reg, nil
}

// ParseAddress converts an address-like value: a hex ("0x1C") or decimal
// string, or any integer produced by the YAML, JSON or TOML decoders.
func ParseAddress(v any) (uint64, error) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, "_", ""))
		if s == "" {
			return 0, errors.New("empty address")
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			return strconv.ParseUint(s[2:], 16, 64)
		}
		return strconv.ParseUint(s, 10, 64)
	case int:
		return nonNegative(int64(x))
	case int64:
		return nonNegative(x)
	case uint64:
		return x, nil
	case uint:
		return uint64(x), nil
	case float64:
		if x < 0 || x != math.Trunc(x) || x >= math.MaxUint64 {
			return 0, fmt.Errorf("invalid address %v", x)
		}
		return uint64(x), nil
	case json.Number:
		return strconv.ParseUint(x.String(), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported address type %T", v)
	}
}

func nonNegative(v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("negative address %d", v)
	}
	return uint64(v), nil
}
