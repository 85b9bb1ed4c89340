// Package manifest describes a compiled register map as data: every module's
// address range and every register's address, access mode and generated
// symbols. It is written next to the headers as YAML for people and as
// canonical CBOR for tools.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/regmap-hdl/regmap-go/pkg/cheader"
	"github.com/regmap-hdl/regmap-go/pkg/compiler"
	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

// Generator identifies the producer in every manifest.
const Generator = "regmap-gen"

// Hex is an address rendered as a hex string in YAML.
type Hex uint64

// MarshalYAML implements yaml.Marshaler.
func (h Hex) MarshalYAML() (any, error) {
	return fmt.Sprintf("0x%X", uint64(h)), nil
}

// UnmarshalYAML accepts hex or decimal scalars.
func (h *Hex) UnmarshalYAML(node *yaml.Node) error {
	v, err := strconv.ParseUint(strings.ReplaceAll(node.Value, "_", ""), 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid address %q", node.Line, node.Value)
	}
	*h = Hex(v)
	return nil
}

// Manifest is the address map of one build.
type Manifest struct {
	Generator    string   `yaml:"generator" cbor:"1,keyasint"`
	AddressWidth uint     `yaml:"address_width" cbor:"2,keyasint"`
	Modules      []Module `yaml:"modules" cbor:"3,keyasint"`
}

// Module is one module's entry.
type Module struct {
	Name        string     `yaml:"name" cbor:"1,keyasint"`
	Description string     `yaml:"description,omitempty" cbor:"2,keyasint,omitempty"`
	Header      string     `yaml:"header" cbor:"3,keyasint"`
	TypeName    string     `yaml:"type" cbor:"4,keyasint"`
	Base        Hex        `yaml:"base" cbor:"5,keyasint"`
	End         Hex        `yaml:"end" cbor:"6,keyasint"`
	Size        uint64     `yaml:"size" cbor:"7,keyasint"`
	Registers   []Register `yaml:"registers" cbor:"8,keyasint"`
}

// Register is one register's entry.
type Register struct {
	Name    string   `yaml:"name" cbor:"1,keyasint"`
	Offset  Hex      `yaml:"offset" cbor:"2,keyasint"`
	Address Hex      `yaml:"address" cbor:"3,keyasint"`
	Access  string   `yaml:"access" cbor:"4,keyasint"`
	Field   string   `yaml:"field" cbor:"5,keyasint"`
	Default *Hex     `yaml:"default,omitempty" cbor:"6,keyasint,omitempty"`
	Symbols []string `yaml:"symbols" cbor:"7,keyasint"`
}

// New builds the manifest of a successful build.
func New(b *compiler.Build) *Manifest {
	m := &Manifest{
		Generator:    Generator,
		AddressWidth: b.AddressWidth,
		Modules:      make([]Module, 0, len(b.Modules)),
	}
	for _, rm := range b.Modules {
		m.Modules = append(m.Modules, newModule(rm))
	}
	return m
}

func newModule(rm *regmap.ResolvedModule) Module {
	mod := Module{
		Name:        rm.Module.Name,
		Description: rm.Module.Description,
		Header:      cheader.FileName(rm),
		TypeName:    rm.Namespace.TypeName().String(),
		Base:        Hex(rm.Base()),
		End:         Hex(rm.End()),
		Registers:   make([]Register, 0, len(rm.Registers)),
	}
	if rm.Layout != nil {
		mod.Size = rm.Layout.Size()
	}
	for _, rr := range rm.Registers {
		reg := Register{
			Name:    rr.Name,
			Offset:  Hex(rr.Offset),
			Address: Hex(rr.Address),
			Access:  rr.Access.String(),
			Field:   rr.Field,
		}
		if rr.Default != nil {
			d := Hex(*rr.Default)
			reg.Default = &d
		}
		for _, id := range rr.Symbols.All() {
			reg.Symbols = append(reg.Symbols, id.String())
		}
		mod.Registers = append(mod.Registers, reg)
	}
	return mod
}

// Module returns the entry of the named module.
func (m *Manifest) Module(name string) (*Module, bool) {
	for i := range m.Modules {
		if m.Modules[i].Name == name {
			return &m.Modules[i], true
		}
	}
	return nil, false
}

// EncodeYAML renders the manifest as YAML.
func (m *Manifest) EncodeYAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeYAML parses a YAML manifest.
func DecodeYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// Encode serialises m in the format selected by the extension of path:
// CBOR for .cbor and YAML otherwise.
func (m *Manifest) Encode(path string) ([]byte, error) {
	if strings.ToLower(filepath.Ext(path)) == ".cbor" {
		return m.EncodeCBOR()
	}
	return m.EncodeYAML()
}

// WriteFile encodes m with Encode and writes it to path.
func (m *Manifest) WriteFile(path string) error {
	data, err := m.Encode(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a manifest written by WriteFile.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(path)) == ".cbor" {
		return DecodeCBOR(data)
	}
	return DecodeYAML(data)
}
