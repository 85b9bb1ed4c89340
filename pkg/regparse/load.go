package regparse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

// Format is a description file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatXML  Format = "xml"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".toml":
		return FormatTOML, true
	case ".xml":
		return FormatXML, true
	}
	return "", false
}

// ParseModuleDef decodes a raw module definition.
func ParseModuleDef(data []byte, format Format) (*RawModuleDef, error) {
	var def RawModuleDef
	switch format {
	case FormatXML:
		xdef, err := parseXML(data)
		if err != nil {
			return nil, fmt.Errorf("parsing module def: %w", err)
		}
		return xdef, nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parsing module def: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing module def: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parsing module def: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return &def, nil
}

// Parse decodes data and converts it into a module. source is recorded in
// the module for diagnostics.
func Parse(data []byte, format Format, source string) (*regmap.Module, error) {
	def, err := ParseModuleDef(data, format)
	if err != nil {
		return nil, err
	}
	return def.ToModule(source)
}

// LoadFile loads one description file, choosing the format by extension.
func LoadFile(path string) (*regmap.Module, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("%s: unrecognised description format", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := Parse(data, format, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Loader walks files and directories for module descriptions.
type Loader struct {
	// Exclude holds glob patterns matched against base names and paths
	// relative to the walked directory. A matching directory is skipped.
	Exclude []string
}

// Load loads every path: files directly, directories recursively in lexical
// order. Files that fail to load are reported together; modules that did
// load are still returned.
func (l *Loader) Load(paths ...string) ([]*regmap.Module, error) {
	var (
		mods []*regmap.Module
		errs []error
	)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.IsDir() {
			m, err := LoadFile(p)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			mods = append(mods, m)
			continue
		}
		found, err := l.loadDir(p)
		mods = append(mods, found...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return mods, errors.Join(errs...)
}

func (l *Loader) loadDir(root string) ([]*regmap.Module, error) {
	var (
		mods []*regmap.Module
		errs []error
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && l.excluded(root, path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := FormatOf(path); !ok {
			return nil
		}
		m, err := LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		mods = append(mods, m)
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return mods, errors.Join(errs...)
}

func (l *Loader) excluded(root, path string) bool {
	base := filepath.Base(path)
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, pattern := range l.Exclude {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.ToSlash(rel)); ok {
			return true
		}
	}
	return false
}
