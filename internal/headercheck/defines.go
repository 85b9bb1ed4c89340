// Package headercheck reads generated headers back and verifies them against
// the resolved register map they were generated from.
package headercheck

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Define is one object-like or function-like macro.
type Define struct {
	Name   string
	Params []string // nil for object-like macros
	Value  string
	Line   int
}

// Function reports whether the macro takes parameters.
func (d Define) Function() bool { return d.Params != nil }

var defineRe = regexp.MustCompile(`^\s*#\s*define\s+([A-Za-z_][A-Za-z0-9_]*)(\(([^)]*)\))?(?:\s+(.*))?$`)

// Defines is the set of macros in a header, in order of definition.
type Defines struct {
	order  []string
	byName map[string]Define
}

// ParseDefines extracts every #define from src. A macro defined twice is an
// error.
func ParseDefines(src []byte) (*Defines, error) {
	d := &Defines{byName: make(map[string]Define)}
	sc := bufio.NewScanner(bytes.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		m := defineRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		def := Define{Name: m[1], Value: strings.TrimSpace(m[4]), Line: line}
		if m[2] != "" {
			def.Params = []string{}
			for _, p := range strings.Split(m[3], ",") {
				if p = strings.TrimSpace(p); p != "" {
					def.Params = append(def.Params, p)
				}
			}
		}
		if prev, ok := d.byName[def.Name]; ok {
			return nil, fmt.Errorf("line %d: %s already defined on line %d", line, def.Name, prev.Line)
		}
		d.byName[def.Name] = def
		d.order = append(d.order, def.Name)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// Lookup returns the named macro.
func (d *Defines) Lookup(name string) (Define, bool) {
	def, ok := d.byName[name]
	return def, ok
}

// Names returns the macro names in definition order.
func (d *Defines) Names() []string { return d.order }

// Len returns the number of macros.
func (d *Defines) Len() int { return len(d.order) }

// Integer evaluates an integer literal macro such as 0x0000101CU or 0x24.
func (d *Defines) Integer(name string) (uint64, error) {
	def, ok := d.byName[name]
	if !ok {
		return 0, fmt.Errorf("%s not defined", name)
	}
	return ParseLiteral(def.Value)
}

// ParseLiteral parses a C integer literal with an optional U, UL or ULL
// suffix.
func ParseLiteral(s string) (uint64, error) {
	lit := strings.TrimRight(strings.TrimSpace(s), "uUlL")
	if lit == "" {
		return 0, fmt.Errorf("invalid integer literal %q", s)
	}
	v, err := strconv.ParseUint(lit, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q", s)
	}
	return v, nil
}
