package headercheck

import (
	"fmt"
	"strings"

	"github.com/regmap-hdl/regmap-go/pkg/compiler"
	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

// Result is the outcome of one check.
type Result struct {
	Module  string
	Name    string
	Passed  bool
	Message string
}

// Suite holds every result of a run.
type Suite struct {
	Results   []Result
	PassCount int
	FailCount int
}

// Passed reports whether every check passed.
func (s *Suite) Passed() bool { return s.FailCount == 0 }

// Failures returns the failed results.
func (s *Suite) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func (s *Suite) add(module, name string, err error) {
	r := Result{Module: module, Name: name, Passed: err == nil}
	if err != nil {
		r.Message = err.Error()
		s.FailCount++
	} else {
		s.PassCount++
	}
	s.Results = append(s.Results, r)
}

// Check parses every header of b and verifies it against the resolved
// modules: guard, base address, every register's offset and address,
// accessor presence by access mode, the struct layout assertions and the
// register block pointer. A final check verifies that no macro name is
// defined by two headers.
func Check(b *compiler.Build) *Suite {
	s := &Suite{}
	owners := make(map[string]string)
	var shared []string

	for _, rm := range b.Modules {
		name := rm.Module.Name
		h, ok := b.Header(name)
		if !ok {
			s.add(name, "header", fmt.Errorf("no header generated"))
			continue
		}
		defs, err := ParseDefines(h.Content)
		s.add(name, "parse", err)
		if err != nil {
			continue
		}
		checkModule(s, rm, string(h.Content), defs)

		for _, n := range defs.Names() {
			if prev, ok := owners[n]; ok && prev != name {
				shared = append(shared, fmt.Sprintf("%s (%s, %s)", n, prev, name))
				continue
			}
			owners[n] = name
		}
	}

	var err error
	if len(shared) > 0 {
		err = fmt.Errorf("defined by more than one header: %s", strings.Join(shared, ", "))
	}
	s.add("", "unique-symbols", err)
	return s
}

func checkModule(s *Suite, rm *regmap.ResolvedModule, src string, defs *Defines) {
	name := rm.Module.Name
	ns := rm.Namespace

	guard := ns.Guard().String()
	s.add(name, "guard", expect(strings.Contains(src, "#ifndef "+guard+"\n") &&
		strings.Contains(src, "#endif /* "+guard+" */"), "include guard %s missing", guard))

	s.add(name, "base-address", expectValue(defs, ns.BaseAddr().String(), rm.Base()))

	for _, rr := range rm.Registers {
		prefix := rr.Name + "/"
		sym := rr.Symbols

		s.add(name, prefix+"offset", expectValue(defs, sym.Offset.String(), rr.Offset))
		s.add(name, prefix+"address", expectValue(defs, sym.Addr.String(), rr.Address))
		s.add(name, prefix+"address-sum", checkSum(defs, ns.BaseAddr().String(), sym.Offset.String(), sym.Addr.String()))

		s.add(name, prefix+"read-accessor",
			checkAccessor(defs, ns.Read(rr.Name).String(), sym.Addr.String(), rr.Access.Readable(), false))
		s.add(name, prefix+"write-accessor",
			checkAccessor(defs, ns.Write(rr.Name).String(), sym.Addr.String(), rr.Access.Writable(), true))

		if rr.Default != nil {
			s.add(name, prefix+"default", expectValue(defs, sym.Default.String(), *rr.Default))
		}
	}

	if len(rm.Registers) == 0 {
		_, ok := defs.Lookup(ns.Regs().String())
		s.add(name, "register-block", expect(!ok, "%s defined for a module without registers", ns.Regs()))
		return
	}

	typ := ns.TypeName().String()
	var missing []string
	for _, f := range rm.Layout.RegisterFields() {
		assertion := fmt.Sprintf("_Static_assert(offsetof(%s, %s) == 0x%02X,", typ, f.Name, f.Offset)
		if !strings.Contains(src, assertion) {
			missing = append(missing, f.Name)
		}
	}
	s.add(name, "layout", expect(len(missing) == 0, "no offset assertion for %s", strings.Join(missing, ", ")))
	s.add(name, "size", expect(strings.Contains(src, fmt.Sprintf("sizeof(%s) == 0x%X,", typ, rm.Layout.Size())),
		"no size assertion of 0x%X", rm.Layout.Size()))

	regs, ok := defs.Lookup(ns.Regs().String())
	s.add(name, "register-block", expect(ok && strings.Contains(regs.Value, typ) &&
		strings.Contains(regs.Value, ns.BaseAddr().String()), "%s does not cast %s to %s", ns.Regs(), ns.BaseAddr(), typ))
}

func expect(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return fmt.Errorf(format, args...)
}

func expectValue(defs *Defines, name string, want uint64) error {
	got, err := defs.Integer(name)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s is 0x%X, want 0x%X", name, got, want)
	}
	return nil
}

func checkSum(defs *Defines, base, offset, addr string) error {
	b, err := defs.Integer(base)
	if err != nil {
		return err
	}
	o, err := defs.Integer(offset)
	if err != nil {
		return err
	}
	a, err := defs.Integer(addr)
	if err != nil {
		return err
	}
	if b+o != a {
		return fmt.Errorf("%s (0x%X) != %s + %s (0x%X)", addr, a, base, offset, b+o)
	}
	return nil
}

func checkAccessor(defs *Defines, name, addr string, want, write bool) error {
	def, ok := defs.Lookup(name)
	switch {
	case !want && ok:
		return fmt.Errorf("%s defined for a register without that access", name)
	case !want:
		return nil
	case !ok:
		return fmt.Errorf("%s missing", name)
	case !def.Function():
		return fmt.Errorf("%s is not a function-like macro", name)
	case write && len(def.Params) != 1:
		return fmt.Errorf("%s takes %d parameters, want 1", name, len(def.Params))
	case !write && len(def.Params) != 0:
		return fmt.Errorf("%s takes %d parameters, want 0", name, len(def.Params))
	case !strings.Contains(def.Value, addr):
		return fmt.Errorf("%s does not access %s", name, addr)
	}
	return nil
}
