package regmap

import "strings"

// Identifier is a generated C symbol.
type Identifier string

func (id Identifier) String() string { return string(id) }

// NormalizeIdent replaces every character that is not an ASCII letter or
// digit with '_'. Runs of non-identifier characters are not collapsed, so
// "a-b" and "a_b" normalise to the same identifier and are caught as a
// collision.
func NormalizeIdent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	alnum := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
			alnum = true
		default:
			b.WriteByte('_')
		}
	}
	if !alnum {
		return ""
	}
	return b.String()
}

// Symbol joins module, register and suffix into an upper snake case
// identifier. Empty parts are skipped.
//
//	Symbol("spi_controller", "fifo_status", "ADDR") == "SPI_CONTROLLER_FIFO_STATUS_ADDR"
func Symbol(module, register, suffix string) Identifier {
	parts := make([]string, 0, 3)
	for _, p := range []string{module, register} {
		if p == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(NormalizeIdent(p)))
	}
	if suffix != "" {
		parts = append(parts, strings.ToUpper(suffix))
	}
	return Identifier(strings.Join(parts, "_"))
}

// Namespace derives every symbol one module emits.
type Namespace struct {
	module string
}

// NewNamespace returns the namespace of the named module.
func NewNamespace(module string) Namespace {
	return Namespace{module: module}
}

// Prefix is the upper-cased module prefix shared by every macro.
func (n Namespace) Prefix() string { return strings.ToUpper(NormalizeIdent(n.module)) }

func (n Namespace) BaseAddr() Identifier { return Symbol(n.module, "", "BASE_ADDR") }
func (n Namespace) Regs() Identifier     { return Symbol(n.module, "", "REGS") }
func (n Namespace) Guard() Identifier    { return Symbol(n.module, "", "REGS_H") }

// TypeName is the lower snake case aggregate type, e.g. spi_controller_regs_t.
func (n Namespace) TypeName() Identifier {
	return Identifier(strings.ToLower(NormalizeIdent(n.module)) + "_regs_t")
}

func (n Namespace) Offset(reg string) Identifier  { return Symbol(n.module, reg, "OFFSET") }
func (n Namespace) Addr(reg string) Identifier    { return Symbol(n.module, reg, "ADDR") }
func (n Namespace) Default(reg string) Identifier { return Symbol(n.module, reg, "DEFAULT") }
func (n Namespace) Read(reg string) Identifier    { return Symbol(n.module, "READ_"+reg, "") }
func (n Namespace) Write(reg string) Identifier   { return Symbol(n.module, "WRITE_"+reg, "") }

// cKeywords are the C11 and C23 keywords that cannot name a struct member.
var cKeywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true,

	"alignas": true, "alignof": true, "bool": true, "constexpr": true, "false": true,
	"nullptr": true, "static_assert": true, "thread_local": true, "true": true,
	"typeof": true, "typeof_unqual": true,
}

// IsCKeyword reports whether s is a reserved C keyword.
func IsCKeyword(s string) bool { return cKeywords[s] }

// Field is the struct member name of a register. Names that would start
// with a digit or underscore, or that are C keywords, get an "r" prefix.
//
//	Field("INT") == "r_int"
func (n Namespace) Field(reg string) string {
	f := strings.ToLower(NormalizeIdent(reg))
	switch {
	case f == "":
	case f[0] >= '0' && f[0] <= '9', cKeywords[f]:
		f = "r_" + f
	case f[0] == '_':
		// leading underscores are reserved for padding members
		f = "r" + f
	}
	return f
}

// ModuleSymbols are the symbols a module emits independent of its registers.
func (n Namespace) ModuleSymbols() []Identifier {
	return []Identifier{n.Guard(), n.BaseAddr(), n.Regs(), n.TypeName()}
}

// RegisterSymbols are the symbols derived for one register.
type RegisterSymbols struct {
	Offset  Identifier
	Addr    Identifier
	Read    Identifier // empty unless readable
	Write   Identifier // empty unless writable
	Default Identifier // empty unless a reset value is declared
}

// All returns the non-empty symbols in emission order.
func (s RegisterSymbols) All() []Identifier {
	out := make([]Identifier, 0, 5)
	for _, id := range []Identifier{s.Offset, s.Addr, s.Default, s.Read, s.Write} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// SymbolsFor derives the symbol set of reg.
func (n Namespace) SymbolsFor(reg Register) RegisterSymbols {
	s := RegisterSymbols{
		Offset: n.Offset(reg.Name),
		Addr:   n.Addr(reg.Name),
	}
	if reg.Access.Readable() {
		s.Read = n.Read(reg.Name)
	}
	if reg.Access.Writable() {
		s.Write = n.Write(reg.Name)
	}
	if reg.Default != nil {
		s.Default = n.Default(reg.Name)
	}
	return s
}

// CheckNamespaces records every symbol collision in a build: modules whose
// names normalise to the same prefix, symbols emitted by two modules, and
// symbols or struct members emitted twice by one module.
func CheckNamespaces(mods []*ResolvedModule, r *Report) {
	prefixes := make(map[string]string, len(mods))
	collided := make(map[string]bool)
	for _, rm := range mods {
		p := rm.Namespace.Prefix()
		if p == "" {
			continue
		}
		if other, ok := prefixes[p]; ok {
			r.AddError(ErrModuleNameCollision, rm.Module.Name, "",
				"normalises to %s, same as module %q", p, other)
			collided[rm.Module.Name] = true
			collided[other] = true
			continue
		}
		prefixes[p] = rm.Module.Name
	}

	owners := make(map[Identifier]string)
	reported := make(map[[2]string]bool)
	for _, rm := range mods {
		checkModuleSymbols(rm, r)
		if collided[rm.Module.Name] {
			continue
		}
		for _, id := range rm.Symbols() {
			other, ok := owners[id]
			if !ok {
				owners[id] = rm.Module.Name
				continue
			}
			pair := [2]string{other, rm.Module.Name}
			if other == rm.Module.Name || reported[pair] {
				continue
			}
			reported[pair] = true
			r.AddError(ErrModuleNameCollision, rm.Module.Name, "",
				"symbol %s is also generated by module %q", id, other)
		}
	}
}

func checkModuleSymbols(rm *ResolvedModule, r *Report) {
	owner := make(map[Identifier]string)
	claim := func(id Identifier, reg string) {
		prev, ok := owner[id]
		if !ok {
			owner[id] = reg
			return
		}
		what := "the module itself"
		if prev != "" {
			what = "register " + prev
		}
		r.AddError(ErrSymbolCollision, rm.Module.Name, reg, "%s is also generated for %s", id, what)
	}
	for _, id := range rm.Namespace.ModuleSymbols() {
		claim(id, "")
	}

	fields := make(map[string]string)
	names := make(map[string]bool)
	for _, rr := range rm.Registers {
		if names[rr.Name] {
			// already reported as ErrDuplicateRegisterName
			continue
		}
		names[rr.Name] = true
		for _, id := range rr.Symbols.All() {
			claim(id, rr.Name)
		}
		if prev, ok := fields[rr.Field]; ok {
			r.AddError(ErrSymbolCollision, rm.Module.Name, rr.Name,
				"struct member %s is also used by register %s", rr.Field, prev)
			continue
		}
		fields[rr.Field] = rr.Name
	}
}
