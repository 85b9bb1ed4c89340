// Package cheader renders resolved register modules as C headers.
//
// Each header is self-contained and only defines symbols prefixed with its
// module's namespace, so headers of one build can be included together in a
// single translation unit. Output is a pure function of the resolved module:
// the same input always yields byte-identical text.
package cheader

import (
	"fmt"
	"strings"

	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

// Emitter renders headers for one target address width.
type Emitter struct {
	digits int
	suffix string
}

// NewEmitter returns an emitter for an addressWidth-bit target.
// Zero selects regmap.DefaultAddressWidth.
func NewEmitter(addressWidth uint) *Emitter {
	if addressWidth == 0 {
		addressWidth = regmap.DefaultAddressWidth
	}
	e := &Emitter{digits: int(addressWidth+3) / 4, suffix: "U"}
	if addressWidth > 32 {
		e.suffix = "ULL"
	}
	return e
}

// FileName returns the header file name of rm, e.g. spi_controller_regs.h.
func FileName(rm *regmap.ResolvedModule) string {
	return strings.ToLower(regmap.NormalizeIdent(rm.Module.Name)) + "_regs.h"
}

// Emit renders the header of a validated module. rm.Layout must be set.
func (e *Emitter) Emit(rm *regmap.ResolvedModule) ([]byte, error) {
	if rm.Layout == nil {
		return nil, fmt.Errorf("module %s has no layout; validate it before emitting", rm.Module.Name)
	}

	ns := rm.Namespace
	data := headerData{
		File:        FileName(rm),
		Module:      commentText(rm.Module.Name),
		Description: commentLines(rm.Module.Description),
		Guard:       ns.Guard().String(),
		BaseAddr:    ns.BaseAddr().String(),
		BaseValue:   e.address(rm.Module.BaseAddress),
	}
	col := len(data.BaseAddr)

	for _, rr := range rm.Registers {
		rd := registerData{
			Name:        commentText(rr.Name),
			Access:      rr.Access.String(),
			Description: commentText(rr.Description),
			OffsetSym:   rr.Symbols.Offset.String(),
			OffsetValue: fmt.Sprintf("0x%02X", rr.Offset),
			AddrSym:     rr.Symbols.Addr.String(),
			AddrValue:   e.address(rr.Address),
		}
		if rr.Symbols.Default != "" {
			rd.DefaultSym = rr.Symbols.Default.String()
			rd.DefaultValue = fmt.Sprintf("0x%08XU", *rr.Default)
		}
		if rr.Symbols.Read != "" {
			rd.ReadSym = rr.Symbols.Read.String()
			rd.ReadExpr = fmt.Sprintf("(*(const volatile uint32_t *)(uintptr_t)%s)", rd.AddrSym)
			col = max(col, len(rd.ReadSym)+len("()"))
		}
		if rr.Symbols.Write != "" {
			rd.WriteSym = rr.Symbols.Write.String()
			rd.WriteExpr = fmt.Sprintf("(*(volatile uint32_t *)(uintptr_t)%s = (uint32_t)(val))", rd.AddrSym)
			col = max(col, len(rd.WriteSym)+len("(val)"))
		}
		col = max(col, len(rd.OffsetSym), len(rd.AddrSym), len(rd.DefaultSym))
		data.Registers = append(data.Registers, rd)
	}

	if len(rm.Layout.Fields) > 0 {
		data.Struct = e.structData(rm, ns)
		col = max(col, len(data.Struct.Regs))
		data.Struct.Col = col
	}
	data.Col = col

	var b strings.Builder
	if err := renderTemplate(&b, "header", data); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (e *Emitter) structData(rm *regmap.ResolvedModule, ns regmap.Namespace) *structData {
	l := rm.Layout
	typeName := ns.TypeName().String()
	sd := &structData{
		TypeName:  typeName,
		Size:      fmt.Sprintf("0x%X", l.Size()),
		Regs:      ns.Regs().String(),
		RegsValue: fmt.Sprintf("((%s *)(uintptr_t)%s)", typeName, ns.BaseAddr()),
	}

	decls := make([]string, len(l.Fields))
	width := 0
	for i, f := range l.Fields {
		decls[i] = fieldDecl(f)
		width = max(width, len(decls[i]))
	}
	for i, f := range l.Fields {
		var comment string
		if f.Padding {
			comment = fmt.Sprintf("0x%02X - 0x%02X reserved", f.Offset, f.End()-1)
		} else {
			comment = fmt.Sprintf("0x%02X %s", f.Offset, f.Access)
			sd.Asserts = append(sd.Asserts, fmt.Sprintf("offsetof(%s, %s) == 0x%02X, %q",
				typeName, f.Name, f.Offset, typeName+"."+f.Name+" offset"))
		}
		sd.Fields = append(sd.Fields, fieldData{
			Decl:    fmt.Sprintf("%-*s", width, decls[i]),
			Comment: comment,
		})
	}
	sd.Asserts = append(sd.Asserts, fmt.Sprintf("sizeof(%s) == 0x%X, %q", typeName, l.Size(), typeName+" size"))
	return sd
}

func fieldDecl(f regmap.Field) string {
	switch {
	case !f.Padding:
		return fmt.Sprintf("volatile uint32_t %s;", f.Name)
	case f.Size%regmap.WordSize == 0:
		return fmt.Sprintf("uint32_t %s[%d];", f.Name, f.Size/regmap.WordSize)
	default:
		return fmt.Sprintf("uint8_t %s[%d];", f.Name, f.Size)
	}
}

func (e *Emitter) address(v uint64) string {
	return fmt.Sprintf("0x%0*X%s", e.digits, v, e.suffix)
}

// commentLines splits s into lines safe to place inside a C block comment.
func commentLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "*/", "* /")
	s = strings.ReplaceAll(s, "/*", "/ *")
	var out []string
	for _, line := range strings.Split(s, "\n") {
		out = append(out, strings.TrimSpace(line))
	}
	return out
}

// commentText is commentLines joined onto a single line.
func commentText(s string) string {
	return strings.Join(commentLines(s), " ")
}
