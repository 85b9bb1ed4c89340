// Package docgen renders a compiled build as a Markdown register reference.
package docgen

import (
	"fmt"
	"strings"

	"github.com/regmap-hdl/regmap-go/pkg/compiler"
	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

// DefaultTitle is the document title used when Options.Title is empty.
const DefaultTitle = "Register Map"

// Options configures the generated document.
type Options struct {
	Title string
}

// Generate produces the Markdown reference of every module in b, ordered by
// base address.
func Generate(b *compiler.Build, opts Options) []byte {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	g := &generator{digits: int(b.AddressWidth+3) / 4}
	if g.digits == 0 {
		g.digits = regmap.DefaultAddressWidth / 4
	}
	mods := regmap.SortedByBase(b.Modules)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", cell(title))
	fmt.Fprintf(&sb, "Generated by regmap-gen from %d module(s), %d-bit addresses.\n\n", len(mods), b.AddressWidth)
	g.writeSummary(&sb, b, mods)
	for _, rm := range mods {
		g.writeModule(&sb, b, rm)
	}
	return []byte(sb.String())
}

type generator struct {
	digits int
}

func (g *generator) writeSummary(b *strings.Builder, build *compiler.Build, mods []*regmap.ResolvedModule) {
	if len(mods) == 0 {
		b.WriteString("No modules.\n")
		return
	}
	b.WriteString("| Module | Base | End | Registers | Header |\n")
	b.WriteString("|--------|-----:|----:|----------:|--------|\n")
	for _, rm := range mods {
		fmt.Fprintf(b, "| [%s](#%s) | `%s` | `%s` | %d | %s |\n",
			cell(rm.Module.Name),
			anchor(rm.Module.Name),
			g.addr(rm.Base()),
			g.addr(rm.End()),
			len(rm.Registers),
			code(headerName(build, rm)),
		)
	}
	b.WriteString("\n")
}

func (g *generator) writeModule(b *strings.Builder, build *compiler.Build, rm *regmap.ResolvedModule) {
	ns := rm.Namespace
	fmt.Fprintf(b, "## %s\n\n", cell(rm.Module.Name))
	if desc := strings.TrimSpace(rm.Module.Description); desc != "" {
		fmt.Fprintf(b, "> %s\n\n", cell(desc))
	}

	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(b, "| **Base address** | `%s` (`%s`) |\n", g.addr(rm.Base()), ns.BaseAddr())
	fmt.Fprintf(b, "| **Size** | 0x%X bytes |\n", rm.Extent)
	if h := headerName(build, rm); h != "" {
		fmt.Fprintf(b, "| **Header** | `%s` |\n", h)
	}
	if rm.Layout != nil && len(rm.Layout.Fields) > 0 {
		fmt.Fprintf(b, "| **Struct** | `%s` via `%s` |\n", ns.TypeName(), ns.Regs())
	}
	if rm.Module.Source != "" {
		fmt.Fprintf(b, "| **Source** | %s |\n", code(rm.Module.Source))
	}
	b.WriteString("\n")

	if len(rm.Registers) == 0 {
		b.WriteString("No registers.\n\n")
		return
	}
	g.writeRegisters(b, rm)
	writeAccessors(b, rm)
}

func (g *generator) writeRegisters(b *strings.Builder, rm *regmap.ResolvedModule) {
	b.WriteString("### Registers\n\n")
	b.WriteString("| Offset | Address | Name | Access | Reset | Description |\n")
	b.WriteString("|-------:|--------:|------|:------:|------:|-------------|\n")
	for _, rr := range rm.Registers {
		reset := ""
		if rr.Default != nil {
			reset = fmt.Sprintf("`0x%08X`", *rr.Default)
		}
		fmt.Fprintf(b, "| `0x%02X` | `%s` | %s | %s | %s | %s |\n",
			rr.Offset,
			g.addr(rr.Address),
			code(rr.Name),
			rr.Access,
			reset,
			cell(rr.Description),
		)
	}
	b.WriteString("\n")
}

func writeAccessors(b *strings.Builder, rm *regmap.ResolvedModule) {
	b.WriteString("### Macros\n\n")
	b.WriteString("| Register | Address | Read | Write |\n")
	b.WriteString("|----------|---------|------|-------|\n")
	for _, rr := range rm.Registers {
		s := rr.Symbols
		read, write := "", ""
		if s.Read != "" {
			read = "`" + s.Read.String() + "()`"
		}
		if s.Write != "" {
			write = "`" + s.Write.String() + "(val)`"
		}
		fmt.Fprintf(b, "| %s | `%s` | %s | %s |\n", code(rr.Name), s.Addr, read, write)
	}
	b.WriteString("\n")
}

func (g *generator) addr(v uint64) string {
	return fmt.Sprintf("0x%0*X", g.digits, v)
}

func headerName(build *compiler.Build, rm *regmap.ResolvedModule) string {
	if a, ok := build.Header(rm.Module.Name); ok {
		return a.Name
	}
	return ""
}
