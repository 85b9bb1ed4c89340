// Package gobind generates Go register bindings from a compiled register
// map: address constants and a struct per module whose layout matches the C
// header exactly, with compile-time checks on every field offset.
package gobind

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/regmap-hdl/regmap-go/pkg/compiler"
	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

// Options control generation.
type Options struct {
	// Package is the Go package name. Default "regs".
	Package string

	// FileName is passed to the formatter. Default "regs.go".
	FileName string
}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = "regs"
	}
	if o.FileName == "" {
		o.FileName = "regs.go"
	}
	return o
}

type fileData struct {
	Package string
	Modules []moduleData
}

type moduleData struct {
	Name        string
	Source      string
	Description []string
	Type        string
	Base        string
	BaseValue   string
	Size        string
	Consts      []constData
	Fields      []fieldData
	Checks      []checkData
}

type constData struct {
	Name    string
	Value   string
	Comment string
}

type fieldData struct {
	Name    string
	Type    string
	Comment string
}

type checkData struct {
	Field  string
	Offset string
}

var fileTmpl = template.Must(template.New("file").Parse(`// Code generated by regmap-gen. DO NOT EDIT.

package {{.Package}}

import "unsafe"
{{range .Modules}}
// {{.Type}} is the register block of module {{.Name}}.
{{- range .Description}}
// {{.}}
{{- end}}
type {{.Type}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}{{if .Comment}} // {{.Comment}}{{end}}
{{- end}}
}

const (
	{{.Base}} uintptr = {{.BaseValue}}
{{- range .Consts}}
	{{.Name}} = {{.Value}}{{if .Comment}} // {{.Comment}}{{end}}
{{- end}}
)

// Each index below is out of range unless the layout matches the header.
var (
	_ = [1]struct{}{}[unsafe.Sizeof({{.Type}}{})-{{.Size}}]
{{- $t := .Type}}
{{- range .Checks}}
	_ = [1]struct{}{}[unsafe.Offsetof({{$t}}{}.{{.Field}})-{{.Offset}}]
{{- end}}
)
{{end}}`))

// Generate renders the Go bindings of every module in b.
func Generate(b *compiler.Build, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	data := fileData{Package: opts.Package}
	seen := make(map[string]string)
	claim := func(name, module string) error {
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("go identifier %s generated for both %s and %s", name, prev, module)
		}
		seen[name] = module
		return nil
	}

	for _, rm := range b.Modules {
		md, err := moduleFor(rm)
		if err != nil {
			return nil, err
		}
		names := []string{md.Type, md.Base}
		for _, c := range md.Consts {
			names = append(names, c.Name)
		}
		for _, n := range names {
			if err := claim(n, rm.Module.Name); err != nil {
				return nil, err
			}
		}
		data.Modules = append(data.Modules, md)
	}

	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering bindings: %w", err)
	}
	formatted, err := imports.Process(opts.FileName, buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("formatting bindings: %w", err)
	}
	return formatted, nil
}

func moduleFor(rm *regmap.ResolvedModule) (moduleData, error) {
	if rm.Layout == nil {
		return moduleData{}, fmt.Errorf("module %s has no layout", rm.Module.Name)
	}
	prefix := GoName(rm.Module.Name)
	md := moduleData{
		Name:      rm.Module.Name,
		Type:      prefix + "Regs",
		Base:      prefix + "Base",
		BaseValue: fmt.Sprintf("0x%08X", rm.Base()),
		Size:      fmt.Sprintf("0x%02X", rm.Layout.Size()),
	}
	for _, line := range strings.Split(strings.TrimSpace(rm.Module.Description), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			md.Description = append(md.Description, line)
		}
	}

	for _, rr := range rm.Registers {
		reg := prefix + GoName(rr.Name)
		md.Consts = append(md.Consts,
			constData{Name: reg + "Offset", Value: fmt.Sprintf("0x%02X", rr.Offset)},
			constData{Name: reg + "Addr", Value: fmt.Sprintf("0x%08X", rr.Address), Comment: rr.Access.String()},
		)
		if rr.Default != nil {
			md.Consts = append(md.Consts, constData{Name: reg + "Default", Value: fmt.Sprintf("0x%08X", *rr.Default)})
		}
	}

	fields := make(map[string]bool)
	for _, f := range rm.Layout.Fields {
		if f.Padding {
			typ := fmt.Sprintf("[%d]byte", f.Size)
			if f.Size%regmap.WordSize == 0 {
				typ = fmt.Sprintf("[%d]uint32", f.Size/regmap.WordSize)
			}
			md.Fields = append(md.Fields, fieldData{Name: "_", Type: typ})
			continue
		}
		name := GoName(f.Register)
		if fields[name] {
			return moduleData{}, fmt.Errorf("module %s: go field %s generated twice", rm.Module.Name, name)
		}
		fields[name] = true
		comment := fmt.Sprintf("0x%02X %s", f.Offset, f.Access)
		md.Fields = append(md.Fields, fieldData{Name: name, Type: "uint32", Comment: comment})
		md.Checks = append(md.Checks, checkData{Field: name, Offset: fmt.Sprintf("0x%02X", f.Offset)})
	}
	return md, nil
}
