package cheader

import (
	"fmt"
	"strings"
	"text/template"
)

var funcMap = template.FuncMap{
	"concat": func(a, b string) string { return a + b },
	"macro":  macro,
}

var templates = template.Must(template.New("").Funcs(funcMap).Parse(headerTmpl + structTmpl))

// macro renders one aligned #define line.
func macro(name, value string, col int) string {
	return fmt.Sprintf("#define %-*s %s", col, name, value)
}

// --- Template data types ---

type headerData struct {
	File        string
	Module      string
	Description []string
	Guard       string
	BaseAddr    string
	BaseValue   string
	Col         int
	Registers   []registerData
	Struct      *structData
}

type registerData struct {
	Name        string
	Access      string
	Description string

	OffsetSym   string
	OffsetValue string
	AddrSym     string
	AddrValue   string

	DefaultSym   string
	DefaultValue string

	ReadSym   string
	ReadExpr  string
	WriteSym  string
	WriteExpr string
}

type structData struct {
	TypeName  string
	Size      string
	Fields    []fieldData
	Asserts   []string
	Regs      string
	RegsValue string
	Col       int
}

type fieldData struct {
	Decl    string
	Comment string
}

// --- Template definitions ---

const headerTmpl = `{{define "header" -}}
/*
 * {{.File}}
 *
 * Register map of module {{.Module}}.
{{- range .Description}}
 * {{.}}
{{- end}}
 *
 * Generated by regmap-gen. Do not edit.
 */

#ifndef {{.Guard}}
#define {{.Guard}}

#include <stddef.h>
#include <stdint.h>

{{macro .BaseAddr .BaseValue .Col}}
{{- range .Registers}}

/* {{.Name}} ({{.Access}}){{if .Description}}: {{.Description}}{{end}} */
{{macro .OffsetSym .OffsetValue $.Col}}
{{macro .AddrSym .AddrValue $.Col}}
{{- if .DefaultSym}}
{{macro .DefaultSym .DefaultValue $.Col}}
{{- end}}
{{- if .ReadSym}}
{{macro (concat .ReadSym "()") .ReadExpr $.Col}}
{{- end}}
{{- if .WriteSym}}
{{macro (concat .WriteSym "(val)") .WriteExpr $.Col}}
{{- end}}
{{- end}}
{{- if .Struct}}
{{template "struct" .Struct}}
{{- end}}

#endif /* {{.Guard}} */
{{end}}`

const structTmpl = `{{define "struct"}}
/* Register block layout, {{.Size}} bytes */
typedef struct __attribute__((packed)) {
{{- range .Fields}}
    {{.Decl}} /* {{.Comment}} */
{{- end}}
} {{.TypeName}};

#if defined(__STDC_VERSION__) && __STDC_VERSION__ >= 201112L
{{- range .Asserts}}
_Static_assert({{.}});
{{- end}}
#endif

{{macro .Regs .RegsValue .Col}}{{end}}`

// renderTemplate executes a named template into the builder.
func renderTemplate(b *strings.Builder, name string, data any) error {
	if err := templates.ExecuteTemplate(b, name, data); err != nil {
		return fmt.Errorf("template %s: %w", name, err)
	}
	return nil
}
