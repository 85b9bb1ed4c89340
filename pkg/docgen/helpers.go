package docgen

import (
	"strings"

	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// cell makes s safe inside a single-line Markdown table cell.
func cell(s string) string {
	return cellEscaper.Replace(strings.TrimSpace(s))
}

// code wraps s in backticks, or returns "" for an empty s.
func code(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(cell(s), "`", "'")
	return "`" + s + "`"
}

// anchor converts "SPI-Controller" to "spi_controller".
func anchor(name string) string {
	return strings.ToLower(regmap.NormalizeIdent(name))
}
