package gobind

import (
	"strings"

	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

var initialisms = map[string]bool{
	"ADC": true, "CPU": true, "CRC": true, "DAC": true, "DMA": true,
	"FIFO": true, "GPIO": true, "I2C": true, "ID": true, "IRQ": true,
	"PWM": true, "RX": true, "SPI": true, "TX": true, "UART": true, "USB": true,
}

// GoName converts a module or register name into an exported Go identifier:
// "spi_controller" becomes "SPIController", "fifo_status" becomes
// "FIFOStatus".
func GoName(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(regmap.NormalizeIdent(s), "_") {
		if part == "" {
			continue
		}
		if up := strings.ToUpper(part); initialisms[up] {
			b.WriteString(up)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	name := b.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "R" + name
	}
	return name
}
