package cheader

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

func resolve(t *testing.T, width uint, mods ...*regmap.Module) []*regmap.ResolvedModule {
	t.Helper()
	alloc, err := regmap.NewAllocator(width)
	require.NoError(t, err)
	resolved, report := regmap.Analyze(mods, alloc, regmap.NewValidator())
	require.NoError(t, report.Err())
	return resolved
}

func uartModule() *regmap.Module {
	reset := uint64(0xFF)
	return &regmap.Module{
		Name:        "uart",
		BaseAddress: 0x4000,
		Description: "Serial port.",
		Registers: []regmap.Register{
			{Name: "data", Offset: 0x00, Access: regmap.ReadWrite, Default: &reset},
			{Name: "status", Offset: 0x08, Access: regmap.ReadOnly, Description: "Line status"},
		},
	}
}

func emit(t *testing.T, rm *regmap.ResolvedModule) string {
	t.Helper()
	out, err := NewEmitter(32).Emit(rm)
	require.NoError(t, err)
	return string(out)
}

// mustDefine checks that output defines name with the given value.
func mustDefine(t *testing.T, output, name, value string) {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[0] == "#define" && fields[1] == name {
			assert.Equal(t, value, strings.Join(fields[2:], " "), name)
			return
		}
	}
	t.Errorf("output does not define %s", name)
}

func mustNotDefine(t *testing.T, output, name string) {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "#define" && fields[1] == name {
			t.Errorf("output unexpectedly defines %s", name)
		}
	}
}

func mustContain(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Errorf("output missing %q", substr)
	}
}

func TestEmitGolden(t *testing.T) {
	want, err := os.ReadFile("testdata/uart_regs.h")
	require.NoError(t, err)

	rm := resolve(t, 32, uartModule())[0]
	assert.Equal(t, "uart_regs.h", FileName(rm))
	assert.Equal(t, string(want), emit(t, rm))
}

func TestEmitIsIdempotent(t *testing.T) {
	a := emit(t, resolve(t, 32, uartModule())[0])
	b := emit(t, resolve(t, 32, uartModule())[0])
	assert.True(t, bytes.Equal([]byte(a), []byte(b)))
}

func TestEmitSensorControllerScenario(t *testing.T) {
	rm := resolve(t, 32, &regmap.Module{
		Name:        "sensor_controller",
		BaseAddress: 0x00000000,
		Registers: []regmap.Register{
			{Name: "status_reg", Offset: 0x00, Access: regmap.ReadOnly},
			{Name: "config_reg", Offset: 0x24, Access: regmap.ReadWrite},
		},
	})[0]
	out := emit(t, rm)

	mustDefine(t, out, "SENSOR_CONTROLLER_BASE_ADDR", "0x00000000U")
	mustDefine(t, out, "SENSOR_CONTROLLER_STATUS_REG_OFFSET", "0x00")
	mustDefine(t, out, "SENSOR_CONTROLLER_CONFIG_REG_OFFSET", "0x24")
	mustDefine(t, out, "SENSOR_CONTROLLER_CONFIG_REG_ADDR", "0x00000024U")
	mustDefine(t, out, "SENSOR_CONTROLLER_READ_STATUS_REG()",
		"(*(const volatile uint32_t *)(uintptr_t)SENSOR_CONTROLLER_STATUS_REG_ADDR)")
	mustDefine(t, out, "SENSOR_CONTROLLER_READ_CONFIG_REG()",
		"(*(const volatile uint32_t *)(uintptr_t)SENSOR_CONTROLLER_CONFIG_REG_ADDR)")
	mustDefine(t, out, "SENSOR_CONTROLLER_WRITE_CONFIG_REG(val)",
		"(*(volatile uint32_t *)(uintptr_t)SENSOR_CONTROLLER_CONFIG_REG_ADDR = (uint32_t)(val))")
	mustNotDefine(t, out, "SENSOR_CONTROLLER_WRITE_STATUS_REG(val)")
	mustDefine(t, out, "SENSOR_CONTROLLER_REGS",
		"((sensor_controller_regs_t *)(uintptr_t)SENSOR_CONTROLLER_BASE_ADDR)")

	// 0x04..0x23 is padding: 8 words
	mustContain(t, out, "uint32_t _reserved0[8];")
	mustContain(t, out, "} sensor_controller_regs_t;")
	mustContain(t, out, `_Static_assert(offsetof(sensor_controller_regs_t, config_reg) == 0x24,`)
	mustContain(t, out, `_Static_assert(sizeof(sensor_controller_regs_t) == 0x28,`)
}

func TestEmitSPIControllerScenario(t *testing.T) {
	rm := resolve(t, 32, &regmap.Module{
		Name:        "spi_controller",
		BaseAddress: 0x1000,
		Registers: []regmap.Register{
			{Name: "fifo_status", Offset: 0x1C, Access: regmap.ReadOnly},
		},
	})[0]
	out := emit(t, rm)

	mustDefine(t, out, "SPI_CONTROLLER_FIFO_STATUS_ADDR", "0x0000101CU")
	mustContain(t, out, "uint32_t _reserved0[7];")
}

func TestEmitAccessorPresence(t *testing.T) {
	rm := resolve(t, 32, &regmap.Module{
		Name: "gpio",
		Registers: []regmap.Register{
			{Name: "in", Offset: 0x00, Access: regmap.ReadOnly},
			{Name: "out", Offset: 0x04, Access: regmap.WriteOnly},
			{Name: "dir", Offset: 0x08, Access: regmap.ReadWrite},
		},
	})[0]
	out := emit(t, rm)

	tests := []struct {
		name    string
		present bool
	}{
		{"GPIO_READ_IN()", true},
		{"GPIO_WRITE_IN(val)", false},
		{"GPIO_READ_OUT()", false},
		{"GPIO_WRITE_OUT(val)", true},
		{"GPIO_READ_DIR()", true},
		{"GPIO_WRITE_DIR(val)", true},
	}
	for _, tt := range tests {
		if tt.present {
			assert.Contains(t, out, "#define "+tt.name+" ", tt.name)
		} else {
			mustNotDefine(t, out, tt.name)
		}
	}
}

func TestEmitTwoHeadersShareNoSymbol(t *testing.T) {
	mods := resolve(t, 32,
		&regmap.Module{Name: "sensor_controller", Registers: []regmap.Register{
			{Name: "status_reg", Offset: 0x00, Access: regmap.ReadOnly},
		}},
		&regmap.Module{Name: "spi_controller", BaseAddress: 0x1000, Registers: []regmap.Register{
			{Name: "status_reg", Offset: 0x04, Access: regmap.ReadOnly},
		}},
	)

	defined := map[string]string{}
	for _, rm := range mods {
		for _, line := range strings.Split(emit(t, rm), "\n") {
			fields := strings.Fields(line)
			if len(fields) < 2 || fields[0] != "#define" {
				continue
			}
			name, _, _ := strings.Cut(fields[1], "(")
			prev, dup := defined[name]
			assert.False(t, dup, "%s defined by %s and %s", name, prev, rm.Module.Name)
			defined[name] = rm.Module.Name
		}
	}
	assert.Contains(t, defined, "SENSOR_CONTROLLER_STATUS_REG_OFFSET")
	assert.Contains(t, defined, "SPI_CONTROLLER_STATUS_REG_OFFSET")
}

func TestEmitWideAddresses(t *testing.T) {
	rm := resolve(t, 64, &regmap.Module{
		Name:        "pcie",
		BaseAddress: 0x4_0000_0000,
		Registers: []regmap.Register{
			{Name: "bar", Offset: 0x10, Access: regmap.ReadWrite},
		},
	})[0]
	out, err := NewEmitter(64).Emit(rm)
	require.NoError(t, err)

	mustDefine(t, string(out), "PCIE_BASE_ADDR", "0x0000000400000000ULL")
	mustDefine(t, string(out), "PCIE_BAR_ADDR", "0x0000000400000010ULL")
}

func TestEmitModuleWithoutRegisters(t *testing.T) {
	rm := resolve(t, 32, &regmap.Module{Name: "stub", BaseAddress: 0x8000})[0]
	out := emit(t, rm)

	mustDefine(t, out, "STUB_BASE_ADDR", "0x00008000U")
	assert.NotContains(t, out, "typedef struct")
	mustNotDefine(t, out, "STUB_REGS")
}

func TestEmitRequiresLayout(t *testing.T) {
	alloc, err := regmap.NewAllocator(32)
	require.NoError(t, err)
	var r regmap.Report
	rm := regmap.Resolve(uartModule(), alloc, &r)

	_, err = NewEmitter(32).Emit(rm)
	assert.Error(t, err)
}

func TestCommentLinesEscapesTerminator(t *testing.T) {
	assert.Equal(t, []string{"a * / b", "c"}, commentLines(" a */ b\n  c "))
	assert.Nil(t, commentLines("  "))
	assert.Equal(t, "a * / b c", commentText(" a */ b\n  c "))
	assert.Equal(t, "x/ * y", commentText("x/*y"))
}

func TestEmitEscapesNamesInComments(t *testing.T) {
	rm := resolve(t, 32, &regmap.Module{
		Name: "dma*/x",
		Registers: []regmap.Register{
			{Name: "a*/b", Offset: 0x00, Access: regmap.ReadOnly, Description: "ends */ here"},
		},
	})[0]
	out := emit(t, rm)

	mustContain(t, out, " * Register map of module dma* /x.")
	mustContain(t, out, "/* a* /b (RO): ends * / here */")
	mustDefine(t, out, "DMA__X_A__B_OFFSET", "0x00")

	// every block comment closes exactly where it is meant to
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "*/"); i >= 0 {
			assert.Equal(t, len(line)-2, i, "stray comment terminator in %q", line)
		}
	}
}

func TestEmitKeywordRegisterName(t *testing.T) {
	rm := resolve(t, 32, &regmap.Module{
		Name: "irq",
		Registers: []regmap.Register{
			{Name: "INT", Offset: 0x00, Access: regmap.ReadOnly},
			{Name: "default", Offset: 0x04, Access: regmap.ReadWrite},
		},
	})[0]
	out := emit(t, rm)

	mustContain(t, out, "volatile uint32_t r_int;")
	mustContain(t, out, "volatile uint32_t r_default;")
	mustContain(t, out, "offsetof(irq_regs_t, r_int) == 0x00")
	mustDefine(t, out, "IRQ_INT_OFFSET", "0x00")
	mustDefine(t, out, "IRQ_DEFAULT_OFFSET", "0x04")
}
