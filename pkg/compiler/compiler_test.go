package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

func sensorController() *regmap.Module {
	return &regmap.Module{
		Name:        "sensor_controller",
		BaseAddress: 0x00000000,
		Registers: []regmap.Register{
			{Name: "status_reg", Offset: 0x00, Access: regmap.ReadOnly},
			{Name: "temperature_reg", Offset: 0x04, Access: regmap.ReadOnly},
			{Name: "control_reg", Offset: 0x14, Access: regmap.WriteOnly},
			{Name: "config_reg", Offset: 0x24, Access: regmap.ReadWrite},
			{Name: "interrupt_status_reg", Offset: 0x200, Access: regmap.ReadOnly},
		},
	}
}

func spiController() *regmap.Module {
	return &regmap.Module{
		Name:        "spi_controller",
		BaseAddress: 0x1000,
		Registers: []regmap.Register{
			{Name: "ctrl_reg", Offset: 0x00, Access: regmap.ReadWrite},
			{Name: "status_reg", Offset: 0x04, Access: regmap.ReadOnly},
			{Name: "fifo_status", Offset: 0x1C, Access: regmap.ReadOnly},
		},
	}
}

func TestCompile(t *testing.T) {
	build, report, err := Compile(context.Background(),
		[]*regmap.Module{sensorController(), spiController()}, Config{})
	require.NoError(t, err)
	require.True(t, report.Valid())

	require.Len(t, build.Headers, 2)
	assert.Equal(t, "sensor_controller_regs.h", build.Headers[0].Name)
	assert.Equal(t, "spi_controller_regs.h", build.Headers[1].Name)
	assert.Equal(t, uint(32), build.AddressWidth)

	spi, ok := build.Header("spi_controller")
	require.True(t, ok)
	assert.Contains(t, string(spi.Content), "0x0000101CU")

	_, ok = build.Header("missing")
	assert.False(t, ok)
}

func TestCompileIsIdempotent(t *testing.T) {
	mods := func() []*regmap.Module { return []*regmap.Module{sensorController(), spiController()} }

	a, _, err := Compile(context.Background(), mods(), Config{Parallelism: 1})
	require.NoError(t, err)
	b, _, err := Compile(context.Background(), mods(), Config{Parallelism: 8})
	require.NoError(t, err)

	require.Len(t, b.Headers, len(a.Headers))
	for i := range a.Headers {
		assert.True(t, bytes.Equal(a.Headers[i].Content, b.Headers[i].Content), a.Headers[i].Name)
	}
}

func TestCompileOverlapAbortsWholeBuild(t *testing.T) {
	big := &regmap.Module{Name: "big", BaseAddress: 0x0000, Registers: []regmap.Register{
		{Name: "last", Offset: 0x1FFC, Access: regmap.ReadWrite},
	}}
	small := &regmap.Module{Name: "small", BaseAddress: 0x1000, Registers: []regmap.Register{
		{Name: "last", Offset: 0x0FFC, Access: regmap.ReadWrite},
	}}

	build, report, err := Compile(context.Background(), []*regmap.Module{big, small}, Config{})
	require.Error(t, err)
	assert.Nil(t, build, "no headers for either module")
	assert.ErrorIs(t, err, regmap.ErrAddressOverlap)
	assert.True(t, report.Has(regmap.ErrAddressOverlap))
}

func TestCompileReportsEveryModule(t *testing.T) {
	bad1 := &regmap.Module{Name: "adc", BaseAddress: 0x0000, Registers: []regmap.Register{
		{Name: "ctrl", Offset: 0x02, Access: regmap.ReadWrite},
	}}
	bad2 := &regmap.Module{Name: "dac", BaseAddress: 0x2000, Registers: []regmap.Register{
		{Name: "ctrl", Offset: 0x00, Access: "bogus"},
	}}
	bad3 := &regmap.Module{Name: "ADC", BaseAddress: 0x4000, Registers: []regmap.Register{
		{Name: "data", Offset: 0x00, Access: regmap.ReadOnly},
	}}

	_, report, err := Compile(context.Background(), []*regmap.Module{bad1, bad2, bad3}, Config{})
	require.Error(t, err)

	var be *regmap.BuildError
	require.True(t, errors.As(err, &be))
	assert.Len(t, be.Violations, 3)
	assert.Equal(t, "adc", report.Violations[0].Module, "per-module findings keep input order")
	assert.Equal(t, "dac", report.Violations[1].Module)
	assert.ErrorIs(t, err, regmap.ErrMisalignedOffset)
	assert.ErrorIs(t, err, regmap.ErrInvalidAccessMode)
	assert.ErrorIs(t, err, regmap.ErrModuleNameCollision)
}

func TestCompileAddressWidth(t *testing.T) {
	m := &regmap.Module{Name: "hi", BaseAddress: 0xFFFF_FFF0, Registers: []regmap.Register{
		{Name: "r", Offset: 0x20, Access: regmap.ReadWrite},
	}}

	_, _, err := Compile(context.Background(), []*regmap.Module{m}, Config{})
	assert.ErrorIs(t, err, regmap.ErrAddressOverflow)

	build, _, err := Compile(context.Background(), []*regmap.Module{m}, Config{AddressWidth: 64})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1_0000_0010), build.Modules[0].Registers[0].Address)

	_, _, err = Compile(context.Background(), []*regmap.Module{m}, Config{AddressWidth: 128})
	require.Error(t, err)
	var be *regmap.BuildError
	assert.False(t, errors.As(err, &be), "configuration errors are not violations")
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Compile(ctx, []*regmap.Module{sensorController()}, Config{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, _, err := Compile(context.Background(), []*regmap.Module{
		sensorController(),
		{Name: "empty", BaseAddress: 0x8000},
	}, Config{Logger: logger})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "resolved module")
	assert.Contains(t, out, "emitted header")
	assert.Contains(t, out, "module has no registers")
	assert.Contains(t, out, "build complete")
}

func TestCompileManyModules(t *testing.T) {
	var mods []*regmap.Module
	for i := 0; i < 64; i++ {
		mods = append(mods, &regmap.Module{
			Name:        fmt.Sprintf("periph%02d", i),
			BaseAddress: uint64(i) * 0x1000,
			Registers: []regmap.Register{
				{Name: "ctrl", Offset: 0x00, Access: regmap.ReadWrite},
				{Name: "stat", Offset: 0x04, Access: regmap.ReadOnly},
			},
		})
	}
	build, _, err := Compile(context.Background(), mods, Config{Parallelism: 4})
	require.NoError(t, err)
	require.Len(t, build.Headers, 64)
	for i, h := range build.Headers {
		assert.True(t, strings.HasPrefix(h.Name, fmt.Sprintf("periph%02d", i)))
	}
}
