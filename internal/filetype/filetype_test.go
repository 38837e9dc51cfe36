package filetype

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByExtension(t *testing.T) {
	tests := map[string]Mime{
		"top.vams":     VerilogAMS,
		"top.v":        Verilog,
		"defs.vh":      Verilog,
		"amp.va":       Verilog,
		"pkg.sv":       SystemVerilog,
		"log.svh":      SystemVerilog,
		"bus.sva":      Assertions,
		"amp.scs":      Analog,
		"amp.cir":      Analog,
		"amp.asc":      Analog,
		"amp.sp":       Analog,
		"std.lib":      Liberty,
		"regs.xlsx":    None,
		"Sources.list": None,
	}
	for name, want := range tests {
		assert.Equal(t, want, ByExtension(name), name)
	}
}

func TestOf_RequiresRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "top.v")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "rtl.v"), 0o755))

	assert.Equal(t, Verilog, Of(file))
	assert.Equal(t, None, Of(filepath.Join(dir, "rtl.v")))
	assert.Equal(t, None, Of(filepath.Join(dir, "missing.v")))
}

func TestDomains(t *testing.T) {
	dir := t.TempDir()
	digital := filepath.Join(dir, "top.sv")
	analog := filepath.Join(dir, "amp.scs")
	mixed := filepath.Join(dir, "amp.vams")
	for _, f := range []string{digital, analog, mixed} {
		require.NoError(t, os.WriteFile(f, nil, 0o644))
	}

	assert.True(t, IsDigital(digital))
	assert.False(t, IsAnalog(digital))
	assert.True(t, IsAnalog(analog))
	assert.False(t, IsDigital(analog))
	assert.True(t, IsMixed(mixed))

	assert.Equal(t, DomainDigital, DomainOf("/proj/ganymede/digital/ip"))
	assert.Equal(t, DomainAnalog, DomainOf("/proj/ganymede/analog/amp"))
	assert.Equal(t, DomainMixed, DomainOf("/proj/ganymede/top"))
}
