package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Forms(t *testing.T) {
	src := `# sources
rtl/top.v
rtl/core.v: rtl/alu.v rtl/regs.v
    rtl/pkg.sv
doc/timing.xlsx@TimingSheet
DEFINES = SIM "WIDTH=8"
DEFINES += COVER
`
	stmts, diags := Parse(src)
	require.Empty(t, diags)
	require.Len(t, stmts, 6)

	assert.Equal(t, Statement{Line: 2, Kind: Reference, Target: "rtl/top.v"}, stmts[0])
	assert.Equal(t, Statement{Line: 3, Kind: Block, Target: "rtl/core.v", Deps: []string{"rtl/alu.v", "rtl/regs.v"}}, stmts[1])
	assert.Equal(t, Statement{Line: 4, Indent: 4, Kind: Reference, Target: "rtl/pkg.sv"}, stmts[2])
	assert.Equal(t, Statement{Line: 5, Kind: Reference, Target: "doc/timing.xlsx", Tags: []string{"TimingSheet"}}, stmts[3])
	assert.Equal(t, Statement{Line: 6, Kind: Assign, Name: "DEFINES", Values: []string{"SIM", "WIDTH=8"}}, stmts[4])
	assert.Equal(t, Statement{Line: 7, Kind: Append, Name: "DEFINES", Values: []string{"COVER"}}, stmts[5])

	assert.True(t, stmts[1].Opens())
	assert.True(t, stmts[3].Opens())
	assert.False(t, stmts[0].Opens())
}

func TestParse_ValuesAreRejoinedBeforeSplitting(t *testing.T) {
	stmts, diags := Parse(`FLAGS = -DW="8 9" -g2012 a:b`)
	require.Empty(t, diags)
	require.Len(t, stmts, 1)
	assert.Equal(t, []string{"-DW=8 9", "-g2012", "a:b"}, stmts[0].Values)
}

func TestParse_EmptyValue(t *testing.T) {
	stmts, diags := Parse("FOO =\n")
	require.Empty(t, diags)
	require.Len(t, stmts, 1)
	assert.Equal(t, Assign, stmts[0].Kind)
	assert.Empty(t, stmts[0].Values)
}

func TestParse_TaggedBlock(t *testing.T) {
	stmts, diags := Parse("sheet.xlsx@Pins@Timing:\n")
	require.Empty(t, diags)
	require.Len(t, stmts, 1)
	assert.Equal(t, Block, stmts[0].Kind)
	assert.Equal(t, []string{"Pins", "Timing"}, stmts[0].Tags)
}

func TestParse_MalformedLinesAreReported(t *testing.T) {
	src := "a.v\nA B = 1\n= 2\nb.v@\nc.v d.v\ne.v: @x\nf.v\n"
	stmts, diags := Parse(src)

	require.Len(t, stmts, 2)
	assert.Equal(t, "a.v", stmts[0].Target)
	assert.Equal(t, "f.v", stmts[1].Target)

	require.Len(t, diags, 5)
	lines := make([]int, len(diags))
	for i, d := range diags {
		lines[i] = d.Line
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6}, lines)
	assert.Contains(t, diags[0].Error(), "line 2")
}

func TestParse_UnterminatedQuote(t *testing.T) {
	_, diags := Parse(`X = "abc`)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "invalid value for X")
}

func TestDiagnostic_ErrorWithFile(t *testing.T) {
	d := &Diagnostic{File: "/p/Sources.list", Line: 3, Message: "boom"}
	assert.Equal(t, "/p/Sources.list:3: boom", d.Error())
}
