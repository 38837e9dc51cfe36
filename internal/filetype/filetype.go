package filetype

import (
	"os"
	"path/filepath"
	"strings"
)

// Mime is a coarse source-language classification derived from a file extension.
type Mime string

const (
	None          Mime = ""
	VerilogAMS    Mime = "VERILOG_AMS"
	Verilog       Mime = "VERILOG"
	SystemVerilog Mime = "SYSTEM_VERILOG"
	Assertions    Mime = "ASSERTIONS"
	Analog        Mime = "ANALOG"
	Liberty       Mime = "LIBERTY"
)

// Domain is the platform subfolder a design belongs to.
type Domain string

const (
	DomainDigital Domain = "digital"
	DomainAnalog  Domain = "analog"
	DomainMixed   Domain = "mixed"
)

var extensions = map[string]Mime{
	".vams": VerilogAMS,
	".v":    Verilog,
	".vh":   Verilog,
	".va":   Verilog,
	".sv":   SystemVerilog,
	".svh":  SystemVerilog,
	".sva":  Assertions,
	".scs":  Analog,
	".cir":  Analog,
	".asc":  Analog,
	".sp":   Analog,
	".lib":  Liberty,
}

// ByExtension classifies a path by its extension only, without touching the disk.
func ByExtension(path string) Mime {
	return extensions[filepath.Ext(path)]
}

// Of returns the mime type of an existing regular file, or None when the
// path does not exist, is a directory or has an unknown extension.
func Of(path string) Mime {
	if !isFile(path) {
		return None
	}
	return ByExtension(path)
}

// IsDigital reports whether path holds digital sources. Paths that are not
// regular files are classified by name.
func IsDigital(path string) bool {
	if !isFile(path) {
		return strings.Contains(path, string(DomainDigital))
	}
	m := Of(path)
	return m != None && m != Analog
}

// IsAnalog reports whether path is an analog netlist.
func IsAnalog(path string) bool {
	if !isFile(path) {
		return strings.Contains(path, string(DomainAnalog))
	}
	return Of(path) == Analog
}

// IsMixed reports whether path is a mixed-signal source.
func IsMixed(path string) bool {
	return Of(path) == VerilogAMS
}

// DomainOf picks the platform subfolder for sources located under path.
func DomainOf(path string) Domain {
	switch {
	case IsDigital(path):
		return DomainDigital
	case IsAnalog(path):
		return DomainAnalog
	default:
		return DomainMixed
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
