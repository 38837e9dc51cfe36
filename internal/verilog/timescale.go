// Package verilog extracts the few compiler directives the resolver needs
// from Verilog and SystemVerilog sources.
package verilog

import (
	"bufio"
	"fmt"
	"os"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

var timescalePattern = regexp.MustCompile(`timescale\s*(?:([\d\.]+)\s*([umnpf]?s))\s*(?:\\|\/)\s*(?:([\d\.]+)\s*([umnpf]?s))`)

// Timescale is a `timescale directive: simulation step and precision.
type Timescale struct {
	Step          string
	StepUnit      string
	Precision     string
	PrecisionUnit string
}

// DefaultTimescale is used when no source states a finer step.
var DefaultTimescale = Timescale{Step: "1", StepUnit: "ns", Precision: "100", PrecisionUnit: "ps"}

// coarsest is the starting point of a minimum search.
var coarsest = Timescale{Step: "1", StepUnit: "s", Precision: "1", PrecisionUnit: "ms"}

func (t Timescale) String() string {
	return t.Step + t.StepUnit + "/" + t.Precision + t.PrecisionUnit
}

// StepSeconds returns the step in seconds.
func (t Timescale) StepSeconds() float64 {
	return EvalTime(t.Step, t.StepUnit)
}

// PrecisionSeconds returns the precision in seconds.
func (t Timescale) PrecisionSeconds() float64 {
	return EvalTime(t.Precision, t.PrecisionUnit)
}

// Scanner finds timescale directives in source files. Results are cached
// per path, so a scanner shared across resolutions reads each file once.
type Scanner struct {
	cache *lru.Cache[string, []Timescale]
}

// NewScanner creates a scanner remembering up to size files.
func NewScanner(size int) (*Scanner, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[string, []Timescale](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create timescale cache: %w", err)
	}
	return &Scanner{cache: cache}, nil
}

// FindTimescales returns every timescale directive of the file in order.
func (s *Scanner) FindTimescales(path string) ([]Timescale, error) {
	if found, ok := s.cache.Get(path); ok {
		return found, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var found []Timescale
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		for _, m := range timescalePattern.FindAllStringSubmatch(sc.Text(), -1) {
			found = append(found, Timescale{Step: m[1], StepUnit: m[2], Precision: m[3], PrecisionUnit: m[4]})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	s.cache.Add(path, found)
	return found, nil
}

// Forget drops the cached result of path.
func (s *Scanner) Forget(path string) {
	s.cache.Remove(path)
}

// MinTimescale keeps the smallest step and the smallest precision among the
// first directive of each file, each tracked independently. When the
// resulting step is still one second, DefaultTimescale is returned.
func (s *Scanner) MinTimescale(files []string) (Timescale, error) {
	least := coarsest
	for _, path := range files {
		found, err := s.FindTimescales(path)
		if err != nil {
			return Timescale{}, err
		}
		if len(found) == 0 {
			continue
		}
		ts := found[0]
		if ts.StepSeconds() < least.StepSeconds() {
			least.Step, least.StepUnit = ts.Step, ts.StepUnit
		}
		if ts.PrecisionSeconds() < least.PrecisionSeconds() {
			least.Precision, least.PrecisionUnit = ts.Precision, ts.PrecisionUnit
		}
	}
	if least.StepSeconds() == 1.0 {
		return DefaultTimescale, nil
	}
	return least, nil
}
