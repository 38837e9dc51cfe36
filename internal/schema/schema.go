// Package schema checks the JSON documents reflow writes against their
// published JSON schemas.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema files, also usable by consumers of the JSON output.
const (
	Output = "output.schema.json"
	Report = "report.schema.json"
)

const baseURL = "https://reflow.local/schema/"

//go:embed *.schema.json
var files embed.FS

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func load() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		for _, name := range []string{Output, Report} {
			data, err := files.ReadFile(name)
			if err != nil {
				compileErr = err
				return
			}
			if err := compiler.AddResource(baseURL+name, bytes.NewReader(data)); err != nil {
				compileErr = fmt.Errorf("failed to add schema %s: %w", name, err)
				return
			}
		}
		compiled = make(map[string]*jsonschema.Schema)
		for _, name := range []string{Output, Report} {
			s, err := compiler.Compile(baseURL + name)
			if err != nil {
				compileErr = fmt.Errorf("failed to compile schema %s: %w", name, err)
				return
			}
			compiled[name] = s
		}
	})
	return compiled, compileErr
}

// Validate checks the JSON encoding of v against the named schema.
func Validate(name string, v any) error {
	schemas, err := load()
	if err != nil {
		return err
	}
	s, ok := schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal for schema validation: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to normalize for schema validation: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%s validation failed: %w", name, err)
	}
	return nil
}
