package sources

import (
	"slices"

	"reflow/internal/filetype"
	"reflow/internal/graph"
)

// Parameters derived from the resolved tree.
const (
	TimescaleKey = "TIMESCALE"
	TopModuleKey = "TOP_MODULE"
)

// SourceFile is one entry of the ordered file list.
type SourceFile struct {
	Path string        `json:"path"`
	Mime filetype.Mime `json:"mime"`
}

// Output is what compile flows consume: the files in compile order and the
// merged parameters.
type Output struct {
	Manifest  string              `json:"manifest"`
	// Manifests lists every manifest read, nested ones first and Manifest
	// last.
	Manifests []string            `json:"manifests"`
	Files     []SourceFile        `json:"files"`
	Params    map[string][]string `json:"params"`
	Timescale string              `json:"timescale"`
	TopModule string              `json:"top_module"`
}

// Output aggregates the resolution.
//
// Parameters are merged from the leaves to the root, so a value set closer
// to the root wins. TIMESCALE is the finest step and precision found in the
// digital sources and TOP_MODULE the name of the last node; both are added
// to the parameters unless a manifest sets them.
func (res *Resolution) Output() (*Output, error) {
	out := &Output{
		Manifest: res.Root.Name,
		Params:   make(map[string][]string),
	}

	if res.loggerInclude != "" {
		out.Files = append(out.Files, SourceFile{Path: res.loggerInclude, Mime: filetype.ByExtension(res.loggerInclude)})
	}

	var digital []string
	for _, n := range res.Order {
		if res.manifests[n] {
			out.Manifests = append(out.Manifests, n.Name)
		}
		mime := filetype.Of(n.Name)
		if mime == filetype.None {
			continue
		}
		out.Files = append(out.Files, SourceFile{Path: n.Name, Mime: mime})
		if filetype.IsDigital(n.Name) {
			digital = append(digital, n.Name)
		}
	}

	for _, n := range res.Order {
		for name, values := range n.Params {
			if name != graph.TagsKey {
				out.Params[name] = slices.Clone(values)
			}
		}
	}

	ts, err := res.scanner.MinTimescale(digital)
	if err != nil {
		return nil, err
	}
	out.Timescale = ts.String()
	if len(res.Order) > 0 {
		out.TopModule = res.Order[len(res.Order)-1].Name
	}

	if _, ok := out.Params[TimescaleKey]; !ok {
		out.Params[TimescaleKey] = []string{out.Timescale}
	}
	if _, ok := out.Params[TopModuleKey]; !ok && out.TopModule != "" {
		out.Params[TopModuleKey] = []string{out.TopModule}
	}
	return out, nil
}
