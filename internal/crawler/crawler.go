package crawler

import (
	"io/fs"
	"path/filepath"
)

// Crawler scans a directory tree for manifests.
type Crawler struct {
	sourcesFile string
	ignored     []string
}

// NewCrawler creates a crawler looking for manifests named sourcesFile.
func NewCrawler(sourcesFile string) *Crawler {
	return &Crawler{
		sourcesFile: sourcesFile,
		ignored:     []string{".git", ".svn", "node_modules", "work", "simv.daidir"},
	}
}

// ScanProject walks the root directory and calls onManifest for every
// manifest found, in lexical order.
func (c *Crawler) ScanProject(root string, onManifest func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign && path != root {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if d.Type().IsRegular() && d.Name() == c.sourcesFile {
			onManifest(path)
		}
		return nil
	})
}
