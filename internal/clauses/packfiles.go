package clauses

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// packFile is the on-disk YAML form of a clause pack.
type packFile struct {
	Name      string       `yaml:"name"`
	OwnerType OwnerType    `yaml:"owner_type"`
	PackType  PackType     `yaml:"pack_type"`
	Clauses   []PackClause `yaml:"clauses"`
}

// DiscoverPackFiles resolves the configured glob patterns (doublestar
// syntax, ** supported) against root and returns the matching files,
// deduplicated and sorted.
func DiscoverPackFiles(root string, globs []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, pattern := range globs {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad pack glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// ReadPackFile parses one YAML pack file into a validated Pack.
func ReadPackFile(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pack file: %w", err)
	}

	var pf packFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing pack file %s: %w", path, err)
	}

	p := Pack{
		Name:      pf.Name,
		OwnerType: pf.OwnerType,
		PackType:  pf.PackType,
		Clauses:   pf.Clauses,
	}
	if p.OwnerType == "" {
		p.OwnerType = OwnerPlatform
	}
	if p.PackType == "" {
		p.PackType = PackService
	}
	if err := ValidatePack(p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}
