package store

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedFile is a set of documents keyed by path, for local runs without the
// hosted store:
//
//	documents:
//	  users/admin1:
//	    email: boss@haulzy.com
//	    isAdmin: true
//	  pickups/p1/items/i1:
//	    name: Blender
type SeedFile struct {
	Documents map[string]map[string]any `yaml:"documents"`
}

// LoadSeedFile reads path and writes every document into m. It returns the
// number of documents written.
func LoadSeedFile(m *MemoryStore, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	for p, data := range f.Documents {
		clean := strings.Trim(p, "/")
		if clean == "" || strings.Count(clean, "/")%2 == 0 {
			return 0, fmt.Errorf("seed path %q is not a document path", p)
		}
		if data == nil {
			data = map[string]any{}
		}
		m.Seed(clean, data)
	}
	return len(f.Documents), nil
}
