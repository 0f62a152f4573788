package docstore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Indexes declares, per collection, the fields an owner-filtered query may
// be ordered by server-side. An ordering absent from this set yields
// ErrMissingIndex and forces callers through the unordered fallback.
type Indexes map[string][]string

func (ix Indexes) Allows(collection, field string) bool {
	for _, f := range ix[collection] {
		if f == field {
			return true
		}
	}
	return false
}

// LoadIndexes reads a yaml mapping of collection name to orderable fields.
func LoadIndexes(path string) (Indexes, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index config: %w", err)
	}
	var ix Indexes
	if err := yaml.Unmarshal(raw, &ix); err != nil {
		return nil, fmt.Errorf("parse index config: %w", err)
	}
	return ix, nil
}
