// Package schema holds the DefraDB collection definitions used by the
// override store and applies them at startup.
package schema

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed schemas/*.graphql
var schemaFS embed.FS

// PromptOverride is the collection that stores overrides and custom blocks.
const PromptOverride = "PromptOverride"

// Schema represents a DefraDB collection schema.
type Schema struct {
	Name  string // collection name, also the file stem in lowercase
	SDL   string
	Order int // lower applies first
}

var registry = []Schema{
	{Name: PromptOverride, Order: 1},
}

// All returns all schemas in apply order with their SDL loaded.
func All() ([]Schema, error) {
	schemas := make([]Schema, 0, len(registry))
	for _, s := range registry {
		loaded, err := load(s)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, loaded)
	}
	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].Order < schemas[j].Order
	})
	return schemas, nil
}

// Get returns a single schema by name.
func Get(name string) (*Schema, error) {
	for _, s := range registry {
		if s.Name == name {
			loaded, err := load(s)
			if err != nil {
				return nil, err
			}
			return &loaded, nil
		}
	}
	return nil, fmt.Errorf("schema not found: %s", name)
}

func load(s Schema) (Schema, error) {
	filename := fmt.Sprintf("schemas/%s.graphql", strings.ToLower(s.Name))
	content, err := schemaFS.ReadFile(filename)
	if err != nil {
		return Schema{}, fmt.Errorf("failed to read schema %s: %w", s.Name, err)
	}
	s.SDL = string(content)
	return s, nil
}
