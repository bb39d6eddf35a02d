// Package scenario loads argument scenarios from YAML catalogs.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alienxp03/warrant/internal/core"
)

// Fact is one source/target pair in a catalog.
type Fact struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Entry is a scenario as written in a catalog file.
type Entry struct {
	Name             string `yaml:"name"`
	SourceConclusion string `yaml:"source_conclusion"`
	TargetConclusion string `yaml:"target_conclusion"`
	Facts            []Fact `yaml:"facts"`
}

// Catalog is the top-level document of a scenario file.
type Catalog struct {
	Scenarios []Entry `yaml:"scenarios"`
}

// Builtin returns the sample scenarios shipped with the binary.
func Builtin() []Entry {
	return []Entry{
		{
			Name:             "Exam Hours",
			SourceConclusion: "The city library should stay open late during exam weeks.",
			TargetConclusion: "The campus gym should stay open late during exam weeks.",
			Facts: []Fact{
				{Source: "Students report studying after 10pm.", Target: "Students report exercising after 10pm."},
				{Source: "Late opening costs two extra staff shifts.", Target: "Late opening costs one extra staff shift."},
			},
		},
		{
			Name:             "Bike Lanes",
			SourceConclusion: "Adding bike lanes on Main Street reduced accidents.",
			TargetConclusion: "Adding bike lanes on Oak Avenue will reduce accidents.",
			Facts: []Fact{
				{Source: "Main Street carries 12,000 cars a day.", Target: "Oak Avenue carries 11,000 cars a day."},
				{Source: "Main Street has a 30 mph limit.", Target: "Oak Avenue has a 40 mph limit."},
			},
		},
	}
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse scenario catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario catalog: %w", err)
	}
	return Parse(data)
}

// Validate checks names are present and unique.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	for i, e := range c.Scenarios {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return fmt.Errorf("scenario %d has no name", i+1)
		}
		if seen[name] {
			return fmt.Errorf("duplicate scenario name %q", name)
		}
		seen[name] = true
		if e.SourceConclusion == "" || e.TargetConclusion == "" {
			return fmt.Errorf("scenario %q needs both conclusions", name)
		}
	}
	return nil
}

// ToCore converts a catalog entry into a scenario with the given ID.
func (e Entry) ToCore(id string) *core.Scenario {
	sc := &core.Scenario{
		ID:               id,
		Name:             strings.TrimSpace(e.Name),
		SourceConclusion: e.SourceConclusion,
		TargetConclusion: e.TargetConclusion,
	}
	for _, f := range e.Facts {
		sc.Facts = append(sc.Facts, core.FactPair{Source: f.Source, Target: f.Target})
	}
	return sc
}

// Marshal renders entries as a catalog document.
func Marshal(entries []Entry) ([]byte, error) {
	return yaml.Marshal(Catalog{Scenarios: entries})
}
