// Package catalog loads the static achievement catalog. The catalog is a
// versioned data file read once at process start and passed explicitly to the
// achievement engine; it is never mutated at runtime.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/achievements.yaml
var embeddedCatalog []byte

// Criteria is the tagged unlock condition of a badge. Type selects the
// evaluator; the remaining fields are its parameters. Unknown types always
// evaluate to false.
type Criteria struct {
	Type         string   `yaml:"type" json:"type"`
	Days         int      `yaml:"days,omitempty" json:"days,omitempty"`
	Count        int      `yaml:"count,omitempty" json:"count,omitempty"`
	Weeks        int      `yaml:"weeks,omitempty" json:"weeks,omitempty"`
	Goals        int      `yaml:"goals,omitempty" json:"goals,omitempty"`
	Streak       int      `yaml:"streak,omitempty" json:"streak,omitempty"`
	Hour         int      `yaml:"hour,omitempty" json:"hour,omitempty"`
	EndMinute    int      `yaml:"end_minute,omitempty" json:"end_minute,omitempty"`
	InactiveDays int      `yaml:"inactive_days,omitempty" json:"inactive_days,omitempty"`
	BadDays      int      `yaml:"bad_days,omitempty" json:"bad_days,omitempty"`
	Rank         int      `yaml:"rank,omitempty" json:"rank,omitempty"`
	Level        int      `yaml:"level,omitempty" json:"level,omitempty"`
	Rate         float64  `yaml:"rate,omitempty" json:"rate,omitempty"`
	GoalKeywords []string `yaml:"goal_keywords,omitempty" json:"goal_keywords,omitempty"`
}

// Badge is one catalog entry. XP overrides the rarity-derived reward when
// non-zero.
type Badge struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Hint        string   `yaml:"hint,omitempty" json:"hint,omitempty"`
	Icon        string   `yaml:"icon" json:"icon"`
	Rarity      string   `yaml:"rarity" json:"rarity"`
	Category    string   `yaml:"category" json:"category"`
	XP          int      `yaml:"xp,omitempty" json:"xp,omitempty"`
	Criteria    Criteria `yaml:"criteria" json:"criteria"`
}

// Catalog is the full badge catalog.
type Catalog struct {
	Version      string  `yaml:"version" json:"version"`
	Achievements []Badge `yaml:"achievements" json:"achievements"`
}

// Load parses the catalog from the given file, or from the embedded data
// file when path is empty. Duplicate badge IDs are rejected.
func Load(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		data = b
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(cat.Achievements))
	for _, b := range cat.Achievements {
		if b.ID == "" {
			return nil, fmt.Errorf("catalog entry %q has no id", b.Name)
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("duplicate catalog id %q", b.ID)
		}
		seen[b.ID] = true
	}

	return &cat, nil
}

// ByID returns the badge with the given id, or nil.
func (c *Catalog) ByID(id string) *Badge {
	for i := range c.Achievements {
		if c.Achievements[i].ID == id {
			return &c.Achievements[i]
		}
	}
	return nil
}
