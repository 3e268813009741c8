package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbedded(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load embedded catalog: %v", err)
	}
	if cat.Version == "" {
		t.Error("Expected a catalog version")
	}
	if len(cat.Achievements) == 0 {
		t.Fatal("Expected a non-empty catalog")
	}
}

func TestLoadValidatesEntries(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load embedded catalog: %v", err)
	}

	seen := make(map[string]bool)
	for _, b := range cat.Achievements {
		if b.ID == "" {
			t.Errorf("Badge %q has no id", b.Name)
		}
		if seen[b.ID] {
			t.Errorf("Duplicate badge id %q", b.ID)
		}
		seen[b.ID] = true

		if b.Name == "" {
			t.Errorf("Badge %s has no name", b.ID)
		}
		if b.Rarity == "" {
			t.Errorf("Badge %s has no rarity", b.ID)
		}
		if b.Criteria.Type == "" {
			t.Errorf("Badge %s has no criteria type", b.ID)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	data := `version: "test"
achievements:
  - id: solo
    name: Solo
    description: only badge
    icon: "⭐"
    rarity: common
    category: misc
    criteria: {type: explorer}
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("Failed to write catalog file: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load catalog from file: %v", err)
	}
	if cat.Version != "test" {
		t.Errorf("Expected version test, got %s", cat.Version)
	}
	if len(cat.Achievements) != 1 || cat.Achievements[0].ID != "solo" {
		t.Errorf("Unexpected achievements: %+v", cat.Achievements)
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	data := `version: "test"
achievements:
  - id: dup
    name: One
    icon: "⭐"
    rarity: common
    category: misc
    criteria: {type: explorer}
  - id: dup
    name: Two
    icon: "⭐"
    rarity: common
    category: misc
    criteria: {type: explorer}
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("Failed to write catalog file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected duplicate id error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/catalog.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestByID(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load embedded catalog: %v", err)
	}

	badge := cat.ByID("first_streak")
	if badge == nil {
		t.Fatal("Expected first_streak in catalog")
	}
	if badge.Criteria.Type != "any_streak" || badge.Criteria.Days != 3 {
		t.Errorf("Unexpected criteria: %+v", badge.Criteria)
	}

	if cat.ByID("no_such_badge") != nil {
		t.Error("Expected nil for unknown id")
	}
}
