// Package assets holds the character assets and decides which of them a
// user has unlocked through solved tasks or completed achievements.
package assets

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Character slots an asset can be worn in.
const (
	SlotHat   = "hat"
	SlotFace  = "face"
	SlotShirt = "shirt"
	SlotPants = "pants"
)

//go:embed data/assets.yaml
var defaultAssets []byte

// Precondition gates an asset. At most one field is set; none means the
// asset is free.
type Precondition struct {
	TaskID        int `yaml:"task-id,omitempty" json:"task_id,omitempty"`
	AchievementID int `yaml:"achievement-id,omitempty" json:"achievement_id,omitempty"`
}

// Asset is one wearable item.
type Asset struct {
	ID           string       `yaml:"id" json:"id"`
	Slot         string       `yaml:"slot" json:"slot"`
	Precondition Precondition `yaml:"precondition,omitempty" json:"precondition"`
}

// UnlockedBy reports whether the progress satisfies the asset's precondition.
func (a Asset) UnlockedBy(solved map[int]bool, completed map[int]bool) bool {
	switch {
	case a.Precondition.TaskID != 0:
		return solved[a.Precondition.TaskID]
	case a.Precondition.AchievementID != 0:
		return completed[a.Precondition.AchievementID]
	default:
		return true
	}
}

// Catalog is the immutable asset list.
type Catalog struct {
	assets []Asset
	byID   map[string]Asset
}

// DefaultCatalog parses the embedded asset list.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultAssets)
}

// ParseCatalog decodes and validates a YAML asset list.
func ParseCatalog(data []byte) (*Catalog, error) {
	var list []Asset
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse assets: %w", err)
	}
	return NewCatalog(list)
}

// NewCatalog validates list and builds a Catalog.
func NewCatalog(list []Asset) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Asset, len(list))}
	for _, a := range list {
		if a.ID == "" {
			return nil, fmt.Errorf("asset without id")
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate asset %q", a.ID)
		}
		switch a.Slot {
		case SlotHat, SlotFace, SlotShirt, SlotPants:
		default:
			return nil, fmt.Errorf("asset %q has unknown slot %q", a.ID, a.Slot)
		}
		if a.Precondition.TaskID != 0 && a.Precondition.AchievementID != 0 {
			return nil, fmt.Errorf("asset %q has two preconditions", a.ID)
		}
		c.byID[a.ID] = a
		c.assets = append(c.assets, a)
	}
	return c, nil
}

// Get returns the asset with the given id.
func (c *Catalog) Get(id string) (Asset, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// AchievementIDs returns the achievement ids used as preconditions, sorted.
func (c *Catalog) AchievementIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, a := range c.assets {
		if id := a.Precondition.AchievementID; id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Unlocked returns the ids of the assets the progress unlocks, in catalog
// order.
func (c *Catalog) Unlocked(solvedIDs []int, completed map[int]bool) []string {
	solved := make(map[int]bool, len(solvedIDs))
	for _, id := range solvedIDs {
		solved[id] = true
	}

	out := make([]string, 0, len(c.assets))
	for _, a := range c.assets {
		if a.UnlockedBy(solved, completed) {
			out = append(out, a.ID)
		}
	}
	return out
}

// Wearable reports whether the asset exists, fits slot and is unlocked.
func (c *Catalog) Wearable(id, slot string, unlocked []string) bool {
	a, ok := c.byID[id]
	if !ok || a.Slot != slot {
		return false
	}
	for _, u := range unlocked {
		if u == id {
			return true
		}
	}
	return false
}
