package achievements

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// TriggerAll makes every open achievement a candidate.
const TriggerAll = "all"

// Known triggers.
const (
	TriggerSubmission      = "submission"
	TriggerCharChanged     = "char_changed"
	TriggerNicknameChanged = "nickname_changed"
	TriggerLogin           = "login"
	TriggerNotFound        = "404"
)

//go:embed data/achievements.yaml
var defaultCatalog []byte

// Params configures a rule kind. Only the fields a kind reads are set.
type Params struct {
	N         int     `yaml:"n,omitempty"`
	Task      int     `yaml:"task,omitempty"`
	Category  string  `yaml:"category,omitempty"`
	Counter   string  `yaml:"counter,omitempty"`
	Threshold float64 `yaml:"threshold,omitempty"`
}

// Definition is one achievement of the static catalog.
type Definition struct {
	ID                   int      `yaml:"id"`
	Name                 string   `yaml:"name"`
	OpenDescription      string   `yaml:"open"`
	CompletedDescription string   `yaml:"completed"`
	Hidden               bool     `yaml:"hidden,omitempty"`
	Meta                 bool     `yaml:"meta,omitempty"`
	Triggers             []string `yaml:"triggers"`
	Rule                 string   `yaml:"rule"`
	Params               Params   `yaml:"params,omitempty"`
}

// TriggeredBy reports whether trigger makes the definition a candidate.
func (d *Definition) TriggeredBy(trigger string) bool {
	if trigger == TriggerAll {
		return true
	}
	for _, t := range d.Triggers {
		if t == trigger {
			return true
		}
	}
	return false
}

// Catalog is the immutable set of achievement definitions, sorted by id.
type Catalog struct {
	defs []Definition
	byID map[int]int
	meta int
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var defs []Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", ErrConfiguration, err)
	}
	return NewCatalog(defs)
}

// NewCatalog validates defs and builds a Catalog. Ids must be positive and
// unique, and at most one definition may be the meta achievement.
func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{
		defs: make([]Definition, len(defs)),
		byID: make(map[int]int, len(defs)),
	}
	copy(c.defs, defs)
	sort.Slice(c.defs, func(i, j int) bool { return c.defs[i].ID < c.defs[j].ID })

	for i, d := range c.defs {
		if d.ID <= 0 {
			return nil, fmt.Errorf("%w: achievement %q has invalid id %d", ErrConfiguration, d.Name, d.ID)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate achievement id %d", ErrConfiguration, d.ID)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("%w: achievement %d has no name", ErrConfiguration, d.ID)
		}
		if d.Meta {
			if c.meta != 0 {
				return nil, fmt.Errorf("%w: achievements %d and %d are both meta", ErrConfiguration, c.meta, d.ID)
			}
			c.meta = d.ID
		}
		c.byID[d.ID] = i
	}
	return c, nil
}

// Len returns the number of achievements, including the meta achievement.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// All returns the definitions in ascending id order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Get returns the definition with the given id.
func (c *Catalog) Get(id int) (Definition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Meta returns the meta achievement, if the catalog has one.
func (c *Catalog) Meta() (Definition, bool) {
	if c.meta == 0 {
		return Definition{}, false
	}
	return c.Get(c.meta)
}

// Candidates returns the open achievements that trigger makes eligible, in
// ascending id order. The meta achievement is never a candidate.
func (c *Catalog) Candidates(completed map[int]bool, trigger string) []Definition {
	var out []Definition
	for _, d := range c.defs {
		if d.Meta || completed[d.ID] {
			continue
		}
		if d.TriggeredBy(trigger) {
			out = append(out, d)
		}
	}
	return out
}
