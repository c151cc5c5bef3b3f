// Package level computes skill points and levels from solved tasks.
package level

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Total is the pseudo-skill holding the sum of all task points.
const Total = "total"

// Levels holds the minimum points per level, based on (x-1)^1.75 * 15.
// Level 0 is unreachable on purpose.
var Levels = [...]int{100000000, 0, 15, 50, 100, 170, 250, 340, 450, 570, 700, 840, 1080, 1400}

// MaxLevel is the highest reachable level.
const MaxLevel = len(Levels) - 1

//go:embed data/tasks.yaml
var defaultTasks []byte

// Points maps a skill name to points. It always contains the Total key
// when produced by a Calculator.
type Points map[string]int

// Skills returns the skill names in lexicographic order, without Total.
func (p Points) Skills() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		if name == Total {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SkillPoints is the share of one skill awarded by a task.
type SkillPoints struct {
	Name   string `yaml:"name" json:"name"`
	Points int    `yaml:"points" json:"points"`
}

// TaskStat describes the points a task is worth.
type TaskStat struct {
	ID     int           `yaml:"id" json:"id"`
	Points int           `yaml:"points" json:"points"`
	Skills []SkillPoints `yaml:"skills" json:"skills"`
}

// Calculator derives point totals from the static task statistics.
// It is immutable after construction and safe for concurrent use.
type Calculator struct {
	tasks map[int]TaskStat
	max   Points
}

// ParseTasks decodes task statistics from YAML.
func ParseTasks(data []byte) ([]TaskStat, error) {
	var tasks []TaskStat
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse task statistics: %w", err)
	}
	return tasks, nil
}

// NewDefaultCalculator builds a Calculator from the embedded task statistics.
func NewDefaultCalculator() (*Calculator, error) {
	tasks, err := ParseTasks(defaultTasks)
	if err != nil {
		return nil, err
	}
	return NewCalculator(tasks)
}

// NewCalculator indexes tasks by id and precomputes the global maximum.
func NewCalculator(tasks []TaskStat) (*Calculator, error) {
	c := &Calculator{tasks: make(map[int]TaskStat, len(tasks))}
	for _, t := range tasks {
		if _, dup := c.tasks[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %d", t.ID)
		}
		c.tasks[t.ID] = t
	}

	c.max = Points{Total: 0}
	for _, t := range c.tasks {
		c.add(c.max, t)
	}
	return c, nil
}

func (c *Calculator) add(p Points, t TaskStat) {
	p[Total] += t.Points
	for _, s := range t.Skills {
		p[s.Name] += s.Points
	}
}

// Max returns the points of a user who solved every task. The result is a copy.
func (c *Calculator) Max() Points {
	out := make(Points, len(c.max))
	for k, v := range c.max {
		out[k] = v
	}
	return out
}

// ForSolved returns the points for the given solved task ids. Every skill of
// the global maximum is present, with zero if nothing was earned. Unknown and
// repeated ids are ignored.
func (c *Calculator) ForSolved(solved []int) Points {
	out := make(Points, len(c.max))
	for k := range c.max {
		out[k] = 0
	}

	seen := make(map[int]bool, len(solved))
	for _, id := range solved {
		if seen[id] {
			continue
		}
		seen[id] = true
		if t, ok := c.tasks[id]; ok {
			c.add(out, t)
		}
	}
	return out
}

// TaskCount returns the number of tasks in the statistics.
func (c *Calculator) TaskCount() int {
	return len(c.tasks)
}

// LevelToPoints returns the points needed to reach lvl.
func LevelToPoints(lvl int) int {
	if lvl < 0 {
		return Levels[0]
	}
	if lvl < len(Levels) {
		return Levels[lvl]
	}
	return Levels[MaxLevel]
}

// PointsToLevel returns the highest level whose threshold is reached.
func PointsToLevel(points int) int {
	for lvl := MaxLevel; lvl >= 0; lvl-- {
		if points >= Levels[lvl] {
			return lvl
		}
	}
	// Negative points never happen in practice.
	return 1
}

// SkillSummary is one skill of a Summary.
type SkillSummary struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"max_points"`
}

// Summary is the level view of a user's points.
type Summary struct {
	Level      int            `json:"level"`
	Points     int            `json:"points"`
	NextPoints int            `json:"next_points"`
	MaxLevel   int            `json:"max_level"`
	Skills     []SkillSummary `json:"skills"`
}

// Summarize reports the level reached with user and the progress in every
// skill of max.
func Summarize(user, max Points) Summary {
	lvl := PointsToLevel(user[Total])
	s := Summary{
		Level:      lvl,
		Points:     user[Total],
		NextPoints: LevelToPoints(lvl + 1),
		MaxLevel:   MaxLevel,
		Skills:     make([]SkillSummary, 0, len(max)),
	}
	for _, name := range max.Skills() {
		s.Skills = append(s.Skills, SkillSummary{Name: name, Points: user[name], MaxPoints: max[name]})
	}
	return s
}
