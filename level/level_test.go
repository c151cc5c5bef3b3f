package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator([]TaskStat{
		{ID: 1, Points: 10, Skills: []SkillPoints{{Name: "loops", Points: 6}, {Name: "io", Points: 4}}},
		{ID: 2, Points: 20, Skills: []SkillPoints{{Name: "loops", Points: 20}}},
		{ID: 3, Points: 5, Skills: []SkillPoints{{Name: "recursion", Points: 5}}},
	})
	require.NoError(t, err)
	return c
}

func TestCalculator_Max(t *testing.T) {
	c := testCalculator(t)

	max := c.Max()
	assert.Equal(t, 35, max[Total])
	assert.Equal(t, 26, max["loops"])
	assert.Equal(t, 4, max["io"])
	assert.Equal(t, 5, max["recursion"])

	max["loops"] = 0
	assert.Equal(t, 26, c.Max()["loops"], "Max must return a copy")
}

func TestCalculator_ForSolved(t *testing.T) {
	c := testCalculator(t)

	got := c.ForSolved([]int{1, 1, 99})
	assert.Equal(t, Points{Total: 10, "loops": 6, "io": 4, "recursion": 0}, got)
}

func TestCalculator_ForSolved_Empty(t *testing.T) {
	c := testCalculator(t)

	got := c.ForSolved(nil)
	assert.Equal(t, 0, got[Total])
	assert.Len(t, got, 4)
}

func TestNewCalculator_DuplicateTask(t *testing.T) {
	_, err := NewCalculator([]TaskStat{{ID: 1}, {ID: 1}})
	assert.Error(t, err)
}

func TestNewDefaultCalculator(t *testing.T) {
	c, err := NewDefaultCalculator()
	require.NoError(t, err)
	assert.Equal(t, 12, c.TaskCount())
	assert.Equal(t, 210, c.Max()[Total])
}

func TestPoints_Skills(t *testing.T) {
	p := Points{Total: 9, "b": 1, "a": 2}
	assert.Equal(t, []string{"a", "b"}, p.Skills())
}

func TestPointsToLevel(t *testing.T) {
	cases := map[int]int{
		0:       1,
		14:      1,
		15:      2,
		99:      3,
		100:     4,
		1399:    12,
		1400:    13,
		1000000: 13,
	}
	for points, want := range cases {
		assert.Equal(t, want, PointsToLevel(points), "points=%d", points)
	}
}

func TestLevelToPoints(t *testing.T) {
	assert.Equal(t, 0, LevelToPoints(1))
	assert.Equal(t, 170, LevelToPoints(5))
	assert.Equal(t, 1400, LevelToPoints(MaxLevel))
	assert.Equal(t, 1400, LevelToPoints(MaxLevel+5))
}

func TestSummarize(t *testing.T) {
	max := Points{Total: 200, "b": 150, "a": 50}
	user := Points{Total: 60, "a": 10, "b": 50}

	s := Summarize(user, max)
	assert.Equal(t, 3, s.Level)
	assert.Equal(t, 60, s.Points)
	assert.Equal(t, 100, s.NextPoints)
	assert.Equal(t, MaxLevel, s.MaxLevel)
	assert.Equal(t, []SkillSummary{
		{Name: "a", Points: 10, MaxPoints: 50},
		{Name: "b", Points: 50, MaxPoints: 150},
	}, s.Skills)
}

func TestSummarize_MaxLevel(t *testing.T) {
	s := Summarize(Points{Total: 5000}, Points{Total: 5000})
	assert.Equal(t, MaxLevel, s.Level)
	assert.Equal(t, Levels[MaxLevel], s.NextPoints)
	assert.Empty(t, s.Skills)
}
