package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Asset{
		{ID: "hat_cap", Slot: SlotHat},
		{ID: "hat_wizard", Slot: SlotHat, Precondition: Precondition{AchievementID: 3}},
		{ID: "face_glasses", Slot: SlotFace, Precondition: Precondition{TaskID: 4}},
	})
	require.NoError(t, err)
	return c
}

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	a, ok := c.Get("hat_wizard")
	require.True(t, ok)
	assert.Equal(t, SlotHat, a.Slot)
	assert.Equal(t, 3, a.Precondition.AchievementID)
	assert.Contains(t, c.AchievementIDs(), 22)
}

func TestCatalog_Unlocked(t *testing.T) {
	c := testCatalog(t)

	assert.Equal(t, []string{"hat_cap"}, c.Unlocked(nil, nil))
	assert.Equal(t, []string{"hat_cap", "face_glasses"}, c.Unlocked([]int{4}, nil))
	assert.Equal(t, []string{"hat_cap", "hat_wizard"}, c.Unlocked([]int{3}, map[int]bool{3: true}),
		"a task id never unlocks an achievement precondition")
}

func TestCatalog_Wearable(t *testing.T) {
	c := testCatalog(t)
	unlocked := c.Unlocked([]int{4}, nil)

	assert.True(t, c.Wearable("hat_cap", SlotHat, unlocked))
	assert.True(t, c.Wearable("face_glasses", SlotFace, unlocked))
	assert.False(t, c.Wearable("hat_wizard", SlotHat, unlocked), "locked")
	assert.False(t, c.Wearable("hat_cap", SlotFace, unlocked), "wrong slot")
	assert.False(t, c.Wearable("hat_unknown", SlotHat, unlocked))
}

func TestNewCatalog_Invalid(t *testing.T) {
	tests := map[string][]Asset{
		"missing id":        {{Slot: SlotHat}},
		"duplicate id":      {{ID: "a", Slot: SlotHat}, {ID: "a", Slot: SlotFace}},
		"unknown slot":      {{ID: "a", Slot: "shoes"}},
		"two preconditions": {{ID: "a", Slot: SlotHat, Precondition: Precondition{TaskID: 1, AchievementID: 2}}},
	}
	for name, list := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalog(list)
			assert.Error(t, err)
		})
	}
}
