// models/character.go
package models

// Character holds the customizable slots of a user's avatar. A nil slot has
// never been set.
type Character struct {
	Username  string  `gorm:"primaryKey" json:"-"`
	BodyColor *string `json:"body_color"`
	HatID     *string `json:"hat_id"`
	FaceID    *string `json:"face_id"`
	ShirtID   *string `json:"shirt_id"`
	PantsID   *string `json:"pants_id"`
}

// Slots returns the customizable slots in a fixed order.
func (c *Character) Slots() []*string {
	return []*string{c.BodyColor, c.HatID, c.FaceID, c.ShirtID, c.PantsID}
}

func (Character) TableName() string {
	return "characters"
}
