package models

import "gorm.io/gorm"

// Wish represents a stored birthday wish. Records are created once and
// never updated or deleted by the service; Content is generated at
// creation time and served verbatim afterwards.
type Wish struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Slug       string `json:"slug" gorm:"uniqueIndex;type:varchar(64)" validate:"required,min=1,max=56"`
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Tone       string `json:"tone" validate:"omitempty,oneof=sweet fun poetic"`
	Emoji      string `json:"emoji" validate:"omitempty,max=16"`
	From       string `json:"from,omitempty" validate:"omitempty,max=100"`
	Notes      string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	ImageURL   string `json:"imageUrl,omitempty" gorm:"type:text"` // data URL, bounded at creation
	Content    string `json:"content" gorm:"type:text"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
