package models

import "time"

type Device struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Code        *string `gorm:"size:50;uniqueIndex" json:"code,omitempty"`
	Name        string  `gorm:"size:150;not null" json:"name"`
	Location    string  `gorm:"size:150" json:"location"`
	Description string  `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
