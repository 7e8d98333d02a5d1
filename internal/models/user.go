package models

import "time"

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Name         string `gorm:"size:100;not null" json:"name"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:'user'" json:"role"`
	Group        string `gorm:"column:group_name;size:100;default:'default'" json:"group"`
	IsActive     bool   `gorm:"not null;default:true" json:"isActive"`

	// current session; cleared on logout and password reset
	RefreshToken *string `gorm:"size:512" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the relation projection embedded in booking listings.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Group string `json:"group"`
}
