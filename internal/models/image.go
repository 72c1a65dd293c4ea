package models

import "time"

type Image struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title string `gorm:"uniqueIndex;not null" json:"title"`
	File  string `gorm:"not null" json:"file"`
}
