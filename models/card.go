package models

import "time"

// Card tags are stored comma-joined in a single column and split on read.
type Card struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Front     string    `gorm:"type:text;not null" json:"front"`
	Back      string    `gorm:"type:text" json:"back"`
	Examples  string    `gorm:"type:text" json:"examples"`
	Tags      string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
