package models

import "time"

// Deck carries denormalized rating fields recomputed on every review write.
type Deck struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:500" json:"description"`
	RatingAvg   float64   `gorm:"not null;default:0" json:"rating_avg"`
	RatingCount int       `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
