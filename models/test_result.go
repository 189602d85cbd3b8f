package models

import "time"

type TestResult struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	DeckID    uint      `gorm:"not null;index" json:"deck_id"`
	Score     float64   `gorm:"not null" json:"score"`
	Total     int       `gorm:"not null" json:"total"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Deck Deck `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Percentage is derived, never stored.
func (t TestResult) Percentage() float64 {
	if t.Total == 0 {
		return 0
	}
	return t.Score / float64(t.Total) * 100
}
