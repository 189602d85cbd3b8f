package models

import "time"

// Review holds a single 1..5 rating per (user, deck). The unique index backs
// the upsert in the review controller.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_review_user_deck" json:"user_id"`
	DeckID     uint      `gorm:"not null;uniqueIndex:idx_review_user_deck" json:"deck_id"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	ReviewedAt time.Time `gorm:"autoCreateTime" json:"reviewed_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Deck Deck `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
