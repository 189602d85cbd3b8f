package models

import "time"

// UserDeck records a user's voluntary membership in a deck they may not own.
// Membership grants read access to the deck (see authz.AuthorizeDeckRead).
type UserDeck struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_deck" json:"user_id"`
	DeckID     uint      `gorm:"not null;uniqueIndex:idx_user_deck" json:"deck_id"`
	IsFavorite bool      `gorm:"not null;default:false" json:"is_favorite"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Deck Deck `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
