package models

import "time"

type DeckCard struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	DeckID  uint      `gorm:"not null;uniqueIndex:idx_deck_card" json:"deck_id"`
	CardID  uint      `gorm:"not null;uniqueIndex:idx_deck_card" json:"card_id"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`

	Deck Deck `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Card Card `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
