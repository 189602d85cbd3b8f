package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/models"
)

// UserDeckController manages the caller's personal deck collection. Adding a
// deck grants read access to it regardless of ownership.
type UserDeckController struct {
	DB   *gorm.DB
	Deck *DeckController
}

func NewUserDeckController(db *gorm.DB) *UserDeckController {
	return &UserDeckController{DB: db, Deck: NewDeckController(db)}
}

type UserDeckCreateInput struct {
	DeckID     uint `json:"deck_id" binding:"required"`
	IsFavorite bool `json:"is_favorite"`
}

func (ctl *UserDeckController) Add(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input UserDeckCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var deck models.Deck
	if err := ctl.DB.First(&deck, "id = ?", input.DeckID).Error; err != nil {
		respondLookupError(c, err, "Deck not found")
		return
	}

	link := models.UserDeck{
		UserID:     id.UserID,
		DeckID:     input.DeckID,
		IsFavorite: input.IsFavorite,
	}
	if err := ctl.DB.Create(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Deck already added"})
			return
		}
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

func (ctl *UserDeckController) Remove(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var deck models.Deck
	if err := ctl.DB.First(&deck, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Deck not found")
		return
	}

	res := ctl.DB.Where("user_id = ? AND deck_id = ?", id.UserID, deck.ID).Delete(&models.UserDeck{})
	if res.Error != nil {
		respondDatabaseError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found in your collection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deck removed from your collection"})
}

func (ctl *UserDeckController) List(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var decks []models.Deck
	err := ctl.DB.
		Joins("JOIN user_decks ON user_decks.deck_id = decks.id").
		Where("user_decks.user_id = ?", id.UserID).
		Order("user_decks.created_at DESC").
		Find(&decks).Error
	if err != nil {
		respondDatabaseError(c, err)
		return
	}

	out := make([]DeckResponse, 0, len(decks))
	for _, deck := range decks {
		resp, err := ctl.Deck.toDeckResponse(deck)
		if err != nil {
			respondDatabaseError(c, err)
			return
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}
