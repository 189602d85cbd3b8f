package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/learntrack/learntrack-backend/authz"
	"github.com/learntrack/learntrack-backend/models"
)

type DeckController struct {
	DB *gorm.DB
}

func NewDeckController(db *gorm.DB) *DeckController {
	return &DeckController{DB: db}
}

type DeckCreateInput struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	CardIDs     []uint `json:"card_ids"`
}

type DeckUpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (in DeckUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	if in.Title != nil {
		changes["title"] = *in.Title
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	return changes
}

type AttachCardsInput struct {
	CardIDs []uint `json:"card_ids" binding:"required"`
}

type DeckResponse struct {
	ID          uint           `json:"id"`
	UserID      uint           `json:"user_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	RatingAvg   float64        `json:"rating_avg"`
	RatingCount int            `json:"rating_count"`
	CreatedAt   time.Time      `json:"created_at"`
	Cards       []CardResponse `json:"cards"`
}

func (ctl *DeckController) toDeckResponse(deck models.Deck) (DeckResponse, error) {
	var cards []models.Card
	err := ctl.DB.
		Joins("JOIN deck_cards ON deck_cards.card_id = cards.id").
		Where("deck_cards.deck_id = ?", deck.ID).
		Order("cards.created_at DESC").
		Find(&cards).Error
	if err != nil {
		return DeckResponse{}, err
	}

	return DeckResponse{
		ID:          deck.ID,
		UserID:      deck.UserID,
		Title:       deck.Title,
		Description: deck.Description,
		RatingAvg:   deck.RatingAvg,
		RatingCount: deck.RatingCount,
		CreatedAt:   deck.CreatedAt,
		Cards:       toCardResponses(cards),
	}, nil
}

// attachOwnedCards links cards to a deck, silently skipping ids the actor
// does not own (admins may attach anyone's). Existing links are left alone.
// Returns how many new links were created.
func (ctl *DeckController) attachOwnedCards(id authz.Identity, deckID uint, cardIDs []uint) (int, error) {
	attached := 0
	for _, cardID := range cardIDs {
		var card models.Card
		if err := ctl.DB.Select("id", "user_id").First(&card, "id = ?", cardID).Error; err != nil {
			continue
		}
		if authz.Authorize(id, card.UserID) != nil {
			continue
		}

		link := models.DeckCard{DeckID: deckID, CardID: cardID}
		res := ctl.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&link)
		if res.Error != nil {
			return attached, res.Error
		}
		if res.RowsAffected > 0 {
			attached++
		}
	}
	return attached, nil
}

func (ctl *DeckController) Create(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input DeckCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deck := models.Deck{
		UserID:      id.UserID,
		Title:       input.Title,
		Description: input.Description,
	}
	if err := ctl.DB.Create(&deck).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	if _, err := ctl.attachOwnedCards(id, deck.ID, input.CardIDs); err != nil {
		respondDatabaseError(c, err)
		return
	}

	resp, err := ctl.toDeckResponse(deck)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List is the shared catalog: decks are browsable by any authenticated user,
// while deck detail stays guarded by ownership or collection membership.
func (ctl *DeckController) List(c *gin.Context) {
	if _, ok := requireIdentity(c); !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, offset = clampPage(limit, offset)

	q := ctl.DB.Model(&models.Deck{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var decks []models.Deck
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&decks).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	out := make([]DeckResponse, 0, len(decks))
	for _, deck := range decks {
		resp, err := ctl.toDeckResponse(deck)
		if err != nil {
			respondDatabaseError(c, err)
			return
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (ctl *DeckController) Get(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var deck models.Deck
	if err := ctl.DB.First(&deck, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Deck not found")
		return
	}

	if err := authz.AuthorizeDeckRead(ctl.DB, id, deck.UserID, deck.ID); err != nil {
		respondForbidden(c, err)
		return
	}

	resp, err := ctl.toDeckResponse(deck)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (ctl *DeckController) Update(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var deck models.Deck
	if err := ctl.DB.First(&deck, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Deck not found")
		return
	}

	if err := authz.Authorize(id, deck.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	var input DeckUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if changes := input.Changes(); len(changes) > 0 {
		if err := ctl.DB.Model(&deck).Updates(changes).Error; err != nil {
			respondDatabaseError(c, err)
			return
		}
	}

	resp, err := ctl.toDeckResponse(deck)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (ctl *DeckController) Delete(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var deck models.Deck
	if err := ctl.DB.First(&deck, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Deck not found")
		return
	}

	if err := authz.Authorize(id, deck.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	// Dependents go first so the delete is complete even when the store has
	// no cascading constraints configured.
	for _, dependent := range []any{&models.DeckCard{}, &models.UserDeck{}, &models.Review{}, &models.TestResult{}} {
		if err := ctl.DB.Where("deck_id = ?", deck.ID).Delete(dependent).Error; err != nil {
			respondDatabaseError(c, err)
			return
		}
	}
	if err := ctl.DB.Delete(&deck).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deck deleted"})
}

func (ctl *DeckController) AttachCards(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var deck models.Deck
	if err := ctl.DB.First(&deck, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Deck not found")
		return
	}

	if err := authz.Authorize(id, deck.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	var input AttachCardsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attached, err := ctl.attachOwnedCards(id, deck.ID, input.CardIDs)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deck_id": deck.ID, "cards_added": attached})
}

func (ctl *DeckController) DetachCard(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var deck models.Deck
	if err := ctl.DB.First(&deck, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Deck not found")
		return
	}

	if err := authz.Authorize(id, deck.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	if err := ctl.DB.
		Where("deck_id = ? AND card_id = ?", deck.ID, c.Param("cardID")).
		Delete(&models.DeckCard{}).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Card removed from deck"})
}
