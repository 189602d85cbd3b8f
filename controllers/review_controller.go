package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/learntrack/learntrack-backend/authz"
	"github.com/learntrack/learntrack-backend/models"
)

type ReviewController struct {
	DB *gorm.DB
}

func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{DB: db}
}

type ReviewCreateInput struct {
	DeckID uint `json:"deck_id" binding:"required"`
	Rating int  `json:"rating" binding:"required,min=1,max=5"`
}

// Create upserts the caller's rating for a deck. The insert carries an
// ON CONFLICT clause on (user_id, deck_id), so a concurrent double-submit
// cannot race the check-then-write; a residual uniqueness failure still maps
// to 409 rather than a crash.
func (ctl *ReviewController) Create(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input ReviewCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var inCollection int64
	if err := ctl.DB.Model(&models.UserDeck{}).
		Where("user_id = ? AND deck_id = ?", id.UserID, input.DeckID).
		Count(&inCollection).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}
	if inCollection == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Add deck to your collection first"})
		return
	}

	var tested int64
	if err := ctl.DB.Model(&models.TestResult{}).
		Where("user_id = ? AND deck_id = ?", id.UserID, input.DeckID).
		Count(&tested).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}
	if tested == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Complete a test first"})
		return
	}

	review := models.Review{
		UserID: id.UserID,
		DeckID: input.DeckID,
		Rating: input.Rating,
	}
	err := ctl.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "deck_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"rating":      input.Rating,
			"reviewed_at": time.Now(),
		}),
	}).Create(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Review already submitted"})
			return
		}
		respondDatabaseError(c, err)
		return
	}

	if err := ctl.recomputeDeckRating(input.DeckID); err != nil {
		respondDatabaseError(c, err)
		return
	}

	var saved models.Review
	if err := ctl.DB.
		Where("user_id = ? AND deck_id = ?", id.UserID, input.DeckID).
		First(&saved).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// recomputeDeckRating refreshes the denormalized aggregate on the deck row
// from the current review set.
func (ctl *ReviewController) recomputeDeckRating(deckID uint) error {
	return ctl.DB.Model(&models.Deck{}).Where("id = ?", deckID).Updates(map[string]any{
		"rating_avg":   gorm.Expr("COALESCE((SELECT AVG(rating) FROM reviews WHERE deck_id = ?), 0)", deckID),
		"rating_count": gorm.Expr("(SELECT COUNT(*) FROM reviews WHERE deck_id = ?)", deckID),
	}).Error
}

// DeckSummary reports a deck's aggregate rating plus the caller's own rating.
func (ctl *ReviewController) DeckSummary(c *gin.Context) {
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

	var own models.Review
	var userRating *int
	if err := ctl.DB.
		Where("user_id = ? AND deck_id = ?", id.UserID, deck.ID).
		First(&own).Error; err == nil {
		userRating = &own.Rating
	}

	c.JSON(http.StatusOK, gin.H{
		"deck_id":      deck.ID,
		"rating_avg":   deck.RatingAvg,
		"rating_count": deck.RatingCount,
		"user_rating":  userRating,
	})
}
