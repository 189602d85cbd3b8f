package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/authz"
	"github.com/learntrack/learntrack-backend/models"
)

type CardController struct {
	DB *gorm.DB
}

func NewCardController(db *gorm.DB) *CardController {
	return &CardController{DB: db}
}

type CardCreateInput struct {
	Front    string   `json:"front" binding:"required"`
	Back     string   `json:"back" binding:"required"`
	Examples string   `json:"examples"`
	Tags     []string `json:"tags"`
}

type CardUpdateInput struct {
	Front    *string   `json:"front"`
	Back     *string   `json:"back"`
	Examples *string   `json:"examples"`
	Tags     *[]string `json:"tags"`
}

// Changes maps only the fields present in the payload to their columns.
// Omitted fields are left untouched.
func (in CardUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	if in.Front != nil {
		changes["front"] = *in.Front
	}
	if in.Back != nil {
		changes["back"] = *in.Back
	}
	if in.Examples != nil {
		changes["examples"] = *in.Examples
	}
	if in.Tags != nil {
		changes["tags"] = joinTags(*in.Tags)
	}
	return changes
}

type CardResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Examples  string    `json:"examples"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(tags string) []string {
	if tags == "" {
		return []string{}
	}
	return strings.Split(tags, ",")
}

func toCardResponse(card models.Card) CardResponse {
	return CardResponse{
		ID:        card.ID,
		UserID:    card.UserID,
		Front:     card.Front,
		Back:      card.Back,
		Examples:  card.Examples,
		Tags:      splitTags(card.Tags),
		CreatedAt: card.CreatedAt,
	}
}

func toCardResponses(cards []models.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, toCardResponse(card))
	}
	return out
}

func (ctl *CardController) Create(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input CardCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card := models.Card{
		UserID:   id.UserID,
		Front:    input.Front,
		Back:     input.Back,
		Examples: input.Examples,
		Tags:     joinTags(input.Tags),
	}
	if err := ctl.DB.Create(&card).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCardResponse(card))
}

// List returns the caller's cards; admins see everyone's.
func (ctl *CardController) List(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, offset = clampPage(limit, offset)

	q := ctl.DB.Model(&models.Card{})
	if !id.IsAdmin() {
		q = q.Where("user_id = ?", id.UserID)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("front LIKE ? OR back LIKE ?", pattern, pattern)
	}

	var cards []models.Card
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&cards).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCardResponses(cards))
}

func (ctl *CardController) Get(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var card models.Card
	if err := ctl.DB.First(&card, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Card not found")
		return
	}

	if err := authz.Authorize(id, card.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	c.JSON(http.StatusOK, toCardResponse(card))
}

func (ctl *CardController) Update(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var card models.Card
	if err := ctl.DB.First(&card, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Card not found")
		return
	}

	if err := authz.Authorize(id, card.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	var input CardUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if changes := input.Changes(); len(changes) > 0 {
		if err := ctl.DB.Model(&card).Updates(changes).Error; err != nil {
			respondDatabaseError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, toCardResponse(card))
}

func (ctl *CardController) Delete(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var card models.Card
	if err := ctl.DB.First(&card, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Card not found")
		return
	}

	if err := authz.Authorize(id, card.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	if err := ctl.DB.Where("card_id = ?", card.ID).Delete(&models.DeckCard{}).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}
	if err := ctl.DB.Delete(&card).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Card deleted"})
}
