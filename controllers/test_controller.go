package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/models"
)

type TestController struct {
	DB *gorm.DB
}

func NewTestController(db *gorm.DB) *TestController {
	return &TestController{DB: db}
}

type TestCreateInput struct {
	DeckID uint    `json:"deck_id" binding:"required"`
	Total  int     `json:"total" binding:"required,gt=0"`
	Score  float64 `json:"score" binding:"gte=0"`
}

type TestResponse struct {
	models.TestResult
	Percentage float64 `json:"percentage"`
}

func toTestResponse(t models.TestResult) TestResponse {
	return TestResponse{TestResult: t, Percentage: t.Percentage()}
}

func (ctl *TestController) Create(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input TestCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Score > float64(input.Total) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Score cannot be greater than total"})
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

	result := models.TestResult{
		UserID: id.UserID,
		DeckID: input.DeckID,
		Score:  input.Score,
		Total:  input.Total,
	}
	if err := ctl.DB.Create(&result).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTestResponse(result))
}

func (ctl *TestController) History(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, offset = clampPage(limit, offset)

	q := ctl.DB.Where("user_id = ?", id.UserID)
	if deckID := c.Query("deck_id"); deckID != "" {
		q = q.Where("deck_id = ?", deckID)
	}

	var results []models.TestResult
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&results).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	out := make([]TestResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toTestResponse(r))
	}
	c.JSON(http.StatusOK, out)
}
