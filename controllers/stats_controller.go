package controllers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/models"
)

type StatsController struct {
	DB *gorm.DB
}

func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{DB: db}
}

// Overall rolls the caller's test history into lifetime accuracy figures.
// Everything is recomputed from the rows on each call.
func (ctl *StatsController) Overall(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var totals struct {
		Correct   float64
		Questions int64
	}
	err := ctl.DB.Model(&models.TestResult{}).
		Select("COALESCE(SUM(score), 0) AS correct, COALESCE(SUM(total), 0) AS questions").
		Where("user_id = ?", id.UserID).
		Scan(&totals).Error
	if err != nil {
		respondDatabaseError(c, err)
		return
	}

	var inCollection int64
	if err := ctl.DB.Model(&models.UserDeck{}).
		Where("user_id = ?", id.UserID).
		Count(&inCollection).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	accuracy := 0.0
	if totals.Questions > 0 {
		accuracy = totals.Correct / float64(totals.Questions) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"correct_answers":     totals.Correct,
		"incorrect_answers":   float64(totals.Questions) - totals.Correct,
		"total_questions":     totals.Questions,
		"overall_accuracy":    math.Round(accuracy*100) / 100,
		"decks_in_collection": inCollection,
	})
}
