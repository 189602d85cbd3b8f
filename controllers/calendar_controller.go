package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/models"
)

type CalendarController struct {
	DB *gorm.DB
}

func NewCalendarController(db *gorm.DB) *CalendarController {
	return &CalendarController{DB: db}
}

type CalendarItem struct {
	TaskID uint              `json:"task_id"`
	Title  string            `json:"title"`
	DueAt  time.Time         `json:"due_at"`
	Status models.TaskStatus `json:"status"`
	UserID uint              `json:"user_id"`
}

// Window lists due tasks inside [from, to], ordered by due date. Tasks
// without a due date never appear.
func (ctl *CalendarController) Window(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	targetUserID, ok := resolveTargetUser(c, ctl.DB, id)
	if !ok {
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing from"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing to"})
		return
	}

	var tasks []models.Task
	err = ctl.DB.
		Where("user_id = ? AND due_at IS NOT NULL AND due_at >= ? AND due_at <= ?", targetUserID, from, to).
		Order("due_at ASC").
		Find(&tasks).Error
	if err != nil {
		respondDatabaseError(c, err)
		return
	}

	out := make([]CalendarItem, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, CalendarItem{
			TaskID: task.ID,
			Title:  task.Title,
			DueAt:  *task.DueAt,
			Status: task.Status,
			UserID: task.UserID,
		})
	}
	c.JSON(http.StatusOK, out)
}
