package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/authz"
	"github.com/learntrack/learntrack-backend/models"
)

// ReminderController manages reminders nested under /tasks/:id/reminders.
// next_run_at is a scheduling stub: computed as (start_at or now) plus the
// interval, recomputed whenever either input changes. Nothing fires it.
type ReminderController struct {
	DB *gorm.DB
}

func NewReminderController(db *gorm.DB) *ReminderController {
	return &ReminderController{DB: db}
}

type ReminderCreateInput struct {
	EveryMinutes int        `json:"every_minutes" binding:"required,gt=0"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	IsEnabled    *bool      `json:"is_enabled"`
}

type ReminderUpdateInput struct {
	EveryMinutes *int       `json:"every_minutes"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	IsEnabled    *bool      `json:"is_enabled"`
}

func (in ReminderUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	if in.EveryMinutes != nil {
		changes["every_minutes"] = *in.EveryMinutes
	}
	if in.StartAt != nil {
		changes["start_at"] = *in.StartAt
	}
	if in.EndAt != nil {
		changes["end_at"] = *in.EndAt
	}
	if in.IsEnabled != nil {
		changes["is_enabled"] = *in.IsEnabled
	}
	return changes
}

func (ctl *ReminderController) guardParentTask(c *gin.Context, id authz.Identity) (models.Task, bool) {
	var task models.Task
	if err := ctl.DB.First(&task, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Task not found")
		return task, false
	}
	if err := authz.Authorize(id, task.UserID); err != nil {
		respondForbidden(c, err)
		return task, false
	}
	return task, true
}

func (ctl *ReminderController) Create(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	task, ok := ctl.guardParentTask(c, id)
	if !ok {
		return
	}

	var input ReminderCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enabled := true
	if input.IsEnabled != nil {
		enabled = *input.IsEnabled
	}

	reminder := models.Reminder{
		TaskID:       task.ID,
		UserID:       task.UserID,
		EveryMinutes: input.EveryMinutes,
		StartAt:      input.StartAt,
		EndAt:        input.EndAt,
		IsEnabled:    enabled,
	}
	nextRun := reminder.NextRun(time.Now())
	reminder.NextRunAt = &nextRun

	if err := ctl.DB.Create(&reminder).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

func (ctl *ReminderController) List(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	task, ok := ctl.guardParentTask(c, id)
	if !ok {
		return
	}

	var reminders []models.Reminder
	if err := ctl.DB.Where("task_id = ?", task.ID).Order("created_at DESC").Find(&reminders).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, reminders)
}

func (ctl *ReminderController) Update(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	task, ok := ctl.guardParentTask(c, id)
	if !ok {
		return
	}

	var reminder models.Reminder
	if err := ctl.DB.
		Where("id = ? AND task_id = ?", c.Param("reminderID"), task.ID).
		First(&reminder).Error; err != nil {
		respondLookupError(c, err, "Reminder not found")
		return
	}

	var input ReminderUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.EveryMinutes != nil && *input.EveryMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "every_minutes must be positive"})
		return
	}

	changes := input.Changes()
	if len(changes) > 0 {
		// The schedule follows its inputs: recompute next_run_at whenever
		// the interval or the start changes.
		if input.EveryMinutes != nil || input.StartAt != nil {
			shadow := reminder
			if input.EveryMinutes != nil {
				shadow.EveryMinutes = *input.EveryMinutes
			}
			if input.StartAt != nil {
				shadow.StartAt = input.StartAt
			}
			changes["next_run_at"] = shadow.NextRun(time.Now())
		}
		if err := ctl.DB.Model(&reminder).Updates(changes).Error; err != nil {
			respondDatabaseError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, reminder)
}

func (ctl *ReminderController) Delete(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	task, ok := ctl.guardParentTask(c, id)
	if !ok {
		return
	}

	res := ctl.DB.Where("id = ? AND task_id = ?", c.Param("reminderID"), task.ID).Delete(&models.Reminder{})
	if res.Error != nil {
		respondDatabaseError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted"})
}
