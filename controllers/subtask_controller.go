package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/authz"
	"github.com/learntrack/learntrack-backend/models"
)

type SubTaskController struct {
	DB *gorm.DB
}

func NewSubTaskController(db *gorm.DB) *SubTaskController {
	return &SubTaskController{DB: db}
}

type SubTaskCreateInput struct {
	TaskID uint   `json:"task_id" binding:"required"`
	Title  string `json:"title" binding:"required"`
	IsDone bool   `json:"is_done"`
}

type SubTaskUpdateInput struct {
	Title  *string `json:"title"`
	IsDone *bool   `json:"is_done"`
}

func (in SubTaskUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	if in.Title != nil {
		changes["title"] = *in.Title
	}
	if in.IsDone != nil {
		changes["is_done"] = *in.IsDone
	}
	return changes
}

// guardParentTask resolves the parent task and enforces ownership on it.
// Subtask access always follows the parent's owner.
func (ctl *SubTaskController) guardParentTask(c *gin.Context, id authz.Identity, taskID uint) (models.Task, bool) {
	var task models.Task
	if err := ctl.DB.First(&task, "id = ?", taskID).Error; err != nil {
		respondLookupError(c, err, "Task not found")
		return task, false
	}
	if err := authz.Authorize(id, task.UserID); err != nil {
		respondForbidden(c, err)
		return task, false
	}
	return task, true
}

func (ctl *SubTaskController) Create(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var input SubTaskCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, ok := ctl.guardParentTask(c, id, input.TaskID)
	if !ok {
		return
	}

	sub := models.SubTask{
		TaskID: task.ID,
		UserID: task.UserID,
		Title:  input.Title,
		IsDone: input.IsDone,
	}
	if err := ctl.DB.Create(&sub).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (ctl *SubTaskController) List(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	taskID, err := parseUintParam(c.Query("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id is required"})
		return
	}

	if _, ok := ctl.guardParentTask(c, id, taskID); !ok {
		return
	}

	var subtasks []models.SubTask
	if err := ctl.DB.Where("task_id = ?", taskID).Order("created_at ASC").Find(&subtasks).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, subtasks)
}

func (ctl *SubTaskController) Update(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var sub models.SubTask
	if err := ctl.DB.First(&sub, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Subtask not found")
		return
	}

	if _, ok := ctl.guardParentTask(c, id, sub.TaskID); !ok {
		return
	}

	var input SubTaskUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if changes := input.Changes(); len(changes) > 0 {
		if err := ctl.DB.Model(&sub).Updates(changes).Error; err != nil {
			respondDatabaseError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, sub)
}

func (ctl *SubTaskController) Delete(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var sub models.SubTask
	if err := ctl.DB.First(&sub, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Subtask not found")
		return
	}

	if _, ok := ctl.guardParentTask(c, id, sub.TaskID); !ok {
		return
	}

	if err := ctl.DB.Delete(&sub).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted"})
}
