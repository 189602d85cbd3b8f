package controllers

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/learntrack/learntrack-backend/authz"
	"github.com/learntrack/learntrack-backend/models"
)

const maxInlineSubtasks = 50

type TaskController struct {
	DB *gorm.DB
}

func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{DB: db}
}

type InlineSubTask struct {
	Title  string `json:"title" binding:"required"`
	IsDone bool   `json:"is_done"`
}

type TaskCreateInput struct {
	Title                 string            `json:"title" binding:"required"`
	Description           string            `json:"description"`
	DueAt                 *time.Time        `json:"due_at"`
	Status                models.TaskStatus `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	RepeatIntervalMinutes *int              `json:"repeat_interval_minutes" binding:"omitempty,gt=0"`
	TagIDs                *[]uint           `json:"tag_ids"`
	Subtasks              []InlineSubTask   `json:"subtasks"`
}

type TaskUpdateInput struct {
	Title                 *string            `json:"title"`
	Description           *string            `json:"description"`
	DueAt                 *time.Time         `json:"due_at"`
	Status                *models.TaskStatus `json:"status"`
	RepeatIntervalMinutes *int               `json:"repeat_interval_minutes"`
	TagIDs                *[]uint            `json:"tag_ids"`
}

// Changes maps only the fields present in the payload to their columns.
// An omitted field never clears the stored value. Tag sync is handled
// separately because it touches the join table, not the task row.
func (in TaskUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	if in.Title != nil {
		changes["title"] = *in.Title
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.DueAt != nil {
		changes["due_at"] = *in.DueAt
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.RepeatIntervalMinutes != nil {
		changes["repeat_interval_minutes"] = *in.RepeatIntervalMinutes
	}
	return changes
}

type TaskResponse struct {
	models.Task
	Tags           []models.Tag `json:"tags"`
	SubtasksCount  int64        `json:"subtasks_count"`
	FilesCount     int64        `json:"files_count"`
	RemindersCount int64        `json:"reminders_count"`
}

// toTaskResponse attaches the task's tags and child counters. Counters are
// counted from the child rows on every read, never cached.
func (ctl *TaskController) toTaskResponse(task models.Task) (TaskResponse, error) {
	resp := TaskResponse{Task: task, Tags: []models.Tag{}}

	err := ctl.DB.
		Joins("JOIN task_tags ON task_tags.tag_id = tags.id").
		Where("task_tags.task_id = ?", task.ID).
		Order("tags.name ASC").
		Find(&resp.Tags).Error
	if err != nil {
		return resp, err
	}

	if err := ctl.DB.Model(&models.SubTask{}).Where("task_id = ?", task.ID).Count(&resp.SubtasksCount).Error; err != nil {
		return resp, err
	}
	if err := ctl.DB.Model(&models.File{}).Where("task_id = ?", task.ID).Count(&resp.FilesCount).Error; err != nil {
		return resp, err
	}
	if err := ctl.DB.Model(&models.Reminder{}).Where("task_id = ?", task.ID).Count(&resp.RemindersCount).Error; err != nil {
		return resp, err
	}
	return resp, nil
}

// syncTags replaces a task's tag set. nil means "leave as is"; an empty list
// clears it. Every referenced tag must belong to the task's owner.
func (ctl *TaskController) syncTags(c *gin.Context, taskID, ownerID uint, tagIDs *[]uint) bool {
	if tagIDs == nil {
		return true
	}

	if len(*tagIDs) > 0 {
		var owned []uint
		if err := ctl.DB.Model(&models.Tag{}).
			Where("user_id = ? AND id IN ?", ownerID, *tagIDs).
			Pluck("id", &owned).Error; err != nil {
			respondDatabaseError(c, err)
			return false
		}
		if len(owned) != len(uniqueIDs(*tagIDs)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown tag_ids for this user"})
			return false
		}
	}

	if err := ctl.DB.Where("task_id = ?", taskID).Delete(&models.TaskTag{}).Error; err != nil {
		respondDatabaseError(c, err)
		return false
	}
	for _, tagID := range *tagIDs {
		link := models.TaskTag{TaskID: taskID, TagID: tagID}
		if err := ctl.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			respondDatabaseError(c, err)
			return false
		}
	}
	return true
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (ctl *TaskController) Create(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	targetUserID, ok := resolveTargetUser(c, ctl.DB, id)
	if !ok {
		return
	}

	var input TaskCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := input.Status
	if status == "" {
		status = models.TaskTodo
	}

	task := models.Task{
		UserID:                targetUserID,
		Title:                 input.Title,
		Description:           input.Description,
		DueAt:                 input.DueAt,
		Status:                status,
		RepeatIntervalMinutes: input.RepeatIntervalMinutes,
	}
	if err := ctl.DB.Create(&task).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	if !ctl.syncTags(c, task.ID, targetUserID, input.TagIDs) {
		return
	}

	subtasks := input.Subtasks
	if len(subtasks) > maxInlineSubtasks {
		subtasks = subtasks[:maxInlineSubtasks]
	}
	for _, st := range subtasks {
		sub := models.SubTask{
			TaskID: task.ID,
			UserID: targetUserID,
			Title:  st.Title,
			IsDone: st.IsDone,
		}
		if err := ctl.DB.Create(&sub).Error; err != nil {
			respondDatabaseError(c, err)
			return
		}
	}

	resp, err := ctl.toTaskResponse(task)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (ctl *TaskController) List(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	targetUserID, ok := resolveTargetUser(c, ctl.DB, id)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, offset = clampPage(limit, offset)

	q := ctl.DB.Where("user_id = ?", targetUserID)

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if status := c.Query("status"); status != "" {
		if !models.TaskStatus(status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		q = q.Where("status = ?", status)
	}
	if from := c.Query("due_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_from"})
			return
		}
		q = q.Where("due_at >= ?", t)
	}
	if to := c.Query("due_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_to"})
			return
		}
		q = q.Where("due_at <= ?", t)
	}

	var tasks []models.Task
	if err := q.Order("COALESCE(due_at, created_at) ASC").Limit(limit).Offset(offset).Find(&tasks).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp, err := ctl.toTaskResponse(task)
		if err != nil {
			respondDatabaseError(c, err)
			return
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (ctl *TaskController) Get(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var task models.Task
	if err := ctl.DB.First(&task, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Task not found")
		return
	}

	if err := authz.Authorize(id, task.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	resp, err := ctl.toTaskResponse(task)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (ctl *TaskController) Update(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var task models.Task
	if err := ctl.DB.First(&task, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Task not found")
		return
	}

	if err := authz.Authorize(id, task.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	var input TaskUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Status != nil && !input.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	if changes := input.Changes(); len(changes) > 0 {
		if err := ctl.DB.Model(&task).Updates(changes).Error; err != nil {
			respondDatabaseError(c, err)
			return
		}
	}

	if !ctl.syncTags(c, task.ID, task.UserID, input.TagIDs) {
		return
	}

	resp, err := ctl.toTaskResponse(task)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (ctl *TaskController) Delete(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var task models.Task
	if err := ctl.DB.First(&task, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Task not found")
		return
	}

	if err := authz.Authorize(id, task.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	// Attachment blobs go first, best-effort: a file already missing on disk
	// must not block the delete.
	var files []models.File
	if err := ctl.DB.Where("task_id = ?", task.ID).Find(&files).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}
	for _, f := range files {
		_ = os.Remove(f.StoragePath)
	}

	for _, dependent := range []any{&models.SubTask{}, &models.TaskTag{}, &models.File{}, &models.Reminder{}} {
		if err := ctl.DB.Where("task_id = ?", task.ID).Delete(dependent).Error; err != nil {
			respondDatabaseError(c, err)
			return
		}
	}
	if err := ctl.DB.Delete(&task).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// GenerateNext creates the next occurrence of a repeating task: same title,
// description and interval, due exactly one interval after the current
// due_at, status reset to todo, tag links copied. The source row is left
// untouched.
func (ctl *TaskController) GenerateNext(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var task models.Task
	if err := ctl.DB.First(&task, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Task not found")
		return
	}

	if err := authz.Authorize(id, task.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	if task.RepeatIntervalMinutes == nil || *task.RepeatIntervalMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task is not repeating (repeat_interval_minutes is null)"})
		return
	}
	if task.DueAt == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task has no due_at, cannot generate next occurrence"})
		return
	}

	nextDue := task.DueAt.Add(time.Duration(*task.RepeatIntervalMinutes) * time.Minute)
	next := models.Task{
		UserID:                task.UserID,
		Title:                 task.Title,
		Description:           task.Description,
		DueAt:                 &nextDue,
		Status:                models.TaskTodo,
		RepeatIntervalMinutes: task.RepeatIntervalMinutes,
	}
	if err := ctl.DB.Create(&next).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	var tagIDs []uint
	if err := ctl.DB.Model(&models.TaskTag{}).
		Where("task_id = ?", task.ID).
		Pluck("tag_id", &tagIDs).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}
	for _, tagID := range tagIDs {
		link := models.TaskTag{TaskID: next.ID, TagID: tagID}
		if err := ctl.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			respondDatabaseError(c, err)
			return
		}
	}

	resp, err := ctl.toTaskResponse(next)
	if err != nil {
		respondDatabaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
