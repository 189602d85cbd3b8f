package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/authz"
	"github.com/learntrack/learntrack-backend/models"
)

const maxUploadBytes = 25 * 1024 * 1024

// FileController stores task attachments under UploadDir with a generated
// unique filename prefix. The DB row is authoritative; the on-disk copy is
// removed best-effort.
type FileController struct {
	DB        *gorm.DB
	UploadDir string
}

func NewFileController(db *gorm.DB, uploadDir string) *FileController {
	return &FileController{DB: db, UploadDir: uploadDir}
}

func (ctl *FileController) guardParentTask(c *gin.Context, id authz.Identity, taskID uint) (models.Task, bool) {
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

func (ctl *FileController) Upload(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	taskID, err := parseUintParam(c.Query("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id is required"})
		return
	}

	task, ok := ctl.guardParentTask(c, id, taskID)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if header.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty file"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large (max 25MB)"})
		return
	}

	if err := os.MkdirAll(ctl.UploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	safeName := filepath.Base(header.Filename)
	if safeName == "" || safeName == "." {
		safeName = "file"
	}
	storagePath := filepath.Join(ctl.UploadDir, fmt.Sprintf("%s__%s", uuid.NewString(), safeName))

	if err := c.SaveUploadedFile(header, storagePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	file := models.File{
		TaskID:      task.ID,
		UserID:      task.UserID,
		Filename:    safeName,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
		StoragePath: storagePath,
	}
	if err := ctl.DB.Create(&file).Error; err != nil {
		_ = os.Remove(storagePath)
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, file)
}

func (ctl *FileController) List(c *gin.Context) {
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

	var files []models.File
	if err := ctl.DB.Where("task_id = ?", taskID).Order("created_at DESC").Find(&files).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

// Download re-checks ownership before streaming the file back.
func (ctl *FileController) Download(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var file models.File
	if err := ctl.DB.First(&file, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "File not found")
		return
	}

	if _, ok := ctl.guardParentTask(c, id, file.TaskID); !ok {
		return
	}

	if _, err := os.Stat(file.StoragePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File missing on disk"})
		return
	}

	c.FileAttachment(file.StoragePath, file.Filename)
}

func (ctl *FileController) Delete(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var file models.File
	if err := ctl.DB.First(&file, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "File not found")
		return
	}

	if _, ok := ctl.guardParentTask(c, id, file.TaskID); !ok {
		return
	}

	// Best-effort: a file already gone from disk must not fail the delete.
	_ = os.Remove(file.StoragePath)

	if err := ctl.DB.Delete(&file).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}
