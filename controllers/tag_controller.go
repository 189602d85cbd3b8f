package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/authz"
	"github.com/learntrack/learntrack-backend/models"
)

type TagController struct {
	DB *gorm.DB
}

func NewTagController(db *gorm.DB) *TagController {
	return &TagController{DB: db}
}

type TagCreateInput struct {
	Name string `json:"name" binding:"required,max=50"`
}

type TagUpdateInput struct {
	Name *string `json:"name"`
}

func (in TagUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = *in.Name
	}
	return changes
}

func (ctl *TagController) Create(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	targetUserID, ok := resolveTargetUser(c, ctl.DB, id)
	if !ok {
		return
	}

	var input TagCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag := models.Tag{UserID: targetUserID, Name: input.Name}
	if err := ctl.DB.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tag already exists"})
			return
		}
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tag)
}

func (ctl *TagController) List(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	targetUserID, ok := resolveTargetUser(c, ctl.DB, id)
	if !ok {
		return
	}

	var tags []models.Tag
	if err := ctl.DB.Where("user_id = ?", targetUserID).Order("name ASC").Find(&tags).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, tags)
}

func (ctl *TagController) Update(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var tag models.Tag
	if err := ctl.DB.First(&tag, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Tag not found")
		return
	}

	if err := authz.Authorize(id, tag.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	var input TagUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if changes := input.Changes(); len(changes) > 0 {
		if err := ctl.DB.Model(&tag).Updates(changes).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Tag already exists"})
				return
			}
			respondDatabaseError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, tag)
}

func (ctl *TagController) Delete(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var tag models.Tag
	if err := ctl.DB.First(&tag, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "Tag not found")
		return
	}

	if err := authz.Authorize(id, tag.UserID); err != nil {
		respondForbidden(c, err)
		return
	}

	if err := ctl.DB.Where("tag_id = ?", tag.ID).Delete(&models.TaskTag{}).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}
	if err := ctl.DB.Delete(&tag).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}
