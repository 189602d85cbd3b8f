package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/models"
)

// UserController serves the admin-only user management surface. Role checks
// happen in the router via middleware.RequireRoles(models.RoleAdmin).
type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

type UserUpdateInput struct {
	Name *string          `json:"name"`
	Role *models.UserRole `json:"role" binding:"omitempty,oneof=user admin"`
}

// Changes maps only the fields present in the payload to their columns.
func (in UserUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = *in.Name
	}
	if in.Role != nil {
		changes["role"] = *in.Role
	}
	return changes
}

func (ctl *UserController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, offset = clampPage(limit, offset)

	q := ctl.DB.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("email LIKE ? OR name LIKE ?", pattern, pattern)
	}

	var users []models.User
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (ctl *UserController) Get(c *gin.Context) {
	var user models.User
	if err := ctl.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ctl *UserController) Update(c *gin.Context) {
	var user models.User
	if err := ctl.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "User not found")
		return
	}

	var input UserUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if changes := input.Changes(); len(changes) > 0 {
		if err := ctl.DB.Model(&user).Updates(changes).Error; err != nil {
			respondDatabaseError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, user)
}

func (ctl *UserController) Delete(c *gin.Context) {
	var user models.User
	if err := ctl.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		respondLookupError(c, err, "User not found")
		return
	}

	if err := ctl.DB.Delete(&user).Error; err != nil {
		respondDatabaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
