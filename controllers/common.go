package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/authz"
	"github.com/learntrack/learntrack-backend/middleware"
	"github.com/learntrack/learntrack-backend/models"
)

// clampPage bounds the page window: limit to [1,100], offset to >= 0.
func clampPage(limit, offset int) (int, int) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// requireIdentity pulls the authenticated identity out of the context,
// answering 401 itself when Authenticate did not run.
func requireIdentity(c *gin.Context) (authz.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	}
	return id, ok
}

func parseUintParam(raw string) (uint, error) {
	n, err := strconv.ParseUint(raw, 10, 64)
	return uint(n), err
}

// resolveTargetUser returns the user id a call applies to: the caller by
// default, or an admin-supplied ?user_id= override, which must reference an
// existing user. Writes the error response itself when the override is
// rejected.
func resolveTargetUser(c *gin.Context, db *gorm.DB, id authz.Identity) (uint, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		return id.UserID, true
	}
	if !id.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required for user_id"})
		return 0, false
	}
	target, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return 0, false
	}
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", target).Count(&n).Error; err != nil {
		respondDatabaseError(c, err)
		return 0, false
	}
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
		return 0, false
	}
	return uint(target), true
}

// respondLookupError maps a failed row lookup to 404 or an opaque 500.
func respondLookupError(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return
	}
	respondDatabaseError(c, err)
}

// respondDatabaseError logs the failure with query context and answers an
// opaque 500. Internals never reach the caller.
func respondDatabaseError(c *gin.Context, err error) {
	log.Printf("database error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}

// respondForbidden translates an authz denial; any other error is a 500.
func respondForbidden(c *gin.Context, err error) {
	if errors.Is(err, authz.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	respondDatabaseError(c, err)
}
