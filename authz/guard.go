// Package authz is the single place where role and ownership decisions are
// made. Handlers resolve the target row first (absent rows are a 404, never a
// 403) and then call exactly one of the authorize functions below.
package authz

import (
	"errors"

	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/models"
)

var ErrForbidden = errors.New("access denied")

// Identity is the acting user as resolved from a verified token.
type Identity struct {
	UserID uint
	Role   models.UserRole
}

func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

// Authorize allows admins unconditionally, then owners, then denies.
// The order is fixed: admin bypasses ownership, not authentication.
func Authorize(id Identity, ownerID uint) error {
	if id.IsAdmin() {
		return nil
	}
	if id.UserID == ownerID {
		return nil
	}
	return ErrForbidden
}

// AuthorizeRoles checks role membership only, ignoring ownership. Used for
// admin-only surfaces such as user management.
func AuthorizeRoles(id Identity, allowed ...models.UserRole) error {
	for _, role := range allowed {
		if id.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// AuthorizeDeckRead extends Authorize with the collection-membership
// exception: a user may read a deck they neither own nor administer when a
// UserDeck row links them to it. The membership lookup runs only after the
// owner/admin checks fail.
func AuthorizeDeckRead(db *gorm.DB, id Identity, ownerID, deckID uint) error {
	if err := Authorize(id, ownerID); err == nil {
		return nil
	}

	var n int64
	if err := db.Model(&models.UserDeck{}).
		Where("user_id = ? AND deck_id = ?", id.UserID, deckID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrForbidden
	}
	return nil
}
