package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/learntrack/learntrack-backend/models"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		ownerID uint
		allowed bool
	}{
		{"owner", Identity{UserID: 1, Role: models.RoleUser}, 1, true},
		{"other user", Identity{UserID: 1, Role: models.RoleUser}, 2, false},
		{"admin owns", Identity{UserID: 1, Role: models.RoleAdmin}, 1, true},
		{"admin bypasses ownership", Identity{UserID: 1, Role: models.RoleAdmin}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.id, tt.ownerID)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorizeRoles(t *testing.T) {
	admin := Identity{UserID: 1, Role: models.RoleAdmin}
	user := Identity{UserID: 2, Role: models.RoleUser}

	assert.NoError(t, AuthorizeRoles(admin, models.RoleAdmin))
	assert.NoError(t, AuthorizeRoles(user, models.RoleUser, models.RoleAdmin))
	assert.ErrorIs(t, AuthorizeRoles(user, models.RoleAdmin), ErrForbidden)
	assert.ErrorIs(t, AuthorizeRoles(user), ErrForbidden)
}

func TestAuthorizeDeckRead(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:authz_guard?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Deck{}, &models.UserDeck{}))

	const ownerID, memberID, strangerID, deckID = 1, 2, 3, 10

	require.NoError(t, db.Create(&models.UserDeck{UserID: memberID, DeckID: deckID}).Error)

	owner := Identity{UserID: ownerID, Role: models.RoleUser}
	member := Identity{UserID: memberID, Role: models.RoleUser}
	stranger := Identity{UserID: strangerID, Role: models.RoleUser}
	admin := Identity{UserID: strangerID, Role: models.RoleAdmin}

	assert.NoError(t, AuthorizeDeckRead(db, owner, ownerID, deckID))
	assert.NoError(t, AuthorizeDeckRead(db, admin, ownerID, deckID))
	assert.NoError(t, AuthorizeDeckRead(db, member, ownerID, deckID))
	assert.ErrorIs(t, AuthorizeDeckRead(db, stranger, ownerID, deckID), ErrForbidden)

	// Membership in one deck grants nothing for another.
	assert.ErrorIs(t, AuthorizeDeckRead(db, member, ownerID, deckID+1), ErrForbidden)
}
