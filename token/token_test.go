package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learntrack/learntrack-backend/models"
)

func TestGenerateAndVerify(t *testing.T) {
	user := models.User{ID: 42, Email: "alice@example.com", Role: models.RoleAdmin}

	raw, err := Generate("secret", time.Hour, user)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := Verify("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "alice@example.com", claims.Subject)
}

func TestVerifyWrongSecret(t *testing.T) {
	raw, err := Generate("secret", time.Hour, models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = Verify("other-secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	raw, err := Generate("secret", -time.Minute, models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, err = Verify("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := Verify("secret", "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
