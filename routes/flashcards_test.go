package routes

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learntrack/learntrack-backend/models"
)

func TestRegisterLoginProfile(t *testing.T) {
	r, _ := newFlashcardsApp(t)

	alice := register(t, r, "alice@example.com", models.RoleUser)

	t.Run("password hash never leaks", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/profile", alice.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
		assert.Contains(t, w.Body.String(), "alice@example.com")
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
			"email":    "alice@example.com",
			"name":     "someone else",
			"password": "secret123",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Email already registered")
	})

	t.Run("short password is rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
			"email":    "bob@example.com",
			"name":     "bob",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login with correct credentials", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{
			"email":    "alice@example.com",
			"password": "secret123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token string `json:"token"`
		}
		decode(t, w, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password and unknown email answer alike", func(t *testing.T) {
		for _, body := range []gin.H{
			{"email": "alice@example.com", "password": "wrongpass"},
			{"email": "nobody@example.com", "password": "secret123"},
		} {
			w := doJSON(t, r, http.MethodPost, "/login", "", body)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Invalid email or password")
		}
	})

	t.Run("protected route without token", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("protected route with garbage token", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/profile", "not.a.token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func createCard(t *testing.T, r *gin.Engine, token, front string, tags []string) uint {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/cards", token, gin.H{
		"front": front,
		"back":  "back of " + front,
		"tags":  tags,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID uint `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

func createDeck(t *testing.T, r *gin.Engine, token, title string, cardIDs []uint) uint {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/decks", token, gin.H{
		"title":    title,
		"card_ids": cardIDs,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID uint `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

func addToCollection(t *testing.T, r *gin.Engine, token string, deckID uint) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/user-decks", token, gin.H{"deck_id": deckID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCardOwnership(t *testing.T) {
	r, _ := newFlashcardsApp(t)

	alice := register(t, r, "alice@example.com", models.RoleUser)
	bob := register(t, r, "bob@example.com", models.RoleUser)
	admin := register(t, r, "admin@example.com", models.RoleAdmin)

	cardID := createCard(t, r, alice.Token, "der Hund", []string{"nouns", "animals"})
	path := fmt.Sprintf("/cards/%d", cardID)

	t.Run("tags round-trip as a list", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, path, alice.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Tags []string `json:"tags"`
		}
		decode(t, w, &resp)
		assert.Equal(t, []string{"nouns", "animals"}, resp.Tags)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, path, bob.Token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, r, http.MethodPut, path, bob.Token, gin.H{"front": "stolen"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, r, http.MethodDelete, path, bob.Token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, path, admin.Token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, path, alice.Token, gin.H{"back": "the dog"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Front string   `json:"front"`
			Back  string   `json:"back"`
			Tags  []string `json:"tags"`
		}
		decode(t, w, &resp)
		assert.Equal(t, "der Hund", resp.Front)
		assert.Equal(t, "the dog", resp.Back)
		assert.Equal(t, []string{"nouns", "animals"}, resp.Tags)
	})

	t.Run("empty update body changes nothing", func(t *testing.T) {
		before := doJSON(t, r, http.MethodGet, path, alice.Token, nil)
		w := doJSON(t, r, http.MethodPut, path, alice.Token, gin.H{})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, before.Body.String(), w.Body.String())
	})

	t.Run("missing card is 404, never 403", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/cards/99999", bob.Token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete removes the card", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, path, alice.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, http.MethodGet, path, alice.Token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeckCollectionAccess(t *testing.T) {
	r, _ := newFlashcardsApp(t)

	alice := register(t, r, "alice@example.com", models.RoleUser)
	bob := register(t, r, "bob@example.com", models.RoleUser)

	cardID := createCard(t, r, alice.Token, "die Katze", nil)
	deckID := createDeck(t, r, alice.Token, "Animals", []uint{cardID})
	deckPath := fmt.Sprintf("/decks/%d", deckID)

	t.Run("stranger cannot read deck detail", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, deckPath, bob.Token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("catalog is browsable by anyone authenticated", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/decks", bob.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Animals")
	})

	t.Run("membership grants read access", func(t *testing.T) {
		addToCollection(t, r, bob.Token, deckID)

		w := doJSON(t, r, http.MethodGet, deckPath, bob.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "die Katze")
	})

	t.Run("membership never grants write access", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, deckPath, bob.Token, gin.H{"title": "Hijacked"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, r, http.MethodDelete, deckPath, bob.Token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("adding twice is rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/user-decks", bob.Token, gin.H{"deck_id": deckID})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Deck already added")
	})

	t.Run("collection lists the deck", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/user-decks", bob.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Animals")
	})

	t.Run("removal revokes access", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/user-decks/%d", deckID), bob.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, http.MethodGet, deckPath, bob.Token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/user-decks/%d", deckID), bob.Token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("adding an unknown deck is 404", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/user-decks", bob.Token, gin.H{"deck_id": 99999})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeckAttachDetach(t *testing.T) {
	r, _ := newFlashcardsApp(t)

	alice := register(t, r, "alice@example.com", models.RoleUser)
	bob := register(t, r, "bob@example.com", models.RoleUser)

	c1 := createCard(t, r, alice.Token, "eins", nil)
	c2 := createCard(t, r, alice.Token, "zwei", nil)
	bobsCard := createCard(t, r, bob.Token, "drei", nil)
	deckID := createDeck(t, r, alice.Token, "Numbers", nil)
	attachPath := fmt.Sprintf("/decks/%d/cards", deckID)

	attach := func(ids []uint) int {
		w := doJSON(t, r, http.MethodPost, attachPath, alice.Token, gin.H{"card_ids": ids})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			CardsAdded int `json:"cards_added"`
		}
		decode(t, w, &resp)
		return resp.CardsAdded
	}

	t.Run("foreign and unknown cards are skipped", func(t *testing.T) {
		added := attach([]uint{c1, c2, bobsCard, 99999})
		assert.Equal(t, 2, added)
	})

	t.Run("re-attaching is idempotent", func(t *testing.T) {
		assert.Equal(t, 0, attach([]uint{c1, c2}))
	})

	t.Run("deck detail embeds the attached cards", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/decks/%d", deckID), alice.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Cards []struct {
				ID uint `json:"id"`
			} `json:"cards"`
		}
		decode(t, w, &resp)
		assert.Len(t, resp.Cards, 2)
	})

	t.Run("detach removes the link only", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/decks/%d/cards/%d", deckID, c1), alice.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/cards/%d", c1), alice.Token, nil)
		assert.Equal(t, http.StatusOK, w.Code, "card must survive detach")
	})
}

func TestTestResultsAndReviews(t *testing.T) {
	r, _ := newFlashcardsApp(t)

	alice := register(t, r, "alice@example.com", models.RoleUser)
	bob := register(t, r, "bob@example.com", models.RoleUser)

	deckID := createDeck(t, r, alice.Token, "Verbs", nil)

	submitTest := func(token string, score float64, total int) {
		w := doJSON(t, r, http.MethodPost, "/tests", token, gin.H{
			"deck_id": deckID,
			"score":   score,
			"total":   total,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	t.Run("test requires collection membership, even for the owner", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/tests", alice.Token, gin.H{"deck_id": deckID, "score": 5, "total": 10})
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Add deck to your collection first")
	})

	addToCollection(t, r, alice.Token, deckID)
	addToCollection(t, r, bob.Token, deckID)

	t.Run("score above total is rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/tests", alice.Token, gin.H{"deck_id": deckID, "score": 11, "total": 10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("percentage is derived", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/tests", alice.Token, gin.H{"deck_id": deckID, "score": 8, "total": 10})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Percentage float64 `json:"percentage"`
		}
		decode(t, w, &resp)
		assert.InDelta(t, 80.0, resp.Percentage, 0.001)
	})

	t.Run("review requires a completed test", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/reviews", bob.Token, gin.H{"deck_id": deckID, "rating": 4})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Complete a test first")
	})

	submitTest(bob.Token, 6, 10)

	deckSummary := func(token string) (avg float64, count int, userRating *int) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/reviews/deck/%d", deckID), token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			RatingAvg   float64 `json:"rating_avg"`
			RatingCount int     `json:"rating_count"`
			UserRating  *int    `json:"user_rating"`
		}
		decode(t, w, &resp)
		return resp.RatingAvg, resp.RatingCount, resp.UserRating
	}

	t.Run("ratings roll up into the deck aggregate", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/reviews", bob.Token, gin.H{"deck_id": deckID, "rating": 4})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = doJSON(t, r, http.MethodPost, "/reviews", alice.Token, gin.H{"deck_id": deckID, "rating": 2})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		avg, count, _ := deckSummary(alice.Token)
		assert.InDelta(t, 3.0, avg, 0.001)
		assert.Equal(t, 2, count)
	})

	t.Run("re-reviewing replaces the rating, not adds one", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/reviews", alice.Token, gin.H{"deck_id": deckID, "rating": 5})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		avg, count, userRating := deckSummary(alice.Token)
		assert.InDelta(t, 4.5, avg, 0.001)
		assert.Equal(t, 2, count)
		require.NotNil(t, userRating)
		assert.Equal(t, 5, *userRating)
	})

	t.Run("rating outside 1..5 is rejected", func(t *testing.T) {
		for _, rating := range []int{0, 6} {
			w := doJSON(t, r, http.MethodPost, "/reviews", alice.Token, gin.H{"deck_id": deckID, "rating": rating})
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	})

	t.Run("history is scoped to the caller", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/tests/history", bob.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp []struct {
			UserID uint `json:"user_id"`
		}
		decode(t, w, &resp)
		require.Len(t, resp, 1)
		assert.Equal(t, bob.ID, resp[0].UserID)
	})

	t.Run("stats aggregate lifetime accuracy", func(t *testing.T) {
		submitTest(bob.Token, 9, 10)

		w := doJSON(t, r, http.MethodGet, "/stats", bob.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			CorrectAnswers    float64 `json:"correct_answers"`
			TotalQuestions    int64   `json:"total_questions"`
			OverallAccuracy   float64 `json:"overall_accuracy"`
			DecksInCollection int64   `json:"decks_in_collection"`
		}
		decode(t, w, &resp)
		assert.InDelta(t, 15.0, resp.CorrectAnswers, 0.001)
		assert.Equal(t, int64(20), resp.TotalQuestions)
		assert.InDelta(t, 75.0, resp.OverallAccuracy, 0.001)
		assert.Equal(t, int64(1), resp.DecksInCollection)
	})
}

func TestDeckDeleteCascades(t *testing.T) {
	r, db := newFlashcardsApp(t)

	alice := register(t, r, "alice@example.com", models.RoleUser)
	bob := register(t, r, "bob@example.com", models.RoleUser)

	cardID := createCard(t, r, alice.Token, "vier", nil)
	deckID := createDeck(t, r, alice.Token, "Doomed", []uint{cardID})
	addToCollection(t, r, alice.Token, deckID)
	addToCollection(t, r, bob.Token, deckID)

	w := doJSON(t, r, http.MethodPost, "/tests", alice.Token, gin.H{"deck_id": deckID, "score": 3, "total": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/reviews", alice.Token, gin.H{"deck_id": deckID, "rating": 3})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/decks/%d", deckID), alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, dependent := range []any{&models.DeckCard{}, &models.UserDeck{}, &models.Review{}, &models.TestResult{}} {
		var n int64
		require.NoError(t, db.Model(dependent).Where("deck_id = ?", deckID).Count(&n).Error)
		assert.Zero(t, n, "%T rows must be gone", dependent)
	}

	var cards int64
	require.NoError(t, db.Model(&models.Card{}).Count(&cards).Error)
	assert.Equal(t, int64(1), cards, "cards must survive deck deletion")
}

func TestCardListPagination(t *testing.T) {
	r, _ := newFlashcardsApp(t)

	alice := register(t, r, "alice@example.com", models.RoleUser)
	for i := 0; i < 3; i++ {
		createCard(t, r, alice.Token, fmt.Sprintf("card %d", i), nil)
	}

	count := func(path string) int {
		w := doJSON(t, r, http.MethodGet, path, alice.Token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp []struct{}
		decode(t, w, &resp)
		return len(resp)
	}

	assert.Equal(t, 2, count("/cards?limit=2"))
	assert.Equal(t, 1, count("/cards?limit=-5"), "limit below range clamps to 1")
	assert.Equal(t, 3, count("/cards?limit=500"), "limit above range clamps, not errors")
	assert.Equal(t, 3, count("/cards?offset=-3"), "negative offset clamps to 0")
	assert.Equal(t, 1, count("/cards?limit=2&offset=2"))
}
