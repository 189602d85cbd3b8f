package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/config"
	"github.com/learntrack/learntrack-backend/controllers"
	"github.com/learntrack/learntrack-backend/middleware"
)

// SetupFlashcardsRouter wires the flashcard service: decks, cards, the
// user-deck collection, tests, reviews and stats.
func SetupFlashcardsRouter(r *gin.Engine, db *gorm.DB, cfg config.Config) *gin.Engine {
	auth := controllers.NewAuthController(db, cfg)
	cards := controllers.NewCardController(db)
	decks := controllers.NewDeckController(db)
	userDecks := controllers.NewUserDeckController(db)
	tests := controllers.NewTestController(db)
	reviews := controllers.NewReviewController(db)
	stats := controllers.NewStatsController(db)

	r.GET("/health", controllers.HealthCheck)
	r.POST("/register", auth.Register)
	r.POST("/login", auth.Login)

	authed := r.Group("", middleware.Authenticate(db, cfg.JWTSecret))
	{
		authed.GET("/profile", auth.Profile)

		authed.POST("/cards", cards.Create)
		authed.GET("/cards", cards.List)
		authed.GET("/cards/:id", cards.Get)
		authed.PUT("/cards/:id", cards.Update)
		authed.DELETE("/cards/:id", cards.Delete)

		authed.POST("/decks", decks.Create)
		authed.GET("/decks", decks.List)
		authed.GET("/decks/:id", decks.Get)
		authed.PUT("/decks/:id", decks.Update)
		authed.DELETE("/decks/:id", decks.Delete)
		authed.POST("/decks/:id/cards", decks.AttachCards)
		authed.DELETE("/decks/:id/cards/:cardID", decks.DetachCard)

		authed.POST("/user-decks", userDecks.Add)
		authed.GET("/user-decks", userDecks.List)
		authed.DELETE("/user-decks/:id", userDecks.Remove)

		authed.POST("/tests", tests.Create)
		authed.GET("/tests/history", tests.History)

		authed.POST("/reviews", reviews.Create)
		authed.GET("/reviews/deck/:id", reviews.DeckSummary)

		authed.GET("/stats", stats.Overall)
	}

	return r
}
