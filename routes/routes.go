package routes

import (
	"context"
	"net/http"
	"time"

	"quizpanel/handlers"
	"quizpanel/middleware"
	"quizpanel/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Content  *handlers.ContentHandler
	Quiz     *handlers.QuizHandler
	QuizGame *handlers.QuizGameHandler
}

func SetupRoutes(router *gin.Engine, h Handlers, tokens middleware.TokenValidator, db *gorm.DB) {
	api := router.Group("/api")

	api.GET("/health", healthCheck(db))

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)

		authed := auth.Group("")
		authed.Use(middleware.AuthMiddleware(tokens))
		authed.POST("/logout", h.Auth.Logout)
		authed.POST("/refresh", h.Auth.Refresh)
		authed.GET("/me", h.Auth.Me)
	}

	// Public read routes
	api.GET("/languages", h.Content.ListLanguages)
	api.GET("/languages/active", h.Content.ListActiveLanguages)

	content := api.Group("/content")
	{
		content.GET("/pages", h.Content.ListPages)
		content.GET("/all", h.Content.GetAll)
		content.GET("/simple", h.Content.GetSimple)
		content.GET("/simple/:code", h.Content.GetSimple)
		content.GET("/language-code/:code", h.Content.GetByLanguageCode)
		content.GET("/language/:name", h.Content.GetByLanguageName)
		content.GET("/structure/:page", h.Content.GetStructure)
		content.GET("/:page", h.Content.GetPage)
		content.GET("/:page/:language", h.Content.GetPage)
	}

	// Public quiz game routes
	game := api.Group("/quiz-game")
	{
		game.POST("/create-session", h.QuizGame.CreateSession)
		game.POST("/add-friend", h.QuizGame.AddFriend)
		game.POST("/save-answer", h.QuizGame.SaveAnswer)
		game.GET("/session/:unique_id", h.QuizGame.GetSession)
		game.GET("/friends-scores/:unique_id", h.QuizGame.GetFriendsScores)
		game.GET("/friends-scores/:unique_id/export", h.QuizGame.ExportScores)
		game.GET("/view-answers/:unique_id/:friend_name", h.QuizGame.ViewAnswers)
		game.GET("/friends/:unique_id", h.QuizGame.ListFriends)
	}

	api.GET("/ws/quiz-game/:unique_id", h.QuizGame.ServeWS)

	// Panel routes, open to admins and editors
	panel := api.Group("")
	panel.Use(middleware.AuthMiddleware(tokens), middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
	{
		panel.POST("/content", h.Content.UpsertContent)
		panel.POST("/content/bulk", h.Content.BulkUpsertContent)
		panel.PUT("/content/:id", h.Content.UpdateContent)
		panel.DELETE("/content/:id", h.Content.DeleteContent)

		panel.GET("/quizzes", h.Quiz.ListQuizzes)
		panel.POST("/quizzes", h.Quiz.CreateQuiz)
		panel.GET("/quizzes/:id", h.Quiz.GetQuizByID)
		panel.PUT("/quizzes/:id", h.Quiz.UpdateQuiz)
		panel.DELETE("/quizzes/:id", h.Quiz.DeleteQuiz)

		panel.POST("/questions", h.Quiz.CreateQuestion)
		panel.GET("/questions/:id", h.Quiz.GetQuestion)
		panel.PUT("/questions/:id", h.Quiz.UpdateQuestion)
		panel.DELETE("/questions/:id", h.Quiz.DeleteQuestion)
		panel.DELETE("/options/:id", h.Quiz.DeleteOption)

		panel.GET("/quiz-game/sessions", h.QuizGame.ListSessions)
		panel.DELETE("/quiz-game/sessions/:unique_id", h.QuizGame.DeactivateSession)
		panel.DELETE("/quiz-game/friends/:unique_id/:friend_name", h.QuizGame.RemoveFriend)

		panel.GET("/dashboard/stats", h.Auth.Stats)
	}

	// Admin-only routes
	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware(tokens), middleware.RequireAdmin())
	{
		admin.POST("/languages", h.Content.CreateLanguage)
		admin.PUT("/languages/:id", h.Content.UpdateLanguage)
		admin.DELETE("/languages/:id", h.Content.DeleteLanguage)

		admin.GET("/dashboard/users", h.Auth.ListUsers)
		admin.POST("/dashboard/users", h.Auth.CreateUser)
		admin.DELETE("/dashboard/users/:id", h.Auth.DeleteUser)
	}
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, dbStatus := http.StatusOK, "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status, dbStatus = http.StatusServiceUnavailable, "unavailable"
		}
		c.JSON(status, gin.H{
			"success":  status == http.StatusOK,
			"status":   dbStatus,
			"database": dbStatus,
			"time":     time.Now().UTC(),
		})
	}
}
