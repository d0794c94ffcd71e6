package routes

import (
	"quizpanel/config"
	"quizpanel/handlers"
	"quizpanel/middleware"
	"quizpanel/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewRouter wires services, the websocket hub and handlers into a gin engine.
// The caller starts the hub.
func NewRouter(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*gin.Engine, *services.Hub) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var sessionOpts []services.SessionServiceOption
	if redisClient != nil {
		sessionOpts = append(sessionOpts, services.WithSessionCache(
			services.NewRedisSessionCache(redisClient, cfg.SessionCacheTTL()),
		))
	}

	authService := services.NewAuthService(db, cfg.Auth.JWTSecret, cfg.TokenTTL())
	userService := services.NewUserService(db)
	languageService := services.NewLanguageService(db)
	contentService := services.NewContentService(db)
	quizService := services.NewQuizService(db)
	questionService := services.NewQuestionService(db)
	sessionService := services.NewSessionService(db, sessionOpts...)
	participationService := services.NewParticipationService(db, sessionService)

	hub := services.NewHub(participationService)

	router := gin.New()
	router.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.CORS(cfg.Server.CORSOrigins))

	SetupRoutes(router, Handlers{
		Auth:     handlers.NewAuthHandler(authService, userService),
		Content:  handlers.NewContentHandler(contentService, languageService),
		Quiz:     handlers.NewQuizHandler(quizService, questionService),
		QuizGame: handlers.NewQuizGameHandler(sessionService, participationService, hub, cfg.Server.CORSOrigins),
	}, authService, db)

	return router, hub
}
