package routes

import (
	"github.com/nicolasvargaszz/learn-chinese-game/controllers"
	"github.com/nicolasvargaszz/learn-chinese-game/middleware"
	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	"github.com/nicolasvargaszz/learn-chinese-game/services/vocabulary"
	"github.com/nicolasvargaszz/learn-chinese-game/utils"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, store *vocabulary.Store, battles *controllers.BattleController,
	tokens battle.TokenIssuer, limiter *middleware.RateLimiter) {
	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/ping", controllers.Ping)

	api := router.Group("/api/v1")
	api.Use(limiter.Middleware())
	{
		api.GET("/words", controllers.GetWords(store))
		api.GET("/words/lesson/:lesson_id", controllers.GetWordsByLesson(store))
		api.GET("/words/category/:category", controllers.GetWordsByCategory(store))
		api.GET("/lessons", controllers.GetLessons(store))
		api.GET("/categories", controllers.GetCategories(store))

		api.GET("/battles", battles.GetBattleStats)
		api.GET("/battles/:code", battles.GetBattleInfo)
		api.GET("/battles/:code/qr", battles.GetBattleQR)
		api.GET("/battles/:code/results", battles.GetBattleResults)
		api.GET("/highscores", battles.GetHighScores)

		session := api.Group("/battle/session")
		{
			session.POST("", controllers.SaveBattleSession(tokens))
			session.GET("", controllers.GetBattleSession)
			session.DELETE("", controllers.ClearBattleSession)
		}
	}
}
