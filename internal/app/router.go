package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"lughati_backend/docs"
	"lughati_backend/pkg/monitoring"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		api.POST("/lessons/generate", c.lesson.GenerateLesson)
		api.POST("/search/semantic", c.lesson.SemanticSearch)

		api.POST("/quizzes/generate", c.quiz.GenerateQuiz)
		api.POST("/quizzes/submit", c.quiz.SubmitQuiz)

		api.POST("/journey/navigate", c.journey.Navigate)
		api.POST("/journey/progress", c.journey.Progress)

		api.POST("/tutor/ask", c.tutor.Ask)

		admin := api.Group("/admin")
		{
			admin.GET("/enhancements", c.enhancement.ListPending)
			admin.POST("/enhancements/export", c.enhancement.Export)
		}
	}
}
