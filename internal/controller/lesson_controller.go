package controller

import (
	"lughati_backend/internal/service"
	"lughati_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
	SearchService *service.SearchService
}

func NewLessonController(lessonService *service.LessonService, searchService *service.SearchService) *LessonController {
	return &LessonController{
		LessonService: lessonService,
		SearchService: searchService,
	}
}

// @Summary Generate or fetch a lesson
// @Description Returns the lesson for (topic, level, lesson number), generating and caching it on first request
// @Tags lessons
// @Accept json
// @Produce json
// @Param request body service.LessonRequest true "Lesson request"
// @Success 200 {object} util.Response
// @Router /api/lessons/generate [post]
func (c *LessonController) GenerateLesson(ctx *gin.Context) {
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.LessonService.GenerateLesson(ctx.Request.Context(), req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}

// @Summary Semantic lesson search
// @Description Ranks cached lessons against the query; degrades to a deterministic embedding when the embedding service is down
// @Tags lessons
// @Accept json
// @Produce json
// @Param request body service.SearchRequest true "Search request"
// @Success 200 {object} util.Response
// @Router /api/search/semantic [post]
func (c *LessonController) SemanticSearch(ctx *gin.Context) {
	var req service.SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	results, err := c.SearchService.Search(ctx.Request.Context(), req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"results": results})
}
