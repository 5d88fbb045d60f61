package controller

import (
	"lughati_backend/internal/service"
	"lughati_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TutorController struct {
	TutorService *service.TutorService
}

func NewTutorController(tutorService *service.TutorService) *TutorController {
	return &TutorController{TutorService: tutorService}
}

// @Summary Ask the tutor a question
// @Description Answers against the cached lesson where available; every turn feeds the enhancement tracker
// @Tags tutor
// @Accept json
// @Produce json
// @Param request body service.TutorRequest true "Tutor question"
// @Success 200 {object} util.Response
// @Router /api/tutor/ask [post]
func (c *TutorController) Ask(ctx *gin.Context) {
	var req service.TutorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.TutorService.Ask(ctx.Request.Context(), req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}
