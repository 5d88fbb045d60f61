package controller

import (
	"errors"
	"net/http"

	"lughati_backend/internal/service"
	"lughati_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// @Summary Generate or fetch a quiz
// @Description Returns the quiz for the request; a quiz the user failed is regenerated fresh, a passed quiz is refused
// @Tags quizzes
// @Accept json
// @Produce json
// @Param request body service.QuizRequest true "Quiz request"
// @Success 200 {object} util.Response
// @Router /api/quizzes/generate [post]
func (c *QuizController) GenerateQuiz(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.QuizService.GenerateQuiz(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, util.ErrQuizAlreadyPassed) {
			quizAlreadyPassed(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}

// @Summary Submit a quiz attempt
// @Description Grades the answers, persists the attempt and returns the tiered assessment result
// @Tags quizzes
// @Accept json
// @Produce json
// @Param request body service.SubmitQuizRequest true "Quiz submission"
// @Success 200 {object} util.Response
// @Router /api/quizzes/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	var req service.SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitQuiz(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// quizAlreadyPassed answers an attempt to regenerate or retake a
// locked quiz with a bilingual rejection.
func quizAlreadyPassed(ctx *gin.Context) {
	ctx.JSON(http.StatusConflict, util.Response{
		Code:    http.StatusConflict,
		Message: "Quiz already passed",
		Data: gin.H{
			"message":       "You already passed this quiz; it is locked and cannot be retaken.",
			"messageArabic": "لقد اجتزت هذا الاختبار بالفعل؛ إنه مقفل ولا يمكن إعادته.",
		},
	})
}
