package controller

import (
	"errors"
	"net/http"

	"lughati_backend/internal/service"
	"lughati_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type JourneyController struct {
	JourneyService *service.JourneyService
}

func NewJourneyController(journeyService *service.JourneyService) *JourneyController {
	return &JourneyController{JourneyService: journeyService}
}

type NavigateRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	Direction    string `json:"direction" binding:"required"`
	CurrentIndex int    `json:"current_index"`
}

type ProgressRequest struct {
	UserID string        `json:"user_id" binding:"required"`
	Action string        `json:"action" binding:"required"`
	Data   *ProgressData `json:"data"`
}

type ProgressData struct {
	ItemNumber int `json:"item_number"`
	Score      int `json:"score"`
}

// @Summary Step through the journey
// @Description Moves one item forward or back; inaccessible targets return a structured blocked result
// @Tags journey
// @Accept json
// @Produce json
// @Param request body NavigateRequest true "Navigation request"
// @Success 200 {object} util.Response
// @Router /api/journey/navigate [post]
func (c *JourneyController) Navigate(ctx *gin.Context) {
	var req NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.JourneyService.Navigate(ctx.Request.Context(), req.UserID, req.Direction, req.CurrentIndex)
	if err != nil {
		if errors.Is(err, util.ErrInvalidDirection) {
			util.BadRequest(ctx, "direction must be next or previous")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Read or mutate journey progress
// @Description Dispatches on action: get_journey, get_progress, complete, pass_quiz, fail_quiz
// @Tags journey
// @Accept json
// @Produce json
// @Param request body ProgressRequest true "Progress request"
// @Success 200 {object} util.Response
// @Router /api/journey/progress [post]
func (c *JourneyController) Progress(ctx *gin.Context) {
	var req ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reqCtx := ctx.Request.Context()

	switch req.Action {
	case "get_journey":
		items, err := c.JourneyService.GetJourney(reqCtx, req.UserID)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Success(ctx, gin.H{"items": items})

	case "get_progress":
		progress, err := c.JourneyService.GetProgress(reqCtx, req.UserID)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Success(ctx, progress)

	case "complete", "pass_quiz", "fail_quiz":
		if req.Data == nil {
			util.BadRequest(ctx, "data with item_number is required for "+req.Action)
			return
		}
		progress, err := c.mutate(ctx, &req)
		if err != nil {
			return // response already written
		}
		util.Success(ctx, progress)

	default:
		util.BadRequest(ctx, "unknown action "+req.Action)
	}
}

func (c *JourneyController) mutate(ctx *gin.Context, req *ProgressRequest) (interface{}, error) {
	reqCtx := ctx.Request.Context()

	var (
		progress interface{}
		err      error
	)
	switch req.Action {
	case "complete":
		progress, err = c.JourneyService.CompleteItem(reqCtx, req.UserID, req.Data.ItemNumber, req.Data.Score)
	case "pass_quiz":
		progress, err = c.JourneyService.PassQuiz(reqCtx, req.UserID, req.Data.ItemNumber, req.Data.Score)
	case "fail_quiz":
		progress, err = c.JourneyService.FailQuiz(reqCtx, req.UserID, req.Data.ItemNumber, req.Data.Score)
	}
	if err == nil {
		return progress, nil
	}

	switch {
	case errors.Is(err, util.ErrQuizAlreadyPassed):
		ctx.JSON(http.StatusConflict, util.Response{
			Code:    http.StatusConflict,
			Message: "Quiz already passed",
			Data: gin.H{
				"message":       "This quiz was already passed and is locked.",
				"messageArabic": "هذا الاختبار تم اجتيازه بالفعل وهو مقفل.",
			},
		})
	case errors.Is(err, util.ErrItemNotAccessible):
		util.Success(ctx, gin.H{
			"blocked":       true,
			"message":       "Complete the previous items to unlock this one.",
			"messageArabic": "أكمل العناصر السابقة لفتح هذا العنصر.",
		})
	case errors.Is(err, util.ErrUnknownAction):
		util.BadRequest(ctx, "item type does not support "+req.Action)
	default:
		util.LogInternalError(ctx, err)
	}
	return nil, err
}
