package controller

import (
	"lughati_backend/internal/repository"
	"lughati_backend/internal/service"
	"lughati_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnhancementController struct {
	EnhancementRepo *repository.EnhancementRepository
	ExportService   *service.ExportService
}

func NewEnhancementController(enhancementRepo *repository.EnhancementRepository, exportService *service.ExportService) *EnhancementController {
	return &EnhancementController{
		EnhancementRepo: enhancementRepo,
		ExportService:   exportService,
	}
}

// @Summary List pending enhancement triggers
// @Tags admin
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/enhancements [get]
func (c *EnhancementController) ListPending(ctx *gin.Context) {
	triggers, err := c.EnhancementRepo.ListPending(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"triggers": triggers})
}

// @Summary Export pending enhancement triggers
// @Description Bundles flagged lessons with their triggers and ships them to object storage for offline reprocessing
// @Tags admin
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/enhancements/export [post]
func (c *EnhancementController) Export(ctx *gin.Context) {
	result, err := c.ExportService.ExportPending(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
