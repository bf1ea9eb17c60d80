package controller

import (
	"errors"
	"net/http"

	"github.com/carejoa/carejoa-backend/internal/app/service"
	apperrors "github.com/carejoa/carejoa-backend/internal/errors"
	"github.com/carejoa/carejoa-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type RegionalController struct {
	regionalService service.RegionalService
}

func NewRegionalController(regionalService service.RegionalService) *RegionalController {
	return &RegionalController{regionalService: regionalService}
}

type SetRegionRequest struct {
	PartnerID uint   `json:"partnerId" binding:"required"`
	RegionKey string `json:"regionKey" binding:"required,region_key"`
}

type ToggleRegionalCenterRequest struct {
	PartnerID uint  `json:"partnerId" binding:"required"`
	Enable    *bool `json:"enable" binding:"required"`
}

func respondRegionalError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrInvalidRegion):
		apperrors.BadRequest(c, apperrors.ValidationInvalidRegion, "지원하지 않는 지역입니다")
	case errors.Is(err, service.ErrPartnerNotFound):
		apperrors.NotFound(c, apperrors.PartnerNotFound, "파트너를 찾을 수 없습니다")
	case errors.Is(err, service.ErrRegionNotAssigned):
		apperrors.RespondWithGuidance(c, apperrors.RegionNotAssigned, "먼저 파트너의 지역을 지정해주세요")
	case errors.Is(err, service.ErrRegionCenterLimit):
		apperrors.RespondWithGuidance(c, apperrors.RegionCenterLimit, "지역별 대표 센터는 최대 4개까지 지정할 수 있습니다")
	case errors.Is(err, service.ErrRegionCenterConflict):
		apperrors.Conflict(c, apperrors.RegionCenterConflict, "다른 요청과 충돌했습니다. 다시 시도해주세요")
	default:
		middleware.GetLoggerFromContext(c).Error("Regional operation failed", err, map[string]interface{}{
			"operation": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

// Regions GET /api/regions
func (ctrl *RegionalController) Regions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"regions": ctrl.regionalService.ListRegions(),
	})
}

// Centers GET /api/regional-centers?region={sido}_{sigungu}
func (ctrl *RegionalController) Centers(c *gin.Context) {
	centers, err := ctrl.regionalService.GetCentersForRegion(c.Request.Context(), c.Query("region"))
	if err != nil {
		respondRegionalError(c, err, "regional centers")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"centers": centers,
	})
}

// SetRegion POST /api/admin/set-region
func (ctrl *RegionalController) SetRegion(c *gin.Context) {
	var req SetRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	partner, err := ctrl.regionalService.SetPartnerRegion(c.Request.Context(), req.PartnerID, req.RegionKey)
	if err != nil {
		respondRegionalError(c, err, "set partner region")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    partner,
	})
}

// ToggleRegionalCenter POST /api/admin/toggle-regional-center
func (ctrl *RegionalController) ToggleRegionalCenter(c *gin.Context) {
	var req ToggleRegionalCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := ctrl.regionalService.ToggleRegionalCenter(c.Request.Context(), req.PartnerID, *req.Enable)
	if err != nil {
		respondRegionalError(c, err, "toggle regional center")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
