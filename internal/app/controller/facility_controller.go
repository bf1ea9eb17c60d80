package controller

import (
	"errors"
	"net/http"

	"github.com/carejoa/carejoa-backend/internal/app/service"
	apperrors "github.com/carejoa/carejoa-backend/internal/errors"
	"github.com/carejoa/carejoa-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type FacilityController struct {
	facilityService service.FacilityService
}

func NewFacilityController(facilityService service.FacilityService) *FacilityController {
	return &FacilityController{facilityService: facilityService}
}

type FacilityListQuery struct {
	Sido         string   `form:"sido" binding:"omitempty,sido"`
	Sigungu      string   `form:"sigungu"`
	FacilityType string   `form:"type" binding:"omitempty,facility_type"`
	Page         int      `form:"page" binding:"gte=0"`
	Limit        int      `form:"limit" binding:"gte=0,lte=100"`
	Lat          *float64 `form:"lat" binding:"omitempty,gte=-90,lte=90"`
	Lng          *float64 `form:"lng" binding:"omitempty,gte=-180,lte=180"`
}

type UpdateDetailsRequest struct {
	Specialties    []string `json:"specialties"`
	AdmissionTypes []string `json:"admission_types"`
	MonthlyCost    *int64   `json:"monthly_cost" binding:"omitempty,gte=0"`
	Deposit        *int64   `json:"deposit" binding:"omitempty,gte=0"`
	Notes          string   `json:"notes"`
}

type GenerateDetailsRequest struct {
	Overwrite bool `json:"overwrite"`
}

// List GET /api/facilities
func (ctrl *FacilityController) List(c *gin.Context) {
	var query FacilityListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := ctrl.facilityService.List(c.Request.Context(), service.FacilityQuery{
		Sido:         query.Sido,
		Sigungu:      query.Sigungu,
		FacilityType: query.FacilityType,
		Page:         query.Page,
		Limit:        query.Limit,
		Lat:          query.Lat,
		Lng:          query.Lng,
	})
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list facilities", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "facility list")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page,
	})
}

// Get GET /api/facilities/:id
func (ctrl *FacilityController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	facility, err := ctrl.facilityService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrFacilityNotFound) {
			apperrors.NotFound(c, apperrors.FacilityNotFound, "시설을 찾을 수 없습니다")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load facility", err, map[string]interface{}{
			"facility_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "facility")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    facility,
	})
}

// UpdateDetails PUT /api/admin/facilities/:id/details
func (ctrl *FacilityController) UpdateDetails(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	details, err := ctrl.facilityService.UpdateDetails(c.Request.Context(), id, service.DetailsInput{
		Specialties:    req.Specialties,
		AdmissionTypes: req.AdmissionTypes,
		MonthlyCost:    req.MonthlyCost,
		Deposit:        req.Deposit,
		Notes:          req.Notes,
	})
	if err != nil {
		if errors.Is(err, service.ErrFacilityNotFound) {
			apperrors.NotFound(c, apperrors.FacilityNotFound, "시설을 찾을 수 없습니다")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to update facility details", err, map[string]interface{}{
			"facility_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update facility details")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    details,
	})
}

// GenerateDetails POST /api/admin/facilities/generate-details
func (ctrl *FacilityController) GenerateDetails(c *gin.Context) {
	var req GenerateDetailsRequest
	// 본문 없이 호출하면 기존 상세정보는 건너뛴다
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	report, err := ctrl.facilityService.GenerateAllDetails(c.Request.Context(), req.Overwrite)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to generate facility details", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "generate facility details")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}
