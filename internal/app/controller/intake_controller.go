package controller

import (
	"errors"
	"net/http"

	"github.com/carejoa/carejoa-backend/internal/app/service"
	apperrors "github.com/carejoa/carejoa-backend/internal/errors"
	"github.com/carejoa/carejoa-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// IntakeController 공개 접수 (파트너 신청, 가족 돌봄 신청, 비용 계산기)
type IntakeController struct {
	intakeService service.IntakeService
}

func NewIntakeController(intakeService service.IntakeService) *IntakeController {
	return &IntakeController{intakeService: intakeService}
}

type PartnerRequest struct {
	FacilityName    string `json:"facility_name" binding:"required"`
	FacilityType    string `json:"facility_type" binding:"required,facility_type"`
	FacilitySido    string `json:"facility_sido" binding:"omitempty,sido"`
	FacilitySigungu string `json:"facility_sigungu"`
	FacilityAddress string `json:"facility_address"`
	ManagerName     string `json:"manager_name" binding:"required"`
	ManagerPhone    string `json:"manager_phone" binding:"required"`
}

type FamilyCareRequest struct {
	GuardianName  string `json:"guardian_name" binding:"required"`
	GuardianPhone string `json:"guardian_phone" binding:"required"`
	PatientName   string `json:"patient_name"`
	PatientAge    int    `json:"patient_age" binding:"gte=0,lte=150"`
	Region        string `json:"region"`
	Requirements  string `json:"requirements"`
}

type CalculateCostRequest struct {
	CareLevel    int    `json:"care_level"`
	FacilityType string `json:"facility_type"`
	RoomType     string `json:"room_type"`
	Region       string `json:"region"`
}

// CreatePartner POST /api/partner
func (ctrl *IntakeController) CreatePartner(c *gin.Context) {
	var req PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	partner, err := ctrl.intakeService.CreatePartner(c.Request.Context(), service.PartnerInput{
		FacilityName:    req.FacilityName,
		FacilityType:    req.FacilityType,
		FacilitySido:    req.FacilitySido,
		FacilitySigungu: req.FacilitySigungu,
		FacilityAddress: req.FacilityAddress,
		ManagerName:     req.ManagerName,
		ManagerPhone:    req.ManagerPhone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegion):
			apperrors.RespondWithValidationError(c, map[string]string{"facility_sigungu": "시/도와 시/군/구를 올바르게 선택해주세요"})
		case errors.Is(err, service.ErrInvalidPartnerInput), errors.Is(err, service.ErrInvalidFacilityType):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		default:
			middleware.GetLoggerFromContext(c).Error("Failed to create partner", err)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create partner")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "파트너 신청이 접수되었습니다",
		"partnerId": partner.ID,
	})
}

// CreateFamilyCare POST /api/family-care
func (ctrl *IntakeController) CreateFamilyCare(c *gin.Context) {
	var req FamilyCareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := ctrl.intakeService.CreateFamilyCare(c.Request.Context(), service.FamilyCareInput{
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		PatientName:   req.PatientName,
		PatientAge:    req.PatientAge,
		Region:        req.Region,
		Requirements:  req.Requirements,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidFamilyCareInput) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to create family care record", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create family care")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "신청이 접수되었습니다",
		"id":      record.ID,
	})
}

// CalculateCost POST /api/calculate-cost
func (ctrl *IntakeController) CalculateCost(c *gin.Context) {
	var req CalculateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	estimate := ctrl.intakeService.CalculateCost(service.CostInput{
		CareLevel:    req.CareLevel,
		FacilityType: req.FacilityType,
		RoomType:     req.RoomType,
		Region:       req.Region,
	})
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    estimate,
	})
}
