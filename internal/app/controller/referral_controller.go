package controller

import (
	"errors"
	"net/http"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/service"
	apperrors "github.com/carejoa/carejoa-backend/internal/errors"
	"github.com/carejoa/carejoa-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ReferralController struct {
	referralService service.ReferralService
}

func NewReferralController(referralService service.ReferralService) *ReferralController {
	return &ReferralController{referralService: referralService}
}

// ReferralRequest 필드 검증은 서비스에서 한 번에 수행 (실패 필드 전체 반환)
type ReferralRequest struct {
	PatientName        string `json:"patient_name"`
	PatientAge         int    `json:"patient_age"`
	PatientCondition   string `json:"patient_condition"`
	ReferralType       string `json:"referral_type"`
	PreferredRegion    string `json:"preferred_region"`
	TargetFacilityType string `json:"target_facility_type"`
	UrgencyLevel       string `json:"urgency_level"`
	Notes              string `json:"notes"`
}

type ReferralStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending matched completed"`
}

// Submit POST /api/partner/referral
func (ctrl *ReferralController) Submit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req ReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	referral, err := ctrl.referralService.Submit(c.Request.Context(), user, service.ReferralInput{
		PatientName:        req.PatientName,
		PatientAge:         req.PatientAge,
		PatientCondition:   req.PatientCondition,
		ReferralType:       req.ReferralType,
		PreferredRegion:    req.PreferredRegion,
		TargetFacilityType: req.TargetFacilityType,
		UrgencyLevel:       req.UrgencyLevel,
		Notes:              req.Notes,
	})
	if err != nil {
		var fieldErrs service.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			apperrors.RespondWithValidationError(c, fieldErrs)
		case errors.Is(err, service.ErrReferralForbidden):
			apperrors.Forbidden(c, "병원 또는 복지기관 담당자만 의뢰할 수 있습니다")
		default:
			log.Error("Failed to submit referral", err, map[string]interface{}{
				"user_id": user.ID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "submit referral")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "의뢰가 접수되었습니다",
		"referralId": referral.ReferralID,
	})
}

// List GET /api/partner/referrals
func (ctrl *ReferralController) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	referrals, err := ctrl.referralService.List(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrReferralForbidden) {
			apperrors.Forbidden(c, "")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to list referrals", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "referral list")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"referrals": referrals},
	})
}

// AdminUpdateStatus PUT /api/admin/referrals/:referralId/status
func (ctrl *ReferralController) AdminUpdateStatus(c *gin.Context) {
	var req ReferralStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	referralID := c.Param("referralId")
	err := ctrl.referralService.UpdateStatus(c.Request.Context(), referralID, model.ReferralStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReferralNotFound):
			apperrors.NotFound(c, apperrors.ReferralNotFound, "의뢰를 찾을 수 없습니다")
		case errors.Is(err, service.ErrInvalidReferralStatus):
			apperrors.Conflict(c, apperrors.ReferralInvalidTransition, "변경할 수 없는 상태입니다")
		default:
			middleware.GetLoggerFromContext(c).Error("Failed to update referral status", err)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update referral")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"referralId": referralID,
		"status":     req.Status,
	})
}
