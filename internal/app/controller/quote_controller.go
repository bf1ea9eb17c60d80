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

type QuoteController struct {
	quoteService service.QuoteService
}

func NewQuoteController(quoteService service.QuoteService) *QuoteController {
	return &QuoteController{quoteService: quoteService}
}

type CreateQuoteRequestRequest struct {
	QuoteType       string `json:"quote_type" binding:"omitempty,oneof=simple detailed"`
	ApplicantName   string `json:"applicant_name" binding:"required"`
	ApplicantPhone  string `json:"applicant_phone" binding:"required"`
	ApplicantEmail  string `json:"applicant_email" binding:"omitempty,email"`
	PatientName     string `json:"patient_name"`
	PatientAge      int    `json:"patient_age" binding:"gte=0,lte=150"`
	PatientGender   string `json:"patient_gender"`
	Sido            string `json:"sido" binding:"required,sido"`
	Sigungu         string `json:"sigungu" binding:"required"`
	FacilityType    string `json:"facility_type" binding:"required,facility_type"`
	CareGrade       string `json:"care_grade"`
	AdditionalNotes string `json:"additional_notes"`
}

type SendQuoteRequest struct {
	QuoteID         string `json:"quoteId" binding:"required"`
	EstimatedPrice  int64  `json:"estimatedPrice" binding:"required,gt=0"`
	ServiceDetails  string `json:"serviceDetails"`
	AvailableRooms  string `json:"availableRooms"`
	SpecialServices string `json:"specialServices"`
	ResponseMessage string `json:"responseMessage"`
	ContactPerson   string `json:"contactPerson"`
	ContactPhone    string `json:"contactPhone"`
}

type QuoteStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending received completed cancelled"`
}

// respondQuoteError 견적 서비스 오류 → HTTP 응답
func respondQuoteError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		apperrors.NotFound(c, apperrors.QuoteNotFound, "견적 요청을 찾을 수 없습니다")
	case errors.Is(err, service.ErrResponseNotFound):
		apperrors.NotFound(c, apperrors.QuoteResponseNotFound, "견적서를 찾을 수 없습니다")
	case errors.Is(err, service.ErrQuoteForbidden):
		apperrors.Forbidden(c, "본인의 견적 요청만 확인할 수 있습니다")
	case errors.Is(err, service.ErrQuoteRegionMismatch):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.QuoteRegionMismatch, "담당 지역/시설 유형의 견적 요청이 아닙니다")
	case errors.Is(err, service.ErrFacilityProfileMissing):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.FacilityProfileMissing, "시설 지역과 유형을 먼저 등록해주세요")
	case errors.Is(err, service.ErrQuoteClosed):
		apperrors.Conflict(c, apperrors.QuoteClosed, "이미 마감된 견적 요청입니다")
	case errors.Is(err, service.ErrAlreadyResponded):
		apperrors.Conflict(c, apperrors.QuoteAlreadyResponded, "이미 견적서를 발송한 요청입니다")
	case errors.Is(err, service.ErrInvalidQuoteStatus):
		apperrors.Conflict(c, apperrors.QuoteInvalidTransition, "변경할 수 없는 상태입니다")
	case errors.Is(err, service.ErrInvalidPrice):
		apperrors.RespondWithValidationError(c, map[string]string{"estimated_price": "예상 비용은 0보다 커야 합니다"})
	case errors.Is(err, service.ErrInvalidRegion):
		apperrors.RespondWithValidationError(c, map[string]string{"sigungu": "시/도와 시/군/구를 올바르게 선택해주세요"})
	case errors.Is(err, service.ErrInvalidFacilityType):
		apperrors.RespondWithValidationError(c, map[string]string{"facility_type": "시설 유형을 선택해주세요"})
	case errors.Is(err, service.ErrInvalidQuoteInput):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
	default:
		middleware.GetLoggerFromContext(c).Error("Quote operation failed", err, map[string]interface{}{
			"operation": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

// CreateQuoteRequest POST /api/quote-request
func (ctrl *QuoteController) CreateQuoteRequest(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateQuoteRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid quote request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	quote, err := ctrl.quoteService.CreateQuoteRequest(c.Request.Context(), service.QuoteRequestInput{
		QuoteType:       model.QuoteType(req.QuoteType),
		ApplicantName:   req.ApplicantName,
		ApplicantPhone:  req.ApplicantPhone,
		ApplicantEmail:  req.ApplicantEmail,
		PatientName:     req.PatientName,
		PatientAge:      req.PatientAge,
		PatientGender:   req.PatientGender,
		Sido:            req.Sido,
		Sigungu:         req.Sigungu,
		FacilityType:    req.FacilityType,
		CareGrade:       req.CareGrade,
		AdditionalNotes: req.AdditionalNotes,
	})
	if err != nil {
		respondQuoteError(c, err, "create quote request")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "견적 요청이 접수되었습니다",
		"quoteId": quote.QuoteID,
	})
}

// CustomerDashboard GET /api/customer/dashboard
func (ctrl *QuoteController) CustomerDashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	dashboard, err := ctrl.quoteService.GetCustomerDashboard(c.Request.Context(), user)
	if err != nil {
		respondQuoteError(c, err, "customer dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dashboard,
	})
}

// QuoteDetail GET /api/customer/quote-responses/:quoteId
func (ctrl *QuoteController) QuoteDetail(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	detail, err := ctrl.quoteService.GetQuoteDetail(c.Request.Context(), user, c.Param("quoteId"))
	if err != nil {
		respondQuoteError(c, err, "quote detail")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    detail,
	})
}

// CustomerUpdateStatus PUT /api/customer/quote-requests/:quoteId/status
func (ctrl *QuoteController) CustomerUpdateStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req QuoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	quoteID := c.Param("quoteId")
	if err := ctrl.quoteService.UpdateStatusByCustomer(c.Request.Context(), user, quoteID, model.QuoteStatus(req.Status)); err != nil {
		respondQuoteError(c, err, "update quote status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"quoteId": quoteID,
		"status":  req.Status,
	})
}

// AcceptResponse POST /api/customer/responses/:responseId/accept
func (ctrl *QuoteController) AcceptResponse(c *gin.Context) {
	ctrl.decide(c, true)
}

// RejectResponse POST /api/customer/responses/:responseId/reject
func (ctrl *QuoteController) RejectResponse(c *gin.Context) {
	ctrl.decide(c, false)
}

func (ctrl *QuoteController) decide(c *gin.Context, accept bool) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	response, err := ctrl.quoteService.DecideResponse(c.Request.Context(), user, c.Param("responseId"), accept)
	if err != nil {
		respondQuoteError(c, err, "decide quote response")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

// FacilityDashboard GET /api/facility/dashboard
func (ctrl *QuoteController) FacilityDashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	dashboard, err := ctrl.quoteService.GetFacilityDashboard(c.Request.Context(), user)
	if err != nil {
		respondQuoteError(c, err, "facility dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dashboard,
	})
}

// SendQuote POST /api/facility/send-quote
func (ctrl *QuoteController) SendQuote(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req SendQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid send-quote request", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.ID,
		})
		respondBindError(c, err)
		return
	}

	response, err := ctrl.quoteService.SubmitQuoteResponse(c.Request.Context(), user, service.QuoteResponseInput{
		QuoteID:         req.QuoteID,
		EstimatedPrice:  req.EstimatedPrice,
		ServiceDetails:  req.ServiceDetails,
		AvailableRooms:  req.AvailableRooms,
		SpecialServices: req.SpecialServices,
		ResponseMessage: req.ResponseMessage,
		ContactPerson:   req.ContactPerson,
		ContactPhone:    req.ContactPhone,
	})
	if err != nil {
		respondQuoteError(c, err, "submit quote response")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "견적서가 발송되었습니다",
		"responseId": response.ResponseID,
	})
}

// AdminUpdateStatus PUT /api/admin/quote-requests/:quoteId/status
func (ctrl *QuoteController) AdminUpdateStatus(c *gin.Context) {
	var req QuoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	quoteID := c.Param("quoteId")
	if err := ctrl.quoteService.UpdateStatusByAdmin(c.Request.Context(), quoteID, model.QuoteStatus(req.Status)); err != nil {
		respondQuoteError(c, err, "admin update quote status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"quoteId": quoteID,
		"status":  req.Status,
	})
}
