package service

import (
	"context"
	"errors"
	"strings"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/carejoa/carejoa-backend/pkg/util"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrQuoteNotFound          = errors.New("quote request not found")
	ErrQuoteForbidden         = errors.New("quote request belongs to another customer")
	ErrQuoteClosed            = errors.New("quote request no longer accepts responses")
	ErrQuoteRegionMismatch    = errors.New("quote request is outside the facility's region or type")
	ErrAlreadyResponded       = errors.New("facility already responded to this quote request")
	ErrFacilityProfileMissing = errors.New("facility region or type is not registered")
	ErrInvalidQuoteStatus     = errors.New("invalid quote status transition")
	ErrResponseNotFound       = errors.New("quote response not found")
	ErrInvalidQuoteInput      = errors.New("invalid quote request input")
	ErrInvalidPrice           = errors.New("estimated price must be positive")
)

// 대시보드 목록 상한
const dashboardListLimit = 50

// QuoteRequestInput 공개 견적 요청 입력
type QuoteRequestInput struct {
	QuoteType       model.QuoteType
	ApplicantName   string
	ApplicantPhone  string
	ApplicantEmail  string
	PatientName     string
	PatientAge      int
	PatientGender   string
	Sido            string
	Sigungu         string
	FacilityType    string
	CareGrade       string
	AdditionalNotes string
}

// QuoteResponseInput 시설 견적 발송 입력
type QuoteResponseInput struct {
	QuoteID         string
	EstimatedPrice  int64
	ServiceDetails  string
	AvailableRooms  string
	SpecialServices string
	ResponseMessage string
	ContactPerson   string
	ContactPhone    string
}

type CustomerQuoteRequest struct {
	model.QuoteRequest
	ResponseCount int64 `json:"responseCount"`
}

type CustomerStats struct {
	TotalRequests       int64 `json:"totalRequests"`
	TotalResponses      int64 `json:"totalResponses"`
	SavedFacilities     int64 `json:"savedFacilities"`
	ActiveConsultations int64 `json:"activeConsultations"`
}

type CustomerDashboard struct {
	QuoteRequests []CustomerQuoteRequest `json:"quoteRequests"`
	Stats         CustomerStats          `json:"stats"`
}

type FacilityStats struct {
	NewRequests         int64 `json:"newRequests"`
	SentQuotes          int64 `json:"sentQuotes"`
	ViewedQuotes        int64 `json:"viewedQuotes"`
	ActiveConsultations int64 `json:"activeConsultations"`
}

type FacilityDashboard struct {
	NewRequests []model.QuoteRequest         `json:"newRequests"`
	MyResponses []repository.SentResponseRow `json:"myResponses"`
	Stats       FacilityStats                `json:"stats"`
}

type QuoteDetail struct {
	QuoteRequest *model.QuoteRequest  `json:"quoteRequest"`
	Responses    []model.QuoteResponse `json:"responses"`
}

type QuoteService interface {
	CreateQuoteRequest(ctx context.Context, input QuoteRequestInput) (*model.QuoteRequest, error)
	GetCustomerDashboard(ctx context.Context, customer *model.User) (*CustomerDashboard, error)
	GetFacilityDashboard(ctx context.Context, facility *model.User) (*FacilityDashboard, error)
	SubmitQuoteResponse(ctx context.Context, facility *model.User, input QuoteResponseInput) (*model.QuoteResponse, error)
	GetQuoteDetail(ctx context.Context, customer *model.User, quoteID string) (*QuoteDetail, error)
	UpdateStatusByCustomer(ctx context.Context, customer *model.User, quoteID string, status model.QuoteStatus) error
	UpdateStatusByAdmin(ctx context.Context, quoteID string, status model.QuoteStatus) error
	DecideResponse(ctx context.Context, customer *model.User, responseID string, accept bool) (*model.QuoteResponse, error)
}

type quoteService struct {
	db        *gorm.DB
	quoteRepo repository.QuoteRepository
}

func NewQuoteService(db *gorm.DB, quoteRepo repository.QuoteRepository) QuoteService {
	return &quoteService{
		db:        db,
		quoteRepo: quoteRepo,
	}
}

func (s *quoteService) CreateQuoteRequest(ctx context.Context, input QuoteRequestInput) (*model.QuoteRequest, error) {
	if input.QuoteType == "" {
		input.QuoteType = model.QuoteTypeSimple
	}
	if input.QuoteType != model.QuoteTypeSimple && input.QuoteType != model.QuoteTypeDetailed {
		return nil, ErrInvalidQuoteInput
	}
	if strings.TrimSpace(input.ApplicantName) == "" || strings.TrimSpace(input.ApplicantPhone) == "" {
		return nil, ErrInvalidQuoteInput
	}
	if input.PatientAge < 0 || input.PatientAge > 150 {
		return nil, ErrInvalidQuoteInput
	}
	if !model.IsValidRegion(input.Sido, input.Sigungu) {
		return nil, ErrInvalidRegion
	}
	if !model.IsValidFacilityType(input.FacilityType) {
		return nil, ErrInvalidFacilityType
	}

	req := &model.QuoteRequest{
		QuoteID:         util.GeneratePublicID(util.QuoteIDPrefix),
		QuoteType:       input.QuoteType,
		ApplicantName:   strings.TrimSpace(input.ApplicantName),
		ApplicantPhone:  strings.TrimSpace(input.ApplicantPhone),
		ApplicantEmail:  strings.ToLower(strings.TrimSpace(input.ApplicantEmail)),
		PatientName:     strings.TrimSpace(input.PatientName),
		PatientAge:      input.PatientAge,
		PatientGender:   input.PatientGender,
		Sido:            input.Sido,
		Sigungu:         input.Sigungu,
		FacilityType:    input.FacilityType,
		CareGrade:       input.CareGrade,
		AdditionalNotes: input.AdditionalNotes,
		Status:          model.QuoteStatusPending,
	}
	if err := s.quoteRepo.CreateRequest(req); err != nil {
		return nil, err
	}

	logger.Info("Quote request created", map[string]interface{}{
		"quote_id":      req.QuoteID,
		"sido":          req.Sido,
		"sigungu":       req.Sigungu,
		"facility_type": req.FacilityType,
	})
	return req, nil
}

func (s *quoteService) GetCustomerDashboard(ctx context.Context, customer *model.User) (*CustomerDashboard, error) {
	requests, err := s.quoteRepo.ListRequestsByApplicant(customer.Phone, customer.Email)
	if err != nil {
		return nil, err
	}

	quoteIDs := make([]string, len(requests))
	for i, r := range requests {
		quoteIDs[i] = r.QuoteID
	}

	var counts map[string]int64
	var accepted int64
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.quoteRepo.CountResponsesByQuoteIDs(quoteIDs)
		return err
	})
	g.Go(func() error {
		var err error
		accepted, err = s.quoteRepo.CountResponsesForQuotesByStatus(quoteIDs, model.ResponseStatusAccepted)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to load customer dashboard counts", err, map[string]interface{}{
			"user_id": customer.ID,
		})
		return nil, err
	}

	dashboard := &CustomerDashboard{
		QuoteRequests: make([]CustomerQuoteRequest, len(requests)),
	}
	var total int64
	for i, r := range requests {
		dashboard.QuoteRequests[i] = CustomerQuoteRequest{QuoteRequest: r, ResponseCount: counts[r.QuoteID]}
		total += counts[r.QuoteID]
	}
	dashboard.Stats = CustomerStats{
		TotalRequests:       int64(len(requests)),
		TotalResponses:      total,
		SavedFacilities:     0,
		ActiveConsultations: accepted,
	}
	return dashboard, nil
}

func hasFacilityProfile(u *model.User) bool {
	return u.Sido != "" && u.Sigungu != "" && u.FacilityType != ""
}

func (s *quoteService) GetFacilityDashboard(ctx context.Context, facility *model.User) (*FacilityDashboard, error) {
	dashboard := &FacilityDashboard{
		NewRequests: []model.QuoteRequest{},
		MyResponses: []repository.SentResponseRow{},
	}

	g, _ := errgroup.WithContext(ctx)
	if hasFacilityProfile(facility) {
		g.Go(func() error {
			requests, err := s.quoteRepo.ListNewRequestsForFacility(facility.ID, facility.Sido, facility.Sigungu, facility.FacilityType, dashboardListLimit)
			if err == nil {
				dashboard.NewRequests = requests
			}
			return err
		})
		g.Go(func() error {
			count, err := s.quoteRepo.CountNewRequestsForFacility(facility.ID, facility.Sido, facility.Sigungu, facility.FacilityType)
			dashboard.Stats.NewRequests = count
			return err
		})
	}
	g.Go(func() error {
		rows, err := s.quoteRepo.ListResponsesByPartner(facility.ID, dashboardListLimit)
		if err == nil {
			dashboard.MyResponses = rows
		}
		return err
	})
	g.Go(func() error {
		count, err := s.quoteRepo.CountResponsesByPartner(facility.ID)
		dashboard.Stats.SentQuotes = count
		return err
	})
	g.Go(func() error {
		count, err := s.quoteRepo.CountResponsesByPartner(facility.ID,
			model.ResponseStatusViewed, model.ResponseStatusAccepted, model.ResponseStatusRejected)
		dashboard.Stats.ViewedQuotes = count
		return err
	})
	g.Go(func() error {
		count, err := s.quoteRepo.CountResponsesByPartner(facility.ID, model.ResponseStatusAccepted)
		dashboard.Stats.ActiveConsultations = count
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Failed to load facility dashboard", err, map[string]interface{}{
			"user_id": facility.ID,
		})
		return nil, err
	}
	return dashboard, nil
}

// SubmitQuoteResponse 요청 확인과 저장을 한 트랜잭션에서 처리.
// (quote_id, partner_id) 유니크 인덱스로 시설당 1개 응답을 보장한다.
func (s *quoteService) SubmitQuoteResponse(ctx context.Context, facility *model.User, input QuoteResponseInput) (*model.QuoteResponse, error) {
	if !hasFacilityProfile(facility) {
		return nil, ErrFacilityProfileMissing
	}
	if input.EstimatedPrice <= 0 {
		return nil, ErrInvalidPrice
	}

	resp := &model.QuoteResponse{
		ResponseID:      util.GeneratePublicID(util.ResponseIDPrefix),
		QuoteID:         input.QuoteID,
		PartnerID:       facility.ID,
		EstimatedPrice:  input.EstimatedPrice,
		ServiceDetails:  input.ServiceDetails,
		AvailableRooms:  input.AvailableRooms,
		SpecialServices: input.SpecialServices,
		ResponseMessage: input.ResponseMessage,
		ContactPerson:   input.ContactPerson,
		ContactPhone:    input.ContactPhone,
		Status:          model.ResponseStatusSent,
	}
	if resp.ContactPerson == "" {
		resp.ContactPerson = facility.Name
	}
	if resp.ContactPhone == "" {
		resp.ContactPhone = facility.Phone
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.quoteRepo.WithTx(tx)

		req, err := repo.FindRequestByQuoteIDForUpdate(input.QuoteID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrQuoteNotFound
			}
			return err
		}
		if !req.Status.AcceptsResponses() {
			return ErrQuoteClosed
		}
		if req.Sido != facility.Sido || req.Sigungu != facility.Sigungu || req.FacilityType != facility.FacilityType {
			return ErrQuoteRegionMismatch
		}

		if err := repo.CreateResponse(resp); err != nil {
			if repository.IsDuplicateKey(err) {
				return ErrAlreadyResponded
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.Warn("Quote response rejected", map[string]interface{}{
			"quote_id":   input.QuoteID,
			"partner_id": facility.ID,
			"reason":     err.Error(),
		})
		return nil, err
	}

	logger.Info("Quote response sent", map[string]interface{}{
		"response_id":     resp.ResponseID,
		"quote_id":        resp.QuoteID,
		"partner_id":      resp.PartnerID,
		"estimated_price": resp.EstimatedPrice,
	})
	return resp, nil
}

// ownsRequest 고객의 전화번호 또는 이메일과 일치 (빈 값은 비교하지 않음)
func ownsRequest(customer *model.User, req *model.QuoteRequest) bool {
	phone := strings.TrimSpace(customer.Phone)
	email := strings.ToLower(strings.TrimSpace(customer.Email))
	if phone != "" && phone == req.ApplicantPhone {
		return true
	}
	return email != "" && email == strings.ToLower(req.ApplicantEmail)
}

func (s *quoteService) findOwnedRequest(customer *model.User, quoteID string) (*model.QuoteRequest, error) {
	req, err := s.quoteRepo.FindRequestByQuoteID(quoteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}
	if !ownsRequest(customer, req) {
		logger.Warn("Customer tried to access another customer's quote", map[string]interface{}{
			"user_id":  customer.ID,
			"quote_id": quoteID,
		})
		return nil, ErrQuoteForbidden
	}
	return req, nil
}

// GetQuoteDetail 고객이 상세를 열면 sent 응답은 viewed 로 바뀐다
func (s *quoteService) GetQuoteDetail(ctx context.Context, customer *model.User, quoteID string) (*QuoteDetail, error) {
	req, err := s.findOwnedRequest(customer, quoteID)
	if err != nil {
		return nil, err
	}

	viewed, err := s.quoteRepo.MarkResponsesViewed(quoteID)
	if err != nil {
		return nil, err
	}
	if viewed > 0 {
		logger.Info("Quote responses marked as viewed", map[string]interface{}{
			"quote_id": quoteID,
			"count":    viewed,
		})
	}

	responses, err := s.quoteRepo.ListResponsesByQuoteID(quoteID)
	if err != nil {
		return nil, err
	}
	return &QuoteDetail{QuoteRequest: req, Responses: responses}, nil
}

// UpdateStatusByCustomer 고객은 자기 요청을 완료/취소만 할 수 있다
func (s *quoteService) UpdateStatusByCustomer(ctx context.Context, customer *model.User, quoteID string, status model.QuoteStatus) error {
	if status != model.QuoteStatusCompleted && status != model.QuoteStatusCancelled {
		return ErrInvalidQuoteStatus
	}
	req, err := s.findOwnedRequest(customer, quoteID)
	if err != nil {
		return err
	}
	return s.transition(req, status)
}

func (s *quoteService) UpdateStatusByAdmin(ctx context.Context, quoteID string, status model.QuoteStatus) error {
	req, err := s.quoteRepo.FindRequestByQuoteID(quoteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrQuoteNotFound
		}
		return err
	}
	return s.transition(req, status)
}

func (s *quoteService) transition(req *model.QuoteRequest, status model.QuoteStatus) error {
	if !req.Status.CanTransitionTo(status) {
		logger.Warn("Invalid quote status transition", map[string]interface{}{
			"quote_id": req.QuoteID,
			"from":     req.Status,
			"to":       status,
		})
		return ErrInvalidQuoteStatus
	}
	if err := s.quoteRepo.UpdateRequestStatus(req.QuoteID, req.Status, status); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			logger.Warn("Quote request status changed concurrently", map[string]interface{}{
				"quote_id": req.QuoteID,
				"from":     req.Status,
				"to":       status,
			})
			return ErrInvalidQuoteStatus
		}
		return err
	}
	logger.Info("Quote request status updated", map[string]interface{}{
		"quote_id": req.QuoteID,
		"from":     req.Status,
		"to":       status,
	})
	return nil
}

// DecideResponse 요청한 고객만 시설 견적을 수락/거절할 수 있다
func (s *quoteService) DecideResponse(ctx context.Context, customer *model.User, responseID string, accept bool) (*model.QuoteResponse, error) {
	resp, err := s.quoteRepo.FindResponseByResponseID(responseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}
	if _, err := s.findOwnedRequest(customer, resp.QuoteID); err != nil {
		return nil, err
	}
	if !resp.Status.IsOpen() {
		return nil, ErrInvalidQuoteStatus
	}

	next := model.ResponseStatusRejected
	if accept {
		next = model.ResponseStatusAccepted
	}
	if err := s.quoteRepo.UpdateResponseStatus(responseID, model.OpenResponseStatuses, next); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrInvalidQuoteStatus
		}
		return nil, err
	}
	resp.Status = next

	logger.Info("Quote response decided", map[string]interface{}{
		"response_id": responseID,
		"status":      next,
	})
	return resp, nil
}
