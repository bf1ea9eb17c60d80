package repository

import (
	"strings"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SentResponseRow 시설이 보낸 견적 + 원 요청의 표시용 필드
type SentResponseRow struct {
	ResponseID     string                    `json:"response_id"`
	QuoteID        string                    `json:"quote_id"`
	EstimatedPrice int64                     `json:"estimated_price"`
	Status         model.QuoteResponseStatus `json:"status"`
	CreatedAt      time.Time                 `json:"created_at"`
	ApplicantName  string                    `json:"applicant_name"`
	PatientName    string                    `json:"patient_name"`
	PatientAge     int                       `json:"patient_age"`
}

type QuoteRepository interface {
	WithTx(tx *gorm.DB) QuoteRepository

	CreateRequest(req *model.QuoteRequest) error
	FindRequestByQuoteID(quoteID string) (*model.QuoteRequest, error)
	FindRequestByQuoteIDForUpdate(quoteID string) (*model.QuoteRequest, error)
	ListRequestsByApplicant(phone, email string) ([]model.QuoteRequest, error)
	CountRequestsByApplicant(phone, email string) (int64, error)
	UpdateRequestStatus(quoteID string, from, to model.QuoteStatus) error
	ListNewRequestsForFacility(partnerID uint, sido, sigungu, facilityType string, limit int) ([]model.QuoteRequest, error)
	CountNewRequestsForFacility(partnerID uint, sido, sigungu, facilityType string) (int64, error)

	CreateResponse(resp *model.QuoteResponse) error
	FindResponseByResponseID(responseID string) (*model.QuoteResponse, error)
	ListResponsesByQuoteID(quoteID string) ([]model.QuoteResponse, error)
	CountResponsesByQuoteIDs(quoteIDs []string) (map[string]int64, error)
	CountResponsesForQuotesByStatus(quoteIDs []string, statuses ...model.QuoteResponseStatus) (int64, error)
	ListResponsesByPartner(partnerID uint, limit int) ([]SentResponseRow, error)
	CountResponsesByPartner(partnerID uint, statuses ...model.QuoteResponseStatus) (int64, error)
	MarkResponsesViewed(quoteID string) (int64, error)
	UpdateResponseStatus(responseID string, from []model.QuoteResponseStatus, to model.QuoteResponseStatus) error
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) WithTx(tx *gorm.DB) QuoteRepository {
	return &quoteRepository{db: tx}
}

func (r *quoteRepository) CreateRequest(req *model.QuoteRequest) error {
	logger.Debug("Creating quote request in database", map[string]interface{}{
		"quote_id":      req.QuoteID,
		"sido":          req.Sido,
		"sigungu":       req.Sigungu,
		"facility_type": req.FacilityType,
	})

	if err := r.db.Create(req).Error; err != nil {
		logger.Error("Failed to create quote request in database", err, map[string]interface{}{
			"quote_id": req.QuoteID,
		})
		return err
	}
	return nil
}

func (r *quoteRepository) FindRequestByQuoteID(quoteID string) (*model.QuoteRequest, error) {
	var req model.QuoteRequest
	if err := r.db.Where("quote_id = ?", quoteID).First(&req).Error; err != nil {
		if !IsNotFound(err) {
			logger.Error("Failed to find quote request", err, map[string]interface{}{
				"quote_id": quoteID,
			})
		}
		return nil, err
	}
	return &req, nil
}

// FindRequestByQuoteIDForUpdate 트랜잭션 안에서 요청 행을 잠그고 조회
func (r *quoteRepository) FindRequestByQuoteIDForUpdate(quoteID string) (*model.QuoteRequest, error) {
	var req model.QuoteRequest
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("quote_id = ?", quoteID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// applicantScope 전화번호 또는 이메일 일치. 빈 값은 매칭에 쓰지 않는다.
func applicantScope(phone, email string) (string, []interface{}, bool) {
	var conds []string
	var args []interface{}
	if phone = strings.TrimSpace(phone); phone != "" {
		conds = append(conds, "applicant_phone = ?")
		args = append(args, phone)
	}
	if email = strings.TrimSpace(email); email != "" {
		conds = append(conds, "applicant_email = ?")
		args = append(args, email)
	}
	if len(conds) == 0 {
		return "", nil, false
	}
	return "(" + strings.Join(conds, " OR ") + ")", args, true
}

func (r *quoteRepository) ListRequestsByApplicant(phone, email string) ([]model.QuoteRequest, error) {
	requests := []model.QuoteRequest{}
	where, args, ok := applicantScope(phone, email)
	if !ok {
		return requests, nil
	}

	err := r.db.Where(where, args...).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	if err != nil {
		logger.Error("Failed to list quote requests by applicant", err)
		return nil, err
	}

	logger.Debug("Quote requests found by applicant", map[string]interface{}{
		"count": len(requests),
	})
	return requests, nil
}

func (r *quoteRepository) CountRequestsByApplicant(phone, email string) (int64, error) {
	where, args, ok := applicantScope(phone, email)
	if !ok {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&model.QuoteRequest{}).Where(where, args...).Count(&count).Error
	return count, err
}

// UpdateRequestStatus from 상태일 때만 to 로 바꾼다 (조건부 단일 UPDATE)
func (r *quoteRepository) UpdateRequestStatus(quoteID string, from, to model.QuoteStatus) error {
	logger.Debug("Updating quote request status", map[string]interface{}{
		"quote_id": quoteID,
		"from":     from,
		"to":       to,
	})

	res := r.db.Model(&model.QuoteRequest{}).
		Where("quote_id = ? AND status = ?", quoteID, from).
		Update("status", to)
	if res.Error != nil {
		logger.Error("Failed to update quote request status", res.Error, map[string]interface{}{
			"quote_id": quoteID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// newRequestsScope 시설 지역/유형과 일치하는 대기 요청 중 이 시설이 아직 응답하지 않은 것
func (r *quoteRepository) newRequestsScope(partnerID uint, sido, sigungu, facilityType string) *gorm.DB {
	return r.db.Model(&model.QuoteRequest{}).
		Where("status = ? AND sido = ? AND sigungu = ? AND facility_type = ?",
			model.QuoteStatusPending, sido, sigungu, facilityType).
		Where("NOT EXISTS (SELECT 1 FROM quote_responses qr WHERE qr.quote_id = quote_requests.quote_id AND qr.partner_id = ?)", partnerID)
}

func (r *quoteRepository) ListNewRequestsForFacility(partnerID uint, sido, sigungu, facilityType string, limit int) ([]model.QuoteRequest, error) {
	logger.Debug("Listing new quote requests for facility", map[string]interface{}{
		"partner_id":    partnerID,
		"sido":          sido,
		"sigungu":       sigungu,
		"facility_type": facilityType,
	})

	requests := []model.QuoteRequest{}
	err := r.newRequestsScope(partnerID, sido, sigungu, facilityType).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		logger.Error("Failed to list new quote requests for facility", err, map[string]interface{}{
			"partner_id": partnerID,
		})
		return nil, err
	}
	return requests, nil
}

func (r *quoteRepository) CountNewRequestsForFacility(partnerID uint, sido, sigungu, facilityType string) (int64, error) {
	var count int64
	err := r.newRequestsScope(partnerID, sido, sigungu, facilityType).Count(&count).Error
	return count, err
}

func (r *quoteRepository) CreateResponse(resp *model.QuoteResponse) error {
	logger.Debug("Creating quote response in database", map[string]interface{}{
		"response_id": resp.ResponseID,
		"quote_id":    resp.QuoteID,
		"partner_id":  resp.PartnerID,
	})

	if err := r.db.Create(resp).Error; err != nil {
		if !IsDuplicateKey(err) {
			logger.Error("Failed to create quote response in database", err, map[string]interface{}{
				"quote_id":   resp.QuoteID,
				"partner_id": resp.PartnerID,
			})
		}
		return err
	}
	return nil
}

func (r *quoteRepository) FindResponseByResponseID(responseID string) (*model.QuoteResponse, error) {
	var resp model.QuoteResponse
	if err := r.db.Where("response_id = ?", responseID).First(&resp).Error; err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListResponsesByQuoteID 고객에게 보여줄 응답. 시설 회원 정보는 이름만 붙인다.
func (r *quoteRepository) ListResponsesByQuoteID(quoteID string) ([]model.QuoteResponse, error) {
	responses := []model.QuoteResponse{}
	err := r.db.Model(&model.QuoteResponse{}).
		Select("quote_responses.*, users.name AS facility_name").
		Joins("LEFT JOIN users ON users.id = quote_responses.partner_id").
		Where("quote_responses.quote_id = ?", quoteID).
		Order("quote_responses.created_at DESC, quote_responses.id DESC").
		Find(&responses).Error
	if err != nil {
		logger.Error("Failed to list quote responses", err, map[string]interface{}{
			"quote_id": quoteID,
		})
		return nil, err
	}
	return responses, nil
}

// CountResponsesByQuoteIDs quote_id 별 응답 수 (한 번의 GROUP BY)
func (r *quoteRepository) CountResponsesByQuoteIDs(quoteIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(quoteIDs))
	if len(quoteIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		QuoteID string
		Count   int64
	}
	err := r.db.Model(&model.QuoteResponse{}).
		Select("quote_id, COUNT(*) AS count").
		Where("quote_id IN ?", quoteIDs).
		Group("quote_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to count quote responses", err)
		return nil, err
	}

	for _, row := range rows {
		counts[row.QuoteID] = row.Count
	}
	return counts, nil
}

func (r *quoteRepository) CountResponsesForQuotesByStatus(quoteIDs []string, statuses ...model.QuoteResponseStatus) (int64, error) {
	if len(quoteIDs) == 0 {
		return 0, nil
	}
	var count int64
	q := r.db.Model(&model.QuoteResponse{}).Where("quote_id IN ?", quoteIDs)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *quoteRepository) ListResponsesByPartner(partnerID uint, limit int) ([]SentResponseRow, error) {
	rows := []SentResponseRow{}
	err := r.db.Table("quote_responses").
		Select("quote_responses.response_id, quote_responses.quote_id, quote_responses.estimated_price, "+
			"quote_responses.status, quote_responses.created_at, quote_requests.applicant_name, quote_requests.patient_name, quote_requests.patient_age").
		Joins("JOIN quote_requests ON quote_requests.quote_id = quote_responses.quote_id").
		Where("quote_responses.partner_id = ?", partnerID).
		Order("quote_responses.created_at DESC, quote_responses.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to list quote responses by partner", err, map[string]interface{}{
			"partner_id": partnerID,
		})
		return nil, err
	}
	return rows, nil
}

func (r *quoteRepository) CountResponsesByPartner(partnerID uint, statuses ...model.QuoteResponseStatus) (int64, error) {
	var count int64
	q := r.db.Model(&model.QuoteResponse{}).Where("partner_id = ?", partnerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Count(&count).Error
	return count, err
}

// MarkResponsesViewed sent → viewed
func (r *quoteRepository) MarkResponsesViewed(quoteID string) (int64, error) {
	res := r.db.Model(&model.QuoteResponse{}).
		Where("quote_id = ? AND status = ?", quoteID, model.ResponseStatusSent).
		Update("status", model.ResponseStatusViewed)
	if res.Error != nil {
		logger.Error("Failed to mark quote responses viewed", res.Error, map[string]interface{}{
			"quote_id": quoteID,
		})
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// UpdateResponseStatus 현재 상태가 from 중 하나일 때만 to 로 바꾼다
func (r *quoteRepository) UpdateResponseStatus(responseID string, from []model.QuoteResponseStatus, to model.QuoteResponseStatus) error {
	res := r.db.Model(&model.QuoteResponse{}).
		Where("response_id = ? AND status IN ?", responseID, from).
		Update("status", to)
	if res.Error != nil {
		logger.Error("Failed to update quote response status", res.Error, map[string]interface{}{
			"response_id": responseID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}
