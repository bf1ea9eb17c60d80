package model

import (
	"time"
)

type QuoteStatus string // 견적 요청 상태

const (
	QuoteStatusPending   QuoteStatus = "pending"   // 접수 대기
	QuoteStatusReceived  QuoteStatus = "received"  // 접수 완료
	QuoteStatusCompleted QuoteStatus = "completed" // 완료
	QuoteStatusCancelled QuoteStatus = "cancelled" // 취소
)

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusPending:  {QuoteStatusReceived, QuoteStatusCompleted, QuoteStatusCancelled},
	QuoteStatusReceived: {QuoteStatusCompleted, QuoteStatusCancelled},
}

// CanTransitionTo 허용된 상태 전이인지 확인 (completed/cancelled 는 종료 상태)
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsResponses 시설 견적을 받을 수 있는 상태인지
func (s QuoteStatus) AcceptsResponses() bool {
	return s == QuoteStatusPending || s == QuoteStatusReceived
}

type QuoteType string

const (
	QuoteTypeSimple   QuoteType = "simple"
	QuoteTypeDetailed QuoteType = "detailed"
)

type QuoteRequest struct {
	ID              uint        `gorm:"primarykey" json:"id"`
	QuoteID         string      `gorm:"type:varchar(40);uniqueIndex;not null" json:"quote_id"` // 공개 식별자
	QuoteType       QuoteType   `gorm:"type:varchar(20);default:'simple'" json:"quote_type"`
	ApplicantName   string      `gorm:"not null" json:"applicant_name"`
	ApplicantPhone  string      `gorm:"index" json:"applicant_phone"`
	ApplicantEmail  string      `gorm:"index" json:"applicant_email"`
	PatientName     string      `json:"patient_name"`
	PatientAge      int         `json:"patient_age"`
	PatientGender   string      `json:"patient_gender"`
	Sido            string      `gorm:"not null;index:idx_quote_requests_match" json:"sido"`
	Sigungu         string      `gorm:"not null;index:idx_quote_requests_match" json:"sigungu"`
	FacilityType    string      `gorm:"not null;index:idx_quote_requests_match" json:"facility_type"`
	CareGrade       string      `json:"care_grade"`
	AdditionalNotes string      `gorm:"type:text" json:"additional_notes"` // 구조화 텍스트 (그대로 저장)
	Status          QuoteStatus `gorm:"type:varchar(20);default:'pending';index:idx_quote_requests_match" json:"status"`
	CreatedAt       time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	Responses []QuoteResponse `gorm:"foreignKey:QuoteID;references:QuoteID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"responses,omitempty"`
}

func (QuoteRequest) TableName() string {
	return "quote_requests"
}

type QuoteResponseStatus string // 시설 견적 상태

const (
	ResponseStatusSent     QuoteResponseStatus = "sent"
	ResponseStatusViewed   QuoteResponseStatus = "viewed"
	ResponseStatusAccepted QuoteResponseStatus = "accepted"
	ResponseStatusRejected QuoteResponseStatus = "rejected"
)

// OpenResponseStatuses 고객이 수락/거절할 수 있는 상태
var OpenResponseStatuses = []QuoteResponseStatus{ResponseStatusSent, ResponseStatusViewed}

// IsOpen 고객이 수락/거절할 수 있는 상태인지
func (s QuoteResponseStatus) IsOpen() bool {
	return s == ResponseStatusSent || s == ResponseStatusViewed
}

type QuoteResponse struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	ResponseID      string              `gorm:"type:varchar(40);uniqueIndex;not null" json:"response_id"`
	QuoteID         string              `gorm:"type:varchar(40);not null;uniqueIndex:idx_quote_responses_quote_partner" json:"quote_id"`
	PartnerID       uint                `gorm:"not null;uniqueIndex:idx_quote_responses_quote_partner;index" json:"partner_id"` // 응답한 시설 회원 ID
	EstimatedPrice  int64               `gorm:"not null" json:"estimated_price"`                                                // 월 예상 비용(원)
	ServiceDetails  string              `gorm:"type:text" json:"service_details"`
	AvailableRooms  string              `json:"available_rooms"`
	SpecialServices string              `gorm:"type:text" json:"special_services"`
	ResponseMessage string              `gorm:"type:text" json:"response_message"`
	ContactPerson   string              `json:"contact_person"`
	ContactPhone    string              `json:"contact_phone"`
	Status          QuoteResponseStatus `gorm:"type:varchar(20);default:'sent';index" json:"status"`
	CreatedAt       time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	// 고객 상세 조회에서만 채워지는 시설 표시 이름
	FacilityName string `gorm:"->;-:migration" json:"facility_name,omitempty"`

	Partner *User `gorm:"foreignKey:PartnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (QuoteResponse) TableName() string {
	return "quote_responses"
}
