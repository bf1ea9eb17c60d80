package model

import (
	"time"
)

type ReferralStatus string // 의뢰 처리 상태

const (
	ReferralStatusPending   ReferralStatus = "pending"
	ReferralStatusMatched   ReferralStatus = "matched"
	ReferralStatusCompleted ReferralStatus = "completed"
)

// CanTransitionTo pending → matched → completed (pending → completed 허용)
func (s ReferralStatus) CanTransitionTo(next ReferralStatus) bool {
	switch s {
	case ReferralStatusPending:
		return next == ReferralStatusMatched || next == ReferralStatusCompleted
	case ReferralStatusMatched:
		return next == ReferralStatusCompleted
	}
	return false
}

// 의뢰 유형 / 긴급도
var (
	ReferralTypes = []string{"입원", "퇴원", "상담"}
	UrgencyLevels = []string{"긴급", "보통", "여유"}
)

// Referral 병원/복지기관 담당자가 접수한 환자/입소 의뢰
type Referral struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	ReferralID         string         `gorm:"type:varchar(40);uniqueIndex;not null" json:"referral_id"`
	SubmitterID        uint           `gorm:"not null;index" json:"submitter_id"`
	SubmitterType      UserType       `gorm:"type:varchar(20);not null" json:"submitter_type"`
	PatientName        string         `gorm:"not null" json:"patient_name"`
	PatientAge         int            `gorm:"not null" json:"patient_age"`
	PatientCondition   string         `gorm:"type:text;not null" json:"patient_condition"`
	ReferralType       string         `gorm:"type:varchar(10);not null" json:"referral_type"`
	PreferredRegion    string         `gorm:"not null" json:"preferred_region"`
	TargetFacilityType string         `gorm:"not null" json:"target_facility_type"`
	UrgencyLevel       string         `gorm:"type:varchar(10);not null" json:"urgency_level"`
	Notes              string         `gorm:"type:text" json:"notes"`
	Status             ReferralStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`

	Submitter *User `gorm:"foreignKey:SubmitterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Referral) TableName() string {
	return "referrals"
}
