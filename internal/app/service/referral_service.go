package service

import (
	"context"
	"errors"
	"strings"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/carejoa/carejoa-backend/pkg/util"
)

var (
	ErrReferralNotFound      = errors.New("referral not found")
	ErrReferralForbidden     = errors.New("only hospital or welfare managers can submit referrals")
	ErrInvalidReferralStatus = errors.New("invalid referral status transition")
)

// FieldErrors 필드별 검증 오류 (필드명 → 안내 메시지)
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	return "invalid referral fields: " + strings.Join(fields, ", ")
}

// ReferralInput 의뢰 접수 입력
type ReferralInput struct {
	PatientName        string
	PatientAge         int
	PatientCondition   string
	ReferralType       string
	PreferredRegion    string
	TargetFacilityType string
	UrgencyLevel       string
	Notes              string
}

type ReferralService interface {
	Submit(ctx context.Context, submitter *model.User, input ReferralInput) (*model.Referral, error)
	List(ctx context.Context, submitter *model.User) ([]model.Referral, error)
	UpdateStatus(ctx context.Context, referralID string, status model.ReferralStatus) error
}

type referralService struct {
	referralRepo repository.ReferralRepository
}

func NewReferralService(referralRepo repository.ReferralRepository) ReferralService {
	return &referralService{referralRepo: referralRepo}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// ValidateReferral 저장 전에 모든 필드를 검사하고 실패한 필드를 모두 돌려준다
func ValidateReferral(input ReferralInput) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(input.PatientName) == "" {
		errs["patient_name"] = "환자 이름을 입력해주세요"
	}
	if input.PatientAge < 1 || input.PatientAge > 150 {
		errs["patient_age"] = "환자 나이는 1~150 사이여야 합니다"
	}
	if strings.TrimSpace(input.PatientCondition) == "" {
		errs["patient_condition"] = "환자 상태를 입력해주세요"
	}
	if !contains(model.ReferralTypes, input.ReferralType) {
		errs["referral_type"] = "의뢰 유형은 입원, 퇴원, 상담 중 하나여야 합니다"
	}
	if !model.IsValidSido(input.PreferredRegion) {
		errs["preferred_region"] = "희망 지역(시/도)을 선택해주세요"
	}
	if !model.IsValidFacilityType(input.TargetFacilityType) {
		errs["target_facility_type"] = "시설 유형을 선택해주세요"
	}
	if !contains(model.UrgencyLevels, input.UrgencyLevel) {
		errs["urgency_level"] = "긴급도는 긴급, 보통, 여유 중 하나여야 합니다"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (s *referralService) Submit(ctx context.Context, submitter *model.User, input ReferralInput) (*model.Referral, error) {
	if !submitter.UserType.IsPartnerManager() {
		return nil, ErrReferralForbidden
	}
	if errs := ValidateReferral(input); errs != nil {
		return nil, errs
	}

	referral := &model.Referral{
		ReferralID:         util.GeneratePublicID(util.ReferralIDPrefix),
		SubmitterID:        submitter.ID,
		SubmitterType:      submitter.UserType,
		PatientName:        strings.TrimSpace(input.PatientName),
		PatientAge:         input.PatientAge,
		PatientCondition:   strings.TrimSpace(input.PatientCondition),
		ReferralType:       input.ReferralType,
		PreferredRegion:    input.PreferredRegion,
		TargetFacilityType: input.TargetFacilityType,
		UrgencyLevel:       input.UrgencyLevel,
		Notes:              input.Notes,
		Status:             model.ReferralStatusPending,
	}
	if err := s.referralRepo.Create(referral); err != nil {
		return nil, err
	}

	logger.Info("Referral submitted", map[string]interface{}{
		"referral_id":   referral.ReferralID,
		"submitter_id":  submitter.ID,
		"referral_type": referral.ReferralType,
		"urgency":       referral.UrgencyLevel,
	})
	return referral, nil
}

func (s *referralService) List(ctx context.Context, submitter *model.User) ([]model.Referral, error) {
	if !submitter.UserType.IsPartnerManager() {
		return nil, ErrReferralForbidden
	}
	return s.referralRepo.FindBySubmitter(submitter.ID)
}

func (s *referralService) UpdateStatus(ctx context.Context, referralID string, status model.ReferralStatus) error {
	referral, err := s.referralRepo.FindByReferralID(referralID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrReferralNotFound
		}
		return err
	}
	if !referral.Status.CanTransitionTo(status) {
		return ErrInvalidReferralStatus
	}
	if err := s.referralRepo.UpdateStatus(referralID, referral.Status, status); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return ErrInvalidReferralStatus
		}
		return err
	}

	logger.Info("Referral status updated", map[string]interface{}{
		"referral_id": referralID,
		"from":        referral.Status,
		"to":          status,
	})
	return nil
}
