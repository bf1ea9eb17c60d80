package service

import (
	"context"
	"errors"
	"strings"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/pkg/logger"
)

var (
	ErrInvalidPartnerInput    = errors.New("invalid partner application")
	ErrInvalidFamilyCareInput = errors.New("invalid family care application")
)

// 비용 계산기 기준 금액 (원)
const (
	defaultBasicCost int64 = 1000000
	mealCost         int64 = 300000
	nursingCost      int64 = 200000
)

var (
	basicCostByCareLevel = map[int]int64{
		1: 1800000,
		2: 1600000,
		3: 1400000,
		4: 1200000,
		5: 1000000,
	}
	facilityExtraByType = map[string]int64{
		model.FacilityTypeNursingHospital: 500000,
		model.FacilityTypeNursingHome:     200000,
		model.FacilityTypeDayNightCare:    -300000,
		model.FacilityTypeHomeWelfare:     -400000,
	}
	roomExtraByType = map[string]int64{
		"1인실":   500000,
		"2인실":   200000,
		"3인실":   0,
		"4인실이상": -100000,
	}
	regionExtraByKey = map[string]int64{
		"서울": 300000,
		"경기": 100000,
		"인천": 50000,
		"기타": 0,
	}
	// 시/도 정식 명칭 → 계산기 지역 키
	calculatorRegionAliases = map[string]string{
		"서울특별시": "서울",
		"경기도":   "경기",
		"인천광역시": "인천",
	}
)

type PartnerInput struct {
	FacilityName    string
	FacilityType    string
	FacilitySido    string
	FacilitySigungu string
	FacilityAddress string
	ManagerName     string
	ManagerPhone    string
}

type FamilyCareInput struct {
	GuardianName  string
	GuardianPhone string
	PatientName   string
	PatientAge    int
	Region        string
	Requirements  string
}

type CostInput struct {
	CareLevel    int
	FacilityType string
	RoomType     string
	Region       string
}

type CostEstimate struct {
	Basic   int64 `json:"basic"`
	Meal    int64 `json:"meal"`
	Nursing int64 `json:"nursing"`
	Total   int64 `json:"total"`
}

type IntakeService interface {
	CreatePartner(ctx context.Context, input PartnerInput) (*model.Partner, error)
	CreateFamilyCare(ctx context.Context, input FamilyCareInput) (*model.FamilyCare, error)
	CalculateCost(input CostInput) CostEstimate
}

type intakeService struct {
	partnerRepo    repository.PartnerRepository
	familyCareRepo repository.FamilyCareRepository
}

func NewIntakeService(partnerRepo repository.PartnerRepository, familyCareRepo repository.FamilyCareRepository) IntakeService {
	return &intakeService{
		partnerRepo:    partnerRepo,
		familyCareRepo: familyCareRepo,
	}
}

// CreatePartner 지역 키(region_key)는 관리자가 따로 지정한다
func (s *intakeService) CreatePartner(ctx context.Context, input PartnerInput) (*model.Partner, error) {
	if strings.TrimSpace(input.FacilityName) == "" ||
		strings.TrimSpace(input.ManagerName) == "" ||
		strings.TrimSpace(input.ManagerPhone) == "" {
		return nil, ErrInvalidPartnerInput
	}
	if !model.IsValidFacilityType(input.FacilityType) {
		return nil, ErrInvalidFacilityType
	}
	if input.FacilitySido != "" && !model.IsValidRegion(input.FacilitySido, input.FacilitySigungu) {
		return nil, ErrInvalidRegion
	}

	partner := &model.Partner{
		FacilityName:    strings.TrimSpace(input.FacilityName),
		FacilityType:    input.FacilityType,
		FacilitySido:    input.FacilitySido,
		FacilitySigungu: input.FacilitySigungu,
		FacilityAddress: input.FacilityAddress,
		ManagerName:     strings.TrimSpace(input.ManagerName),
		ManagerPhone:    strings.TrimSpace(input.ManagerPhone),
	}
	if err := s.partnerRepo.Create(partner); err != nil {
		return nil, err
	}

	logger.Info("Partner application received", map[string]interface{}{
		"partner_id":    partner.ID,
		"facility_type": partner.FacilityType,
	})
	return partner, nil
}

func (s *intakeService) CreateFamilyCare(ctx context.Context, input FamilyCareInput) (*model.FamilyCare, error) {
	if strings.TrimSpace(input.GuardianName) == "" || strings.TrimSpace(input.GuardianPhone) == "" {
		return nil, ErrInvalidFamilyCareInput
	}
	if input.PatientAge < 0 || input.PatientAge > 150 {
		return nil, ErrInvalidFamilyCareInput
	}

	record := &model.FamilyCare{
		GuardianName:  strings.TrimSpace(input.GuardianName),
		GuardianPhone: strings.TrimSpace(input.GuardianPhone),
		PatientName:   strings.TrimSpace(input.PatientName),
		PatientAge:    input.PatientAge,
		Region:        input.Region,
		Requirements:  input.Requirements,
	}
	if err := s.familyCareRepo.Create(record); err != nil {
		return nil, err
	}

	logger.Info("Family care application received", map[string]interface{}{
		"id":     record.ID,
		"region": record.Region,
	})
	return record, nil
}

// CalculateCost 등급/시설/병실/지역 가산을 더한 월 예상 비용. 알 수 없는 값은 가산 0.
func (s *intakeService) CalculateCost(input CostInput) CostEstimate {
	basic, ok := basicCostByCareLevel[input.CareLevel]
	if !ok {
		basic = defaultBasicCost
	}

	region := input.Region
	if alias, ok := calculatorRegionAliases[region]; ok {
		region = alias
	}

	basic += facilityExtraByType[input.FacilityType] + roomExtraByType[input.RoomType] + regionExtraByKey[region]
	return CostEstimate{
		Basic:   basic,
		Meal:    mealCost,
		Nursing: nursingCost,
		Total:   basic + mealCost + nursingCost,
	}
}
