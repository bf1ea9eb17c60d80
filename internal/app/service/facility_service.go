package service

import (
	"context"
	"errors"
	"sort"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/carejoa/carejoa-backend/pkg/util"
	"gorm.io/datatypes"
)

var ErrFacilityNotFound = errors.New("facility not found")

const (
	defaultFacilityPageSize = 20
	maxFacilityPageSize     = 100
	generateBatchSize       = 500
)

// FacilityQuery 디렉터리 조회 조건. Lat/Lng 가 있으면 거리순 정렬.
type FacilityQuery struct {
	Sido         string
	Sigungu      string
	FacilityType string
	Page         int
	Limit        int
	Lat          *float64
	Lng          *float64
}

type FacilityListItem struct {
	model.Facility
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

type FacilityPage struct {
	Facilities []FacilityListItem `json:"facilities"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}

// DetailsInput 관리자 상세정보 수정
type DetailsInput struct {
	Specialties    []string
	AdmissionTypes []string
	MonthlyCost    *int64
	Deposit        *int64
	Notes          string
}

// GenerateReport 상세정보 일괄 생성 결과
type GenerateReport struct {
	Processed int `json:"processed"`
	Written   int `json:"written"`
	Skipped   int `json:"skipped"`
}

type FacilityService interface {
	List(ctx context.Context, query FacilityQuery) (*FacilityPage, error)
	Get(ctx context.Context, id uint) (*model.Facility, error)
	UpdateDetails(ctx context.Context, id uint, input DetailsInput) (*model.FacilityDetails, error)
	GenerateAllDetails(ctx context.Context, overwrite bool) (*GenerateReport, error)
}

type facilityService struct {
	facilityRepo repository.FacilityRepository
}

func NewFacilityService(facilityRepo repository.FacilityRepository) FacilityService {
	return &facilityService{facilityRepo: facilityRepo}
}

func (s *facilityService) List(ctx context.Context, query FacilityQuery) (*FacilityPage, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = defaultFacilityPageSize
	}
	if query.Limit > maxFacilityPageSize {
		query.Limit = maxFacilityPageSize
	}

	facilities, total, err := s.facilityRepo.List(repository.FacilityFilter{
		Sido:         query.Sido,
		Sigungu:      query.Sigungu,
		FacilityType: query.FacilityType,
		Page:         query.Page,
		Limit:        query.Limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]FacilityListItem, len(facilities))
	for i, f := range facilities {
		items[i] = FacilityListItem{Facility: f}
	}

	if query.Lat != nil && query.Lng != nil {
		for i := range items {
			if !items[i].HasCoordinates() {
				continue
			}
			d := util.RoundTo(util.CalculateDistance(*query.Lat, *query.Lng, items[i].Latitude, items[i].Longitude), 2)
			items[i].DistanceKm = &d
		}
		// 좌표 없는 시설은 뒤로
		sort.SliceStable(items, func(a, b int) bool {
			da, db := items[a].DistanceKm, items[b].DistanceKm
			if da == nil || db == nil {
				return da != nil && db == nil
			}
			return *da < *db
		})
	}

	return &FacilityPage{
		Facilities: items,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
	}, nil
}

func (s *facilityService) Get(ctx context.Context, id uint) (*model.Facility, error) {
	facility, err := s.facilityRepo.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	return facility, nil
}

func (s *facilityService) UpdateDetails(ctx context.Context, id uint, input DetailsInput) (*model.FacilityDetails, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	details := &model.FacilityDetails{
		FacilityID:     id,
		Specialties:    datatypes.JSONSlice[string](nonNil(input.Specialties)),
		AdmissionTypes: datatypes.JSONSlice[string](nonNil(input.AdmissionTypes)),
		MonthlyCost:    input.MonthlyCost,
		Deposit:        input.Deposit,
		Notes:          input.Notes,
		UpdatedBy:      model.DetailsUpdatedByAdmin,
	}
	if _, err := s.facilityRepo.SaveDetails(details, true); err != nil {
		return nil, err
	}

	logger.Info("Facility details updated by admin", map[string]interface{}{
		"facility_id": id,
	})
	return details, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// GenerateAllDetails overwrite=false 이면 이미 상세정보가 있는 시설은 건너뛴다
func (s *facilityService) GenerateAllDetails(ctx context.Context, overwrite bool) (*GenerateReport, error) {
	report := &GenerateReport{}
	err := s.facilityRepo.ForEachBatch(generateBatchSize, func(batch []model.Facility) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range batch {
			written, err := s.facilityRepo.SaveDetails(EstimateDetails(&batch[i]), overwrite)
			if err != nil {
				return err
			}
			report.Processed++
			if written {
				report.Written++
			} else {
				report.Skipped++
			}
		}
		logger.Debug("Facility details batch processed", map[string]interface{}{
			"processed": report.Processed,
		})
		return nil
	})
	if err != nil {
		logger.Error("Failed to generate facility details", err, map[string]interface{}{
			"processed": report.Processed,
		})
		return nil, err
	}

	logger.Info("Facility details generated", map[string]interface{}{
		"processed": report.Processed,
		"written":   report.Written,
		"skipped":   report.Skipped,
	})
	return report, nil
}
