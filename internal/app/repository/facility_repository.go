package repository

import (
	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FacilityFilter 시설 디렉터리 조회 조건
type FacilityFilter struct {
	Sido         string
	Sigungu      string
	FacilityType string
	Page         int
	Limit        int
}

type FacilityRepository interface {
	Create(facility *model.Facility) error
	CreateInBatches(facilities []model.Facility, batchSize int) error
	FindByID(id uint) (*model.Facility, error)
	List(filter FacilityFilter) ([]model.Facility, int64, error)
	ForEachBatch(batchSize int, fn func(batch []model.Facility) error) error
	Count() (int64, error)

	FindDetails(facilityID uint) (*model.FacilityDetails, error)
	// SaveDetails overwrite=false 이면 기존 상세정보는 유지
	SaveDetails(details *model.FacilityDetails, overwrite bool) (bool, error)
}

type facilityRepository struct {
	db *gorm.DB
}

func NewFacilityRepository(db *gorm.DB) FacilityRepository {
	return &facilityRepository{db: db}
}

func (r *facilityRepository) Create(facility *model.Facility) error {
	if err := r.db.Create(facility).Error; err != nil {
		logger.Error("Failed to create facility", err, map[string]interface{}{
			"name": facility.Name,
		})
		return err
	}
	return nil
}

func (r *facilityRepository) CreateInBatches(facilities []model.Facility, batchSize int) error {
	if len(facilities) == 0 {
		return nil
	}
	logger.Debug("Creating facilities in batches", map[string]interface{}{
		"count":      len(facilities),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(facilities, batchSize).Error; err != nil {
		logger.Error("Failed to create facilities in batches", err)
		return err
	}
	return nil
}

func (r *facilityRepository) FindByID(id uint) (*model.Facility, error) {
	var facility model.Facility
	if err := r.db.Preload("Details").First(&facility, id).Error; err != nil {
		if !IsNotFound(err) {
			logger.Error("Failed to find facility by ID", err, map[string]interface{}{
				"facility_id": id,
			})
		}
		return nil, err
	}
	return &facility, nil
}

func (r *facilityRepository) List(filter FacilityFilter) ([]model.Facility, int64, error) {
	query := r.db.Model(&model.Facility{})
	if filter.Sido != "" {
		query = query.Where("sido = ?", filter.Sido)
	}
	if filter.Sigungu != "" {
		query = query.Where("sigungu = ?", filter.Sigungu)
	}
	if filter.FacilityType != "" {
		query = query.Where("facility_type = ?", filter.FacilityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count facilities", err)
		return nil, 0, err
	}

	facilities := []model.Facility{}
	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Details").
		Order("name ASC, id ASC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&facilities).Error
	if err != nil {
		logger.Error("Failed to list facilities", err)
		return nil, 0, err
	}

	logger.Debug("Facilities listed", map[string]interface{}{
		"count": len(facilities),
		"total": total,
		"page":  filter.Page,
	})
	return facilities, total, nil
}

func (r *facilityRepository) ForEachBatch(batchSize int, fn func(batch []model.Facility) error) error {
	var batch []model.Facility
	return r.db.FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}

func (r *facilityRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Facility{}).Count(&count).Error
	return count, err
}

func (r *facilityRepository) FindDetails(facilityID uint) (*model.FacilityDetails, error) {
	var details model.FacilityDetails
	if err := r.db.Where("facility_id = ?", facilityID).First(&details).Error; err != nil {
		return nil, err
	}
	return &details, nil
}

func (r *facilityRepository) SaveDetails(details *model.FacilityDetails, overwrite bool) (bool, error) {
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "facility_id"}},
		DoNothing: true,
	}
	if overwrite {
		onConflict = clause.OnConflict{
			Columns: []clause.Column{{Name: "facility_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"specialties", "admission_types", "monthly_cost", "deposit", "notes", "updated_by", "updated_at",
			}),
		}
	}

	res := r.db.Clauses(onConflict).Create(details)
	if res.Error != nil {
		logger.Error("Failed to save facility details", res.Error, map[string]interface{}{
			"facility_id": details.FacilityID,
		})
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
