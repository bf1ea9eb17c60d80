package repository

import (
	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartnerRepository 파트너 신청서와 지역 대표 센터
type PartnerRepository interface {
	WithTx(tx *gorm.DB) PartnerRepository

	Create(partner *model.Partner) error
	FindByID(id uint) (*model.Partner, error)
	FindByIDForUpdate(id uint) (*model.Partner, error)
	FindAll() ([]model.Partner, error)
	UpdateRegion(id uint, regionKey string, isRegionalCenter bool) error
	SetRegionalCenterFlag(id uint, isRegionalCenter bool) error

	CreateCenter(center *model.RegionalCenter) error
	FindCenter(regionKey string, partnerID uint) (*model.RegionalCenter, error)
	UsedSlots(regionKey string) ([]int, error)
	CountCenters(regionKey string) (int64, error)
	ListCentersByRegion(regionKey string) ([]model.RegionalCenter, error)
	ListAllCenters() ([]model.RegionalCenter, error)
	DeleteCenter(regionKey string, partnerID uint) (int64, error)
	DeleteCentersByPartner(partnerID uint) (int64, error)
}

type partnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) WithTx(tx *gorm.DB) PartnerRepository {
	return &partnerRepository{db: tx}
}

func (r *partnerRepository) Create(partner *model.Partner) error {
	logger.Debug("Creating partner in database", map[string]interface{}{
		"facility_name": partner.FacilityName,
		"facility_type": partner.FacilityType,
	})

	if err := r.db.Create(partner).Error; err != nil {
		logger.Error("Failed to create partner in database", err, map[string]interface{}{
			"facility_name": partner.FacilityName,
		})
		return err
	}
	return nil
}

func (r *partnerRepository) FindByID(id uint) (*model.Partner, error) {
	var partner model.Partner
	if err := r.db.First(&partner, id).Error; err != nil {
		if !IsNotFound(err) {
			logger.Error("Failed to find partner by ID", err, map[string]interface{}{
				"partner_id": id,
			})
		}
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) FindByIDForUpdate(id uint) (*model.Partner, error) {
	var partner model.Partner
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&partner, id).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) FindAll() ([]model.Partner, error) {
	partners := []model.Partner{}
	if err := r.db.Order("created_at DESC, id DESC").Find(&partners).Error; err != nil {
		logger.Error("Failed to list partners", err)
		return nil, err
	}
	return partners, nil
}

func (r *partnerRepository) UpdateRegion(id uint, regionKey string, isRegionalCenter bool) error {
	logger.Debug("Updating partner region", map[string]interface{}{
		"partner_id": id,
		"region_key": regionKey,
	})

	res := r.db.Model(&model.Partner{}).Where("id = ?", id).Updates(map[string]interface{}{
		"region_key":         regionKey,
		"is_regional_center": isRegionalCenter,
	})
	if res.Error != nil {
		logger.Error("Failed to update partner region", res.Error, map[string]interface{}{
			"partner_id": id,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *partnerRepository) SetRegionalCenterFlag(id uint, isRegionalCenter bool) error {
	return r.db.Model(&model.Partner{}).Where("id = ?", id).Update("is_regional_center", isRegionalCenter).Error
}

func (r *partnerRepository) CreateCenter(center *model.RegionalCenter) error {
	logger.Debug("Creating regional center in database", map[string]interface{}{
		"region_key": center.RegionKey,
		"partner_id": center.PartnerID,
		"slot":       center.Slot,
	})

	if err := r.db.Create(center).Error; err != nil {
		if !IsDuplicateKey(err) {
			logger.Error("Failed to create regional center", err, map[string]interface{}{
				"region_key": center.RegionKey,
				"partner_id": center.PartnerID,
			})
		}
		return err
	}
	return nil
}

func (r *partnerRepository) FindCenter(regionKey string, partnerID uint) (*model.RegionalCenter, error) {
	var center model.RegionalCenter
	err := r.db.Where("region_key = ? AND partner_id = ?", regionKey, partnerID).First(&center).Error
	if err != nil {
		return nil, err
	}
	return &center, nil
}

func (r *partnerRepository) UsedSlots(regionKey string) ([]int, error) {
	var slots []int
	err := r.db.Model(&model.RegionalCenter{}).
		Where("region_key = ?", regionKey).
		Order("slot ASC").
		Pluck("slot", &slots).Error
	return slots, err
}

func (r *partnerRepository) CountCenters(regionKey string) (int64, error) {
	var count int64
	err := r.db.Model(&model.RegionalCenter{}).Where("region_key = ?", regionKey).Count(&count).Error
	return count, err
}

// ListCentersByRegion 먼저 등록된 순, 최대 4개
func (r *partnerRepository) ListCentersByRegion(regionKey string) ([]model.RegionalCenter, error) {
	centers := []model.RegionalCenter{}
	err := r.db.Where("region_key = ?", regionKey).
		Order("created_at ASC, id ASC").
		Limit(model.MaxRegionalCentersPerRegion).
		Find(&centers).Error
	if err != nil {
		logger.Error("Failed to list regional centers", err, map[string]interface{}{
			"region_key": regionKey,
		})
		return nil, err
	}
	return centers, nil
}

func (r *partnerRepository) ListAllCenters() ([]model.RegionalCenter, error) {
	centers := []model.RegionalCenter{}
	if err := r.db.Order("region_key ASC, created_at ASC, id ASC").Find(&centers).Error; err != nil {
		logger.Error("Failed to list all regional centers", err)
		return nil, err
	}
	return centers, nil
}

func (r *partnerRepository) DeleteCenter(regionKey string, partnerID uint) (int64, error) {
	res := r.db.Where("region_key = ? AND partner_id = ?", regionKey, partnerID).Delete(&model.RegionalCenter{})
	if res.Error != nil {
		logger.Error("Failed to delete regional center", res.Error, map[string]interface{}{
			"region_key": regionKey,
			"partner_id": partnerID,
		})
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *partnerRepository) DeleteCentersByPartner(partnerID uint) (int64, error) {
	res := r.db.Where("partner_id = ?", partnerID).Delete(&model.RegionalCenter{})
	return res.RowsAffected, res.Error
}
