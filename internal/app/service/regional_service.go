package service

import (
	"context"
	"errors"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrPartnerNotFound      = errors.New("partner not found")
	ErrRegionNotAssigned    = errors.New("partner has no region assigned")
	ErrRegionCenterLimit    = errors.New("region already has the maximum number of centers")
	ErrRegionCenterConflict = errors.New("regional center slot conflict")
)

// 슬롯 충돌 시 재시도 횟수
const toggleMaxAttempts = 3

var errSlotTaken = errors.New("slot taken by concurrent insert")

// ToggleResult 대표 센터 지정/해제 결과
type ToggleResult struct {
	PartnerID        uint                  `json:"partnerId"`
	RegionKey        string                `json:"regionKey,omitempty"`
	IsRegionalCenter bool                  `json:"isRegionalCenter"`
	Center           *model.RegionalCenter `json:"center,omitempty"`
}

type RegionalService interface {
	SetPartnerRegion(ctx context.Context, partnerID uint, regionKey string) (*model.Partner, error)
	ToggleRegionalCenter(ctx context.Context, partnerID uint, enable bool) (*ToggleResult, error)
	GetCentersForRegion(ctx context.Context, regionKey string) ([]model.RegionalCenter, error)
	ListRegions() []model.Region
}

type regionalService struct {
	db          *gorm.DB
	partnerRepo repository.PartnerRepository
}

func NewRegionalService(db *gorm.DB, partnerRepo repository.PartnerRepository) RegionalService {
	return &regionalService{
		db:          db,
		partnerRepo: partnerRepo,
	}
}

// SetPartnerRegion 다른 지역의 대표 센터였다면 같은 트랜잭션에서 해제한다
func (s *regionalService) SetPartnerRegion(ctx context.Context, partnerID uint, regionKey string) (*model.Partner, error) {
	if _, _, ok := model.ParseRegionKey(regionKey); !ok {
		return nil, ErrInvalidRegion
	}

	var updated *model.Partner
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.partnerRepo.WithTx(tx)

		partner, err := repo.FindByIDForUpdate(partnerID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrPartnerNotFound
			}
			return err
		}

		isCenter := partner.IsRegionalCenter
		if partner.RegionKey != nil && *partner.RegionKey != regionKey {
			removed, err := repo.DeleteCentersByPartner(partnerID)
			if err != nil {
				return err
			}
			if removed > 0 {
				logger.Info("Regional center released by region change", map[string]interface{}{
					"partner_id": partnerID,
					"old_region": *partner.RegionKey,
				})
			}
			isCenter = false
		}

		if err := repo.UpdateRegion(partnerID, regionKey, isCenter); err != nil {
			return err
		}
		partner.RegionKey = &regionKey
		partner.IsRegionalCenter = isCenter
		updated = partner
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Partner region assigned", map[string]interface{}{
		"partner_id": partnerID,
		"region_key": regionKey,
	})
	return updated, nil
}

func (s *regionalService) ToggleRegionalCenter(ctx context.Context, partnerID uint, enable bool) (*ToggleResult, error) {
	if !enable {
		return s.disable(ctx, partnerID)
	}

	for attempt := 1; attempt <= toggleMaxAttempts; attempt++ {
		result, err := s.enable(ctx, partnerID)
		if !errors.Is(err, errSlotTaken) {
			return result, err
		}
		logger.Warn("Regional center slot conflict, retrying", map[string]interface{}{
			"partner_id": partnerID,
			"attempt":    attempt,
		})
	}
	return nil, ErrRegionCenterConflict
}

// enable 가장 낮은 빈 슬롯(1~4)에 넣는다. (region_key, slot) 유니크 인덱스가 동시 삽입을 막는다.
func (s *regionalService) enable(ctx context.Context, partnerID uint) (*ToggleResult, error) {
	var result *ToggleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.partnerRepo.WithTx(tx)

		partner, err := repo.FindByIDForUpdate(partnerID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrPartnerNotFound
			}
			return err
		}
		if partner.RegionKey == nil || *partner.RegionKey == "" {
			return ErrRegionNotAssigned
		}
		regionKey := *partner.RegionKey

		existing, err := repo.FindCenter(regionKey, partnerID)
		if err == nil {
			if !partner.IsRegionalCenter {
				if err := repo.SetRegionalCenterFlag(partnerID, true); err != nil {
					return err
				}
			}
			result = &ToggleResult{PartnerID: partnerID, RegionKey: regionKey, IsRegionalCenter: true, Center: existing}
			return nil
		}
		if !repository.IsNotFound(err) {
			return err
		}

		slots, err := repo.UsedSlots(regionKey)
		if err != nil {
			return err
		}
		slot := lowestFreeSlot(slots)
		if slot == 0 {
			return ErrRegionCenterLimit
		}

		center := &model.RegionalCenter{
			RegionKey:    regionKey,
			Slot:         slot,
			PartnerID:    partner.ID,
			FacilityName: partner.FacilityName,
			FacilityType: partner.FacilityType,
			ManagerName:  partner.ManagerName,
			ManagerPhone: partner.ManagerPhone,
		}
		if err := repo.CreateCenter(center); err != nil {
			if repository.IsDuplicateKey(err) {
				return errSlotTaken
			}
			return err
		}
		if err := repo.SetRegionalCenterFlag(partnerID, true); err != nil {
			return err
		}
		result = &ToggleResult{PartnerID: partnerID, RegionKey: regionKey, IsRegionalCenter: true, Center: center}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Regional center enabled", map[string]interface{}{
		"partner_id": partnerID,
		"region_key": result.RegionKey,
	})
	return result, nil
}

// lowestFreeSlot 사용 중인 슬롯(오름차순)을 보고 빈 슬롯을 찾는다. 없으면 0.
func lowestFreeSlot(used []int) int {
	taken := make(map[int]bool, len(used))
	for _, s := range used {
		taken[s] = true
	}
	for slot := 1; slot <= model.MaxRegionalCentersPerRegion; slot++ {
		if !taken[slot] {
			return slot
		}
	}
	return 0
}

func (s *regionalService) disable(ctx context.Context, partnerID uint) (*ToggleResult, error) {
	var result *ToggleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.partnerRepo.WithTx(tx)

		partner, err := repo.FindByIDForUpdate(partnerID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrPartnerNotFound
			}
			return err
		}
		result = &ToggleResult{PartnerID: partnerID}
		if partner.RegionKey == nil || *partner.RegionKey == "" {
			return nil
		}
		result.RegionKey = *partner.RegionKey

		if _, err := repo.DeleteCenter(*partner.RegionKey, partnerID); err != nil {
			return err
		}
		if partner.IsRegionalCenter {
			return repo.SetRegionalCenterFlag(partnerID, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Regional center disabled", map[string]interface{}{
		"partner_id": partnerID,
		"region_key": result.RegionKey,
	})
	return result, nil
}

func (s *regionalService) GetCentersForRegion(ctx context.Context, regionKey string) ([]model.RegionalCenter, error) {
	if _, _, ok := model.ParseRegionKey(regionKey); !ok {
		return nil, ErrInvalidRegion
	}
	return s.partnerRepo.ListCentersByRegion(regionKey)
}

func (s *regionalService) ListRegions() []model.Region {
	return model.Regions
}
