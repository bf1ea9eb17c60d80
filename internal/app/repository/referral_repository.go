package repository

import (
	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReferralRepository interface {
	WithTx(tx *gorm.DB) ReferralRepository
	Create(referral *model.Referral) error
	FindByReferralID(referralID string) (*model.Referral, error)
	FindBySubmitter(submitterID uint) ([]model.Referral, error)
	UpdateStatus(referralID string, from, to model.ReferralStatus) error
}

type referralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) WithTx(tx *gorm.DB) ReferralRepository {
	return &referralRepository{db: tx}
}

func (r *referralRepository) Create(referral *model.Referral) error {
	logger.Debug("Creating referral in database", map[string]interface{}{
		"referral_id":  referral.ReferralID,
		"submitter_id": referral.SubmitterID,
	})

	if err := r.db.Create(referral).Error; err != nil {
		logger.Error("Failed to create referral in database", err, map[string]interface{}{
			"referral_id": referral.ReferralID,
		})
		return err
	}
	return nil
}

func (r *referralRepository) FindByReferralID(referralID string) (*model.Referral, error) {
	var referral model.Referral
	if err := r.db.Where("referral_id = ?", referralID).First(&referral).Error; err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *referralRepository) FindBySubmitter(submitterID uint) ([]model.Referral, error) {
	referrals := []model.Referral{}
	err := r.db.Where("submitter_id = ?", submitterID).
		Order("created_at DESC, id DESC").
		Find(&referrals).Error
	if err != nil {
		logger.Error("Failed to list referrals by submitter", err, map[string]interface{}{
			"submitter_id": submitterID,
		})
		return nil, err
	}
	return referrals, nil
}

// UpdateStatus from 상태일 때만 to 로 바꾼다
func (r *referralRepository) UpdateStatus(referralID string, from, to model.ReferralStatus) error {
	res := r.db.Model(&model.Referral{}).
		Where("referral_id = ? AND status = ?", referralID, from).
		Update("status", to)
	if res.Error != nil {
		logger.Error("Failed to update referral status", res.Error, map[string]interface{}{
			"referral_id": referralID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}
