package repository

import (
	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"gorm.io/gorm"
)

type FamilyCareRepository interface {
	Create(record *model.FamilyCare) error
	FindAll() ([]model.FamilyCare, error)
}

type familyCareRepository struct {
	db *gorm.DB
}

func NewFamilyCareRepository(db *gorm.DB) FamilyCareRepository {
	return &familyCareRepository{db: db}
}

func (r *familyCareRepository) Create(record *model.FamilyCare) error {
	if err := r.db.Create(record).Error; err != nil {
		logger.Error("Failed to create family care record", err)
		return err
	}
	logger.Debug("Family care record created", map[string]interface{}{
		"id": record.ID,
	})
	return nil
}

func (r *familyCareRepository) FindAll() ([]model.FamilyCare, error) {
	records := []model.FamilyCare{}
	if err := r.db.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		logger.Error("Failed to list family care records", err)
		return nil, err
	}
	return records, nil
}
