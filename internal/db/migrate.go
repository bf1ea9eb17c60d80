package db

import (
	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models 마이그레이션 대상 (참조되는 테이블이 먼저 오도록 정렬)
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.UserSession{},
		&model.AdminSession{},
		&model.QuoteRequest{},
		&model.QuoteResponse{},
		&model.Partner{},
		&model.RegionalCenter{},
		&model.FamilyCare{},
		&model.Referral{},
		&model.Facility{},
		&model.FacilityDetails{},
	}
}

// Migrate runs database migrations on the package-level connection
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs database migrations on the given connection
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models": len(models),
	})
	return nil
}
