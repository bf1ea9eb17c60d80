package repository

import (
	"context"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"gorm.io/gorm"
)

// SessionStore 사용자/관리자 세션 저장소 (DB 또는 redis)
// Find* 는 세션이 없으면 ErrSessionNotFound 를 반환한다. 만료 판단은 호출자 몫.
type SessionStore interface {
	CreateUserSession(ctx context.Context, session *model.UserSession) error
	FindUserSession(ctx context.Context, sessionID string) (*model.UserSession, error)
	DeleteUserSession(ctx context.Context, sessionID string) error
	CreateAdminSession(ctx context.Context, session *model.AdminSession) error
	FindAdminSession(ctx context.Context, sessionID string) (*model.AdminSession, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type gormSessionStore struct {
	db *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) SessionStore {
	return &gormSessionStore{db: db}
}

func (s *gormSessionStore) CreateUserSession(ctx context.Context, session *model.UserSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		logger.Error("Failed to create user session", err, map[string]interface{}{
			"user_id": session.UserID,
		})
		return err
	}
	return nil
}

func (s *gormSessionStore) FindUserSession(ctx context.Context, sessionID string) (*model.UserSession, error) {
	var session model.UserSession
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		logger.Error("Failed to find user session", err)
		return nil, err
	}
	return &session, nil
}

// DeleteUserSession 없는 세션 삭제는 에러가 아님
func (s *gormSessionStore) DeleteUserSession(ctx context.Context, sessionID string) error {
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&model.UserSession{}).Error; err != nil {
		logger.Error("Failed to delete user session", err)
		return err
	}
	return nil
}

func (s *gormSessionStore) CreateAdminSession(ctx context.Context, session *model.AdminSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		logger.Error("Failed to create admin session", err)
		return err
	}
	return nil
}

func (s *gormSessionStore) FindAdminSession(ctx context.Context, sessionID string) (*model.AdminSession, error) {
	var session model.AdminSession
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		logger.Error("Failed to find admin session", err)
		return nil, err
	}
	return &session, nil
}

func (s *gormSessionStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&model.AdminSession{}).Error; err != nil {
		logger.Error("Failed to delete admin session", err)
		return err
	}
	return nil
}

func (s *gormSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("expires_at <= ?", now).Delete(&model.UserSession{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected

		res = tx.Where("expires_at <= ?", now).Delete(&model.AdminSession{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete expired sessions", err)
		return 0, err
	}

	logger.Debug("Expired sessions deleted", map[string]interface{}{
		"deleted": total,
	})
	return total, nil
}
