package repository

import (
	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByKakaoID(kakaoID string) (*model.User, error)
	Update(user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email":     user.Email,
		"user_type": user.UserType,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if !IsNotFound(err) {
			logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
				"user_id": id,
			})
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if !IsNotFound(err) {
			logger.Error("Failed to find user by email in database", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByKakaoID(kakaoID string) (*model.User, error) {
	logger.Debug("Finding user by kakao ID in database", map[string]interface{}{
		"kakao_id": kakaoID,
	})

	var user model.User
	if err := r.db.Where("kakao_id = ?", kakaoID).First(&user).Error; err != nil {
		if !IsNotFound(err) {
			logger.Error("Failed to find user by kakao ID in database", err, map[string]interface{}{
				"kakao_id": kakaoID,
			})
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}
