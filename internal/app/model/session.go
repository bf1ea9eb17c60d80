package model

import (
	"time"
)

// UserSession 로그인 세션 (쿠키에는 서명된 토큰으로 session_id 만 전달)
type UserSession struct {
	SessionID string    `gorm:"type:varchar(64);primaryKey" json:"session_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	UserType  UserType  `gorm:"type:varchar(20);not null" json:"user_type"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}

// AdminSessionTTL 관리자 세션 유효 시간 (설정으로 바꾸지 않음)
const AdminSessionTTL = time.Hour

// AdminSession 관리자 세션 (고정 TTL, 연장 없음)
type AdminSession struct {
	SessionID string    `gorm:"type:varchar(64);primaryKey" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

func (AdminSession) TableName() string {
	return "admin_sessions"
}

// IsExpired 만료 여부
func (s *AdminSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsExpired 만료 여부
func (s *UserSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
