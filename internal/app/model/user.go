package model

import (
	"time"
)

type UserType string // 사용자 유형

const (
	UserTypeCustomer        UserType = "customer"         // 고객(보호자)
	UserTypeFacility        UserType = "facility"         // 요양시설
	UserTypeHospitalManager UserType = "hospital_manager" // 병원 담당자
	UserTypeWelfareManager  UserType = "welfare_manager"  // 복지기관 담당자
)

// IsValid 정의된 사용자 유형인지 확인
func (t UserType) IsValid() bool {
	switch t {
	case UserTypeCustomer, UserTypeFacility, UserTypeHospitalManager, UserTypeWelfareManager:
		return true
	}
	return false
}

// IsPartnerManager 병원/복지기관 담당자 여부 (의뢰 접수 권한)
func (t UserType) IsPartnerManager() bool {
	return t == UserTypeHospitalManager || t == UserTypeWelfareManager
}

type AuthProvider string

const (
	AuthProviderLocal AuthProvider = "local"
	AuthProviderKakao AuthProvider = "kakao"
)

type User struct {
	ID               uint         `gorm:"primarykey" json:"id"`                                  // 사용자 ID
	UserType         UserType     `gorm:"type:varchar(20);not null;index" json:"user_type"`      // 사용자 유형
	Email            string       `gorm:"uniqueIndex;not null" json:"email"`                     // 이메일
	PasswordHash     string       `json:"-"`                                                     // 비밀번호 해시 (소셜 로그인은 빈 값)
	AuthProvider     AuthProvider `gorm:"type:varchar(20);default:'local'" json:"auth_provider"` // 인증 수단
	KakaoID          *string      `gorm:"uniqueIndex" json:"-"`                                  // 카카오 회원번호
	Name             string       `gorm:"not null" json:"name"`                                  // 이름
	Phone            string       `gorm:"index" json:"phone"`                                    // 전화번호
	Address          string       `json:"address"`                                               // 주소 (표시용)
	Sido             string       `gorm:"index:idx_users_region" json:"sido,omitempty"`          // 시/도 (시설 매칭 기준)
	Sigungu          string       `gorm:"index:idx_users_region" json:"sigungu,omitempty"`       // 시/군/구
	FacilityType     string       `json:"facility_type,omitempty"`                               // 시설 유형 (시설 회원)
	OrganizationName string       `json:"organization_name,omitempty"`                           // 기관명 (병원/복지 담당자)
	Department       string       `json:"department,omitempty"`                                  // 부서
	Position         string       `json:"position,omitempty"`                                    // 직책
	IsApproved       bool         `gorm:"default:false" json:"is_approved"`                      // 승인 여부
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
