package model

import (
	"time"
)

// MaxRegionalCentersPerRegion 지역별 대표 상담 기관 최대 수
const MaxRegionalCentersPerRegion = 4

// Partner 공개 파트너 신청서로 등록된 기관
type Partner struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	FacilityName     string    `gorm:"not null" json:"facility_name"`
	FacilityType     string    `gorm:"not null" json:"facility_type"`
	FacilitySido     string    `json:"facility_sido"`
	FacilitySigungu  string    `json:"facility_sigungu"`
	FacilityAddress  string    `json:"facility_address"`
	ManagerName      string    `gorm:"not null" json:"manager_name"`
	ManagerPhone     string    `gorm:"not null" json:"manager_phone"`
	RegionKey        *string   `gorm:"type:varchar(80);index" json:"region_key"` // 관리자가 지정 ("{sido}_{sigungu}")
	IsRegionalCenter bool      `gorm:"default:false" json:"is_regional_center"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Partner) TableName() string {
	return "partners"
}

// RegionalCenter 지역별 대표 상담 기관 (Partner 의 비정규화 사본)
// (region_key, slot) 유니크 + slot 범위 체크로 지역당 4개 상한을 스키마에서 보장한다.
type RegionalCenter struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	RegionKey    string    `gorm:"type:varchar(80);not null;uniqueIndex:idx_regional_centers_region_partner;uniqueIndex:idx_regional_centers_region_slot" json:"region_key"`
	Slot         int       `gorm:"not null;uniqueIndex:idx_regional_centers_region_slot;check:chk_regional_centers_slot,slot >= 1 AND slot <= 4" json:"-"`
	PartnerID    uint      `gorm:"not null;uniqueIndex:idx_regional_centers_region_partner" json:"partner_id"`
	FacilityName string    `json:"facility_name"`
	FacilityType string    `json:"facility_type"`
	ManagerName  string    `json:"manager_name"`
	ManagerPhone string    `json:"manager_phone"`
	CreatedAt    time.Time `json:"created_at"`

	Partner *Partner `gorm:"foreignKey:PartnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (RegionalCenter) TableName() string {
	return "regional_centers"
}

// FamilyCare 가족 간병 신청
type FamilyCare struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	GuardianName  string    `gorm:"not null" json:"guardian_name"`
	GuardianPhone string    `gorm:"not null" json:"guardian_phone"`
	PatientName   string    `json:"patient_name"`
	PatientAge    int       `json:"patient_age"`
	Region        string    `json:"region"`
	Requirements  string    `gorm:"type:text" json:"requirements"`
	CreatedAt     time.Time `json:"created_at"`
}

func (FamilyCare) TableName() string {
	return "family_care"
}
