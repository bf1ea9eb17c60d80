package model

import (
	"time"

	"gorm.io/datatypes"
)

// Facility 지역별 시설 디렉터리 (오프라인 일괄 등록)
type Facility struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	FacilityType string    `gorm:"not null;index:idx_facilities_lookup" json:"facility_type"`
	Name         string    `gorm:"not null" json:"name"`
	PostalCode   string    `gorm:"type:varchar(10)" json:"postal_code"`
	Address      string    `gorm:"type:text" json:"address"`
	Phone        string    `gorm:"type:varchar(30)" json:"phone"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Sido         string    `gorm:"index:idx_facilities_lookup" json:"sido"`
	Sigungu      string    `gorm:"index:idx_facilities_lookup" json:"sigungu"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Details *FacilityDetails `gorm:"foreignKey:FacilityID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"details,omitempty"`
}

func (Facility) TableName() string {
	return "facilities"
}

// HasCoordinates 위경도가 등록되어 있는지
func (f *Facility) HasCoordinates() bool {
	return f.Latitude != 0 || f.Longitude != 0
}

// FacilityDetails 시설 상세정보 (추정 생성 또는 관리자 수정)
type FacilityDetails struct {
	FacilityID     uint                        `gorm:"primaryKey;autoIncrement:false" json:"facility_id"`
	Specialties    datatypes.JSONSlice[string] `json:"specialties"`
	AdmissionTypes datatypes.JSONSlice[string] `json:"admission_types"`
	MonthlyCost    *int64                      `json:"monthly_cost"`
	Deposit        *int64                      `json:"deposit"`
	Notes          string                      `gorm:"type:text" json:"notes"`
	UpdatedBy      string                      `gorm:"type:varchar(40)" json:"updated_by"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

func (FacilityDetails) TableName() string {
	return "facility_details"
}

// 상세정보 작성 주체
const (
	DetailsUpdatedByGenerator = "auto_generator"
	DetailsUpdatedByAdmin     = "admin"
)
