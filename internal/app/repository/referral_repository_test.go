package repository

import (
	"testing"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReferral(referralID string, submitterID uint, createdAt time.Time) *model.Referral {
	return &model.Referral{
		ReferralID:         referralID,
		SubmitterID:        submitterID,
		SubmitterType:      model.UserTypeHospitalManager,
		PatientName:        "박환자",
		PatientAge:         78,
		PatientCondition:   "재활 필요",
		ReferralType:       "퇴원",
		PreferredRegion:    "서울특별시",
		TargetFacilityType: "요양병원",
		UrgencyLevel:       "보통",
		Status:             model.ReferralStatusPending,
		CreatedAt:          createdAt,
	}
}

func TestReferralRepository(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewReferralRepository(conn)

	manager := &model.User{UserType: model.UserTypeHospitalManager, Email: "h@example.com", Name: "담당", OrganizationName: "병원"}
	other := &model.User{UserType: model.UserTypeWelfareManager, Email: "w@example.com", Name: "복지", OrganizationName: "복지관"}
	require.NoError(t, conn.Create(manager).Error)
	require.NoError(t, conn.Create(other).Error)

	base := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(newReferral("REF-1", manager.ID, base)))
	require.NoError(t, repo.Create(newReferral("REF-2", manager.ID, base.Add(time.Minute))))
	require.NoError(t, repo.Create(newReferral("REF-3", other.ID, base)))

	err := repo.Create(newReferral("REF-1", manager.ID, base))
	assert.True(t, IsDuplicateKey(err))

	t.Run("List by submitter newest first", func(t *testing.T) {
		referrals, err := repo.FindBySubmitter(manager.ID)
		require.NoError(t, err)
		require.Len(t, referrals, 2)
		assert.Equal(t, "REF-2", referrals[0].ReferralID)
		assert.Equal(t, "REF-1", referrals[1].ReferralID)

		empty, err := repo.FindBySubmitter(9999)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("Update status", func(t *testing.T) {
		require.NoError(t, repo.UpdateStatus("REF-1", model.ReferralStatusPending, model.ReferralStatusMatched))
		found, err := repo.FindByReferralID("REF-1")
		require.NoError(t, err)
		assert.Equal(t, model.ReferralStatusMatched, found.Status)

		// 이미 matched 로 바뀐 뒤 pending 기준 변경은 반영되지 않음
		err = repo.UpdateStatus("REF-1", model.ReferralStatusPending, model.ReferralStatusCompleted)
		assert.ErrorIs(t, err, ErrStatusChanged)

		err = repo.UpdateStatus("REF-NONE", model.ReferralStatusPending, model.ReferralStatusMatched)
		assert.ErrorIs(t, err, ErrStatusChanged)
	})
}

func TestFamilyCareRepository(t *testing.T) {
	repo := NewFamilyCareRepository(setupTestDB(t))

	records, err := repo.FindAll()
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, repo.Create(&model.FamilyCare{GuardianName: "한보호", GuardianPhone: "010-7000-0000", PatientName: "한어르신"}))
	require.NoError(t, repo.Create(&model.FamilyCare{GuardianName: "두보호", GuardianPhone: "010-7000-0001", PatientName: "두어르신"}))

	records, err = repo.FindAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "두보호", records[0].GuardianName)
}
