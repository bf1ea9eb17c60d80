package service

import (
	"context"
	"testing"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_Login(t *testing.T) {
	testDB := setupTestDB(t)
	sessions := repository.NewGormSessionStore(testDB)
	ctx := context.Background()

	t.Run("Plain password", func(t *testing.T) {
		adminService := NewAdminService(sessions, repository.NewPartnerRepository(testDB),
			repository.NewFamilyCareRepository(testDB), "secret-pw", "")

		_, err := adminService.Login(ctx, "wrong")
		assert.ErrorIs(t, err, ErrInvalidAdminPassword)

		session, err := adminService.Login(ctx, "secret-pw")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

		found, err := adminService.ValidateSession(ctx, session.SessionID)
		require.NoError(t, err)
		assert.Equal(t, session.SessionID, found.SessionID)
	})

	t.Run("Bcrypt hash takes precedence", func(t *testing.T) {
		hash, err := util.HashPassword("hashed-pw")
		require.NoError(t, err)
		adminService := NewAdminService(sessions, repository.NewPartnerRepository(testDB),
			repository.NewFamilyCareRepository(testDB), "secret-pw", hash)

		_, err = adminService.Login(ctx, "secret-pw")
		assert.ErrorIs(t, err, ErrInvalidAdminPassword)
		_, err = adminService.Login(ctx, "hashed-pw")
		assert.NoError(t, err)
	})

	t.Run("Not configured", func(t *testing.T) {
		adminService := NewAdminService(sessions, repository.NewPartnerRepository(testDB),
			repository.NewFamilyCareRepository(testDB), "", "")
		_, err := adminService.Login(ctx, "")
		assert.ErrorIs(t, err, ErrAdminNotConfigured)
	})
}

func TestAdminService_SessionLifecycle(t *testing.T) {
	testDB := setupTestDB(t)
	sessions := repository.NewGormSessionStore(testDB)
	adminService := NewAdminService(sessions, repository.NewPartnerRepository(testDB),
		repository.NewFamilyCareRepository(testDB), "pw", "")
	ctx := context.Background()

	t.Run("Expired session is treated as absent", func(t *testing.T) {
		expired := &model.AdminSession{SessionID: "expired", ExpiresAt: time.Now().Add(-time.Second)}
		require.NoError(t, sessions.CreateAdminSession(ctx, expired))

		_, err := adminService.ValidateSession(ctx, "expired")
		assert.ErrorIs(t, err, ErrAdminSessionInvalid)
	})

	t.Run("Unknown and empty ids", func(t *testing.T) {
		_, err := adminService.ValidateSession(ctx, "nope")
		assert.ErrorIs(t, err, ErrAdminSessionInvalid)
		_, err = adminService.ValidateSession(ctx, "")
		assert.ErrorIs(t, err, ErrAdminSessionInvalid)
	})

	t.Run("Logout is idempotent", func(t *testing.T) {
		session, err := adminService.Login(ctx, "pw")
		require.NoError(t, err)

		require.NoError(t, adminService.Logout(ctx, session.SessionID))
		_, err = adminService.ValidateSession(ctx, session.SessionID)
		assert.ErrorIs(t, err, ErrAdminSessionInvalid)

		assert.NoError(t, adminService.Logout(ctx, session.SessionID))
		assert.NoError(t, adminService.Logout(ctx, ""))
	})
}

func TestAdminService_GetData(t *testing.T) {
	testDB := setupTestDB(t)
	partnerRepo := repository.NewPartnerRepository(testDB)
	familyCareRepo := repository.NewFamilyCareRepository(testDB)
	adminService := NewAdminService(repository.NewGormSessionStore(testDB), partnerRepo, familyCareRepo, "pw", "")
	regional := NewRegionalService(testDB, partnerRepo)
	ctx := context.Background()

	empty, err := adminService.GetData(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty.Partners)
	assert.Equal(t, 0, empty.Counts.Partners)

	partner := &model.Partner{FacilityName: "강남요양원", FacilityType: model.FacilityTypeNursingHome, ManagerName: "김", ManagerPhone: "010"}
	require.NoError(t, partnerRepo.Create(partner))
	require.NoError(t, familyCareRepo.Create(&model.FamilyCare{GuardianName: "이", GuardianPhone: "010"}))
	_, err = regional.SetPartnerRegion(ctx, partner.ID, "서울특별시_강남구")
	require.NoError(t, err)
	_, err = regional.ToggleRegionalCenter(ctx, partner.ID, true)
	require.NoError(t, err)

	data, err := adminService.GetData(ctx)
	require.NoError(t, err)
	assert.Equal(t, AdminCounts{Partners: 1, FamilyCare: 1, RegionalCenters: 1}, data.Counts)
	assert.Equal(t, "강남요양원", data.RegionalCenters[0].FacilityName)
}
