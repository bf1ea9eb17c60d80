package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const gangnamKey = "서울특별시_강남구"

func setupRegionalServiceTest(t *testing.T) (RegionalService, repository.PartnerRepository, *gorm.DB) {
	testDB := setupTestDB(t)
	partnerRepo := repository.NewPartnerRepository(testDB)
	return NewRegionalService(testDB, partnerRepo), partnerRepo, testDB
}

func createPartnerInRegion(t *testing.T, regional RegionalService, partnerRepo repository.PartnerRepository, name, regionKey string) *model.Partner {
	t.Helper()
	partner := &model.Partner{
		FacilityName: name,
		FacilityType: model.FacilityTypeNursingHome,
		ManagerName:  "담당자",
		ManagerPhone: "010-0000-0000",
	}
	require.NoError(t, partnerRepo.Create(partner))
	if regionKey != "" {
		_, err := regional.SetPartnerRegion(context.Background(), partner.ID, regionKey)
		require.NoError(t, err)
	}
	return partner
}

func TestRegionalService_SetPartnerRegion(t *testing.T) {
	regional, partnerRepo, _ := setupRegionalServiceTest(t)
	ctx := context.Background()
	partner := createPartnerInRegion(t, regional, partnerRepo, "강남요양원", "")

	t.Run("Key outside the region table", func(t *testing.T) {
		_, err := regional.SetPartnerRegion(ctx, partner.ID, "서울특별시_해운대구")
		assert.ErrorIs(t, err, ErrInvalidRegion)
		_, err = regional.SetPartnerRegion(ctx, partner.ID, "강남구")
		assert.ErrorIs(t, err, ErrInvalidRegion)
	})

	t.Run("Unknown partner", func(t *testing.T) {
		_, err := regional.SetPartnerRegion(ctx, 9999, gangnamKey)
		assert.ErrorIs(t, err, ErrPartnerNotFound)
	})

	t.Run("Moving a regional center releases its old slot", func(t *testing.T) {
		updated, err := regional.SetPartnerRegion(ctx, partner.ID, gangnamKey)
		require.NoError(t, err)
		assert.Equal(t, gangnamKey, *updated.RegionKey)

		_, err = regional.ToggleRegionalCenter(ctx, partner.ID, true)
		require.NoError(t, err)

		// 같은 지역 재지정은 대표 센터 유지
		same, err := regional.SetPartnerRegion(ctx, partner.ID, gangnamKey)
		require.NoError(t, err)
		assert.True(t, same.IsRegionalCenter)

		moved, err := regional.SetPartnerRegion(ctx, partner.ID, "서울특별시_서초구")
		require.NoError(t, err)
		assert.False(t, moved.IsRegionalCenter)

		centers, err := regional.GetCentersForRegion(ctx, gangnamKey)
		require.NoError(t, err)
		assert.Empty(t, centers)

		stored, err := partnerRepo.FindByID(partner.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsRegionalCenter)
	})
}

func TestRegionalService_ToggleRegionalCenter(t *testing.T) {
	regional, partnerRepo, _ := setupRegionalServiceTest(t)
	ctx := context.Background()

	t.Run("Partner without region", func(t *testing.T) {
		partner := createPartnerInRegion(t, regional, partnerRepo, "미지정", "")
		_, err := regional.ToggleRegionalCenter(ctx, partner.ID, true)
		assert.ErrorIs(t, err, ErrRegionNotAssigned)

		// 해제는 no-op
		result, err := regional.ToggleRegionalCenter(ctx, partner.ID, false)
		require.NoError(t, err)
		assert.False(t, result.IsRegionalCenter)
	})

	t.Run("Unknown partner", func(t *testing.T) {
		_, err := regional.ToggleRegionalCenter(ctx, 9999, true)
		assert.ErrorIs(t, err, ErrPartnerNotFound)
	})

	partners := make([]*model.Partner, 5)
	for i := range partners {
		partners[i] = createPartnerInRegion(t, regional, partnerRepo, fmt.Sprintf("센터%d", i+1), gangnamKey)
	}

	for i := 0; i < 4; i++ {
		result, err := regional.ToggleRegionalCenter(ctx, partners[i].ID, true)
		require.NoError(t, err)
		assert.True(t, result.IsRegionalCenter)
		assert.Equal(t, i+1, result.Center.Slot)
	}

	t.Run("Enabling twice does not duplicate", func(t *testing.T) {
		result, err := regional.ToggleRegionalCenter(ctx, partners[0].ID, true)
		require.NoError(t, err)
		assert.True(t, result.IsRegionalCenter)

		centers, err := regional.GetCentersForRegion(ctx, gangnamKey)
		require.NoError(t, err)
		assert.Len(t, centers, 4)
	})

	t.Run("Fifth center hits the limit", func(t *testing.T) {
		_, err := regional.ToggleRegionalCenter(ctx, partners[4].ID, true)
		assert.ErrorIs(t, err, ErrRegionCenterLimit)

		stored, err := partnerRepo.FindByID(partners[4].ID)
		require.NoError(t, err)
		assert.False(t, stored.IsRegionalCenter)
	})

	t.Run("Disabling frees the lowest slot", func(t *testing.T) {
		result, err := regional.ToggleRegionalCenter(ctx, partners[1].ID, false)
		require.NoError(t, err)
		assert.False(t, result.IsRegionalCenter)

		enabled, err := regional.ToggleRegionalCenter(ctx, partners[4].ID, true)
		require.NoError(t, err)
		assert.Equal(t, 2, enabled.Center.Slot)

		centers, err := regional.GetCentersForRegion(ctx, gangnamKey)
		require.NoError(t, err)
		require.Len(t, centers, 4)
		// 먼저 등록된 순
		assert.Equal(t, "센터1", centers[0].FacilityName)
		assert.Equal(t, "센터5", centers[3].FacilityName)
	})

	t.Run("Disabling a non-center is a no-op", func(t *testing.T) {
		_, err := regional.ToggleRegionalCenter(ctx, partners[1].ID, false)
		assert.NoError(t, err)
	})
}

func TestRegionalService_GetCentersForRegion(t *testing.T) {
	regional, _, _ := setupRegionalServiceTest(t)
	ctx := context.Background()

	centers, err := regional.GetCentersForRegion(ctx, "부산광역시_해운대구")
	require.NoError(t, err)
	assert.NotNil(t, centers)
	assert.Empty(t, centers)

	_, err = regional.GetCentersForRegion(ctx, "없는지역")
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestLowestFreeSlot(t *testing.T) {
	assert.Equal(t, 1, lowestFreeSlot(nil))
	assert.Equal(t, 3, lowestFreeSlot([]int{1, 2, 4}))
	assert.Equal(t, 1, lowestFreeSlot([]int{2, 3}))
	assert.Equal(t, 0, lowestFreeSlot([]int{1, 2, 3, 4}))
}

func TestRegionalService_ListRegions(t *testing.T) {
	regional, _, _ := setupRegionalServiceTest(t)
	regions := regional.ListRegions()
	require.Len(t, regions, 17)
	assert.Equal(t, "서울특별시", regions[0].Sido)
}
