package repository

import (
	"testing"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createPartner(t *testing.T, conn *gorm.DB, name string) *model.Partner {
	t.Helper()
	partner := &model.Partner{
		FacilityName: name,
		FacilityType: model.FacilityTypeNursingHome,
		ManagerName:  "담당자",
		ManagerPhone: "010-0000-0000",
	}
	require.NoError(t, conn.Create(partner).Error)
	return partner
}

func TestPartnerRepository_CenterSlotsAreUnique(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewPartnerRepository(conn)
	key := model.RegionKey("서울특별시", "강남구")

	p1 := createPartner(t, conn, "가")
	p2 := createPartner(t, conn, "나")

	require.NoError(t, repo.CreateCenter(&model.RegionalCenter{RegionKey: key, Slot: 1, PartnerID: p1.ID}))

	err := repo.CreateCenter(&model.RegionalCenter{RegionKey: key, Slot: 1, PartnerID: p2.ID})
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err), "same slot twice")

	err = repo.CreateCenter(&model.RegionalCenter{RegionKey: key, Slot: 2, PartnerID: p1.ID})
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err), "same partner twice in a region")

	count, err := repo.CountCenters(key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPartnerRepository_SlotRangeChecked(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewPartnerRepository(conn)
	p := createPartner(t, conn, "가")

	err := repo.CreateCenter(&model.RegionalCenter{RegionKey: "서울특별시_강남구", Slot: 5, PartnerID: p.ID})
	assert.Error(t, err)
}

func TestPartnerRepository_ListCentersOldestFirst(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewPartnerRepository(conn)
	key := model.RegionKey("대전광역시", "유성구")

	var ids []uint
	for i, name := range []string{"가", "나", "다"} {
		p := createPartner(t, conn, name)
		require.NoError(t, repo.CreateCenter(&model.RegionalCenter{RegionKey: key, Slot: 3 - i, PartnerID: p.ID, FacilityName: name}))
		ids = append(ids, p.ID)
	}

	centers, err := repo.ListCentersByRegion(key)
	require.NoError(t, err)
	require.Len(t, centers, 3)
	for i, c := range centers {
		assert.Equal(t, ids[i], c.PartnerID)
	}

	slots, err := repo.UsedSlots(key)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, slots)

	empty, err := repo.ListCentersByRegion("제주특별자치도_제주시")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestPartnerRepository_DeleteCenterMissingIsNoop(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewPartnerRepository(conn)
	p := createPartner(t, conn, "가")

	deleted, err := repo.DeleteCenter("서울특별시_강남구", p.ID)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestPartnerRepository_UpdateRegion(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewPartnerRepository(conn)
	p := createPartner(t, conn, "가")

	require.NoError(t, repo.UpdateRegion(p.ID, "서울특별시_강남구", false))
	found, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	require.NotNil(t, found.RegionKey)
	assert.Equal(t, "서울특별시_강남구", *found.RegionKey)

	assert.True(t, IsNotFound(repo.UpdateRegion(9999, "서울특별시_강남구", false)))
}
