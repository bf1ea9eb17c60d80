package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFacilities(t *testing.T, env *testEnv) []model.Facility {
	t.Helper()
	facilities := []model.Facility{
		{Name: "강남재활요양병원", FacilityType: "요양병원", Sido: "서울특별시", Sigungu: "강남구", Latitude: 37.4979, Longitude: 127.0276},
		{Name: "역삼치매요양원", FacilityType: "요양원", Sido: "서울특별시", Sigungu: "강남구", Latitude: 37.5006, Longitude: 127.0364},
		{Name: "수원주야간보호센터", FacilityType: "주야간보호", Sido: "경기도", Sigungu: "수원시", Latitude: 37.2636, Longitude: 127.0286},
		{Name: "좌표없는요양원", FacilityType: "요양원", Sido: "서울특별시", Sigungu: "강남구"},
	}
	require.NoError(t, env.db.Create(&facilities).Error)
	return facilities
}

func TestFacilityController_List(t *testing.T) {
	env := setupControllerTest(t)
	seedFacilities(t, env)

	w, response := env.do(t, http.MethodGet, "/api/facilities?sido=서울특별시&sigungu=강남구", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, response)
	assert.Equal(t, float64(3), data["total"])
	assert.Len(t, data["facilities"], 3)

	w, response = env.do(t, http.MethodGet, "/api/facilities?type=요양원", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), dataOf(t, response)["total"])

	// 좌표가 주어지면 가까운 순, 좌표 없는 시설은 마지막
	w, response = env.do(t, http.MethodGet, "/api/facilities?sido=서울특별시&lat=37.5006&lng=127.0364", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := dataOf(t, response)["facilities"].([]interface{})
	require.Len(t, items, 3)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "역삼치매요양원", first["name"])
	assert.Equal(t, float64(0), first["distanceKm"])
	assert.Equal(t, "좌표없는요양원", items[2].(map[string]interface{})["name"])
	assert.NotContains(t, items[2], "distanceKm")

	w, response = env.do(t, http.MethodGet, "/api/facilities?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, response["fields"], "limit")

	w, _ = env.do(t, http.MethodGet, "/api/facilities?sido=서울", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFacilityController_GetAndDetails(t *testing.T) {
	env := setupControllerTest(t)
	facilities := seedFacilities(t, env)
	admin := env.adminCookie(t)
	path := fmt.Sprintf("/api/facilities/%d", facilities[0].ID)

	w, response := env.do(t, http.MethodGet, "/api/facilities/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "FACILITY_NOT_FOUND", response["error"])

	w, _ = env.do(t, http.MethodGet, "/api/facilities/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = env.do(t, http.MethodPost, "/api/admin/facilities/generate-details", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	report := dataOf(t, response)
	assert.Equal(t, float64(4), report["processed"])
	assert.Equal(t, float64(4), report["written"])

	w, response = env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	details := dataOf(t, response)["details"].(map[string]interface{})
	assert.Equal(t, model.DetailsUpdatedByGenerator, details["updated_by"])
	assert.Contains(t, details["specialties"], "재활")

	w, _ = env.do(t, http.MethodPut, path+"/details", gin.H{"notes": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, response = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/facilities/%d/details", facilities[0].ID), gin.H{
		"specialties":  []string{"재활", "호스피스"},
		"monthly_cost": 3200000,
		"notes":        "관리자 확인 완료",
	}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	updated := dataOf(t, response)
	assert.Equal(t, model.DetailsUpdatedByAdmin, updated["updated_by"])
	assert.Equal(t, float64(3200000), updated["monthly_cost"])

	// 덮어쓰기 없이 다시 생성하면 관리자 수정분은 유지
	w, response = env.do(t, http.MethodPost, "/api/admin/facilities/generate-details", gin.H{"overwrite": false}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), dataOf(t, response)["written"])

	w, response = env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	details = dataOf(t, response)["details"].(map[string]interface{})
	assert.Equal(t, "관리자 확인 완료", details["notes"])

	w, _ = env.do(t, http.MethodPut, "/api/admin/facilities/99999/details", gin.H{"notes": "x"}, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntakeController(t *testing.T) {
	env := setupControllerTest(t)

	t.Run("Partner application", func(t *testing.T) {
		w, response := env.do(t, http.MethodPost, "/api/partner", gin.H{
			"facility_name": "햇살요양원",
			"facility_type": "요양원",
			"manager_name":  "정관리",
			"manager_phone": "031-000-0000",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotZero(t, response["partnerId"])

		w, _ = env.do(t, http.MethodPost, "/api/partner", gin.H{
			"facility_name": "햇살요양원",
			"facility_type": "병원",
			"manager_name":  "정관리",
			"manager_phone": "031-000-0000",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Family care application", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, "/api/family-care", gin.H{
			"guardian_name":  "한보호",
			"guardian_phone": "010-7000-0000",
			"patient_name":   "한어르신",
			"patient_age":    88,
			"region":         "서울특별시",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		w, response := env.do(t, http.MethodPost, "/api/family-care", gin.H{"patient_name": "이름만"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, response["fields"], "guardian_name")
	})

	t.Run("Cost calculator", func(t *testing.T) {
		w, response := env.do(t, http.MethodPost, "/api/calculate-cost", gin.H{
			"care_level":    1,
			"facility_type": "요양병원",
			"room_type":     "1인실",
			"region":        "서울특별시",
		})
		require.Equal(t, http.StatusOK, w.Code)
		estimate := dataOf(t, response)
		assert.Equal(t, float64(3100000), estimate["basic"])
		assert.Equal(t, float64(300000), estimate["meal"])
		assert.Equal(t, float64(200000), estimate["nursing"])
		assert.Equal(t, float64(3600000), estimate["total"])
	})
}
