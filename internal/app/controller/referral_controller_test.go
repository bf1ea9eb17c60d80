package controller

import (
	"net/http"
	"testing"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReferralBody() gin.H {
	return gin.H{
		"patient_name":         "박환자",
		"patient_age":          78,
		"patient_condition":    "뇌졸중 후 재활 필요",
		"referral_type":        "퇴원",
		"preferred_region":     "경기도",
		"target_facility_type": "요양병원",
		"urgency_level":        "긴급",
		"notes":                "보호자 연락 요망",
	}
}

func TestReferralController_Submit(t *testing.T) {
	env := setupControllerTest(t)
	_, managerCookie := env.register(t, service.RegisterInput{
		Email: "hospital@example.com", Name: "이담당", Phone: "02-100-1000",
		UserType: model.UserTypeHospitalManager, OrganizationName: "한빛병원",
	})
	_, customerCookie := env.customer(t, "c@example.com", "010-5000-0001")

	t.Run("Customer is forbidden", func(t *testing.T) {
		w, _ := env.do(t, http.MethodPost, "/api/partner/referral", validReferralBody(), customerCookie)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Every invalid field is reported", func(t *testing.T) {
		body := validReferralBody()
		body["patient_age"] = 0
		body["referral_type"] = "전원"
		body["urgency_level"] = "매우급함"
		body["preferred_region"] = "서울"

		w, response := env.do(t, http.MethodPost, "/api/partner/referral", body, managerCookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_INVALID_INPUT", response["error"])
		fields := response["fields"].(map[string]interface{})
		assert.Len(t, fields, 4)
		assert.Contains(t, fields, "patient_age")
		assert.Contains(t, fields, "referral_type")
		assert.Contains(t, fields, "urgency_level")
		assert.Contains(t, fields, "preferred_region")
	})

	t.Run("Valid referral", func(t *testing.T) {
		w, response := env.do(t, http.MethodPost, "/api/partner/referral", validReferralBody(), managerCookie)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Regexp(t, `^REF`, response["referralId"])
	})

	w, response := env.do(t, http.MethodGet, "/api/partner/referrals", nil, managerCookie)
	require.Equal(t, http.StatusOK, w.Code)
	referrals := dataOf(t, response)["referrals"].([]interface{})
	require.Len(t, referrals, 1)
	assert.Equal(t, "pending", referrals[0].(map[string]interface{})["status"])
}

func TestReferralController_AdminStatus(t *testing.T) {
	env := setupControllerTest(t)
	_, managerCookie := env.register(t, service.RegisterInput{
		Email: "welfare@example.com", Name: "최복지", Phone: "02-200-2000",
		UserType: model.UserTypeWelfareManager, OrganizationName: "행복복지관",
	})
	adminCookie := env.adminCookie(t)

	w, response := env.do(t, http.MethodPost, "/api/partner/referral", validReferralBody(), managerCookie)
	require.Equal(t, http.StatusCreated, w.Code)
	referralID := response["referralId"].(string)

	path := "/api/admin/referrals/" + referralID + "/status"

	w, _ = env.do(t, http.MethodPut, path, gin.H{"status": "matched"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodPut, path, gin.H{"status": "matched"}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	w, response = env.do(t, http.MethodPut, path, gin.H{"status": "pending"}, adminCookie)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "REFERRAL_INVALID_TRANSITION", response["error"])

	w, _ = env.do(t, http.MethodPut, path, gin.H{"status": "completed"}, adminCookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w, response = env.do(t, http.MethodPut, "/api/admin/referrals/REF-NONE/status", gin.H{"status": "matched"}, adminCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REFERRAL_NOT_FOUND", response["error"])
}
