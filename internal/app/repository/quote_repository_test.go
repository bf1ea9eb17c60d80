package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteRepository_ListRequestsByApplicant(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewQuoteRepository(conn)
	now := time.Now()

	byPhone := createQuoteRequest(t, conn, "010-1111-2222", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, now.Add(-2*time.Hour))
	byEmail := createQuoteRequest(t, conn, "010-9999-9999", "kim@example.com", "서울특별시", "강남구", model.FacilityTypeNursingHome, now.Add(-time.Hour))
	createQuoteRequest(t, conn, "", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, now)

	t.Run("phone or email", func(t *testing.T) {
		requests, err := repo.ListRequestsByApplicant("010-1111-2222", "kim@example.com")
		require.NoError(t, err)
		require.Len(t, requests, 2)
		assert.Equal(t, byEmail.QuoteID, requests[0].QuoteID, "newest first")
		assert.Equal(t, byPhone.QuoteID, requests[1].QuoteID)
	})

	t.Run("empty email never matches", func(t *testing.T) {
		requests, err := repo.ListRequestsByApplicant("010-1111-2222", "")
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, byPhone.QuoteID, requests[0].QuoteID)
	})

	t.Run("no contact details", func(t *testing.T) {
		requests, err := repo.ListRequestsByApplicant("", "  ")
		require.NoError(t, err)
		assert.Empty(t, requests)

		count, err := repo.CountRequestsByApplicant("", "")
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestQuoteRepository_NewRequestsExcludeAnswered(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewQuoteRepository(conn)
	now := time.Now()

	facility := createFacilityUser(t, conn, "gangnam@example.com", "서울특별시", "강남구", model.FacilityTypeNursingHome)
	other := createFacilityUser(t, conn, "other@example.com", "서울특별시", "강남구", model.FacilityTypeNursingHome)

	answered := createQuoteRequest(t, conn, "010-1", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, now.Add(-time.Hour))
	open := createQuoteRequest(t, conn, "010-2", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, now)
	createQuoteRequest(t, conn, "010-3", "", "서울특별시", "서초구", model.FacilityTypeNursingHome, now)
	createQuoteRequest(t, conn, "010-4", "", "서울특별시", "강남구", model.FacilityTypeNursingHospital, now)
	closed := createQuoteRequest(t, conn, "010-5", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, now)
	require.NoError(t, repo.UpdateRequestStatus(closed.QuoteID, model.QuoteStatusPending, model.QuoteStatusCompleted))

	createQuoteResponse(t, conn, answered.QuoteID, facility.ID, model.ResponseStatusSent)

	requests, err := repo.ListNewRequestsForFacility(facility.ID, "서울특별시", "강남구", model.FacilityTypeNursingHome, 50)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, open.QuoteID, requests[0].QuoteID)

	count, err := repo.CountNewRequestsForFacility(facility.ID, "서울특별시", "강남구", model.FacilityTypeNursingHome)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 다른 시설의 응답은 목록에 영향 없음
	requests, err = repo.ListNewRequestsForFacility(other.ID, "서울특별시", "강남구", model.FacilityTypeNursingHome, 50)
	require.NoError(t, err)
	assert.Len(t, requests, 2)
}

func TestQuoteRepository_NewRequestsLimit(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewQuoteRepository(conn)
	facility := createFacilityUser(t, conn, "f@example.com", "부산광역시", "해운대구", model.FacilityTypeDayNightCare)

	base := time.Now()
	for i := 0; i < 5; i++ {
		createQuoteRequest(t, conn, "010", "", "부산광역시", "해운대구", model.FacilityTypeDayNightCare, base.Add(time.Duration(i)*time.Minute))
	}

	requests, err := repo.ListNewRequestsForFacility(facility.ID, "부산광역시", "해운대구", model.FacilityTypeDayNightCare, 3)
	require.NoError(t, err)
	require.Len(t, requests, 3)
	assert.True(t, !requests[0].CreatedAt.Before(requests[1].CreatedAt))
}

func TestQuoteRepository_CountResponsesByQuoteIDs(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewQuoteRepository(conn)
	now := time.Now()

	f1 := createFacilityUser(t, conn, "f1@example.com", "서울특별시", "강남구", model.FacilityTypeNursingHome)
	f2 := createFacilityUser(t, conn, "f2@example.com", "서울특별시", "강남구", model.FacilityTypeNursingHome)
	q1 := createQuoteRequest(t, conn, "010", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, now)
	q2 := createQuoteRequest(t, conn, "010", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, now)
	q3 := createQuoteRequest(t, conn, "010", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, now)

	createQuoteResponse(t, conn, q1.QuoteID, f1.ID, model.ResponseStatusSent)
	createQuoteResponse(t, conn, q1.QuoteID, f2.ID, model.ResponseStatusAccepted)
	createQuoteResponse(t, conn, q2.QuoteID, f1.ID, model.ResponseStatusViewed)

	counts, err := repo.CountResponsesByQuoteIDs([]string{q1.QuoteID, q2.QuoteID, q3.QuoteID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[q1.QuoteID])
	assert.Equal(t, int64(1), counts[q2.QuoteID])
	assert.Equal(t, int64(0), counts[q3.QuoteID])

	accepted, err := repo.CountResponsesForQuotesByStatus([]string{q1.QuoteID, q2.QuoteID}, model.ResponseStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), accepted)

	empty, err := repo.CountResponsesByQuoteIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestQuoteRepository_DuplicateResponseRejected(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewQuoteRepository(conn)

	facility := createFacilityUser(t, conn, "f@example.com", "서울특별시", "강남구", model.FacilityTypeNursingHome)
	req := createQuoteRequest(t, conn, "010", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, time.Now())

	require.NoError(t, repo.CreateResponse(&model.QuoteResponse{
		ResponseID: "RESP-a", QuoteID: req.QuoteID, PartnerID: facility.ID, EstimatedPrice: 1, Status: model.ResponseStatusSent,
	}))
	err := repo.CreateResponse(&model.QuoteResponse{
		ResponseID: "RESP-b", QuoteID: req.QuoteID, PartnerID: facility.ID, EstimatedPrice: 2, Status: model.ResponseStatusSent,
	})
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	var count int64
	conn.Model(&model.QuoteResponse{}).Where("quote_id = ?", req.QuoteID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestQuoteRepository_ResponsesByPartnerAndViewed(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewQuoteRepository(conn)

	facility := createFacilityUser(t, conn, "f@example.com", "서울특별시", "강남구", model.FacilityTypeNursingHome)
	req := createQuoteRequest(t, conn, "010", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, time.Now())
	resp := createQuoteResponse(t, conn, req.QuoteID, facility.ID, model.ResponseStatusSent)

	rows, err := repo.ListResponsesByPartner(facility.ID, 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, resp.ResponseID, rows[0].ResponseID)
	assert.Equal(t, "홍길동", rows[0].ApplicantName)
	assert.Equal(t, "홍부모", rows[0].PatientName)
	assert.Equal(t, 82, rows[0].PatientAge)

	updated, err := repo.MarkResponsesViewed(req.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	viewed, err := repo.CountResponsesByPartner(facility.ID, model.ResponseStatusViewed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), viewed)

	// 이미 viewed 인 응답은 다시 바뀌지 않음
	updated, err = repo.MarkResponsesViewed(req.QuoteID)
	require.NoError(t, err)
	assert.Zero(t, updated)

	open := model.OpenResponseStatuses
	assert.ErrorIs(t, repo.UpdateResponseStatus("RESP-missing", open, model.ResponseStatusAccepted), ErrStatusChanged)

	// 먼저 확정된 결정을 덮어쓰지 않는다
	require.NoError(t, repo.UpdateResponseStatus(resp.ResponseID, open, model.ResponseStatusAccepted))
	assert.ErrorIs(t, repo.UpdateResponseStatus(resp.ResponseID, open, model.ResponseStatusRejected), ErrStatusChanged)
	found, err := repo.FindResponseByResponseID(resp.ResponseID)
	require.NoError(t, err)
	assert.Equal(t, model.ResponseStatusAccepted, found.Status)
}

func TestQuoteRepository_UpdateRequestStatusIsConditional(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewQuoteRepository(conn)
	req := createQuoteRequest(t, conn, "010", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, time.Now())

	require.NoError(t, repo.UpdateRequestStatus(req.QuoteID, model.QuoteStatusPending, model.QuoteStatusCancelled))
	// 같은 pending 을 보고 들어온 두 번째 변경은 실패
	assert.ErrorIs(t, repo.UpdateRequestStatus(req.QuoteID, model.QuoteStatusPending, model.QuoteStatusCompleted), ErrStatusChanged)
	assert.ErrorIs(t, repo.UpdateRequestStatus("Q-missing", model.QuoteStatusPending, model.QuoteStatusCompleted), ErrStatusChanged)

	found, err := repo.FindRequestByQuoteID(req.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusCancelled, found.Status)
}

func TestQuoteRepository_ListResponsesByQuoteIDExposesOnlyFacilityName(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewQuoteRepository(conn)

	facility := createFacilityUser(t, conn, "home@example.com", "서울특별시", "강남구", model.FacilityTypeNursingHome)
	req := createQuoteRequest(t, conn, "010", "", "서울특별시", "강남구", model.FacilityTypeNursingHome, time.Now())
	createQuoteResponse(t, conn, req.QuoteID, facility.ID, model.ResponseStatusSent)

	responses, err := repo.ListResponsesByQuoteID(req.QuoteID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "시설 home@example.com", responses[0].FacilityName)
	assert.Nil(t, responses[0].Partner)

	body, err := json.Marshal(responses[0])
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"email"`)
	assert.NotContains(t, string(body), `"partner"`)
	assert.Contains(t, string(body), `"facility_name"`)
}
