package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createFacilityUser(t *testing.T, conn *gorm.DB, email, sido, sigungu, facilityType string) *model.User {
	t.Helper()
	user := &model.User{
		UserType:     model.UserTypeFacility,
		Email:        email,
		PasswordHash: "hash",
		Name:         "시설 " + email,
		Sido:         sido,
		Sigungu:      sigungu,
		FacilityType: facilityType,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

var quoteSeq int

func createQuoteRequest(t *testing.T, conn *gorm.DB, phone, email, sido, sigungu, facilityType string, createdAt time.Time) *model.QuoteRequest {
	t.Helper()
	quoteSeq++
	req := &model.QuoteRequest{
		QuoteID:        fmt.Sprintf("Q-test-%d", quoteSeq),
		QuoteType:      model.QuoteTypeSimple,
		ApplicantName:  "홍길동",
		ApplicantPhone: phone,
		ApplicantEmail: email,
		PatientName:    "홍부모",
		PatientAge:     82,
		Sido:           sido,
		Sigungu:        sigungu,
		FacilityType:   facilityType,
		Status:         model.QuoteStatusPending,
		CreatedAt:      createdAt,
	}
	require.NoError(t, conn.Create(req).Error)
	return req
}

var responseSeq int

func createQuoteResponse(t *testing.T, conn *gorm.DB, quoteID string, partnerID uint, status model.QuoteResponseStatus) *model.QuoteResponse {
	t.Helper()
	responseSeq++
	resp := &model.QuoteResponse{
		ResponseID:     fmt.Sprintf("RESP-test-%d", responseSeq),
		QuoteID:        quoteID,
		PartnerID:      partnerID,
		EstimatedPrice: 2000000,
		Status:         status,
	}
	require.NoError(t, conn.Create(resp).Error)
	return resp
}
