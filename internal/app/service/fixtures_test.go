package service

import (
	"context"
	"errors"
	"testing"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/db"
	"github.com/carejoa/carejoa-backend/pkg/oauth/kakao"
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

func createUser(t *testing.T, conn *gorm.DB, user *model.User) *model.User {
	t.Helper()
	if user.PasswordHash == "" {
		user.PasswordHash = "hash"
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func facilityUser(email, sido, sigungu, facilityType string) *model.User {
	return &model.User{
		UserType:     model.UserTypeFacility,
		Email:        email,
		Name:         "시설담당 " + email,
		Phone:        "02-555-0000",
		Sido:         sido,
		Sigungu:      sigungu,
		FacilityType: facilityType,
	}
}

// fakeKakao 카카오 서버 대신 고정된 프로필을 돌려준다
type fakeKakao struct {
	configured  bool
	profile     *kakao.Profile
	exchangeErr error
}

func (f *fakeKakao) Configured() bool { return f.configured }

func (f *fakeKakao) AuthorizeURL(state string) string {
	return "https://kauth.example.com/oauth/authorize?state=" + state
}

func (f *fakeKakao) ExchangeCode(ctx context.Context, code string) (*kakao.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &kakao.Token{AccessToken: "access-" + code}, nil
}

func (f *fakeKakao) GetProfile(ctx context.Context, accessToken string) (*kakao.Profile, error) {
	if f.profile == nil {
		return nil, errors.New("no profile")
	}
	return f.profile, nil
}

func kakaoProfile(id int64, email, nickname string) *kakao.Profile {
	p := &kakao.Profile{ID: id}
	p.Account.Email = email
	p.Account.IsEmailVerified = email != ""
	p.Account.Profile.Nickname = nickname
	return p
}
