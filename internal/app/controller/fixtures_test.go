package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/internal/app/service"
	"github.com/carejoa/carejoa-backend/internal/db"
	"github.com/carejoa/carejoa-backend/internal/middleware"
	"github.com/carejoa/carejoa-backend/pkg/oauth/kakao"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSessionSecret = "controller-test-secret"
	testAdminPassword = "admin-pass"
)

type testEnv struct {
	router      *gin.Engine
	db          *gorm.DB
	authService service.AuthService
	kakao       *stubKakao
}

// stubKakao 카카오 서버 대신 고정 프로필
type stubKakao struct {
	profile *kakao.Profile
}

func (s *stubKakao) Configured() bool { return true }

func (s *stubKakao) AuthorizeURL(state string) string {
	return "https://kauth.example.com/oauth/authorize?state=" + state
}

func (s *stubKakao) ExchangeCode(ctx context.Context, code string) (*kakao.Token, error) {
	if code == "bad" {
		return nil, errors.New("invalid grant")
	}
	return &kakao.Token{AccessToken: "token-" + code}, nil
}

func (s *stubKakao) GetProfile(ctx context.Context, accessToken string) (*kakao.Profile, error) {
	return s.profile, nil
}

// setupControllerTest 라우터 구성은 운영 라우터와 같은 경로/미들웨어를 사용한다
func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	quoteRepo := repository.NewQuoteRepository(testDB)
	partnerRepo := repository.NewPartnerRepository(testDB)
	familyCareRepo := repository.NewFamilyCareRepository(testDB)
	sessions := repository.NewGormSessionStore(testDB)

	kakaoStub := &stubKakao{}
	authService := service.NewAuthService(userRepo, quoteRepo, sessions, kakaoStub, testSessionSecret, time.Hour)
	adminService := service.NewAdminService(sessions, partnerRepo, familyCareRepo, testAdminPassword, "")
	cookies := CookieConfig{UserTTL: time.Hour, AdminTTL: time.Hour}

	authCtrl := NewAuthController(authService, cookies)
	quoteCtrl := NewQuoteController(service.NewQuoteService(testDB, quoteRepo))
	referralCtrl := NewReferralController(service.NewReferralService(repository.NewReferralRepository(testDB)))
	regionalCtrl := NewRegionalController(service.NewRegionalService(testDB, partnerRepo))
	intakeCtrl := NewIntakeController(service.NewIntakeService(partnerRepo, familyCareRepo))
	facilityCtrl := NewFacilityController(service.NewFacilityService(repository.NewFacilityRepository(testDB)))
	adminCtrl := NewAdminController(adminService, cookies)

	authMW := middleware.NewAuthMiddleware(authService)
	adminMW := middleware.NewAdminMiddleware(adminService)

	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	api := r.Group("/api")

	api.POST("/quote-request", quoteCtrl.CreateQuoteRequest)
	api.POST("/partner", intakeCtrl.CreatePartner)
	api.POST("/family-care", intakeCtrl.CreateFamilyCare)
	api.POST("/calculate-cost", intakeCtrl.CalculateCost)
	api.GET("/regions", regionalCtrl.Regions)
	api.GET("/regional-centers", regionalCtrl.Centers)
	api.GET("/facilities", facilityCtrl.List)
	api.GET("/facilities/:id", facilityCtrl.Get)

	api.POST("/auth/register", authCtrl.Register)
	api.POST("/auth/login", authCtrl.Login)
	api.POST("/auth/logout", authCtrl.Logout)
	api.GET("/auth/kakao/login", authCtrl.KakaoLogin)
	api.GET("/auth/kakao/callback", authCtrl.KakaoCallback)
	api.GET("/auth/me", authMW.Authenticate(), authCtrl.Me)
	api.PUT("/auth/user-type", authMW.Authenticate(), authCtrl.SetUserType)

	customer := api.Group("/customer", authMW.Authenticate(), authMW.RequireUserType(model.UserTypeCustomer))
	customer.GET("/dashboard", quoteCtrl.CustomerDashboard)
	customer.GET("/quote-responses/:quoteId", quoteCtrl.QuoteDetail)
	customer.PUT("/quote-requests/:quoteId/status", quoteCtrl.CustomerUpdateStatus)
	customer.POST("/responses/:responseId/accept", quoteCtrl.AcceptResponse)
	customer.POST("/responses/:responseId/reject", quoteCtrl.RejectResponse)

	facility := api.Group("/facility", authMW.Authenticate(), authMW.RequireUserType(model.UserTypeFacility))
	facility.GET("/dashboard", quoteCtrl.FacilityDashboard)
	facility.POST("/send-quote", quoteCtrl.SendQuote)

	partner := api.Group("/partner", authMW.Authenticate(), authMW.RequireUserType(model.UserTypeHospitalManager, model.UserTypeWelfareManager))
	partner.POST("/referral", referralCtrl.Submit)
	partner.GET("/referrals", referralCtrl.List)

	api.POST("/admin/login", adminCtrl.Login)
	api.POST("/admin/logout", adminCtrl.Logout)
	admin := api.Group("/admin", adminMW.RequireAdmin())
	admin.GET("/data", adminCtrl.Data)
	admin.POST("/set-region", regionalCtrl.SetRegion)
	admin.POST("/toggle-regional-center", regionalCtrl.ToggleRegionalCenter)
	admin.PUT("/quote-requests/:quoteId/status", quoteCtrl.AdminUpdateStatus)
	admin.PUT("/referrals/:referralId/status", referralCtrl.AdminUpdateStatus)
	admin.PUT("/facilities/:id/details", facilityCtrl.UpdateDetails)
	admin.POST("/facilities/generate-details", facilityCtrl.GenerateDetails)

	return &testEnv{
		router:      r,
		db:          testDB,
		authService: authService,
		kakao:       kakaoStub,
	}
}

// do JSON 요청을 보내고 응답 본문을 맵으로 돌려준다
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &response)
	}
	return w, response
}

// register 가입 후 세션 쿠키 반환
func (e *testEnv) register(t *testing.T, input service.RegisterInput) (*model.User, *http.Cookie) {
	t.Helper()
	if input.Password == "" {
		input.Password = "password123"
	}
	user, token, err := e.authService.Register(context.Background(), input)
	require.NoError(t, err)
	return user, &http.Cookie{Name: middleware.SessionCookieName, Value: token.Token}
}

func (e *testEnv) customer(t *testing.T, email, phone string) (*model.User, *http.Cookie) {
	return e.register(t, service.RegisterInput{
		Email: email, Name: "보호자", Phone: phone, UserType: model.UserTypeCustomer,
	})
}

func (e *testEnv) facility(t *testing.T, email, sido, sigungu, facilityType string) (*model.User, *http.Cookie) {
	return e.register(t, service.RegisterInput{
		Email: email, Name: "시설담당", Phone: "02-555-0000", UserType: model.UserTypeFacility,
		Sido: sido, Sigungu: sigungu, FacilityType: facilityType,
	})
}

func (e *testEnv) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	w, _ := e.do(t, http.MethodPost, "/api/admin/login", gin.H{"password": testAdminPassword})
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AdminCookieName {
			return &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	t.Fatal("admin cookie not set")
	return nil
}

func cookieFrom(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func dataOf(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", response)
	return data
}

func quoteRequestBody(phone, sido, sigungu, facilityType string) gin.H {
	return gin.H{
		"applicant_name":  "김보호",
		"applicant_phone": phone,
		"patient_name":    "김어르신",
		"patient_age":     82,
		"sido":            sido,
		"sigungu":         sigungu,
		"facility_type":   facilityType,
		"care_grade":      "3등급",
	}
}
