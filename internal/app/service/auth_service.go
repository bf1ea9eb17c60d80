package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/carejoa/carejoa-backend/pkg/oauth/kakao"
	"github.com/carejoa/carejoa-backend/pkg/util"
	"github.com/google/uuid"
)

var (
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidUserType      = errors.New("invalid user type")
	ErrInvalidRegion        = errors.New("invalid region")
	ErrInvalidFacilityType  = errors.New("invalid facility type")
	ErrOrganizationRequired = errors.New("organization name is required")
	ErrSessionInvalid       = errors.New("session is invalid")
	ErrSessionExpired       = errors.New("session has expired")
	ErrUserTypeLocked       = errors.New("user type can no longer be changed")
	ErrSocialLoginFailed    = errors.New("social login failed")
	ErrSocialLoginDisabled  = errors.New("social login is not configured")
)

const (
	kakaoFallbackEmailFormat = "kakao_%s@carejoa.kr"
	kakaoFallbackName        = "카카오 사용자"
)

// KakaoProvider 카카오 OAuth 클라이언트 (pkg/oauth/kakao)
type KakaoProvider interface {
	Configured() bool
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*kakao.Token, error)
	GetProfile(ctx context.Context, accessToken string) (*kakao.Profile, error)
}

// RegisterInput 회원가입 입력
type RegisterInput struct {
	Email            string
	Password         string
	Name             string
	Phone            string
	Address          string
	UserType         model.UserType
	Sido             string
	Sigungu          string
	FacilityType     string
	OrganizationName string
	Department       string
	Position         string
}

// ProfileInput 회원 유형 선택 (소셜 가입 직후)
type ProfileInput struct {
	UserType         model.UserType
	Sido             string
	Sigungu          string
	FacilityType     string
	OrganizationName string
	Department       string
	Position         string
}

// SessionToken 쿠키로 내려가는 서명된 세션 토큰
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, *SessionToken, error)
	Login(ctx context.Context, email, password string) (*model.User, *SessionToken, error)
	KakaoAuthorizeURL(state string) (string, error)
	KakaoLogin(ctx context.Context, code string) (*model.User, *SessionToken, bool, error)
	SetUserType(ctx context.Context, userID uint, input ProfileInput) (*model.User, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
	Logout(ctx context.Context, token string) error
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	quoteRepo     repository.QuoteRepository
	sessions      repository.SessionStore
	kakao         KakaoProvider
	sessionSecret string
	sessionTTL    time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	quoteRepo repository.QuoteRepository,
	sessions repository.SessionStore,
	kakaoProvider KakaoProvider,
	sessionSecret string,
	sessionTTL time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		quoteRepo:     quoteRepo,
		sessions:      sessions,
		kakao:         kakaoProvider,
		sessionSecret: sessionSecret,
		sessionTTL:    sessionTTL,
	}
}

// validateProfile 회원 유형별 필수 항목 검사
func validateProfile(input ProfileInput) error {
	if !input.UserType.IsValid() {
		return ErrInvalidUserType
	}
	switch input.UserType {
	case model.UserTypeFacility:
		if !model.IsValidRegion(input.Sido, input.Sigungu) {
			return ErrInvalidRegion
		}
		if !model.IsValidFacilityType(input.FacilityType) {
			return ErrInvalidFacilityType
		}
	case model.UserTypeHospitalManager, model.UserTypeWelfareManager:
		if strings.TrimSpace(input.OrganizationName) == "" {
			return ErrOrganizationRequired
		}
	}
	// 고객이 지역을 입력한 경우에도 지역표 검증
	if input.Sido != "" && input.Sigungu != "" && !model.IsValidRegion(input.Sido, input.Sigungu) {
		return ErrInvalidRegion
	}
	return nil
}

func applyProfile(user *model.User, input ProfileInput) {
	user.UserType = input.UserType
	user.Sido = input.Sido
	user.Sigungu = input.Sigungu
	user.OrganizationName = strings.TrimSpace(input.OrganizationName)
	user.Department = input.Department
	user.Position = input.Position
	user.FacilityType = ""
	if input.UserType == model.UserTypeFacility {
		user.FacilityType = input.FacilityType
	}
	// 시설/병원/복지 회원은 관리자 승인 후 활동
	user.IsApproved = input.UserType == model.UserTypeCustomer
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, *SessionToken, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	logger.Info("Attempting user registration", map[string]interface{}{
		"email":     email,
		"user_type": input.UserType,
	})

	profile := ProfileInput{
		UserType:         input.UserType,
		Sido:             input.Sido,
		Sigungu:          input.Sigungu,
		FacilityType:     input.FacilityType,
		OrganizationName: input.OrganizationName,
		Department:       input.Department,
		Position:         input.Position,
	}
	if err := validateProfile(profile); err != nil {
		logger.Warn("Registration rejected: invalid profile", map[string]interface{}{
			"email":  email,
			"reason": err.Error(),
		})
		return nil, nil, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil && !repository.IsNotFound(err) {
		return nil, nil, err
	}
	if existing != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		AuthProvider: model.AuthProviderLocal,
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      input.Address,
	}
	applyProfile(user, profile)

	if err := s.userRepo.Create(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, nil, ErrEmailAlreadyExists
		}
		return nil, nil, err
	}

	token, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id":   user.ID,
		"user_type": user.UserType,
	})
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *SessionToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if repository.IsNotFound(err) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	// 소셜 가입 계정은 비밀번호가 없음
	if user.PasswordHash == "" || !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id":   user.ID,
		"user_type": user.UserType,
	})
	return user, token, nil
}

func (s *authService) KakaoAuthorizeURL(state string) (string, error) {
	if s.kakao == nil || !s.kakao.Configured() {
		return "", ErrSocialLoginDisabled
	}
	return s.kakao.AuthorizeURL(state), nil
}

// KakaoLogin 인가 코드로 로그인. 처음 로그인하면 고객으로 가입시키고 isNew=true
func (s *authService) KakaoLogin(ctx context.Context, code string) (*model.User, *SessionToken, bool, error) {
	if s.kakao == nil || !s.kakao.Configured() {
		return nil, nil, false, ErrSocialLoginDisabled
	}
	if strings.TrimSpace(code) == "" {
		return nil, nil, false, ErrSocialLoginFailed
	}

	oauthToken, err := s.kakao.ExchangeCode(ctx, code)
	if err != nil {
		return nil, nil, false, fmt.Errorf("%w: %v", ErrSocialLoginFailed, err)
	}
	profile, err := s.kakao.GetProfile(ctx, oauthToken.AccessToken)
	if err != nil {
		return nil, nil, false, fmt.Errorf("%w: %v", ErrSocialLoginFailed, err)
	}

	user, isNew, err := s.findOrCreateKakaoUser(profile)
	if err != nil {
		return nil, nil, false, err
	}

	token, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, false, err
	}

	logger.Info("Kakao login succeeded", map[string]interface{}{
		"user_id":  user.ID,
		"new_user": isNew,
	})
	return user, token, isNew, nil
}

func (s *authService) findOrCreateKakaoUser(profile *kakao.Profile) (*model.User, bool, error) {
	kakaoID := profile.IDString()

	user, err := s.userRepo.FindByKakaoID(kakaoID)
	if err == nil {
		return user, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, err
	}

	// 미인증 이메일은 기존 계정 연결에도 가입 이메일에도 쓰지 않는다
	email := profile.VerifiedEmail()
	if email == "" {
		email = fmt.Sprintf(kakaoFallbackEmailFormat, kakaoID)
	}

	// 같은 인증 이메일로 가입된 계정이 있으면 카카오 계정을 연결
	user, err = s.userRepo.FindByEmail(email)
	if err == nil {
		if user.KakaoID == nil {
			user.KakaoID = &kakaoID
			if err := s.userRepo.Update(user); err != nil {
				return nil, false, err
			}
		}
		return user, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, err
	}

	name := strings.TrimSpace(profile.Account.Profile.Nickname)
	if name == "" {
		name = kakaoFallbackName
	}

	user = &model.User{
		UserType:     model.UserTypeCustomer,
		Email:        email,
		AuthProvider: model.AuthProviderKakao,
		KakaoID:      &kakaoID,
		Name:         name,
		Phone:        profile.Account.PhoneNumber,
		IsApproved:   true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// SetUserType 소셜 가입 직후 한 번만 회원 유형을 고를 수 있다.
// 카카오 계정이면서 아직 고객이고 견적 요청 이력이 없을 때만 허용.
func (s *authService) SetUserType(ctx context.Context, userID uint, input ProfileInput) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if user.AuthProvider != model.AuthProviderKakao || user.UserType != model.UserTypeCustomer {
		logger.Warn("User type change rejected", map[string]interface{}{
			"user_id":   user.ID,
			"user_type": user.UserType,
			"provider":  user.AuthProvider,
		})
		return nil, ErrUserTypeLocked
	}

	activity, err := s.quoteRepo.CountRequestsByApplicant(user.Phone, user.Email)
	if err != nil {
		return nil, err
	}
	if activity > 0 {
		return nil, ErrUserTypeLocked
	}

	if err := validateProfile(input); err != nil {
		return nil, err
	}

	applyProfile(user, input)
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("User type selected", map[string]interface{}{
		"user_id":   user.ID,
		"user_type": user.UserType,
	})
	return user, nil
}

// Authenticate 서명 검증 → 서버 세션 조회(만료 확인) → 사용자 로드
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := util.ValidateSessionToken(token, s.sessionSecret)
	if err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionInvalid
	}

	session, err := s.sessions.FindUserSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = s.sessions.DeleteUserSession(ctx, session.SessionID)
		return nil, ErrSessionExpired
	}
	if session.UserID != claims.UserID {
		return nil, ErrSessionInvalid
	}

	user, err := s.userRepo.FindByID(session.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	return user, nil
}

// Logout 세션 삭제 (이미 없거나 토큰이 잘못돼도 성공)
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := util.ValidateSessionToken(token, s.sessionSecret)
	if err != nil {
		return nil
	}
	if err := s.sessions.DeleteUserSession(ctx, claims.SessionID); err != nil {
		logger.Error("Failed to delete user session on logout", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}
	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) openSession(ctx context.Context, user *model.User) (*SessionToken, error) {
	now := time.Now()
	session := &model.UserSession{
		SessionID: uuid.NewString(),
		UserID:    user.ID,
		UserType:  user.UserType,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.CreateUserSession(ctx, session); err != nil {
		return nil, err
	}

	token, err := util.GenerateSessionToken(session.SessionID, user.ID, string(user.UserType), s.sessionSecret, s.sessionTTL)
	if err != nil {
		logger.Error("Failed to sign session token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return &SessionToken{Token: token, ExpiresAt: session.ExpiresAt}, nil
}
