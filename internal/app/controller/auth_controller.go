package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/service"
	apperrors "github.com/carejoa/carejoa-backend/internal/errors"
	"github.com/carejoa/carejoa-backend/internal/middleware"
	"github.com/carejoa/carejoa-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	kakaoStateCookieName = "kakao_oauth_state"
	kakaoStateTTL        = 10 * time.Minute
)

type AuthController struct {
	authService service.AuthService
	cookies     CookieConfig
}

func NewAuthController(authService service.AuthService, cookies CookieConfig) *AuthController {
	return &AuthController{
		authService: authService,
		cookies:     cookies,
	}
}

type RegisterRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
	Name             string `json:"name" binding:"required"`
	Phone            string `json:"phone" binding:"required"`
	Address          string `json:"address"`
	UserType         string `json:"user_type" binding:"required,oneof=customer facility hospital_manager welfare_manager"`
	Sido             string `json:"sido" binding:"omitempty,sido"`
	Sigungu          string `json:"sigungu"`
	FacilityType     string `json:"facility_type" binding:"omitempty,facility_type"`
	OrganizationName string `json:"organization_name"`
	Department       string `json:"department"`
	Position         string `json:"position"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserTypeRequest struct {
	UserType         string `json:"user_type" binding:"required,oneof=customer facility hospital_manager welfare_manager"`
	Sido             string `json:"sido" binding:"omitempty,sido"`
	Sigungu          string `json:"sigungu"`
	FacilityType     string `json:"facility_type" binding:"omitempty,facility_type"`
	OrganizationName string `json:"organization_name"`
	Department       string `json:"department"`
	Position         string `json:"position"`
}

// respondProfileError 회원 유형/프로필 검증 오류 매핑. 처리했으면 true.
func respondProfileError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrInvalidUserType):
		apperrors.RespondWithValidationError(c, map[string]string{"user_type": "회원 유형을 선택해주세요"})
	case errors.Is(err, service.ErrInvalidRegion):
		apperrors.RespondWithValidationError(c, map[string]string{"sigungu": "시/도와 시/군/구를 올바르게 선택해주세요"})
	case errors.Is(err, service.ErrInvalidFacilityType):
		apperrors.RespondWithValidationError(c, map[string]string{"facility_type": "시설 유형을 선택해주세요"})
	case errors.Is(err, service.ErrOrganizationRequired):
		apperrors.RespondWithValidationError(c, map[string]string{"organization_name": "기관명을 입력해주세요"})
	case errors.Is(err, util.ErrPasswordTooShort):
		apperrors.RespondWithValidationError(c, map[string]string{"password": "비밀번호는 6자 이상이어야 합니다"})
	default:
		return false
	}
	return true
}

func (ctrl *AuthController) setSession(c *gin.Context, token *service.SessionToken) {
	ctrl.cookies.set(c, middleware.SessionCookieName, token.Token, time.Until(token.ExpiresAt))
}

// Register POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	user, token, err := ctrl.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		Phone:            req.Phone,
		Address:          req.Address,
		UserType:         model.UserType(req.UserType),
		Sido:             req.Sido,
		Sigungu:          req.Sigungu,
		FacilityType:     req.FacilityType,
		OrganizationName: req.OrganizationName,
		Department:       req.Department,
		Position:         req.Position,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "이미 가입된 이메일입니다")
			return
		}
		if respondProfileError(c, err) {
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		return
	}

	ctrl.setSession(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "회원가입이 완료되었습니다",
		"data":    gin.H{"user": user},
	})
}

// Login POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "이메일 또는 비밀번호가 올바르지 않습니다")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		return
	}

	ctrl.setSession(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"user": user},
	})
}

// Logout POST /api/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if token := middleware.SessionToken(c); token != "" {
		if err := ctrl.authService.Logout(c.Request.Context(), token); err != nil {
			log.Error("Logout failed", err)
			apperrors.InternalError(c, "")
			return
		}
	}

	ctrl.cookies.clear(c, middleware.SessionCookieName)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "로그아웃되었습니다",
	})
}

// Me GET /api/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"user": user},
	})
}

// KakaoLogin GET /api/auth/kakao/login
func (ctrl *AuthController) KakaoLogin(c *gin.Context) {
	state := uuid.NewString()
	url, err := ctrl.authService.KakaoAuthorizeURL(state)
	if err != nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.AuthSocialLoginFailed, "카카오 로그인을 사용할 수 없습니다")
		return
	}

	ctrl.cookies.set(c, kakaoStateCookieName, state, kakaoStateTTL)
	c.Redirect(http.StatusFound, url)
}

// KakaoCallback GET /api/auth/kakao/callback?code=&state=
func (ctrl *AuthController) KakaoCallback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	code := c.Query("code")
	state, _ := c.Cookie(kakaoStateCookieName)
	if code == "" || state == "" || state != c.Query("state") {
		log.Warn("Kakao callback rejected", map[string]interface{}{
			"has_code":  code != "",
			"has_state": state != "",
		})
		apperrors.BadRequest(c, apperrors.AuthSocialLoginFailed, "카카오 로그인 요청이 올바르지 않습니다")
		return
	}
	ctrl.cookies.clear(c, kakaoStateCookieName)

	user, token, isNew, err := ctrl.authService.KakaoLogin(c.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSocialLoginDisabled):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.AuthSocialLoginFailed, "카카오 로그인을 사용할 수 없습니다")
		case errors.Is(err, service.ErrSocialLoginFailed):
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.AuthSocialLoginFailed, "카카오 로그인에 실패했습니다")
		default:
			log.Error("Kakao login failed", err)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "kakao login")
		}
		return
	}

	ctrl.setSession(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":      user,
			"isNewUser": isNew,
		},
	})
}

// SetUserType PUT /api/auth/user-type
func (ctrl *AuthController) SetUserType(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UserTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := ctrl.authService.SetUserType(c.Request.Context(), user.ID, service.ProfileInput{
		UserType:         model.UserType(req.UserType),
		Sido:             req.Sido,
		Sigungu:          req.Sigungu,
		FacilityType:     req.FacilityType,
		OrganizationName: req.OrganizationName,
		Department:       req.Department,
		Position:         req.Position,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserTypeLocked) {
			apperrors.Conflict(c, apperrors.AuthUserTypeLocked, "회원 유형은 가입 직후에만 변경할 수 있습니다")
			return
		}
		if respondProfileError(c, err) {
			return
		}
		log.Error("Failed to set user type", err, map[string]interface{}{
			"user_id": user.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update user type")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"user": updated},
	})
}
