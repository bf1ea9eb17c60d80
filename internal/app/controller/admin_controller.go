package controller

import (
	"errors"
	"net/http"

	"github.com/carejoa/carejoa-backend/internal/app/service"
	apperrors "github.com/carejoa/carejoa-backend/internal/errors"
	"github.com/carejoa/carejoa-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	adminService service.AdminService
	cookies      CookieConfig
}

func NewAdminController(adminService service.AdminService, cookies CookieConfig) *AdminController {
	return &AdminController{
		adminService: adminService,
		cookies:      cookies,
	}
}

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login POST /api/admin/login
func (ctrl *AdminController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := ctrl.adminService.Login(c.Request.Context(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAdminPassword):
			log.Warn("Admin login rejected", map[string]interface{}{
				"client_ip": c.ClientIP(),
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "비밀번호가 올바르지 않습니다")
		case errors.Is(err, service.ErrAdminNotConfigured):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.AuthzAdminOnly, "관리자 로그인이 설정되지 않았습니다")
		default:
			log.Error("Admin login failed", err)
			apperrors.InternalError(c, "")
		}
		return
	}

	ctrl.cookies.set(c, middleware.AdminCookieName, session.SessionID, ctrl.cookies.AdminTTL)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"expiresAt": session.ExpiresAt,
	})
}

// Logout POST /api/admin/logout
func (ctrl *AdminController) Logout(c *gin.Context) {
	if sessionID, _ := c.Cookie(middleware.AdminCookieName); sessionID != "" {
		if err := ctrl.adminService.Logout(c.Request.Context(), sessionID); err != nil {
			middleware.GetLoggerFromContext(c).Error("Admin logout failed", err)
			apperrors.InternalError(c, "")
			return
		}
	}

	ctrl.cookies.clear(c, middleware.AdminCookieName)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Data GET /api/admin/data
func (ctrl *AdminController) Data(c *gin.Context) {
	data, err := ctrl.adminService.GetData(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load admin data", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "admin data")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
