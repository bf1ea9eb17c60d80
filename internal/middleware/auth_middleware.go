package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/service"
	"github.com/carejoa/carejoa-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

// 쿠키 이름
const (
	SessionCookieName = "carejoa_session"
	AdminCookieName   = "admin_session"
)

// Context keys for user information
const (
	UserKey     = "user"
	UserIDKey   = "user_id"
	UserTypeKey = "user_type"
)

// SessionAuthenticator 세션 토큰을 사용자로 변환 (service.AuthService)
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type AuthMiddleware struct {
	auth SessionAuthenticator
}

func NewAuthMiddleware(auth SessionAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// SessionToken 쿠키 우선, 없으면 Authorization: Bearer
func SessionToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Authenticate validates the session (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token := SessionToken(c)
		if token == "" {
			log.Warn("Missing session token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "로그인이 필요합니다")
			return
		}

		user, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Warn("Session validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			switch {
			case stderrors.Is(err, service.ErrSessionExpired):
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthSessionExpired, "로그인이 만료되었습니다. 다시 로그인해주세요")
			case stderrors.Is(err, service.ErrSessionInvalid):
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "로그인이 필요합니다")
			default:
				errors.AbortWithError(c, http.StatusInternalServerError, errors.InternalServerError, "서버 오류가 발생했습니다")
			}
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Set(UserTypeKey, user.UserType)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id":   user.ID,
			"user_type": user.UserType,
		})

		c.Next()
	}
}

// RequireUserType checks if user has one of the given types
func (m *AuthMiddleware) RequireUserType(types ...model.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		userType, exists := GetUserType(c)
		if !exists {
			errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "로그인이 필요합니다")
			return
		}

		for _, t := range types {
			if userType == t {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_type":      userType,
			"required_types": types,
			"path":           c.Request.URL.Path,
		})
		errors.AbortWithError(c, http.StatusForbidden, errors.AuthzForbidden, "접근 권한이 없습니다")
	}
}

// GetUser extracts the authenticated user from context
func GetUser(c *gin.Context) (*model.User, bool) {
	user, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserType extracts user type from context
func GetUserType(c *gin.Context) (model.UserType, bool) {
	userType, exists := c.Get(UserTypeKey)
	if !exists {
		return "", false
	}
	return userType.(model.UserType), true
}
