package middleware

import (
	"context"
	"net/http"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

// AdminSessionValidator service.AdminService 의 세션 검증
type AdminSessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (*model.AdminSession, error)
}

type AdminMiddleware struct {
	admin AdminSessionValidator
}

func NewAdminMiddleware(admin AdminSessionValidator) *AdminMiddleware {
	return &AdminMiddleware{admin: admin}
}

// RequireAdmin 관리자 세션 쿠키 확인 (만료 세션은 없는 것과 동일)
func (m *AdminMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		sessionID, _ := c.Cookie(AdminCookieName)
		if _, err := m.admin.ValidateSession(c.Request.Context(), sessionID); err != nil {
			log.Warn("Admin session rejected", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthzAdminOnly, "관리자 로그인이 필요합니다")
			return
		}
		c.Next()
	}
}
