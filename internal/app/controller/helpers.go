package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	apperrors "github.com/carejoa/carejoa-backend/internal/errors"
	"github.com/carejoa/carejoa-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CookieConfig 세션 쿠키 속성
type CookieConfig struct {
	Domain   string
	Secure   bool
	UserTTL  time.Duration
	AdminTTL time.Duration
}

func (cfg CookieConfig) set(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", cfg.Domain, cfg.Secure, true)
}

func (cfg CookieConfig) clear(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", cfg.Domain, cfg.Secure, true)
}

// currentUser 인증 미들웨어가 넣어둔 사용자. 없으면 401 응답 후 false.
func currentUser(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		apperrors.Unauthorized(c, "")
		return nil, false
	}
	return user, true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 ID 입니다")
		return 0, false
	}
	return uint(id), true
}

// respondBindError 바인딩 검증 실패를 필드별 메시지로 변환
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "요청 형식이 올바르지 않습니다")
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[toSnake(fe.Field())] = fieldMessage(fe)
	}
	apperrors.RespondWithValidationError(c, fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "필수 항목입니다"
	case "sido":
		return "지원하지 않는 시/도입니다"
	case "facility_type":
		return "지원하지 않는 시설 유형입니다"
	case "region_key":
		return "지역 키 형식이 올바르지 않습니다"
	case "email":
		return "이메일 형식이 올바르지 않습니다"
	case "min", "gte", "gt":
		return "값이 너무 작습니다"
	case "max", "lte":
		return "값이 너무 큽니다"
	case "oneof":
		return "허용되지 않는 값입니다"
	}
	return "입력값이 올바르지 않습니다"
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
