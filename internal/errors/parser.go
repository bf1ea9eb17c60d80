package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 친화적 메시지
}

// ParseError 에러를 파싱하여 사용자 친화적인 메시지와 코드로 변환
// DB 내부 메시지는 노출하지 않음
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "서버 오류가 발생했습니다",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM 기본 에러 (TranslateError 사용 시)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(errStr)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return parseForeignKeyError(errStr)
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return parseCheckConstraintError(errStr)
	}

	// 2. 드라이버 메시지 기반 (postgres / sqlite)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}
	if strings.Contains(errStrLower, "not null constraint") || strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "필수 항목이 누락되었습니다"}
	}
	if strings.Contains(errStrLower, "check constraint") {
		return parseCheckConstraintError(errStr)
	}

	// 3. 네트워크/연결 에러
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "외부 서비스 연결에 실패했습니다. 잠시 후 다시 시도해주세요",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// parseDuplicateKeyError Unique constraint 위반 에러 파싱
func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "이미 가입된 이메일입니다"}
	case strings.Contains(errLower, "quote_responses"), strings.Contains(errLower, "quote_partner"):
		return ErrorInfo{Code: QuoteAlreadyResponded, Message: "이미 견적서를 발송한 요청입니다"}
	case strings.Contains(errLower, "regional_centers"), strings.Contains(errLower, "region_slot"):
		return ErrorInfo{Code: RegionCenterConflict, Message: "다른 요청과 충돌했습니다. 다시 시도해주세요"}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "이미 존재하는 데이터입니다",
	}
}

// parseForeignKeyError Foreign key constraint 위반 에러 파싱
func parseForeignKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "연결된 데이터가 있어 삭제할 수 없습니다",
		}
	}
	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "partner_id") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "존재하지 않는 사용자입니다",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "참조하는 데이터를 찾을 수 없습니다",
	}
}

// parseCheckConstraintError Check constraint 위반 에러 파싱
func parseCheckConstraintError(errStr string) ErrorInfo {
	if strings.Contains(strings.ToLower(errStr), "slot") {
		return ErrorInfo{
			Code:    RegionCenterLimit,
			Message: "지역별 대표 센터는 최대 4개까지 지정할 수 있습니다",
		}
	}
	return ErrorInfo{
		Code:    ValidationInvalidInput,
		Message: "입력값이 유효하지 않습니다",
	}
}

// getNotFoundMessage context에 따른 Not Found 메시지
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "quote") || strings.Contains(contextLower, "견적"):
		return "견적 요청을 찾을 수 없습니다"
	case strings.Contains(contextLower, "referral") || strings.Contains(contextLower, "의뢰"):
		return "의뢰를 찾을 수 없습니다"
	case strings.Contains(contextLower, "partner") || strings.Contains(contextLower, "파트너"):
		return "파트너를 찾을 수 없습니다"
	case strings.Contains(contextLower, "facility") || strings.Contains(contextLower, "시설"):
		return "시설을 찾을 수 없습니다"
	case strings.Contains(contextLower, "user") || strings.Contains(contextLower, "사용자"):
		return "사용자를 찾을 수 없습니다"
	}

	return "요청한 데이터를 찾을 수 없습니다"
}

// getDefaultErrorMessage context에 따른 기본 에러 메시지
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create") || strings.Contains(contextLower, "등록") || strings.Contains(contextLower, "submit"):
		return "등록 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "update") || strings.Contains(contextLower, "수정"):
		return "수정 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "delete") || strings.Contains(contextLower, "삭제"):
		return "삭제 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}

	return "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
}

// StatusForCode 파싱된 코드에 맞는 HTTP 상태. 서버 오류 계열은 fallback 그대로.
func StatusForCode(code string, fallback int) int {
	switch code {
	case ResourceNotFound, QuoteNotFound, QuoteResponseNotFound, ReferralNotFound, PartnerNotFound, FacilityNotFound:
		return http.StatusNotFound
	case ResourceAlreadyExists, ResourceConflict, AuthEmailAlreadyExists, QuoteAlreadyResponded,
		RegionCenterConflict, RegionCenterLimit:
		return http.StatusConflict
	case ValidationRequired, ValidationInvalidInput:
		return http.StatusBadRequest
	}
	return fallback
}

// ParseAndRespond 에러를 파싱하여 응답 반환 (controller 헬퍼)
// statusCode 는 코드로 상태를 정할 수 없을 때 쓴다
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(StatusForCode(errorInfo.Code, statusCode), ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
