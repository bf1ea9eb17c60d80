package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // 로그인 필요
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // 잘못된 이메일/비밀번호
	AuthSessionExpired     = "AUTH_SESSION_EXPIRED"     // 세션 만료
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // 이메일 중복
	AuthSocialLoginFailed  = "AUTH_SOCIAL_LOGIN_FAILED" // 소셜 로그인 실패
	AuthUserTypeLocked     = "AUTH_USER_TYPE_LOCKED"    // 회원 유형 변경 불가

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // 접근 권한 없음
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY" // 관리자만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidRegion = "VALIDATION_INVALID_REGION" // 지역표에 없는 지역
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 견적 (QUOTE_) ====================
	QuoteNotFound          = "QUOTE_NOT_FOUND"          // 견적 요청 없음
	QuoteClosed            = "QUOTE_CLOSED"             // 마감된 견적 요청
	QuoteAlreadyResponded  = "QUOTE_ALREADY_RESPONDED"  // 이미 견적 발송함
	QuoteRegionMismatch    = "QUOTE_REGION_MISMATCH"    // 시설 지역/유형 불일치
	QuoteInvalidTransition = "QUOTE_INVALID_TRANSITION" // 허용되지 않은 상태 변경
	QuoteResponseNotFound  = "QUOTE_RESPONSE_NOT_FOUND" // 시설 견적 없음
	FacilityProfileMissing = "FACILITY_PROFILE_MISSING" // 시설 지역/유형 미등록

	// ==================== 의뢰 (REFERRAL_) ====================
	ReferralNotFound          = "REFERRAL_NOT_FOUND"          // 의뢰 없음
	ReferralInvalidTransition = "REFERRAL_INVALID_TRANSITION" // 허용되지 않은 상태 변경

	// ==================== 지역 대표 (REGION_) ====================
	PartnerNotFound      = "PARTNER_NOT_FOUND"      // 파트너 없음
	RegionNotAssigned    = "REGION_NOT_ASSIGNED"    // 지역 미지정
	RegionCenterLimit    = "REGION_CENTER_LIMIT"    // 지역당 4개 초과
	RegionCenterConflict = "REGION_CENTER_CONFLICT" // 동시 지정 충돌

	// ==================== 시설 (FACILITY_) ====================
	FacilityNotFound = "FACILITY_NOT_FOUND" // 시설 없음

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
)
