package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// 조건부 상태 변경에서 행이 없거나 이미 다른 상태
	ErrStatusChanged = errors.New("row missing or status changed")
)

// IsDuplicateKey unique 제약 위반 여부 (드라이버가 번역하지 못한 경우 메시지로 판별)
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// IsNotFound gorm 레코드 없음 여부
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
