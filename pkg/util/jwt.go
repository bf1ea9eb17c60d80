package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const sessionTokenIssuer = "carejoa"

// SessionClaims 세션 쿠키에 담기는 클레임
// sid 가 가리키는 서버 측 세션이 실제 인증 근거이고 나머지는 조회 편의용
type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    uint   `json:"user_id"`
	UserType  string `json:"user_type"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session token pointing at a server-side session.
func GenerateSessionToken(sessionID string, userID uint, userType, secret string, expiry time.Duration) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id is required")
	}

	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		UserType:  userType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionTokenIssuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ValidateSessionToken verifies the signature and expiry of a session token.
func ValidateSessionToken(tokenString, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(sessionTokenIssuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
