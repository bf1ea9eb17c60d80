package repository

import (
	"context"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	redisutil "github.com/carejoa/carejoa-backend/pkg/redis"
	"github.com/redis/go-redis/v9"
)

const (
	userSessionKeyPrefix  = "carejoa:session:user:"
	adminSessionKeyPrefix = "carejoa:session:admin:"
)

// redisSessionStore 키 TTL 을 세션 만료 시각에 맞춰 redis 가 만료 처리
type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) CreateUserSession(ctx context.Context, session *model.UserSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := redisutil.SetJSON(ctx, s.client, userSessionKeyPrefix+session.SessionID, session, ttl); err != nil {
		logger.Error("Failed to store user session in redis", err, map[string]interface{}{
			"user_id": session.UserID,
		})
		return err
	}
	return nil
}

func (s *redisSessionStore) FindUserSession(ctx context.Context, sessionID string) (*model.UserSession, error) {
	var session model.UserSession
	found, err := redisutil.GetJSON(ctx, s.client, userSessionKeyPrefix+sessionID, &session)
	if err != nil {
		logger.Error("Failed to load user session from redis", err)
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *redisSessionStore) DeleteUserSession(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, userSessionKeyPrefix+sessionID).Err()
}

func (s *redisSessionStore) CreateAdminSession(ctx context.Context, session *model.AdminSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := redisutil.SetJSON(ctx, s.client, adminSessionKeyPrefix+session.SessionID, session, ttl); err != nil {
		logger.Error("Failed to store admin session in redis", err)
		return err
	}
	return nil
}

func (s *redisSessionStore) FindAdminSession(ctx context.Context, sessionID string) (*model.AdminSession, error) {
	var session model.AdminSession
	found, err := redisutil.GetJSON(ctx, s.client, adminSessionKeyPrefix+sessionID, &session)
	if err != nil {
		logger.Error("Failed to load admin session from redis", err)
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *redisSessionStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, adminSessionKeyPrefix+sessionID).Err()
}

// DeleteExpired redis 는 키 TTL 로 만료되므로 정리할 것이 없음
func (s *redisSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
