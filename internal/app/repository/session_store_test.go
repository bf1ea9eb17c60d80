package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseSessionStore(t *testing.T, store SessionStore, userID uint) {
	ctx := context.Background()
	now := time.Now()

	userSession := &model.UserSession{
		SessionID: uuid.NewString(),
		UserID:    userID,
		UserType:  model.UserTypeCustomer,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.CreateUserSession(ctx, userSession))

	found, err := store.FindUserSession(ctx, userSession.SessionID)
	require.NoError(t, err)
	assert.Equal(t, userID, found.UserID)
	assert.Equal(t, model.UserTypeCustomer, found.UserType)

	require.NoError(t, store.DeleteUserSession(ctx, userSession.SessionID))
	_, err = store.FindUserSession(ctx, userSession.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// 삭제는 멱등
	require.NoError(t, store.DeleteUserSession(ctx, userSession.SessionID))

	adminSession := &model.AdminSession{SessionID: uuid.NewString(), ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.CreateAdminSession(ctx, adminSession))

	foundAdmin, err := store.FindAdminSession(ctx, adminSession.SessionID)
	require.NoError(t, err)
	assert.False(t, foundAdmin.IsExpired(now))

	require.NoError(t, store.DeleteAdminSession(ctx, adminSession.SessionID))
	require.NoError(t, store.DeleteAdminSession(ctx, adminSession.SessionID))
	_, err = store.FindAdminSession(ctx, adminSession.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.FindAdminSession(ctx, "unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGormSessionStore(t *testing.T) {
	conn := setupTestDB(t)
	user := &model.User{UserType: model.UserTypeCustomer, Email: "c@example.com", Name: "고객"}
	require.NoError(t, conn.Create(user).Error)

	exerciseSessionStore(t, NewGormSessionStore(conn), user.ID)
}

func TestGormSessionStore_DeleteExpired(t *testing.T) {
	conn := setupTestDB(t)
	store := NewGormSessionStore(conn)
	ctx := context.Background()
	now := time.Now()

	user := &model.User{UserType: model.UserTypeCustomer, Email: "c@example.com", Name: "고객"}
	require.NoError(t, conn.Create(user).Error)

	require.NoError(t, store.CreateUserSession(ctx, &model.UserSession{SessionID: "expired-user", UserID: user.ID, UserType: user.UserType, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.CreateUserSession(ctx, &model.UserSession{SessionID: "live-user", UserID: user.ID, UserType: user.UserType, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.CreateAdminSession(ctx, &model.AdminSession{SessionID: "expired-admin", ExpiresAt: now.Add(-time.Second)}))

	deleted, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = store.FindUserSession(ctx, "live-user")
	assert.NoError(t, err)
	_, err = store.FindUserSession(ctx, "expired-user")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	exerciseSessionStore(t, NewRedisSessionStore(client), 42)
}

func TestRedisSessionStore_KeysExpireWithSession(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisSessionStore(client)
	ctx := context.Background()

	session := &model.AdminSession{SessionID: "admin-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.CreateAdminSession(ctx, session))

	mr.FastForward(61 * time.Minute)

	_, err := store.FindAdminSession(ctx, "admin-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// 이미 만료된 세션은 저장하지 않음
	require.NoError(t, store.CreateAdminSession(ctx, &model.AdminSession{SessionID: "admin-2", ExpiresAt: time.Now().Add(-time.Minute)}))
	_, err = store.FindAdminSession(ctx, "admin-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
