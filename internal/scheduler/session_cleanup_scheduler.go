package scheduler

import (
	"context"
	"time"

	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// 한 번의 정리 작업 제한 시간
const cleanupTimeout = time.Minute

// ExpiredSessionCleaner repository.SessionStore 의 만료 세션 정리
type ExpiredSessionCleaner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionCleanupScheduler 만료된 사용자/관리자 세션 주기적 삭제
type SessionCleanupScheduler struct {
	cron     *cron.Cron
	cleaner  ExpiredSessionCleaner
	schedule string
	now      func() time.Time
}

// NewSessionCleanupScheduler schedule 은 cron 표현식 또는 @hourly 같은 descriptor
func NewSessionCleanupScheduler(cleaner ExpiredSessionCleaner, schedule string) *SessionCleanupScheduler {
	return &SessionCleanupScheduler{
		cron:     cron.New(),
		cleaner:  cleaner,
		schedule: schedule,
		now:      time.Now,
	}
}

// RunOnce 정리 한 번 실행 (스케줄러와 테스트에서 공용)
func (s *SessionCleanupScheduler) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()

	removed, err := s.cleaner.DeleteExpired(ctx, s.now())
	if err != nil {
		logger.Error("Failed to delete expired sessions", err)
		return 0, err
	}
	if removed > 0 {
		logger.Info("Expired sessions deleted", map[string]interface{}{
			"count": removed,
		})
	}
	return removed, nil
}

// Start 스케줄러 시작
func (s *SessionCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		_, _ = s.RunOnce(context.Background())
	})
	if err != nil {
		logger.Error("Failed to add cron job for session cleanup", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Session cleanup scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// Stop 실행 중인 작업이 끝날 때까지 기다린다
func (s *SessionCleanupScheduler) Stop() {
	logger.Info("Stopping session cleanup scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Session cleanup scheduler stopped")
}
