package service

import (
	"context"
	"errors"
	"time"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/carejoa/carejoa-backend/pkg/util"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidAdminPassword = errors.New("invalid admin password")
	ErrAdminNotConfigured   = errors.New("admin password is not configured")
	ErrAdminSessionInvalid  = errors.New("admin session is invalid or expired")
)

// AdminData 관리자 대시보드 데이터
type AdminData struct {
	Partners        []model.Partner        `json:"partners"`
	FamilyCare      []model.FamilyCare     `json:"familyCare"`
	RegionalCenters []model.RegionalCenter `json:"regionalCenters"`
	Counts          AdminCounts            `json:"counts"`
}

type AdminCounts struct {
	Partners        int `json:"partners"`
	FamilyCare      int `json:"familyCare"`
	RegionalCenters int `json:"regionalCenters"`
}

type AdminService interface {
	Login(ctx context.Context, password string) (*model.AdminSession, error)
	ValidateSession(ctx context.Context, sessionID string) (*model.AdminSession, error)
	Logout(ctx context.Context, sessionID string) error
	GetData(ctx context.Context) (*AdminData, error)
}

type adminService struct {
	sessions       repository.SessionStore
	partnerRepo    repository.PartnerRepository
	familyCareRepo repository.FamilyCareRepository
	password       string
	passwordHash   string
}

func NewAdminService(
	sessions repository.SessionStore,
	partnerRepo repository.PartnerRepository,
	familyCareRepo repository.FamilyCareRepository,
	password, passwordHash string,
) AdminService {
	return &adminService{
		sessions:       sessions,
		partnerRepo:    partnerRepo,
		familyCareRepo: familyCareRepo,
		password:       password,
		passwordHash:   passwordHash,
	}
}

func (s *adminService) checkPassword(password string) error {
	switch {
	case s.passwordHash != "":
		if !util.VerifyPassword(s.passwordHash, password) {
			return ErrInvalidAdminPassword
		}
	case s.password != "":
		if !util.SecureCompare(s.password, password) {
			return ErrInvalidAdminPassword
		}
	default:
		return ErrAdminNotConfigured
	}
	return nil
}

// Login 비밀번호 확인 후 고정 TTL 세션 생성
func (s *adminService) Login(ctx context.Context, password string) (*model.AdminSession, error) {
	if err := s.checkPassword(password); err != nil {
		logger.Warn("Admin login failed", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, err
	}

	now := time.Now()
	session := &model.AdminSession{
		SessionID: uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(model.AdminSessionTTL),
	}
	if err := s.sessions.CreateAdminSession(ctx, session); err != nil {
		return nil, err
	}

	logger.Info("Admin logged in", map[string]interface{}{
		"expires_at": session.ExpiresAt,
	})
	return session, nil
}

// ValidateSession 만료된 세션은 없는 세션과 동일하게 취급
func (s *adminService) ValidateSession(ctx context.Context, sessionID string) (*model.AdminSession, error) {
	if sessionID == "" {
		return nil, ErrAdminSessionInvalid
	}
	session, err := s.sessions.FindAdminSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrAdminSessionInvalid
		}
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		return nil, ErrAdminSessionInvalid
	}
	return session, nil
}

func (s *adminService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.DeleteAdminSession(ctx, sessionID); err != nil {
		return err
	}
	logger.Info("Admin logged out")
	return nil
}

func (s *adminService) GetData(ctx context.Context) (*AdminData, error) {
	data := &AdminData{}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		partners, err := s.partnerRepo.FindAll()
		data.Partners = partners
		return err
	})
	g.Go(func() error {
		records, err := s.familyCareRepo.FindAll()
		data.FamilyCare = records
		return err
	})
	g.Go(func() error {
		centers, err := s.partnerRepo.ListAllCenters()
		data.RegionalCenters = centers
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to load admin data", err)
		return nil, err
	}

	data.Counts = AdminCounts{
		Partners:        len(data.Partners),
		FamilyCare:      len(data.FamilyCare),
		RegionalCenters: len(data.RegionalCenters),
	}
	return data, nil
}
