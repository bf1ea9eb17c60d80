package kakao

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/go-resty/resty/v2"
)

var (
	ErrNotConfigured   = errors.New("kakao login is not configured")
	ErrTokenExchange   = errors.New("kakao token exchange failed")
	ErrProfileResponse = errors.New("kakao profile request failed")
)

// Config 카카오 REST API 설정
type Config struct {
	RestAPIKey   string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string // https://kauth.kakao.com
	APIBaseURL   string // https://kapi.kakao.com
}

// Token 토큰 교환 응답
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Profile /v2/user/me 응답 중 사용하는 필드
type Profile struct {
	ID      int64 `json:"id"`
	Account struct {
		Email           string `json:"email"`
		IsEmailVerified bool   `json:"is_email_verified"`
		PhoneNumber     string `json:"phone_number"`
		Profile     struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// IDString 카카오 회원번호 문자열
func (p *Profile) IDString() string {
	return strconv.FormatInt(p.ID, 10)
}

// VerifiedEmail 카카오가 인증한 이메일만 반환 (미인증이면 빈 문자열)
func (p *Profile) VerifiedEmail() string {
	if !p.Account.IsEmailVerified {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.Account.Email))
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Code             int    `json:"code"`
}

// Client 카카오 OAuth 클라이언트
type Client struct {
	cfg        Config
	authClient *resty.Client
	apiClient  *resty.Client
}

func NewClient(cfg Config) *Client {
	newHTTP := func(baseURL string) *resty.Client {
		return resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json")
	}
	return &Client{
		cfg:        cfg,
		authClient: newHTTP(cfg.AuthBaseURL),
		apiClient:  newHTTP(cfg.APIBaseURL),
	}
}

// Configured REST API 키가 설정되어 있는지
func (c *Client) Configured() bool {
	return c.cfg.RestAPIKey != ""
}

// AuthorizeURL 카카오 로그인 페이지 URL
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.RestAPIKey)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("response_type", "code")
	if state != "" {
		q.Set("state", state)
	}
	return c.cfg.AuthBaseURL + "/oauth/authorize?" + q.Encode()
}

// ExchangeCode 인가 코드를 액세스 토큰으로 교환
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	form := map[string]string{
		"grant_type":   "authorization_code",
		"client_id":    c.cfg.RestAPIKey,
		"redirect_uri": c.cfg.RedirectURI,
		"code":         code,
	}
	if c.cfg.ClientSecret != "" {
		form["client_secret"] = c.cfg.ClientSecret
	}

	var token Token
	var apiErr errorResponse
	resp, err := c.authClient.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&token).
		SetError(&apiErr).
		Post("/oauth/token")
	if err != nil {
		logger.Error("Kakao token request failed", err)
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if resp.IsError() || token.AccessToken == "" {
		logger.Warn("Kakao token exchange rejected", map[string]interface{}{
			"status_code": resp.StatusCode(),
			"error":       apiErr.Error,
			"description": apiErr.ErrorDescription,
		})
		return nil, fmt.Errorf("%w: status %d %s", ErrTokenExchange, resp.StatusCode(), apiErr.Error)
	}

	return &token, nil
}

// GetProfile 액세스 토큰으로 사용자 정보 조회
func (c *Client) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	var apiErr errorResponse
	resp, err := c.apiClient.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&profile).
		SetError(&apiErr).
		Get("/v2/user/me")
	if err != nil {
		logger.Error("Kakao profile request failed", err)
		return nil, fmt.Errorf("%w: %v", ErrProfileResponse, err)
	}
	if resp.IsError() || profile.ID == 0 {
		logger.Warn("Kakao profile request rejected", map[string]interface{}{
			"status_code": resp.StatusCode(),
			"code":        apiErr.Code,
			"msg":         apiErr.Msg,
		})
		return nil, fmt.Errorf("%w: status %d", ErrProfileResponse, resp.StatusCode())
	}

	return &profile, nil
}
