package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	RemoteDatabase DatabaseConfig
	Session        SessionConfig
	Admin          AdminConfig
	Kakao          KakaoConfig
	Redis          RedisConfig
	CORS           CORSConfig
	S3             S3Config
}

type ServerConfig struct {
	Port            string
	GinMode         string
	Environment     string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SessionConfig 사용자/관리자 세션 설정
type SessionConfig struct {
	Secret       string
	UserTTL      time.Duration
	CookieSecure bool
	CookieDomain string
	Store        string // db, redis
	CleanupCron  string // 비어 있으면 만료 세션 정리 비활성화
}

type AdminConfig struct {
	Password     string
	PasswordHash string // bcrypt, 설정되면 Password 보다 우선
}

type KakaoConfig struct {
	RestAPIKey   string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string
	APIBaseURL   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BackupPrefix    string
	Endpoint        string // S3 호환 스토리지 (비우면 AWS)
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			GinMode:         getEnv("GIN_MODE", "debug"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			ShutdownTimeout: parseDuration(getEnv("SERVER_SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "carejoa"),
			Password: getEnv("DB_PASSWORD", "carejoa"),
			DBName:   getEnv("DB_NAME", "carejoa"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RemoteDatabase: DatabaseConfig{
			Host:     getEnv("REMOTE_DB_HOST", ""),
			Port:     getEnv("REMOTE_DB_PORT", "5432"),
			User:     getEnv("REMOTE_DB_USER", ""),
			Password: getEnv("REMOTE_DB_PASSWORD", ""),
			DBName:   getEnv("REMOTE_DB_NAME", "carejoa"),
			SSLMode:  getEnv("REMOTE_DB_SSLMODE", "require"),
		},
		Session: SessionConfig{
			Secret:       getEnv("SESSION_SECRET", "change-me-session-secret"),
			UserTTL:      parseDuration(getEnv("SESSION_USER_TTL", "720h"), 720*time.Hour),
			CookieSecure: parseBool(getEnv("SESSION_COOKIE_SECURE", "false")),
			CookieDomain: getEnv("SESSION_COOKIE_DOMAIN", ""),
			Store:        getEnv("SESSION_STORE", "db"),
			CleanupCron:  getEnv("SESSION_CLEANUP_CRON", "@hourly"),
		},
		Admin: AdminConfig{
			Password:     getEnv("ADMIN_PASSWORD", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Kakao: KakaoConfig{
			RestAPIKey:   getEnv("KAKAO_REST_API_KEY", ""),
			ClientSecret: getEnv("KAKAO_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("KAKAO_REDIRECT_URI", "http://localhost:8080/api/auth/kakao/callback"),
			AuthBaseURL:  getEnv("KAKAO_AUTH_BASE_URL", "https://kauth.kakao.com"),
			APIBaseURL:   getEnv("KAKAO_API_BASE_URL", "https://kapi.kakao.com"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", "carejoa-backups"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BackupPrefix:    getEnv("AWS_S3_BACKUP_PREFIX", "backups"),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
	}

	if config.Server.Environment == "production" && config.Session.Secret == "change-me-session-secret" {
		return nil, fmt.Errorf("SESSION_SECRET must be set in production")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
