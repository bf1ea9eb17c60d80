package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/carejoa/carejoa-backend/pkg/logger"
)

// 백업 다운로드 링크 유효 시간
const downloadURLExpiry = 15 * time.Minute

var ErrInvalidBackupName = errors.New("invalid backup file name")

// S3Options 백업 버킷 설정. Endpoint 는 S3 호환 스토리지나 테스트 서버용.
type S3Options struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Endpoint        string
}

// S3Storage 데이터베이스 백업 보관소
type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
}

// UploadResult 업로드된 백업 위치
type UploadResult struct {
	Key         string `json:"key"`
	DownloadURL string `json:"download_url"`
}

func NewS3Storage(opts S3Options) *S3Storage {
	var cfg aws.Config
	var err error

	// 키가 주어지면 정적 자격 증명, 아니면 기본 체인 (환경변수, ~/.aws, IAM role)
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		cfg = aws.Config{
			Region:      opts.Region,
			Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		}
	} else {
		cfg, err = config.LoadDefaultConfig(context.TODO(), config.WithRegion(opts.Region))
		if err != nil {
			cfg = aws.Config{Region: opts.Region}
		}
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  opts.Bucket,
		prefix:  strings.Trim(opts.Prefix, "/"),
	}
}

// BackupKey {prefix}/{YYYY}/{MM}/{file}
func BackupKey(prefix, fileName string, at time.Time) (string, error) {
	base := path.Base(fileName)
	if base != fileName || base == "." || base == "/" || strings.TrimSpace(base) == "" {
		return "", ErrInvalidBackupName
	}
	return path.Join(strings.Trim(prefix, "/"), at.UTC().Format("2006/01"), base), nil
}

// UploadBackup 백업 파일 업로드 후 다운로드용 presigned GET URL 반환
func (s *S3Storage) UploadBackup(ctx context.Context, fileName string, body io.ReadSeeker, contentType string) (*UploadResult, error) {
	key, err := BackupKey(s.prefix, fileName, time.Now())
	if err != nil {
		return nil, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error("Failed to upload backup", err, map[string]interface{}{
			"bucket": s.bucket,
			"key":    key,
		})
		return nil, fmt.Errorf("failed to upload backup: %w", err)
	}

	url, err := s.DownloadURL(ctx, key)
	if err != nil {
		return nil, err
	}

	logger.Info("Backup uploaded", map[string]interface{}{
		"bucket": s.bucket,
		"key":    key,
	})
	return &UploadResult{Key: key, DownloadURL: url}, nil
}

// DownloadURL presigned GET URL (15분)
func (s *S3Storage) DownloadURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(downloadURLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}
