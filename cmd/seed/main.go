package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/carejoa/carejoa-backend/config"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/internal/app/service"
	"github.com/carejoa/carejoa-backend/internal/dataset"
	"github.com/carejoa/carejoa-backend/internal/db"
	"github.com/carejoa/carejoa-backend/internal/storage"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	useRemote bool
	useLocal  bool
	assumeYes bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "seed",
		Short:         "케어조아 데이터 관리 도구 (시설 가져오기/내보내기, 상세정보 생성, 백업)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&useRemote, "remote", false, "원격 데이터베이스 사용 (REMOTE_DB_*)")
	rootCmd.PersistentFlags().BoolVar(&useLocal, "local", false, "로컬 데이터베이스 사용 (DB_*, 기본값)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "확인 없이 진행")
	rootCmd.MarkFlagsMutuallyExclusive("remote", "local")

	rootCmd.AddCommand(importFacilitiesCmd())
	rootCmd.AddCommand(generateDetailsCmd())
	rootCmd.AddCommand(exportFacilitiesCmd())
	rootCmd.AddCommand(backupCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// setup 설정 로드 후 --remote/--local 에 맞는 데이터베이스 연결
func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
	})

	dbCfg := &cfg.Database
	target := "local"
	if useRemote {
		if cfg.RemoteDatabase.Host == "" {
			return nil, nil, fmt.Errorf("REMOTE_DB_HOST is not set")
		}
		dbCfg = &cfg.RemoteDatabase
		target = "remote"
	}
	fmt.Printf("Target database: %s (%s/%s)\n", target, dbCfg.Host, dbCfg.DBName)

	conn, err := db.Open(dbCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.MigrateDB(conn); err != nil {
		closeDB(conn)
		return nil, nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return cfg, conn, nil
}

func closeDB(conn *gorm.DB) {
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func confirm(prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s (yes/no): ", prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}

func importFacilitiesCmd() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import-facilities <xlsx>",
		Short: "엑셀 시설 목록 가져오기",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer file.Close()

			fmt.Printf("Reading XLSX file: %s\n", args[0])
			facilities, report, err := dataset.ReadFacilities(file)
			if err != nil {
				return err
			}
			fmt.Printf("Rows: %d, valid: %d, skipped: %d\n", report.Rows, report.Imported, report.Skipped)

			_, conn, err := setup()
			if err != nil {
				return err
			}
			defer closeDB(conn)

			prompt := "Do you want to proceed with the import?"
			if replace {
				prompt = "Existing facilities and details will be deleted. Proceed?"
			}
			if !confirm(prompt) {
				fmt.Println("Import cancelled.")
				return nil
			}

			if err := dataset.ImportFacilities(cmd.Context(), conn, facilities, replace); err != nil {
				return err
			}
			fmt.Printf("Import completed: %d facilities\n", len(facilities))
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "기존 시설 삭제 후 가져오기")
	return cmd
}

func generateDetailsCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "generate-details",
		Short: "시설 이름/유형/지역 기반 상세정보 추정 생성",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := setup()
			if err != nil {
				return err
			}
			defer closeDB(conn)

			facilityService := service.NewFacilityService(repository.NewFacilityRepository(conn))
			report, err := facilityService.GenerateAllDetails(cmd.Context(), overwrite)
			if err != nil {
				return err
			}
			fmt.Printf("Processed: %d, written: %d, skipped: %d\n", report.Processed, report.Written, report.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "기존 상세정보(관리자 수정 포함) 덮어쓰기")
	return cmd
}

func exportFacilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-facilities <xlsx>",
		Short: "전체 시설 목록을 엑셀로 내보내기",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := setup()
			if err != nil {
				return err
			}
			defer closeDB(conn)

			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			defer file.Close()

			count, err := dataset.ExportFacilities(cmd.Context(), conn, file)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d facilities to %s\n", count, args[0])
			return nil
		},
	}
}

func backupCmd() *cobra.Command {
	var (
		upload bool
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "전체 데이터 SQL 백업 (--upload 시 S3 업로드)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup()
			if err != nil {
				return err
			}
			defer closeDB(conn)

			tables, err := dataset.TableNames(conn, db.Models())
			if err != nil {
				return err
			}

			name := fmt.Sprintf("carejoa_backup_%s.sql", time.Now().Format("20060102_150405"))
			path := filepath.Join(outDir, name)
			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			defer file.Close()

			report, err := dataset.DumpSQL(cmd.Context(), conn, tables, file)
			if err != nil {
				return err
			}
			fmt.Printf("Backup written: %s (%d rows)\n", path, report.Rows)
			for _, table := range tables {
				fmt.Printf("  %-20s %d\n", table, report.Tables[table])
			}

			if !upload {
				return nil
			}
			if _, err := file.Seek(0, 0); err != nil {
				return err
			}

			s3 := storage.NewS3Storage(storage.S3Options{
				Region:          cfg.S3.Region,
				Bucket:          cfg.S3.Bucket,
				AccessKeyID:     cfg.S3.AccessKeyID,
				SecretAccessKey: cfg.S3.SecretAccessKey,
				Prefix:          cfg.S3.BackupPrefix,
				Endpoint:        cfg.S3.Endpoint,
			})
			result, err := s3.UploadBackup(cmd.Context(), name, file, "application/sql")
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded: s3://%s/%s\nDownload (15m): %s\n", cfg.S3.Bucket, result.Key, result.DownloadURL)
			return nil
		},
	}
	cmd.Flags().BoolVar(&upload, "upload", false, "S3 버킷에 업로드")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "백업 파일 저장 디렉터리")
	return cmd
}
