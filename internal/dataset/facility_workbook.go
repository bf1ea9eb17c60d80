package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/app/repository"
	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const importBatchSize = 500

var ErrEmptyWorkbook = errors.New("no data found in workbook")

var exportHeaders = []string{"ID", "시설유형", "시설명", "우편번호", "주소", "전화번호", "위도", "경도", "시도", "시군구"}

// columns 가져오기 컬럼 위치. 헤더에 이름이 없으면 원본 시트 순서(유형, 이름, 우편번호, 주소, 위도, 경도).
type columns struct {
	facilityType, name, postalCode, address, phone, latitude, longitude int
}

func resolveColumns(header []string) columns {
	cols := columns{facilityType: 0, name: 1, postalCode: 2, address: 3, phone: -1, latitude: 4, longitude: 5}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}
	if _, ok := index["시설명"]; !ok {
		return cols
	}
	lookup := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		return -1
	}
	return columns{
		facilityType: lookup("시설유형"),
		name:         lookup("시설명"),
		postalCode:   lookup("우편번호"),
		address:      lookup("주소"),
		phone:        lookup("전화번호"),
		latitude:     lookup("위도"),
		longitude:    lookup("경도"),
	}
}

// ImportReport 가져오기 결과
type ImportReport struct {
	Rows     int `json:"rows"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ReadFacilities 첫 번째 시트에서 시설 목록을 읽는다.
// 이름이나 주소가 없는 행, 알 수 없는 시설 유형은 건너뛴다.
func ReadFacilities(r io.Reader) ([]model.Facility, *ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil, ErrEmptyWorkbook
	}

	report := &ImportReport{}
	facilities := make([]model.Facility, 0, len(rows)-1)
	seen := make(map[string]bool)
	cols := resolveColumns(rows[0])

	for _, row := range rows[1:] {
		report.Rows++
		facility, ok := parseFacilityRow(row, cols)
		if !ok {
			report.Skipped++
			continue
		}

		key := facility.Name + "|" + facility.Address
		if seen[key] {
			report.Skipped++
			continue
		}
		seen[key] = true
		facilities = append(facilities, facility)
	}

	report.Imported = len(facilities)
	return facilities, report, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFacilityRow(row []string, cols columns) (model.Facility, bool) {
	facility := model.Facility{
		FacilityType: cell(row, cols.facilityType),
		Name:         cell(row, cols.name),
		PostalCode:   cell(row, cols.postalCode),
		Address:      cell(row, cols.address),
		Phone:        cell(row, cols.phone),
	}
	if facility.Name == "" || facility.Address == "" || !model.IsValidFacilityType(facility.FacilityType) {
		return facility, false
	}

	// 좌표가 비었거나 숫자가 아니면 0 (거리 정렬에서 제외)
	facility.Latitude, _ = strconv.ParseFloat(cell(row, cols.latitude), 64)
	facility.Longitude, _ = strconv.ParseFloat(cell(row, cols.longitude), 64)

	// 시도/시군구는 주소 앞 두 토큰
	parts := strings.Fields(facility.Address)
	if len(parts) > 0 {
		facility.Sido = parts[0]
	}
	if len(parts) > 1 {
		facility.Sigungu = parts[1]
	}
	return facility, true
}

// ImportFacilities 시설을 일괄 저장. replace 이면 기존 시설과 상세정보를 먼저 지운다.
func ImportFacilities(ctx context.Context, conn *gorm.DB, facilities []model.Facility, replace bool) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replace {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.FacilityDetails{}).Error; err != nil {
				return fmt.Errorf("failed to clear facility details: %w", err)
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Facility{}).Error; err != nil {
				return fmt.Errorf("failed to clear facilities: %w", err)
			}
			logger.Info("Existing facilities cleared")
		}
		return repository.NewFacilityRepository(tx).CreateInBatches(facilities, importBatchSize)
	})
}

// ExportFacilities 전체 시설을 워크북으로 기록
func ExportFacilities(ctx context.Context, conn *gorm.DB, w io.Writer) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "facilities"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return 0, err
	}

	stream, err := f.NewStreamWriter(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := stream.SetRow("A1", header); err != nil {
		return 0, err
	}

	count := 0
	err = repository.NewFacilityRepository(conn.WithContext(ctx)).ForEachBatch(importBatchSize, func(batch []model.Facility) error {
		for _, fac := range batch {
			cellName, err := excelize.CoordinatesToCellName(1, count+2)
			if err != nil {
				return err
			}
			row := []interface{}{
				fac.ID, fac.FacilityType, fac.Name, fac.PostalCode, fac.Address,
				fac.Phone, fac.Latitude, fac.Longitude, fac.Sido, fac.Sigungu,
			}
			if err := stream.SetRow(cellName, row); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to export facilities: %w", err)
	}

	if err := stream.Flush(); err != nil {
		return 0, err
	}
	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}
	return count, nil
}
