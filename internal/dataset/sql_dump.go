package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/carejoa/carejoa-backend/pkg/logger"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DumpReport 테이블별 백업 행 수
type DumpReport struct {
	Tables map[string]int `json:"tables"`
	Rows   int            `json:"rows"`
}

// TableNames gorm 모델의 테이블 이름 (모델 순서 유지)
func TableNames(conn *gorm.DB, models []interface{}) ([]string, error) {
	names := make([]string, 0, len(models))
	for _, m := range models {
		stmt := &gorm.Statement{DB: conn}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", m, err)
		}
		names = append(names, stmt.Schema.Table)
	}
	return names, nil
}

// DumpSQL 테이블 데이터를 INSERT 문으로 기록. 테이블은 참조 순서대로 넘겨야 복원된다.
func DumpSQL(ctx context.Context, conn *gorm.DB, tables []string, w io.Writer) (*DumpReport, error) {
	bw := bufio.NewWriter(w)
	report := &DumpReport{Tables: make(map[string]int, len(tables))}

	fmt.Fprintf(bw, "-- carejoa data dump %s\nBEGIN;\n", time.Now().UTC().Format(time.RFC3339))
	var serial []string
	for _, table := range tables {
		n, hasID, err := dumpTable(ctx, conn, table, bw)
		if err != nil {
			return nil, err
		}
		if hasID {
			serial = append(serial, table)
		}
		report.Tables[table] = n
		report.Rows += n
		logger.Debug("Table dumped", map[string]interface{}{
			"table": table,
			"rows":  n,
		})
	}
	// 명시한 id 로 복원한 뒤 시퀀스를 다음 값으로 맞춘다
	for _, table := range serial {
		fmt.Fprint(bw, resetSequenceSQL(table))
	}
	fmt.Fprint(bw, "COMMIT;\n")

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write dump: %w", err)
	}
	return report, nil
}

// resetSequenceSQL serial id 시퀀스를 MAX(id)+1 부터 발급하도록 되돌린다
func resetSequenceSQL(table string) string {
	return fmt.Sprintf("SELECT setval(pg_get_serial_sequence(%s, 'id'), COALESCE(MAX(%s), 0) + 1, false) FROM %s;\n",
		pq.QuoteLiteral(table), pq.QuoteIdentifier("id"), pq.QuoteIdentifier(table))
}

func dumpTable(ctx context.Context, conn *gorm.DB, table string, w io.Writer) (int, bool, error) {
	rows, err := conn.WithContext(ctx).Table(table).Rows()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, false, err
	}
	hasID := false
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(c)
		if c == "id" {
			hasID = true
		}
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES (", pq.QuoteIdentifier(table), strings.Join(quoted, ", "))

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	literals := make([]string, len(cols))

	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return count, hasID, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		for i, v := range values {
			literals[i] = sqlLiteral(v)
		}
		if _, err := fmt.Fprintf(w, "%s%s);\n", prefix, strings.Join(literals, ", ")); err != nil {
			return count, hasID, err
		}
		count++
	}
	return count, hasID, rows.Err()
}

func sqlLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return pq.QuoteLiteral(val.UTC().Format(time.RFC3339Nano))
	case []byte:
		return pq.QuoteLiteral(string(val))
	case string:
		return pq.QuoteLiteral(val)
	default:
		return pq.QuoteLiteral(fmt.Sprint(val))
	}
}
