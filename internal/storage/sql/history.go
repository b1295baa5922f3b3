package sql

import (
	"context"
	"fmt"

	"mirrorCheck/internal/model"
)

// AddResult 追加一条探测结果到历史表
func (s *SQLStore) AddResult(ctx context.Context, r *model.ProbeResult) error {
	query := `INSERT INTO mirror_test_history
		(mirror_url, available, status, status_code, response_time, test_time)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		r.Mirror,
		boolToInt(r.Available),
		r.Status,
		r.StatusCode,
		r.ResponseTime,
		timeToUnix(r.TestTime.Time),
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// ListHistory 查询探测历史，按测试时间倒序
// mirror为空时不过滤；limit由调用方给定（handler层已做上限裁剪）
func (s *SQLStore) ListHistory(ctx context.Context, mirror string, limit int) ([]*model.HistoryEntry, error) {
	var (
		query string
		args  []any
	)
	if mirror != "" {
		query = `SELECT id, mirror_url, available, status, status_code, response_time, test_time
			FROM mirror_test_history WHERE mirror_url = ?
			ORDER BY test_time DESC, id DESC LIMIT ?`
		args = []any{mirror, limit}
	} else {
		query = `SELECT id, mirror_url, available, status, status_code, response_time, test_time
			FROM mirror_test_history
			ORDER BY test_time DESC, id DESC LIMIT ?`
		args = []any{limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []*model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var availableInt int
		var testTime int64
		if err := rows.Scan(&e.ID, &e.Mirror, &availableInt, &e.Status, &e.StatusCode, &e.ResponseTime, &testTime); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Available = availableInt != 0
		e.TestTime = unixToJSONTime(testTime)
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
