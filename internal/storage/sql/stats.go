package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mirrorCheck/internal/model"
)

// UpsertStat 按单条探测结果增量更新滚动统计
//
// 平均响应时间是累计均值：(old_avg * old_total + rt) / (old_total + 1)，
// 每次探测（成功或失败）都参与——失败探测的response_time是到失败为止的
// 实测耗时，同样计入均值，与历史行为保持一致。
// last_success_time/last_fail_time只在对应分支更新；current_status无条件
// 覆盖为最近一次探测的结果。
func (s *SQLStore) UpsertStat(ctx context.Context, r *model.ProbeResult) error {
	successInc := 0
	failInc := 0
	if r.Available {
		successInc = 1
	} else {
		failInc = 1
	}
	testTime := timeToUnix(r.TestTime.Time)
	curStatus := boolToInt(r.Available)

	var query string
	if s.dialect == "mysql" {
		// MySQL: ON DUPLICATE KEY UPDATE 中已赋值的列引用取新值，
		// total_tests先自增，avg再用 (total_tests - 1) 取回旧计数
		query = `INSERT INTO mirror_statistics
			(mirror_url, total_tests, success_count, fail_count, avg_response_time,
			 last_success_time, last_fail_time, current_status, updated_at)
			VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				total_tests = total_tests + 1,
				success_count = success_count + VALUES(success_count),
				fail_count = fail_count + VALUES(fail_count),
				avg_response_time = (avg_response_time * (total_tests - 1) + VALUES(avg_response_time)) / total_tests,
				last_success_time = IF(VALUES(success_count) = 1, VALUES(last_success_time), last_success_time),
				last_fail_time = IF(VALUES(fail_count) = 1, VALUES(last_fail_time), last_fail_time),
				current_status = VALUES(current_status),
				updated_at = VALUES(updated_at)`
	} else {
		// SQLite: DO UPDATE 的SET表达式全部取旧值，直接用旧计数推均值
		query = `INSERT INTO mirror_statistics
			(mirror_url, total_tests, success_count, fail_count, avg_response_time,
			 last_success_time, last_fail_time, current_status, updated_at)
			VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(mirror_url) DO UPDATE SET
				total_tests = total_tests + 1,
				success_count = success_count + excluded.success_count,
				fail_count = fail_count + excluded.fail_count,
				avg_response_time = (avg_response_time * total_tests + excluded.avg_response_time) / (total_tests + 1),
				last_success_time = CASE WHEN excluded.success_count = 1 THEN excluded.last_success_time ELSE last_success_time END,
				last_fail_time = CASE WHEN excluded.fail_count = 1 THEN excluded.last_fail_time ELSE last_fail_time END,
				current_status = excluded.current_status,
				updated_at = excluded.updated_at`
	}

	var lastSuccess, lastFail int64
	if r.Available {
		lastSuccess = testTime
	} else {
		lastFail = testTime
	}

	_, err := s.db.ExecContext(ctx, query,
		r.Mirror,
		successInc,
		failInc,
		r.ResponseTime,
		lastSuccess,
		lastFail,
		curStatus,
		testTime,
	)
	if err != nil {
		return fmt.Errorf("upsert statistics: %w", err)
	}
	return nil
}

// ListStats 查询全部镜像源统计
// 排序规则与查询接口约定一致：成功次数降序，平均响应时间升序
func (s *SQLStore) ListStats(ctx context.Context) ([]*model.MirrorStat, error) {
	query := `SELECT mirror_url, total_tests, success_count, fail_count, avg_response_time,
			last_success_time, last_fail_time, current_status, updated_at
		FROM mirror_statistics
		ORDER BY success_count DESC, avg_response_time ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query statistics: %w", err)
	}
	defer rows.Close()

	var stats []*model.MirrorStat
	for rows.Next() {
		stat, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}

// GetStat 查询单个镜像源的统计，不存在时返回 (nil, nil)
func (s *SQLStore) GetStat(ctx context.Context, mirror string) (*model.MirrorStat, error) {
	query := `SELECT mirror_url, total_tests, success_count, fail_count, avg_response_time,
			last_success_time, last_fail_time, current_status, updated_at
		FROM mirror_statistics WHERE mirror_url = ?`

	stat, err := scanStat(s.db.QueryRowContext(ctx, query, mirror))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return stat, err
}

// scanStat 统一的统计行扫描器
func scanStat(scanner interface{ Scan(...any) error }) (*model.MirrorStat, error) {
	var stat model.MirrorStat
	var lastSuccess, lastFail, updatedAt int64
	var statusInt int

	if err := scanner.Scan(&stat.Mirror, &stat.TotalTests, &stat.SuccessCount, &stat.FailCount,
		&stat.AvgResponseTime, &lastSuccess, &lastFail, &statusInt, &updatedAt); err != nil {
		return nil, err
	}

	stat.LastSuccessTime = unixToJSONTime(lastSuccess)
	stat.LastFailTime = unixToJSONTime(lastFail)
	stat.CurrentStatus = statusInt != 0
	stat.UpdatedAt = unixToJSONTime(updatedAt)
	return &stat, nil
}
