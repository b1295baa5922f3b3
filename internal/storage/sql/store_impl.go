package sql

import (
	"context"
	"database/sql"
	"time"

	"mirrorCheck/internal/model"
)

// SQLStore 通用SQL存储实现
// 同一套语句服务 SQLite 和 MySQL，仅upsert语法按方言分支
// 连接统一从 database/sql 池获取，每个操作独立归还
type SQLStore struct {
	db      *sql.DB
	dialect string // "sqlite" | "mysql"
}

// NewSQLStore 创建通用SQL存储实例
// db: 数据库连接池（由工厂初始化并完成迁移）
func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Ping 连通性检查
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭存储
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// timeToUnix 时间转Unix秒时间戳（零值存0）
func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// unixToJSONTime Unix秒时间戳转JSONTime（0还原为零值）
func unixToJSONTime(ts int64) model.JSONTime {
	if ts == 0 {
		return model.JSONTime{}
	}
	return model.JSONTime{Time: time.Unix(ts, 0)}
}

// boolToInt 布尔转TINYINT
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
