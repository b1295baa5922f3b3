package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mirrorCheck/internal/storage/schema"
)

// Dialect 数据库方言
type Dialect int

// Dialect 数据库方言常量
const (
	// DialectSQLite SQLite数据库方言
	DialectSQLite Dialect = iota
	// DialectMySQL MySQL数据库方言
	DialectMySQL
)

// migrateSQLite 执行SQLite数据库迁移
func migrateSQLite(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, DialectSQLite)
}

// migrateMySQL 执行MySQL数据库迁移
func migrateMySQL(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, DialectMySQL)
}

// migrate 统一迁移逻辑：建表+建索引（幂等，IF NOT EXISTS）
func migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	tables := []func() *schema.TableBuilder{
		schema.DefineHistoryTable,
		schema.DefineStatisticsTable,
		schema.DefineBatchesTable,
	}

	for _, defineTable := range tables {
		tb := defineTable()

		if _, err := db.ExecContext(ctx, buildDDL(tb, dialect)); err != nil {
			return fmt.Errorf("create %s table: %w", tb.Name(), err)
		}

		for _, idx := range buildIndexes(tb, dialect) {
			if _, err := db.ExecContext(ctx, idx.SQL); err != nil {
				// MySQL不支持IF NOT EXISTS建索引，重复创建报错可忽略
				if dialect == DialectMySQL && isDuplicateIndexErr(err) {
					continue
				}
				return fmt.Errorf("create index %s: %w", idx.Name, err)
			}
		}
	}

	return nil
}

// buildDDL 按方言生成建表语句
func buildDDL(tb *schema.TableBuilder, dialect Dialect) string {
	if dialect == DialectMySQL {
		return tb.BuildMySQL()
	}
	return tb.BuildSQLite()
}

// buildIndexes 按方言生成索引语句
func buildIndexes(tb *schema.TableBuilder, dialect Dialect) []schema.IndexDef {
	if dialect == DialectMySQL {
		return tb.GetIndexesMySQL()
	}
	return tb.GetIndexesSQLite()
}

// isDuplicateIndexErr 判断MySQL重复索引错误（errno 1061）
func isDuplicateIndexErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate key name")
}
