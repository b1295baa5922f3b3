package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"mirrorCheck/internal/config"
	sqlstore "mirrorCheck/internal/storage/sql"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// NewStore 根据环境变量创建存储实例（工厂模式）
//
// 两种模式：
//   - SQLite 模式：MCHECK_MYSQL 不设置（默认，单机部署）
//   - MySQL 模式：MCHECK_MYSQL 设置为DSN（原版生产环境形态）
//
// 环境变量：
//   - MCHECK_MYSQL：MySQL DSN（主存储）
//   - SQLITE_PATH：SQLite 数据库路径（默认: data/mirrorcheck.db）
//   - SQLITE_JOURNAL_MODE：SQLite journal模式（默认WAL）
func NewStore() (Store, error) {
	mysqlDSN := os.Getenv("MCHECK_MYSQL")

	if mysqlDSN == "" {
		dbPath := os.Getenv("SQLITE_PATH")
		if dbPath == "" {
			dbPath = "data/mirrorcheck.db"
		}

		store, err := createSQLiteStore(dbPath)
		if err != nil {
			return nil, fmt.Errorf("SQLite 初始化失败: %w", err)
		}
		log.Printf("[INFO] 使用 SQLite 存储: %s", dbPath)
		return store, nil
	}

	store, err := createMySQLStore(mysqlDSN)
	if err != nil {
		return nil, fmt.Errorf("MySQL 初始化失败: %w", err)
	}
	log.Print("[INFO] 使用 MySQL 存储")
	return store, nil
}

// createMySQLStore 创建 MySQL 存储实例
func createMySQLStore(dsn string) (*sqlstore.SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开MySQL连接失败: %w", err)
	}

	// 连接池配置
	db.SetMaxOpenConns(config.MySQLMaxOpenConns)
	db.SetMaxIdleConns(config.MySQLMaxIdleConns)
	db.SetConnMaxLifetime(config.SQLiteConnMaxLifetime)

	// 测试连接（带超时，Fail-Fast）
	pingCtx, pingCancel := context.WithTimeout(context.Background(), config.StartupDBPingTimeout)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("MySQL连接测试失败（超时%v）: %w", config.StartupDBPingTimeout, err)
	}

	store := sqlstore.NewSQLStore(db, "mysql")

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), config.StartupMigrationTimeout)
	defer migrateCancel()
	if err := migrateMySQL(migrateCtx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("MySQL迁移失败（超时%v）: %w", config.StartupMigrationTimeout, err)
	}

	return store, nil
}

// CreateSQLiteStore 直接创建 SQLite 存储实例（测试辅助函数）
// 生产代码应使用 NewStore() 工厂函数
func CreateSQLiteStore(path string) (Store, error) {
	return createSQLiteStore(path)
}

// createSQLiteStore 内部函数，返回具体类型
func createSQLiteStore(path string) (*sqlstore.SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", buildSQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("打开SQLite失败: %w", err)
	}

	// SQLite 多连接并发写会触发 BUSY，强制单连接由 database/sql 串行化
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(config.SQLiteConnMaxLifetime)

	store := sqlstore.NewSQLStore(db, "sqlite")

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), config.StartupMigrationTimeout)
	defer migrateCancel()
	if err := migrateSQLite(migrateCtx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("SQLite迁移失败（超时%v）: %w", config.StartupMigrationTimeout, err)
	}

	return store, nil
}

// buildSQLiteDSN 构建SQLite DSN
func buildSQLiteDSN(path string) string {
	journalMode := validateJournalMode(os.Getenv("SQLITE_JOURNAL_MODE"))
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode=%s", path, journalMode)
}

// validateJournalMode 验证SQLITE_JOURNAL_MODE环境变量的合法性（白名单）
func validateJournalMode(mode string) string {
	if mode == "" {
		return "WAL"
	}

	validModes := map[string]bool{
		"DELETE":   true,
		"TRUNCATE": true,
		"PERSIST":  true,
		"MEMORY":   true,
		"WAL":      true,
		"OFF":      true,
	}

	modeUpper := strings.ToUpper(mode)
	if !validModes[modeUpper] {
		log.Printf("[WARN] SQLITE_JOURNAL_MODE 值非法: %q，回退到 WAL", mode)
		return "WAL"
	}

	return modeUpper
}
