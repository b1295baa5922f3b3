package testutil

import (
	"path/filepath"
	"testing"

	"mirrorCheck/internal/storage"
)

// SetupTestStore 创建测试用SQLite存储（t.TempDir自动清理）
func SetupTestStore(t *testing.T) storage.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.CreateSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("创建测试存储失败: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
