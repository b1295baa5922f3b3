package storage

import (
	"context"

	"mirrorCheck/internal/model"
)

// ============================================================================
// 子接口定义（ISP原则：接口隔离）
// ============================================================================

// HistoryStore 探测历史管理接口（追加型日志）
type HistoryStore interface {
	// AddResult 追加一条探测结果到历史表
	AddResult(ctx context.Context, r *model.ProbeResult) error
	// ListHistory 查询历史，mirror为空表示不过滤，按测试时间倒序
	ListHistory(ctx context.Context, mirror string, limit int) ([]*model.HistoryEntry, error)
}

// StatsStore 滚动统计管理接口（按mirror_url逐条upsert）
type StatsStore interface {
	// UpsertStat 按单条探测结果增量更新统计
	UpsertStat(ctx context.Context, r *model.ProbeResult) error
	// ListStats 查询全部统计，按成功次数降序、平均响应时间升序
	ListStats(ctx context.Context) ([]*model.MirrorStat, error)
	// GetStat 查询单个镜像源的统计（测试与诊断用）
	GetStat(ctx context.Context, mirror string) (*model.MirrorStat, error)
}

// BatchStore 批次汇总管理接口
type BatchStore interface {
	// AddBatch 记录一次完整检测批次的汇总
	AddBatch(ctx context.Context, b *model.Batch) error
}

// Store 组合存储接口
type Store interface {
	HistoryStore
	StatsStore
	BatchStore

	// Ping 连通性检查（健康检查用）
	Ping(ctx context.Context) error
	Close() error
}
