package config

import "time"

// 探测配置常量
const (
	// DefaultProbeTimeout 单次HTTP探测请求的超时时间
	DefaultProbeTimeout = 5 * time.Second

	// ProbeJoinCeiling 批次汇总的等待上限
	// 超过该时间仍未返回的探测任务被放弃，其结果不进入批次
	// （慢源只缩小批次规模，不阻塞整个批次）
	ProbeJoinCeiling = 10 * time.Second

	// DefaultMaxConcurrency 批次探测的最大并发数
	DefaultMaxConcurrency = 32
)

// 调度配置常量
const (
	// DefaultCheckInterval 定时检测间隔
	// 间隔从上一轮运行结束时起算，慢批次不会导致运行堆积
	DefaultCheckInterval = 1 * time.Hour
)

// 缓存配置常量
const (
	// SnapshotCacheKey Redis中缓存检测快照的key
	SnapshotCacheKey = "mirrorcheck:test_results"

	// SnapshotCacheTTL 快照缓存过期时间（与检测间隔一致）
	SnapshotCacheTTL = DefaultCheckInterval
)

// 推荐配置常量
const (
	// RecommendedMirrorCount 推荐配置中最多包含的镜像源数量
	RecommendedMirrorCount = 5

	// LatencySentinel 缺失/无效响应时间的排序哨兵值（毫秒）
	LatencySentinel = 9999.0
)

// Docker配置文件常量
const (
	// DefaultDaemonJSONPath Docker daemon.json默认路径
	DefaultDaemonJSONPath = "/etc/docker/daemon.json"

	// DefaultDaemonJSONBackupPath 备份文件默认路径
	DefaultDaemonJSONBackupPath = "/etc/docker/daemon.json.bak"
)

// 查询配置常量
const (
	// DefaultHistoryLimit 历史记录查询的默认条数上限
	DefaultHistoryLimit = 100

	// MaxHistoryLimit 历史记录查询的最大条数上限
	MaxHistoryLimit = 1000
)

// HTTP探测客户端配置常量
const (
	// HTTPDialTimeout DNS解析+TCP连接建立超时
	HTTPDialTimeout = 5 * time.Second

	// HTTPKeepAliveInterval TCP keepalive间隔
	HTTPKeepAliveInterval = 15 * time.Second

	// HTTPTLSHandshakeTimeout TLS握手超时
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPMaxIdleConns 全局空闲连接池大小
	HTTPMaxIdleConns = 100

	// HTTPMaxIdleConnsPerHost 单host空闲连接数
	HTTPMaxIdleConnsPerHost = 2

	// TLSSessionCacheSize TLS会话缓存大小
	TLSSessionCacheSize = 256
)

// 存储配置常量
const (
	// SQLiteConnMaxLifetime SQLite连接最大存活时间
	SQLiteConnMaxLifetime = 1 * time.Hour

	// StartupDBPingTimeout 启动时数据库连通性检查超时
	StartupDBPingTimeout = 10 * time.Second

	// StartupMigrationTimeout 启动时建表迁移超时
	StartupMigrationTimeout = 30 * time.Second

	// MySQLMaxOpenConns MySQL连接池上限
	MySQLMaxOpenConns = 16

	// MySQLMaxIdleConns MySQL空闲连接数
	MySQLMaxIdleConns = 4
)
