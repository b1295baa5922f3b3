package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvConfig 统一环境变量配置结构
type EnvConfig struct {
	// 服务配置
	Port    string
	GinMode string

	// 存储配置
	SQLitePath  string
	MySQLDSN    string
	JournalMode string
	RedisURL    string

	// Docker配置文件
	DaemonJSONPath   string
	DaemonBackupPath string
	AutoUpdate       bool

	// 探测配置
	Mirrors        []string
	ProbeTimeout   time.Duration
	CheckInterval  time.Duration
	MaxConcurrency int
}

// LoadFromEnv 从环境变量加载配置并验证
func LoadFromEnv() (*EnvConfig, error) {
	cfg := &EnvConfig{}

	// 服务配置
	cfg.Port = getEnvOrDefault("PORT", ":8080")
	if !strings.HasPrefix(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	cfg.GinMode = os.Getenv("GIN_MODE")

	// 存储配置
	cfg.SQLitePath = getEnvOrDefault("SQLITE_PATH", "data/mirrorcheck.db")
	cfg.MySQLDSN = os.Getenv("MCHECK_MYSQL")
	cfg.JournalMode = getEnvOrDefault("SQLITE_JOURNAL_MODE", "WAL")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	// Docker配置文件
	cfg.DaemonJSONPath = getEnvOrDefault("DOCKER_DAEMON_JSON", DefaultDaemonJSONPath)
	cfg.DaemonBackupPath = getEnvOrDefault("DOCKER_DAEMON_JSON_BACKUP", DefaultDaemonJSONBackupPath)
	cfg.AutoUpdate = getBoolEnv("MCHECK_AUTO_UPDATE", true)

	// 探测配置
	cfg.Mirrors = parseMirrorsEnv(os.Getenv("MCHECK_MIRRORS"))
	cfg.ProbeTimeout = getDurationEnv("MCHECK_PROBE_TIMEOUT", DefaultProbeTimeout)
	cfg.CheckInterval = getDurationEnv("MCHECK_CHECK_INTERVAL", DefaultCheckInterval)
	cfg.MaxConcurrency = getIntEnv("MCHECK_MAX_CONCURRENCY", DefaultMaxConcurrency)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return cfg, nil
}

// Validate 验证配置合法性
func (c *EnvConfig) Validate() error {
	if strings.HasPrefix(c.Port, ":") {
		portNum, err := strconv.Atoi(c.Port[1:])
		if err != nil || portNum < 1 || portNum > 65535 {
			return fmt.Errorf("无效端口号: %s", c.Port)
		}
	}

	if c.MaxConcurrency < 1 || c.MaxConcurrency > 1024 {
		return fmt.Errorf("MaxConcurrency 超出合理范围 [1, 1024]: %d", c.MaxConcurrency)
	}

	if c.ProbeTimeout < time.Second || c.ProbeTimeout > time.Minute {
		return fmt.Errorf("ProbeTimeout 超出合理范围 [1s, 1m]: %v", c.ProbeTimeout)
	}

	// 探测超时必须小于汇总等待上限，否则所有任务都会被整体放弃
	if c.ProbeTimeout >= ProbeJoinCeiling {
		return fmt.Errorf("ProbeTimeout (%v) 必须小于汇总等待上限 %v", c.ProbeTimeout, ProbeJoinCeiling)
	}

	if c.CheckInterval < time.Minute {
		return fmt.Errorf("CheckInterval 不能小于1分钟: %v", c.CheckInterval)
	}

	for _, m := range c.Mirrors {
		if !strings.HasPrefix(m, "http://") && !strings.HasPrefix(m, "https://") {
			return fmt.Errorf("镜像源地址必须以 http:// 或 https:// 开头: %s", m)
		}
	}

	return nil
}

// parseMirrorsEnv 解析逗号分隔的镜像源列表，空值回退到默认列表
func parseMirrorsEnv(raw string) []string {
	if raw == "" {
		return append([]string(nil), DefaultMirrors...)
	}

	var mirrors []string
	for _, m := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			mirrors = append(mirrors, strings.TrimRight(trimmed, "/"))
		}
	}
	if len(mirrors) == 0 {
		return append([]string(nil), DefaultMirrors...)
	}
	return mirrors
}

// 辅助函数：获取环境变量或默认值
func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// 辅助函数：获取整数环境变量
func getIntEnv(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultValue
}

// 辅助函数：获取布尔环境变量
func getBoolEnv(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "1" || strings.EqualFold(val, "true") {
		return true
	}
	if val == "0" || strings.EqualFold(val, "false") {
		return false
	}
	return defaultValue
}

// 辅助函数：获取时长环境变量（支持"30s"/"1h"格式，纯数字按秒解析）
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
