package dockercfg

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"mirrorCheck/internal/config"
	apperrors "mirrorCheck/internal/errors"
	"mirrorCheck/internal/model"
	"mirrorCheck/internal/util"
)

// registryMirrorsKey daemon.json中本服务唯一接管的字段，其余字段原样保留
const registryMirrorsKey = "registry-mirrors"

// Synthesizer 推荐配置生成与下发
// Synthesize从快照派生推荐列表，Apply负责合并写入daemon.json：
// 备份旧文件、容错读取、仅替换registry-mirrors、原子覆盖写
type Synthesizer struct {
	daemonPath string
	backupPath string
	topN       int
}

// NewSynthesizer 创建配置生成器
func NewSynthesizer(daemonPath, backupPath string) *Synthesizer {
	if daemonPath == "" {
		daemonPath = config.DefaultDaemonJSONPath
	}
	if backupPath == "" {
		backupPath = config.DefaultDaemonJSONBackupPath
	}
	return &Synthesizer{
		daemonPath: daemonPath,
		backupPath: backupPath,
		topN:       config.RecommendedMirrorCount,
	}
}

// Synthesize 从快照派生推荐配置
// 过滤可用源，按响应时间升序取最快的topN个；无效耗时按哨兵值排到末尾
func (s *Synthesizer) Synthesize(snap *model.CachedSnapshot) (*model.RecommendedConfig, error) {
	if snap == nil || len(snap.Results) == 0 {
		return nil, apperrors.NoDataError()
	}

	var available []*model.ProbeResult
	for _, r := range snap.Results {
		if r.Available {
			available = append(available, r)
		}
	}
	if len(available) == 0 {
		return nil, apperrors.NoAvailableMirrorsError()
	}

	sort.SliceStable(available, func(i, j int) bool {
		return latencyOf(available[i]) < latencyOf(available[j])
	})

	n := s.topN
	if n > len(available) {
		n = len(available)
	}
	mirrors := make([]string, 0, n)
	for _, r := range available[:n] {
		mirrors = append(mirrors, r.Mirror)
	}

	return &model.RecommendedConfig{
		Mirrors:        mirrors,
		Count:          len(mirrors),
		TotalAvailable: len(available),
		LastUpdate:     snap.LastUpdate,
		NextUpdate:     snap.NextUpdate,
	}, nil
}

// Apply 将推荐配置合并写入daemon.json
//
// 流程：确保目录存在 → 备份旧文件（逐字节） → 容错读取现有配置
// （解析失败按空对象处理） → 仅替换registry-mirrors → 临时文件+rename
// 原子覆盖写。写入成功后仅提示重启Docker，不代为执行。
// 推荐列表为空时不做任何写入。
func (s *Synthesizer) Apply(cfg *model.RecommendedConfig) error {
	if cfg == nil || len(cfg.Mirrors) == 0 {
		return apperrors.NoAvailableMirrorsError()
	}

	dir := filepath.Dir(s.daemonPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Printf("[INFO] 配置目录不存在: %s，尝试创建...", dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.ConfigWriteError(s.daemonPath, fmt.Errorf("创建配置目录失败: %w", err))
		}
	}

	// 备份现有配置（逐字节拷贝）；备份失败不阻断写入
	if _, err := os.Stat(s.daemonPath); err == nil {
		if err := copyFile(s.daemonPath, s.backupPath); err != nil {
			log.Printf("[WARN] 备份配置失败: %v", err)
		} else {
			log.Printf("[INFO] 已备份现有配置到: %s", s.backupPath)
		}
	}

	existing := s.readExisting()
	existing[registryMirrorsKey] = cfg.Mirrors

	if err := s.writeAtomic(existing); err != nil {
		if os.IsPermission(err) {
			log.Printf("[WARN] 权限不足，无法写入 %s", s.daemonPath)
		}
		return apperrors.ConfigWriteError(s.daemonPath, err)
	}

	log.Printf("[INFO] Docker 配置已更新: %s（%d 个镜像源）", s.daemonPath, len(cfg.Mirrors))
	s.notifyRestart()
	return nil
}

// readExisting 容错读取现有daemon.json
// 文件不存在或解析失败都按空对象处理，不阻断写入
func (s *Synthesizer) readExisting() map[string]any {
	existing := make(map[string]any)

	data, err := os.ReadFile(s.daemonPath)
	if err != nil {
		return existing
	}
	if err := util.UnmarshalJSON(data, &existing); err != nil {
		log.Printf("[WARN] 读取现有配置失败: %v，将创建新配置", err)
		return make(map[string]any)
	}
	return existing
}

// writeAtomic 原子覆盖写：同目录临时文件 + rename
// 输出为4空格缩进的确定性格式，同一输入产生字节一致的文件
func (s *Synthesizer) writeAtomic(cfg map[string]any) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal daemon config: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.daemonPath), ".daemon-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, s.daemonPath)
}

// notifyRestart 提示下游重启（仅通知，重启由运维手动执行）
func (s *Synthesizer) notifyRestart() {
	log.Print("[INFO] 提示: 配置已更新，请手动重启 Docker 服务使配置生效:")
	log.Print("[INFO]   sudo systemctl daemon-reload")
	log.Print("[INFO]   sudo systemctl restart docker")
}

// latencyOf 排序用耗时：无效值替换为哨兵，排到可用组末尾
func latencyOf(r *model.ProbeResult) float64 {
	if r.ResponseTime <= 0 {
		return config.LatencySentinel
	}
	return r.ResponseTime
}

// copyFile 逐字节拷贝文件（备份用）
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
