package app

import (
	"context"
	"log"
	"time"

	apperrors "mirrorCheck/internal/errors"
	"mirrorCheck/internal/model"
)

// runScheduledCheck 一轮完整的定时检测
//
// 批次探测（带落库） → Redis快照覆盖写 → 进程内快照替换 → 可选的
// 配置自动下发。易失层/配置写失败只降级记日志，不让本轮运行失败——
// 调度器收到error也只是记日志，这里返回error仅用于观测。
func (s *Server) runScheduledCheck(ctx context.Context) error {
	log.Print("[INFO] 开始定时检测镜像源状态...")

	batch := s.checker.RunBatch(ctx, s.cfg.Mirrors, true)
	snap := s.buildSnapshot(batch)

	if err := s.cache.SaveSnapshot(ctx, snap); err != nil {
		log.Printf("[WARN] Redis 缓存失败: %v", err)
	}
	s.snapshot.set(snap)

	if s.cfg.AutoUpdate {
		s.autoApply(snap)
	}

	log.Printf("[INFO] 定时检测完成: 可用 %d/%d 个镜像源", batch.Available, batch.Total)
	return nil
}

// buildSnapshot 从批次构建快照，next_update = 当前时间 + 检测间隔
func (s *Server) buildSnapshot(batch *model.Batch) *model.CachedSnapshot {
	now := model.Now()
	next := model.JSONTime{Time: now.Add(s.cfg.CheckInterval)}
	return model.NewSnapshot(batch, now, next)
}

// autoApply 自动下发推荐配置
// 无可用源时跳过写入；任何失败都不影响检测主流程
func (s *Server) autoApply(snap *model.CachedSnapshot) {
	cfg, err := s.synth.Synthesize(snap)
	if err != nil {
		if apperrors.HasErrorCode(err, apperrors.ErrCodeNoAvailableMirrors) || apperrors.HasErrorCode(err, apperrors.ErrCodeNoData) {
			log.Print("[INFO] 没有可用的镜像源，跳过配置更新")
			return
		}
		log.Printf("[WARN] 生成推荐配置失败: %v", err)
		return
	}

	if err := s.synth.Apply(cfg); err != nil {
		log.Printf("[WARN] 自动更新 Docker 配置失败: %v", err)
	}
}

// latestSnapshot 两级读路径：优先Redis易失层，缺失/过期回退进程内快照
func (s *Server) latestSnapshot(ctx context.Context) *model.CachedSnapshot {
	readCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if snap, err := s.cache.LoadSnapshot(readCtx); err != nil {
		log.Printf("[WARN] 从 Redis 获取数据失败: %v", err)
	} else if snap != nil {
		return snap
	}

	return s.snapshot.get()
}
