package checker

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"mirrorCheck/internal/config"
	"mirrorCheck/internal/model"
	"mirrorCheck/internal/probe"
	"mirrorCheck/internal/storage"
)

// Checker 批量探测聚合器
// 并发扇出探测任务并汇总为批次；持久化按条独立进行，单条失败不影响其他任务
type Checker struct {
	prober  *probe.Prober
	store   storage.Store
	sem     *semaphore.Weighted
	ceiling time.Duration
}

// NewChecker 创建聚合器
// maxConcurrency 限制同时在途的探测任务数（防止goroutine爆炸）
func NewChecker(prober *probe.Prober, store storage.Store, maxConcurrency int) *Checker {
	if maxConcurrency <= 0 {
		maxConcurrency = config.DefaultMaxConcurrency
	}
	return &Checker{
		prober:  prober,
		store:   store,
		sem:     semaphore.NewWeighted(int64(maxConcurrency)),
		ceiling: config.ProbeJoinCeiling,
	}
}

// TestOne 探测单个镜像源，persist为真时落库（历史+统计）
func (c *Checker) TestOne(ctx context.Context, mirror string, persist bool) *model.ProbeResult {
	result := c.prober.DetailedProbe(ctx, mirror)
	if persist {
		c.persistResult(result)
	}
	return result
}

// RunBatch 并发探测一组镜像源并汇总为批次
//
// 每个任务受汇总等待上限约束：超时未返回的任务被放弃，结果不进入批次
// （不补占位条目）。放弃的任务不做级联取消，由其自身的探测超时自然结束，
// 这是接受的有界资源开销。批次计数只基于按时完成的子集。
func (c *Checker) RunBatch(ctx context.Context, mirrors []string, persist bool) *model.Batch {
	batchTime := model.Now()

	results := make(chan *model.ProbeResult, len(mirrors))
	for _, mirror := range mirrors {
		go func(m string) {
			if err := c.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer c.sem.Release(1)

			results <- c.TestOne(ctx, m, persist)
		}(mirror)
	}

	// 汇总：逐条收取直到全部到齐或触达等待上限
	collected := make([]*model.ProbeResult, 0, len(mirrors))
	deadline := time.NewTimer(c.ceiling)
	defer deadline.Stop()

collect:
	for range mirrors {
		select {
		case r := <-results:
			collected = append(collected, r)
		case <-deadline.C:
			log.Printf("[WARN] 批次汇总超时，放弃 %d 个未完成任务", len(mirrors)-len(collected))
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	batch := model.NewBatch(collected, batchTime)
	if persist {
		c.persistBatch(batch)
	}
	return batch
}

// RunSequential 顺序探测并逐条上报进度
//
// 与RunBatch的并发扇出不同，这里刻意保持串行：进度事件必须按输入顺序
// 逐条产生，并发会打乱顺序。onProgress返回false时中止后续探测。
func (c *Checker) RunSequential(ctx context.Context, mirrors []string, persist bool, onProgress func(completed int, result *model.ProbeResult) bool) *model.Batch {
	batchTime := model.Now()
	collected := make([]*model.ProbeResult, 0, len(mirrors))

	for i, mirror := range mirrors {
		if ctx.Err() != nil {
			break
		}
		result := c.TestOne(ctx, mirror, persist)
		collected = append(collected, result)

		if onProgress != nil && !onProgress(i+1, result) {
			break
		}
	}

	return model.NewBatch(collected, batchTime)
}

// persistResult 单条结果落库：历史记录追加 + 滚动统计upsert
// 持久化失败只记日志，不影响批次结果（内存路径降级可用）
func (c *Checker) persistResult(r *model.ProbeResult) {
	if c.store == nil {
		return
	}

	// 独立超时：落库不占用探测任务的时间预算
	ctx, cancel := context.WithTimeout(context.Background(), config.StartupDBPingTimeout)
	defer cancel()

	if err := c.store.AddResult(ctx, r); err != nil {
		log.Printf("[WARN] 保存探测历史失败 (%s): %v", r.Mirror, err)
	}
	if err := c.store.UpsertStat(ctx, r); err != nil {
		log.Printf("[WARN] 更新镜像统计失败 (%s): %v", r.Mirror, err)
	}
}

// persistBatch 批次汇总落库
func (c *Checker) persistBatch(b *model.Batch) {
	if c.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.StartupDBPingTimeout)
	defer cancel()

	if err := c.store.AddBatch(ctx, b); err != nil {
		log.Printf("[WARN] 保存批次信息失败: %v", err)
	}
}
