package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler 定时检测调度器
//
// 单循环、单互斥门：每轮运行结束后才重新计时（间隔从完成时刻起算，
// 不按墙钟tick对齐），慢批次不会导致运行堆积。门被占用时的触发被
// 静默跳过。运行中的panic和错误被完全吞掉并记日志，调度永不停摆。
type Scheduler struct {
	run      func(ctx context.Context) error
	interval time.Duration

	gate   sync.Mutex // 运行互斥门（TryLock，从不阻塞等待）
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewScheduler 创建调度器
// run为一轮完整检测的执行函数，interval为轮间隔
func NewScheduler(run func(ctx context.Context) error, interval time.Duration) *Scheduler {
	return &Scheduler{
		run:      run,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start 启动调度循环：立即执行首轮，之后按间隔持续调度
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.loop()
}

// Stop 停止调度（等待当前轮次结束，幂等）
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

// loop 调度主循环
// 定时器在每轮runOnce返回之后才重新arm，保证间隔从完成时刻起算
func (s *Scheduler) loop() {
	defer s.wg.Done()

	for {
		if s.gate.TryLock() {
			s.runOnce()
			s.gate.Unlock()
		} else {
			// 上一轮仍在运行：跳过本次触发，间隔照常
			log.Print("[INFO] 上一轮检测仍在进行，跳过本次定时触发")
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-timer.C:
		case <-s.stopCh:
			timer.Stop()
			return
		}
	}
}

// runOnce 执行一轮检测，异常完全收容
func (s *Scheduler) runOnce() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] 定时检测panic（已恢复，调度继续）: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	start := time.Now()
	if err := s.run(ctx); err != nil {
		log.Printf("[WARN] 定时检测出错: %v", err)
		return
	}
	log.Printf("[INFO] 定时检测完成，耗时 %v", time.Since(start).Round(time.Millisecond))
}
