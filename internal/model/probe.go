package model

import "sort"

// ProbeResult 单次镜像源探测结果
// 由Prober创建后不再修改，Checker负责汇总并交给存储层
type ProbeResult struct {
	Mirror       string   `json:"mirror"`
	Available    bool     `json:"available"`
	Status       string   `json:"status"`
	StatusCode   int      `json:"status_code"`   // 0表示连接层失败
	ResponseTime float64  `json:"response_time"` // 毫秒（完整多路径尝试的墙钟时间）
	TestTime     JSONTime `json:"test_time"`
}

// Batch 一次完整检测批次的结果集合
type Batch struct {
	Results     []*ProbeResult `json:"results"`
	Total       int            `json:"total"`
	Available   int            `json:"available"`
	Unavailable int            `json:"unavailable"`
	BatchTime   JSONTime       `json:"batch_time"`
}

// SortResults 批次排序不变式：可用的在前，同组内按响应时间升序
// 不可用条目的响应时间没有业务意义，组内相对顺序不做保证
func SortResults(results []*ProbeResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Available != results[j].Available {
			return results[i].Available
		}
		return results[i].ResponseTime < results[j].ResponseTime
	})
}

// NewBatch 从已完成的结果集合构建批次（排序+计数）
func NewBatch(results []*ProbeResult, batchTime JSONTime) *Batch {
	SortResults(results)

	available := 0
	for _, r := range results {
		if r.Available {
			available++
		}
	}

	return &Batch{
		Results:     results,
		Total:       len(results),
		Available:   available,
		Unavailable: len(results) - available,
		BatchTime:   batchTime,
	}
}

// CachedSnapshot 最近一次完整检测的缓存快照
// Redis易失层和进程内快照使用同一结构，整体替换、从不增量修改
type CachedSnapshot struct {
	Results     []*ProbeResult `json:"results"`
	Total       int            `json:"total"`
	Available   int            `json:"available"`
	Unavailable int            `json:"unavailable"`
	LastUpdate  JSONTime       `json:"last_update"`
	NextUpdate  JSONTime       `json:"next_update"`
}

// NewSnapshot 从批次构建快照，next_update = last_update + interval
func NewSnapshot(b *Batch, lastUpdate JSONTime, nextUpdate JSONTime) *CachedSnapshot {
	return &CachedSnapshot{
		Results:     b.Results,
		Total:       b.Total,
		Available:   b.Available,
		Unavailable: b.Unavailable,
		LastUpdate:  lastUpdate,
		NextUpdate:  nextUpdate,
	}
}
