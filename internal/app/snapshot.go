package app

import (
	"sync"

	"mirrorCheck/internal/model"
)

// snapshotCell 进程内最近快照的单写者状态格
//
// 写入只发生在两处：启动预热和每轮检测完成后的整体替换（受调度互斥门
// 保护，不存在并发写）。读者拿到的是不可变快照引用，从不暴露可变内部。
// 手动批次与定时批次的快照都写到这里，后完成者胜出（不做合并）。
type snapshotCell struct {
	mu   sync.RWMutex
	snap *model.CachedSnapshot
}

func newSnapshotCell() *snapshotCell {
	return &snapshotCell{}
}

// get 返回最近的快照引用，没有数据时返回nil
func (c *snapshotCell) get() *model.CachedSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// set 整体替换快照
func (c *snapshotCell) set(snap *model.CachedSnapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}
