package model

// HistoryEntry 探测历史记录（mirror_test_history表的一行）
type HistoryEntry struct {
	ID           int64    `json:"id"`
	Mirror       string   `json:"mirror_url"`
	Available    bool     `json:"available"`
	Status       string   `json:"status"`
	StatusCode   int      `json:"status_code"`
	ResponseTime float64  `json:"response_time"`
	TestTime     JSONTime `json:"test_time"`
}

// MirrorStat 单个镜像源的滚动统计（mirror_statistics表，按mirror_url唯一）
// 增量更新：avg_response_time为累计均值；current_status始终反映最近一次探测
type MirrorStat struct {
	Mirror          string   `json:"mirror_url"`
	TotalTests      int64    `json:"total_tests"`
	SuccessCount    int64    `json:"success_count"`
	FailCount       int64    `json:"fail_count"`
	AvgResponseTime float64  `json:"avg_response_time"`
	LastSuccessTime JSONTime `json:"last_success_time"`
	LastFailTime    JSONTime `json:"last_fail_time"`
	CurrentStatus   bool     `json:"current_status"`
	UpdatedAt       JSONTime `json:"updated_at"`
}
