package model

// RecommendedConfig 推荐配置（派生数据，从最新快照即时计算，从不单独持久化）
type RecommendedConfig struct {
	Mirrors        []string `json:"mirrors"`
	Count          int      `json:"count"`
	TotalAvailable int      `json:"total_available"`
	LastUpdate     JSONTime `json:"last_update"`
	NextUpdate     JSONTime `json:"next_update"`
}
