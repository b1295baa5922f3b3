package schema

// DefineHistoryTable 定义mirror_test_history表结构（追加型探测历史）
func DefineHistoryTable() *TableBuilder {
	return NewTable("mirror_test_history").
		Column("id INT PRIMARY KEY AUTO_INCREMENT").
		Column("mirror_url VARCHAR(191) NOT NULL").
		Column("available TINYINT NOT NULL").
		Column("status VARCHAR(64) NOT NULL").
		Column("status_code INT NOT NULL DEFAULT 0").
		Column("response_time DOUBLE NOT NULL DEFAULT 0").
		Column("test_time BIGINT NOT NULL").
		Index("idx_history_mirror_time", "mirror_url, test_time DESC").
		Index("idx_history_time", "test_time DESC")
}

// DefineStatisticsTable 定义mirror_statistics表结构（每镜像源一行，逐条upsert）
func DefineStatisticsTable() *TableBuilder {
	return NewTable("mirror_statistics").
		Column("mirror_url VARCHAR(191) PRIMARY KEY").
		Column("total_tests BIGINT NOT NULL DEFAULT 0").
		Column("success_count BIGINT NOT NULL DEFAULT 0").
		Column("fail_count BIGINT NOT NULL DEFAULT 0").
		Column("avg_response_time DOUBLE NOT NULL DEFAULT 0").
		Column("last_success_time BIGINT NOT NULL DEFAULT 0").
		Column("last_fail_time BIGINT NOT NULL DEFAULT 0").
		Column("current_status TINYINT NOT NULL DEFAULT 0").
		Column("updated_at BIGINT NOT NULL").
		Index("idx_statistics_success", "success_count DESC")
}

// DefineBatchesTable 定义test_batches表结构（每次完整检测一行汇总）
func DefineBatchesTable() *TableBuilder {
	return NewTable("test_batches").
		Column("id INT PRIMARY KEY AUTO_INCREMENT").
		Column("batch_time BIGINT NOT NULL").
		Column("total_mirrors INT NOT NULL DEFAULT 0").
		Column("available_count INT NOT NULL DEFAULT 0").
		Column("unavailable_count INT NOT NULL DEFAULT 0").
		Index("idx_batches_time", "batch_time DESC")
}
