package sql

import (
	"context"
	"fmt"

	"mirrorCheck/internal/model"
)

// AddBatch 记录一次完整检测批次的汇总
func (s *SQLStore) AddBatch(ctx context.Context, b *model.Batch) error {
	query := `INSERT INTO test_batches
		(batch_time, total_mirrors, available_count, unavailable_count)
		VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		timeToUnix(b.BatchTime.Time),
		b.Total,
		b.Available,
		b.Unavailable,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}
