package fulfillment

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_inventory/internal/models"
	"github.com/Skotchmaster/lab_inventory/internal/orderflow"
)

// Recover re-enqueues every persisted Processing order. The worker runs
// this on startup so orders accepted before a restart are not stranded.
// Safe to run against a kafka-backed queue too: Complete rejects ids whose
// order already left Processing.
func Recover(ctx context.Context, db *gorm.DB, q Queue) (int, error) {
	var ids []int
	err := db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", orderflow.StatusProcessing).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	for i, id := range ids {
		if err := q.Enqueue(ctx, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}
