package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-news-sentiment/internal/entity"

	"github.com/redis/go-redis/v9"
)

// BatchSummaryRepository publishes per-batch summaries for downstream consumers.
type BatchSummaryRepository interface {
	Publish(ctx context.Context, summary entity.BatchSummary) error
}

type batchSummaryRepository struct {
	redisClient *redis.Client
	stream      string
	maxLen      int64
}

// NewBatchSummaryRepository creates a BatchSummaryRepository backed by a Redis
// stream.
func NewBatchSummaryRepository(redisClient *redis.Client, stream string, maxLen int64) BatchSummaryRepository {
	return &batchSummaryRepository{
		redisClient: redisClient,
		stream:      stream,
		maxLen:      maxLen,
	}
}

func (r *batchSummaryRepository) Publish(ctx context.Context, summary entity.BatchSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal batch summary: %w", err)
	}

	if err := r.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: r.maxLen,
		Approx: true,
	}).Err(); err != nil {
		return fmt.Errorf("failed to publish batch summary: %w", err)
	}

	return nil
}
